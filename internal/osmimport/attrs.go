package osmimport

import (
	"strconv"

	"github.com/jeffboody/osmdb/internal/xmlreader"
)

func attrValue(tok xmlreader.Token, name string) string {
	for _, a := range tok.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

func attrInt64(tok xmlreader.Token, name string) int64 {
	n, _ := strconv.ParseInt(attrValue(tok, name), 10, 64)
	return n
}

func attrFloat64(tok xmlreader.Token, name string) float64 {
	f, _ := strconv.ParseFloat(attrValue(tok, name), 64)
	return f
}
