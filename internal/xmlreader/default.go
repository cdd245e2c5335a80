package xmlreader

import (
	"encoding/xml"
	"io"
)

// stdReader adapts encoding/xml.Decoder to the Reader interface.
type stdReader struct {
	dec *xml.Decoder
}

// New returns the default Reader, wrapping encoding/xml.Decoder over r.
func New(r io.Reader) Reader {
	return &stdReader{dec: xml.NewDecoder(r)}
}

func (s *stdReader) Next() (Token, error) {
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return Token{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make([]Attr, len(t.Attr))
			for i, a := range t.Attr {
				attrs[i] = Attr{Name: a.Name.Local, Value: a.Value}
			}
			return Token{Kind: StartElement, Name: t.Name.Local, Attrs: attrs}, nil
		case xml.EndElement:
			return Token{Kind: EndElement, Name: t.Name.Local}, nil
		default:
			// xml.CharData, xml.Comment, xml.ProcInst, xml.Directive:
			// none of these carry structure the import pipeline acts
			// on, so skip them and keep scanning; this reader never
			// returns an Other token.
			continue
		}
	}
}
