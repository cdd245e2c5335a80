package translit

import "testing"

func TestFoldASCIIStripsMarks(t *testing.T) {
	if got := Default.Fold("Ångström"); got != "Angstrom" {
		t.Fatalf("Fold(Ångström) = %q, want %q", got, "Angstrom")
	}
}

func TestFoldASCIIReservedChars(t *testing.T) {
	if got := Default.Fold(`a|b"c`); got != "a bc" {
		t.Fatalf("Fold = %q, want %q", got, "a bc")
	}
}

func TestFoldASCIIDropsNonMappable(t *testing.T) {
	if got := Default.Fold("北京"); got != "" {
		t.Fatalf("Fold(CJK) = %q, want empty", got)
	}
}

func TestFoldASCIIPassthrough(t *testing.T) {
	if got := Default.Fold("Flagstaff Rd"); got != "Flagstaff Rd" {
		t.Fatalf("Fold(plain ascii) = %q, want unchanged", got)
	}
}
