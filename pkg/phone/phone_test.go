package phone

import "testing"

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"+55 (11) 98765-4321": "5511987654321",
		"11 98765 4321":       "11987654321",
		"5511987654321":       "5511987654321",
		"abc":                 "",
	}
	for in, want := range cases {
		if got := Canonical(in); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("5511987654321") {
		t.Error("expected full number with country code to be valid")
	}
	if Valid("123") {
		t.Error("expected short number to be invalid")
	}
}
