package password

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	t.Run("length and character classes", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			p, err := Generate(12)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if len(p) != 12 {
				t.Fatalf("expected length 12, got %d (%q)", len(p), p)
			}
			if !strings.ContainsAny(p, upper) {
				t.Errorf("password %q has no uppercase letter", p)
			}
			if !strings.ContainsAny(p, lower) {
				t.Errorf("password %q has no lowercase letter", p)
			}
			if !strings.ContainsAny(p, digits) {
				t.Errorf("password %q has no digit", p)
			}
			for _, r := range p {
				if !strings.ContainsRune(alphabet, r) {
					t.Errorf("password %q contains %q outside the alphabet", p, r)
				}
			}
		}
	})

	t.Run("minimum length is raised to fit guarantees", func(t *testing.T) {
		p, err := Generate(1)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(p) != 3 {
			t.Fatalf("expected length 3, got %d", len(p))
		}
	})

	t.Run("successive passwords differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			p, err := Generate(12)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if seen[p] {
				t.Fatalf("duplicate password %q generated", p)
			}
			seen[p] = true
		}
	})
}
