package shortlink

import (
	"strings"
	"testing"
)

func TestGenerateLengthAndCharset(t *testing.T) {
	gen := EntropyGenerator{}
	for _, length := range []int{4, 6, 8, 12} {
		code := gen.Generate(length)
		if len(code) != length {
			t.Fatalf("length=%d got %q (len %d)", length, code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("code %q contains %q outside base62 alphabet", code, c)
			}
		}
	}
}

func TestGenerateDefaultsOnBadLength(t *testing.T) {
	gen := EntropyGenerator{}
	if got := gen.Generate(0); len(got) != DefaultCodeLength {
		t.Fatalf("length=0 expected default %d, got %q", DefaultCodeLength, got)
	}
	if got := gen.Generate(-3); len(got) != DefaultCodeLength {
		t.Fatalf("length=-3 expected default %d, got %q", DefaultCodeLength, got)
	}
}

func TestGenerateNoObviousCollisions(t *testing.T) {
	gen := EntropyGenerator{}
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		code := gen.Generate(8)
		if seen[code] {
			t.Fatalf("collision after %d codes: %q", i, code)
		}
		seen[code] = true
	}
}

func TestValidateCode(t *testing.T) {
	valid := []string{"abcd", "Ab3D", "0000", "ZZZZZZZZZZZZ", "my1Link"}
	for _, code := range valid {
		if err := ValidateCode(code); err != nil {
			t.Errorf("ValidateCode(%q) = %v, want nil", code, err)
		}
	}

	invalid := []string{"", "ab", "abc", "with-dash", "has space", "überkurz",
		"toolongtoolong", "semi;colon"}
	for _, code := range invalid {
		if err := ValidateCode(code); err == nil {
			t.Errorf("ValidateCode(%q) = nil, want error", code)
		}
	}
}
