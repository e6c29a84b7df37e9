package domain

import (
	"strings"
	"testing"
)

func TestGenerateCodeFormat(t *testing.T) {
	code := GenerateCode("Jean Dupont")

	if !strings.HasPrefix(code, "jeandupont_") {
		t.Fatalf("expected jeandupont_ prefix, got %q", code)
	}
	suffix := strings.TrimPrefix(code, "jeandupont_")
	if len(suffix) != 6 {
		t.Fatalf("expected 6 char suffix, got %q", suffix)
	}
	if !ValidCode(code) {
		t.Fatalf("generated code %q should be valid", code)
	}
}

func TestGenerateCodeStripsNonAlphanumerics(t *testing.T) {
	code := GenerateCode("  Éloïse  O'Brien ")
	if strings.ContainsAny(code, " '") {
		t.Fatalf("code %q should not contain spaces or punctuation", code)
	}
	if !ValidCode(code) {
		t.Fatalf("code %q should be valid", code)
	}
}

func TestGenerateCodeEmptyNameFallsBack(t *testing.T) {
	code := GenerateCode("   ")
	if !strings.HasPrefix(code, "affiliate_") {
		t.Fatalf("expected affiliate_ fallback, got %q", code)
	}
}

func TestValidCode(t *testing.T) {
	for _, code := range []string{"jean_ab12cd", "a", "x-1.z_9"} {
		if !ValidCode(code) {
			t.Fatalf("expected %q to be valid", code)
		}
	}
	for _, code := range []string{"", "Jean_AB", "has space", "semi;colon", strings.Repeat("a", 65)} {
		if ValidCode(code) {
			t.Fatalf("expected %q to be invalid", code)
		}
	}
}
