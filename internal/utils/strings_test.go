package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"952 37 46 10":     "952374610",
		"+34 952-37-46-10": "+34952374610",
		"  ":               "",
		"tel: 600 1+2":     "60012",
	}
	for in, want := range tests {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	if !IsValidPhone("952 37 46 10") {
		t.Error("expected shop phone to be valid")
	}
	if IsValidPhone("+34 12") {
		t.Error("expected short phone to be invalid")
	}
}

func TestIsValidEmail(t *testing.T) {
	for _, e := range []string{"cliente@example.com", " Cliente@Example.ES "} {
		if !IsValidEmail(e) {
			t.Errorf("expected %q valid", e)
		}
	}
	for _, e := range []string{
		"", "no-arroba", "a@b", "@example.com", "a@@example.com",
		"visitor@example.com\r\nX-Injected: yes",
		"visitor@example.com\nBcc: x@y.es",
		"Ana <ana@example.com>",
	} {
		if IsValidEmail(e) {
			t.Errorf("expected %q invalid", e)
		}
	}
}

func TestNormalizeString(t *testing.T) {
	if got := NormalizeString("  Juan   Pérez \n"); got != "Juan Pérez" {
		t.Fatalf("NormalizeString = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("cañón", 3); got != "cañ" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("Truncate = %q", got)
	}
}
