package auth

import (
	"testing"
	"time"
)

func TestVisitorToken_RoundTrip(t *testing.T) {
	token, id, err := NewVisitorToken("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewVisitorToken: %v", err)
	}
	got, err := ParseVisitor(token, "secret")
	if err != nil {
		t.Fatalf("ParseVisitor: %v", err)
	}
	if got != id {
		t.Fatalf("visitor id = %q, want %q", got, id)
	}
}

func TestParseVisitor_WrongSecret(t *testing.T) {
	token, _, err := NewVisitorToken("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewVisitorToken: %v", err)
	}
	if _, err := ParseVisitor(token, "other"); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseVisitor_Expired(t *testing.T) {
	token, err := SignVisitor("abc", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("SignVisitor: %v", err)
	}
	if _, err := ParseVisitor(token, "secret"); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseVisitor_Garbage(t *testing.T) {
	if _, err := ParseVisitor("not-a-token", "secret"); err == nil {
		t.Fatal("expected parse error")
	}
}
