package utils

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeString trims whitespace and collapses internal runs of spaces
func NormalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail normalizes email addresses (lowercase and trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits and a leading +, so "952 37 46 10" becomes "952374610"
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// IsValidEmail accepts a bare address (no display name) that net/mail can
// parse, with a dotted domain and no control characters.
func IsValidEmail(email string) bool {
	normalized := NormalizeEmail(email)
	if normalized == "" || strings.ContainsFunc(normalized, unicode.IsControl) {
		return false
	}

	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Name != "" || addr.Address != normalized {
		return false
	}

	at := strings.LastIndex(normalized, "@")
	domain := normalized[at+1:]
	return at > 0 && len(domain) > 2 && strings.Contains(domain, ".")
}

// IsValidPhone requires at least 7 digits
func IsValidPhone(phone string) bool {
	normalized := strings.TrimPrefix(NormalizePhone(phone), "+")
	return len(normalized) >= 7
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
