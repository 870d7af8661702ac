// Package phone canonicalizes Indian mobile numbers to their 10-digit form.
package phone

import "strings"

const countryCode = "91"

// Normalize strips formatting, the +91/91 prefix and a trunk 0, keeping the
// last ten digits. Every lookup and write must go through it.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, countryCode) && len(digits) == 12 {
		digits = digits[2:]
	}
	if strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// Valid reports whether a normalized number has exactly ten digits.
func Valid(normalized string) bool {
	return len(normalized) == 10
}

// WhatsApp returns the messaging address for a normalized number.
func WhatsApp(normalized string) string {
	return "whatsapp:+" + countryCode + normalized
}
