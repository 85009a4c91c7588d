// Package card normalizes raw card-entry input before it is handed to the
// payment gateway. All functions are pure and idempotent.
package card

import (
	"strings"
	"unicode"
)

// Input holds raw user-entered card details. It is never persisted and never
// sent to the storefront backend; only the gateway sees it.
type Input struct {
	Number     string
	Expiry     string
	CVV        string
	HolderName string
}

// Normalize applies the per-field formatters to every field.
func Normalize(in Input) Input {
	return Input{
		Number:     FormatNumber(in.Number),
		Expiry:     FormatExpiry(in.Expiry),
		CVV:        FormatCVV(in.CVV),
		HolderName: in.HolderName,
	}
}

// FormatNumber strips whitespace and regroups the remaining characters in
// blocks of four. Non-digit characters are left alone here; digits-only
// enforcement happens at tokenization time.
func FormatNumber(value string) string {
	stripped := stripSpaces(value)
	if stripped == "" {
		return value
	}

	runes := []rune(stripped)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && i%4 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry keeps at most four digits and renders them as MM/YY once the
// month is complete. One or two digits pass through unchanged.
func FormatExpiry(value string) string {
	digits := stripNonDigits(value)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// FormatCVV keeps at most four digits.
func FormatCVV(value string) string {
	digits := stripNonDigits(value)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}

// WireNumber returns the card number as the gateway expects it: no spaces.
func WireNumber(value string) string {
	return stripSpaces(value)
}

// WireExpire converts an MM/YY expiry into the gateway's YYMM wire order.
// Incomplete input is passed through digits-only and left for the gateway to
// reject.
func WireExpire(value string) string {
	digits := stripNonDigits(value)
	if len(digits) != 4 {
		return digits
	}
	return digits[2:] + digits[:2]
}

func stripSpaces(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}

func stripNonDigits(value string) string {
	return strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, value)
}
