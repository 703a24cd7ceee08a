package channel

import "strings"

const (
	DefaultCountryCode = "55"
	whatsappSuffix     = "@c.us"

	// Longest national number (area code plus subscriber) without a
	// country code.
	nationalMaxDigits = 11
)

// NormalizeRecipient converts a free-form phone number into a WhatsApp
// recipient id: non-digits are stripped, national numbers get countryCode
// prepended, and the @c.us suffix is appended. A leading "+" or "00" marks
// an explicit country code and is never prefixed. ok is false when the input
// holds no digits at all.
func NormalizeRecipient(phone, countryCode string) (recipient string, ok bool) {
	phone = strings.TrimSpace(phone)
	international := strings.HasPrefix(phone, "+")
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if !international && strings.HasPrefix(digits, "00") {
		international = true
		digits = digits[2:]
	}
	if digits == "" {
		return "", false
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	if !international && len(digits) <= nationalMaxDigits {
		digits = countryCode + digits
	}
	return digits + whatsappSuffix, true
}
