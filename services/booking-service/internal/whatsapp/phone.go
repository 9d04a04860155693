package whatsapp

import "strings"

const countryCode = "55"

// Digits keeps only the ASCII digits of raw.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone turns any user-typed phone into the international digits the gateway
// expects, adding the country code when it is missing.
func FormatPhone(raw string) string {
	d := Digits(raw)
	if d == "" || strings.HasPrefix(d, countryCode) {
		return d
	}
	return countryCode + d
}

// PhoneVariants lists the digit strings a stored phone may match for an inbound sender,
// with and without the country code.
func PhoneVariants(raw string) []string {
	d := Digits(raw)
	if d == "" {
		return nil
	}
	if strings.HasPrefix(d, countryCode) && len(d) > 11 {
		return []string{d, d[len(countryCode):]}
	}
	return []string{d, countryCode + d}
}
