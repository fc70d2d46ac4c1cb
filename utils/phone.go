// utils/phone.go
package utils

import "strings"

const (
	countryCode     = "55"
	defaultAreaCode = "11"
)

// NormalizePhone reduces a raw phone number to canonical international
// digits (Brazilian numbering):
//   - strip everything that is not a digit
//   - 11 digits starting with a local area code: prepend country code
//   - exactly 10 digits: prepend country code + default area code
//   - anything else: prepend country code unless already present
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, defaultAreaCode):
		digits = countryCode + digits
	case len(digits) == 10:
		digits = countryCode + defaultAreaCode + digits
	case !strings.HasPrefix(digits, countryCode):
		digits = countryCode + digits
	}

	return digits
}
