package catalog

import (
	"errors"
	"strings"
	"unicode"
)

var ErrPhoneTooShort = errors.New("phone number needs at least 10 digits")

// NormalizePhone strips formatting from a customer-entered phone number and
// validates it before a loyalty lookup hits the network.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 {
		return "", ErrPhoneTooShort
	}
	return digits, nil
}
