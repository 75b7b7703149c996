package channel

import (
	"strings"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
)

// PhoneNormalizer turns free-form phone input into the digits-only form the
// channels expect. CountryCode is prepended only to numbers that are exactly
// NationalDigits long; anything else keeps whatever prefix it already has.
type PhoneNormalizer struct {
	CountryCode    string
	NationalDigits int
}

func (n PhoneNormalizer) Normalize(raw string) (string, error) {
	digits := Digits(raw)
	if digits == "" {
		return "", appErrors.NewInvalidRecipient(raw)
	}
	if n.CountryCode != "" && n.NationalDigits > 0 && len(digits) == n.NationalDigits {
		digits = n.CountryCode + digits
	}
	return digits, nil
}

// ValidatePhone checks a number that has already been normalized. Adapters
// call it instead of normalizing again, so the country-code policy is applied
// exactly once, by the caller.
func ValidatePhone(phone string) (string, error) {
	digits := Digits(phone)
	if digits == "" {
		return "", appErrors.NewInvalidRecipient(phone)
	}
	return digits, nil
}

// Digits strips every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
