package channel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		normalizer PhoneNormalizer
		in         string
		want       string
	}{
		{"formatted international", PhoneNormalizer{}, "+1 (234) 567-8900", "12345678900"},
		{"no country code configured", PhoneNormalizer{NationalDigits: 10}, "98765 43210", "9876543210"},
		{"national number gets country code", PhoneNormalizer{CountryCode: "91", NationalDigits: 10}, "98765-43210", "919876543210"},
		{"already prefixed kept as-is", PhoneNormalizer{CountryCode: "91", NationalDigits: 10}, "+91 98765 43210", "919876543210"},
		{"other lengths kept as-is", PhoneNormalizer{CountryCode: "91", NationalDigits: 10}, "+1 (234) 567-8900", "12345678900"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.normalizer.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_EmptyIsInvalidRecipient(t *testing.T) {
	for _, in := range []string{"", "   ", "n/a", "+() -"} {
		_, err := PhoneNormalizer{CountryCode: "91", NationalDigits: 10}.Normalize(in)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidRecipient), "input %q", in)
	}
}
