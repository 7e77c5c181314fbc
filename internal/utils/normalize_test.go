// internal/utils/normalize_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Medialunas", "medialunas"},
		{"Café con Leche", "cafe con leche"},
		{"  PAN   lactal  ", "pan lactal"},
		{"Ñoquis", "noquis"},
		{"medialunas de manteca", "medialunas de manteca"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeName(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeNameEquatesLegacyVariants(t *testing.T) {
	// The shapes old clients actually send for the same product.
	assert.Equal(t, NormalizeName("Medialunas de Manteca "), NormalizeName("medialunas DE manteca"))
	assert.Equal(t, NormalizeName("Café"), NormalizeName("cafe"))
}
