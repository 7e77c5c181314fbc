// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrongPasswordRule(t *testing.T) {
	type payload struct {
		Password string `validate:"strong_password"`
	}

	assert.NoError(t, ValidateStruct(&payload{Password: "Passw0rd"}))
	assert.Error(t, ValidateStruct(&payload{Password: "short1A"}))
	assert.Error(t, ValidateStruct(&payload{Password: "alllowercase1"}))
	assert.Error(t, ValidateStruct(&payload{Password: "NoNumbersHere"}))
}

func TestPayoutAliasRule(t *testing.T) {
	type payload struct {
		Alias string `validate:"payout_alias"`
	}

	assert.NoError(t, ValidateStruct(&payload{Alias: "panaderia.lopez.mp"}))
	assert.NoError(t, ValidateStruct(&payload{Alias: "verduleria-sol_2"}))
	assert.Error(t, ValidateStruct(&payload{Alias: "Mayusculas.No"}))
	assert.Error(t, ValidateStruct(&payload{Alias: "ab"}))
	assert.Error(t, ValidateStruct(&payload{Alias: "con espacios"}))
}
