package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.domain.org",
		"with+tag@example.co",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@missinglocal.com",
		"user@",
		"user@domain",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidateClock(t *testing.T) {
	valid := []string{"00:00", "09:30", "12:05", "23:59"}
	for _, v := range valid {
		assert.NoError(t, ValidateClock(v), v)
	}

	invalid := []string{"", "24:00", "9:30", "09:60", "09-30", "0930", "09:30:00"}
	for _, v := range invalid {
		assert.Error(t, ValidateClock(v), v)
	}
}

func TestValidateStruct(t *testing.T) {
	type form struct {
		Name  string `validate:"required,max=10"`
		Email string `validate:"required,email"`
	}

	t.Run("valid struct", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(form{Name: "ok", Email: "a@b.co"}))
	})

	t.Run("violations carry field details", func(t *testing.T) {
		err := ValidateStruct(form{Email: "not-an-email"})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "Name")
		assert.Contains(t, fields, "Email")
	})
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID("4f8a2c1e-9d3b-4e7a-8f6c-1a2b3c4d5e6f"))
	assert.Error(t, ValidateUUID("not-a-uuid"))
}
