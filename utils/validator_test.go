package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@example.org", "first.last@sub.domain.co", "a+b@x.io"}
	for _, email := range valid {
		assert.True(t, ValidateEmail(email), email)
	}

	invalid := []string{"", "plain", "missing@tld", "@nouser.org", "spaces in@mail.org"}
	for _, email := range invalid {
		assert.False(t, ValidateEmail(email), email)
	}
}

func TestValidatePassword(t *testing.T) {
	ok, msg := ValidatePassword("longenough")
	assert.True(t, ok)
	assert.Empty(t, msg)

	ok, msg = ValidatePassword("short")
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "ab", SanitizeInput("a\x00b"))
}
