package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Str0ngPassw0rd!"))

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "Sh0rt!pw"},
		{"too long", strings.Repeat("Aa1!", 40)},
		{"no uppercase", "weakpassword1!"},
		{"no lowercase", "WEAKPASSWORD1!"},
		{"no digit", "WeakPassword!!"},
		{"no special", "WeakPassword11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidatePassword(tt.password))
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("badge_collector"))
	assert.NoError(t, ValidateUsername("ana"))
	assert.NoError(t, ValidateUsername("x-2-y"))

	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 31)))
	assert.Error(t, ValidateUsername("has space"))
	assert.Error(t, ValidateUsername("émoji"))
	assert.Error(t, ValidateUsername("_leading"))
	assert.Error(t, ValidateUsername("trailing-"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.NoError(t, ValidateEmail("first.last+tag@sub.domain.io"))

	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
	assert.Error(t, ValidateEmail("@example.com"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.com"))
}
