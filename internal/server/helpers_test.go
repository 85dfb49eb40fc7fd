package server

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTokenWithIssuer(t *testing.T, s *Server, issuer string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "42",
		"iss": issuer,
		"aud": "viaguild-client",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	require.NoError(t, err)
	return signed
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"instanceId", "instance ID"},
		{"badgeInstanceId", "badge instance ID"},
		{"username", "username"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, humanizeParam(tt.param))
	}
}

func TestValidationMessage(t *testing.T) {
	type dto struct {
		Name string `validate:"required"`
		Note string `validate:"max=3"`
	}

	err := validate.Struct(dto{Note: "ok"})
	assert.Equal(t, "Name is required", validationMessage(err))

	err = validate.Struct(dto{Name: "x", Note: "too long"})
	assert.Equal(t, "Note is too large", validationMessage(err))

	assert.Equal(t, "Invalid request body", validationMessage(assert.AnError))

	var empty validator.ValidationErrors
	assert.Equal(t, "Invalid request body", validationMessage(empty))
}
