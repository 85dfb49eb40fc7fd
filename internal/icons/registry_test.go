package icons

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	shield := Resolve("Shield")
	assert.Contains(t, shield, "<svg")
	assert.NotEqual(t, DefaultGlyph, shield)

	assert.Equal(t, shield, Resolve("  Shield  "))

	// Unknown and blank names fall back instead of erroring.
	assert.Equal(t, DefaultGlyph, Resolve("NoSuchIcon"))
	assert.Equal(t, DefaultGlyph, Resolve(""))
}

func TestExists(t *testing.T) {
	assert.True(t, Exists("Trophy"))
	assert.False(t, Exists("trophy"))
	assert.False(t, Exists("NoSuchIcon"))
}

func TestNamesCoverRegistry(t *testing.T) {
	names := Names()
	assert.NotEmpty(t, names)
	for _, name := range names {
		assert.True(t, Exists(name), name)
		assert.True(t, strings.HasPrefix(Resolve(name), "<svg"), name)
	}
}
