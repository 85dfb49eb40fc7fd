// Package validation provides input validation rules shared across the
// application.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var templateSlugRegex = regexp.MustCompile(`^[a-z0-9-]{2,64}$`)

var nonSlugCharsRegex = regexp.MustCompile(`[^a-z0-9-]+`)

// ValidateTemplateSlug validates badge template slug format.
func ValidateTemplateSlug(slug string) error {
	if !templateSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 2-64 characters and contain only lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}
	return nil
}

// NormalizeSlug lowercases the input and collapses anything that is not a
// slug character into single hyphens. Slugs are stored normalized, which is
// how uniqueness stays case-insensitive.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugCharsRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
