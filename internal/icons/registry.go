// Package icons holds the built-in system icon glyphs referenced by
// system-icon visual configs.
package icons

import "strings"

// DefaultGlyph is served when a config names an unknown icon so a badge
// never renders empty.
const DefaultGlyph = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><circle cx="12" cy="12" r="9"/></svg>`

var registry = map[string]string{
	"Shield":    `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="M12 2 4 5v6c0 5 3.4 9.7 8 11 4.6-1.3 8-6 8-11V5l-8-3z"/></svg>`,
	"Star":      `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="m12 2 3 6.6 7 .8-5.2 4.8 1.4 7L12 17.7 5.8 21.2l1.4-7L2 9.4l7-.8L12 2z"/></svg>`,
	"Trophy":    `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="M6 2v2H2v3c0 2.8 2.2 5 5 5h.3A6 6 0 0 0 11 15.9V19H8v3h8v-3h-3v-3.1a6 6 0 0 0 3.7-3.9H17c2.8 0 5-2.2 5-5V4h-4V2H6zM4 6h2v4a3 3 0 0 1-2-2.8V6zm16 0v1.2A3 3 0 0 1 18 10V6h2z"/></svg>`,
	"Crown":     `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="m3 7 4 4 5-6 5 6 4-4v11H3V7zm0 13h18v2H3v-2z"/></svg>`,
	"Heart":     `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="M12 21 4.4 13.4a5.3 5.3 0 0 1 7.5-7.5l.1.1.1-.1a5.3 5.3 0 0 1 7.5 7.5L12 21z"/></svg>`,
	"Flame":     `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="M12 2s1 3-1 6-4 3-4 7a5 5 0 0 0 10 0c0-2-1-3-1-3s2 1 2-2c0-4-6-8-6-8z"/></svg>`,
	"Lightning": `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="M13 2 4 14h6l-1 8 9-12h-6l1-8z"/></svg>`,
	"Gem":       `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="M6 3h12l4 6-10 12L2 9l4-6z"/></svg>`,
	"Check":     `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="m9 17-5-5 1.4-1.4L9 14.2l9.6-9.6L20 6 9 17z"/></svg>`,
	"Flag":      `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor"><path d="M5 2h2v20H5V2zm4 1h11l-3 4.5L20 12H9V3z"/></svg>`,
}

// Resolve returns the SVG markup for name, falling back to the default
// glyph when the name is unknown or blank.
func Resolve(name string) string {
	if svg, ok := registry[strings.TrimSpace(name)]; ok {
		return svg
	}
	return DefaultGlyph
}

// Exists reports whether name is a registered icon.
func Exists(name string) bool {
	_, ok := registry[strings.TrimSpace(name)]
	return ok
}

// Names lists all registered icon names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
