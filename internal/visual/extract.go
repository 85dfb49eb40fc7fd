package visual

import (
	"fmt"
	"regexp"
)

// DefaultBorderWidth is the border width in pixels used when callers do not
// specify one.
const DefaultBorderWidth = 6

// DefaultBorderColor is used when no border color can be resolved.
const DefaultBorderColor = "#000000"

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// IsHexColor reports whether s is a #-prefixed hex color.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// StyleProps is a set of CSS-like display properties produced by extraction.
// The service does not render pixels; consumers apply these directly.
type StyleProps map[string]string

// ExtractColor resolves a single renderable color from a config. For
// simple-color and system-icon configs it is the Color field; for
// customizable-svg and element-path configs it is the first defined fill or
// stroke color in mapping order. Nil, empty, and unrecognized configs yield
// the fallback. Never fails.
func ExtractColor(cfg *ColorConfig, fallback string) string {
	if cfg == nil {
		return fallback
	}
	switch cfg.Type {
	case TypeSimpleColor, TypeSystemIcon:
		if cfg.Color != "" {
			return cfg.Color
		}
	case TypeCustomizableSVG, TypeElementPath:
		for _, e := range cfg.ColorMappings {
			if e.Colors.Fill != nil && e.Colors.Fill.Current != "" {
				return e.Colors.Fill.Current
			}
			if e.Colors.Stroke != nil && e.Colors.Stroke.Current != "" {
				return e.Colors.Stroke.Current
			}
		}
	}
	return fallback
}

// ExtractBackgroundStyle converts a config into background display
// properties. Unrecognized and nil configs yield an empty set.
func ExtractBackgroundStyle(cfg *ColorConfig) StyleProps {
	if cfg == nil {
		return StyleProps{}
	}
	switch cfg.Type {
	case TypeSimpleColor:
		if cfg.Color != "" {
			return StyleProps{"backgroundColor": cfg.Color}
		}
	case TypeHostedAsset:
		if cfg.URL != "" {
			return StyleProps{
				"backgroundImage":    fmt.Sprintf("url(%s)", cfg.URL),
				"backgroundSize":     "cover",
				"backgroundPosition": "center",
				"backgroundRepeat":   "no-repeat",
			}
		}
	}
	return StyleProps{}
}

// ExtractBorderStyle converts a config into border display properties. A
// border is always produced: unresolvable configs fall back to a solid black
// border so badges never render borderless.
func ExtractBorderStyle(cfg *ColorConfig, width int) StyleProps {
	if width <= 0 {
		width = DefaultBorderWidth
	}
	color := DefaultBorderColor
	if cfg != nil && cfg.Type == TypeSimpleColor && cfg.Color != "" {
		color = cfg.Color
	}
	return StyleProps{"border": fmt.Sprintf("%dpx solid %s", width, color)}
}
