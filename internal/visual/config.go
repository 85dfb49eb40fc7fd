// Package visual defines the polymorphic appearance-configuration format used
// by badge templates and instances, together with pure resolution helpers.
// A config is a tagged union discriminated by Type; extraction never fails and
// always falls back to a usable value.
package visual

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ConfigVersion is stamped on every config created by this package.
const ConfigVersion = 1

// ConfigType discriminates the visual config union.
type ConfigType string

const (
	TypeSimpleColor     ConfigType = "simple-color"
	TypeHostedAsset     ConfigType = "hosted-asset"
	TypeCustomizableSVG ConfigType = "customizable-svg"
	TypeElementPath     ConfigType = "element-path"
	TypeSystemIcon      ConfigType = "system-icon"
)

// ColorEndpoint holds the current (and optionally original) color for one
// paintable attribute of an SVG element.
type ColorEndpoint struct {
	Current  string `json:"current"`
	Original string `json:"original,omitempty"`
}

// ElementColors describes the fill/stroke colors applied to one element.
type ElementColors struct {
	Fill   *ColorEndpoint `json:"fill,omitempty"`
	Stroke *ColorEndpoint `json:"stroke,omitempty"`
}

// ElementMapping pairs an element selector with its colors.
type ElementMapping struct {
	Selector string
	Colors   ElementColors
}

// ElementMappings is an ordered selector -> colors mapping. Order matters:
// color extraction scans mappings in insertion order, and the wire format is
// a JSON object whose key order is preserved on decode.
type ElementMappings []ElementMapping

// Get returns the colors for a selector, if present.
func (m ElementMappings) Get(selector string) (ElementColors, bool) {
	for _, e := range m {
		if e.Selector == selector {
			return e.Colors, true
		}
	}
	return ElementColors{}, false
}

// Set replaces or appends the colors for a selector.
func (m *ElementMappings) Set(selector string, colors ElementColors) {
	for i, e := range *m {
		if e.Selector == selector {
			(*m)[i].Colors = colors
			return
		}
	}
	*m = append(*m, ElementMapping{Selector: selector, Colors: colors})
}

// MarshalJSON renders the mappings as a JSON object in slice order.
func (m ElementMappings) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Selector)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Colors)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving document key order.
func (m *ElementMappings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("visual: colorMappings must be a JSON object, got %v", tok)
	}

	out := ElementMappings{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("visual: unexpected colorMappings key %v", keyTok)
		}
		var colors ElementColors
		if err := dec.Decode(&colors); err != nil {
			return err
		}
		out = append(out, ElementMapping{Selector: key, Colors: colors})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}

// ColorConfig is the visual configuration union. Which fields are meaningful
// depends on Type:
//
//	simple-color:                Color
//	hosted-asset:                URL
//	customizable-svg / element-path: ColorMappings, optional URL and Scale
//	system-icon:                 Value (icon name), optional Color
type ColorConfig struct {
	Type          ConfigType      `json:"type"`
	Version       int             `json:"version"`
	Color         string          `json:"color,omitempty"`
	URL           string          `json:"url,omitempty"`
	IconValue     string          `json:"value,omitempty"`
	Scale         float64         `json:"scale,omitempty"`
	ColorMappings ElementMappings `json:"colorMappings,omitempty"`
}

// NewSimpleColorConfig returns a simple-color config.
func NewSimpleColorConfig(color string) *ColorConfig {
	return &ColorConfig{Type: TypeSimpleColor, Version: ConfigVersion, Color: color}
}

// NewHostedAssetConfig returns a hosted-asset config pointing at a stored URL.
func NewHostedAssetConfig(url string) *ColorConfig {
	return &ColorConfig{Type: TypeHostedAsset, Version: ConfigVersion, URL: url}
}

// NewCustomizableSVGConfig returns a customizable-svg config. url and scale
// are optional (zero values are omitted on the wire).
func NewCustomizableSVGConfig(mappings ElementMappings, url string, scale float64) *ColorConfig {
	return &ColorConfig{
		Type:          TypeCustomizableSVG,
		Version:       ConfigVersion,
		URL:           url,
		Scale:         scale,
		ColorMappings: mappings,
	}
}

// NewSystemIconConfig returns a system-icon config.
func NewSystemIconConfig(value, color string) *ColorConfig {
	return &ColorConfig{Type: TypeSystemIcon, Version: ConfigVersion, IconValue: value, Color: color}
}

// Validate reports whether the config is structurally sound for its type.
// Unknown types are accepted (forward compatibility); extraction treats them
// as unrecognized and falls back.
func Validate(cfg *ColorConfig) bool {
	if cfg == nil {
		return false
	}
	switch cfg.Type {
	case TypeSimpleColor:
		return IsHexColor(cfg.Color)
	case TypeHostedAsset:
		return cfg.URL != ""
	case TypeCustomizableSVG, TypeElementPath:
		for _, e := range cfg.ColorMappings {
			if e.Colors.Fill != nil && e.Colors.Fill.Current != "" && !IsHexColor(e.Colors.Fill.Current) {
				return false
			}
			if e.Colors.Stroke != nil && e.Colors.Stroke.Current != "" && !IsHexColor(e.Colors.Stroke.Current) {
				return false
			}
		}
		return true
	case TypeSystemIcon:
		return cfg.IconValue != ""
	default:
		return true
	}
}

// Value implements driver.Valuer so configs persist as JSON columns.
func (c ColorConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON columns.
func (c *ColorConfig) Scan(value interface{}) error {
	if value == nil {
		*c = ColorConfig{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("visual: cannot scan %T into ColorConfig", value)
	}
}
