package visual

// Legacy scalar enum values kept for templates created before the config
// union existed. The derivation functions below are the only place the old
// and new representations meet.
const (
	LegacyBackgroundSolidColor  = "SOLID_COLOR"
	LegacyBackgroundHostedImage = "HOSTED_IMAGE"

	LegacyForegroundText         = "TEXT"
	LegacyForegroundSystemIcon   = "SYSTEM_ICON"
	LegacyForegroundUploadedIcon = "UPLOADED_ICON"
)

// MergeLegacyColor prefers an explicit config; when absent it synthesizes a
// simple-color config from the legacy scalar. Returns nil when neither is
// populated.
func MergeLegacyColor(legacyColor string, cfg *ColorConfig) *ColorConfig {
	if cfg != nil {
		return cfg
	}
	if legacyColor == "" {
		return nil
	}
	return NewSimpleColorConfig(legacyColor)
}

// ConvertLegacyBackground maps a legacy {backgroundType, backgroundValue}
// pair into the config union. Unknown types yield nil.
func ConvertLegacyBackground(bgType, bgValue string) *ColorConfig {
	if bgValue == "" {
		return nil
	}
	switch bgType {
	case LegacyBackgroundSolidColor:
		return NewSimpleColorConfig(bgValue)
	case LegacyBackgroundHostedImage:
		return NewHostedAssetConfig(bgValue)
	}
	return nil
}

// ConvertLegacyForeground maps legacy foreground scalars into the config
// union. TEXT foregrounds only carry a renderable color; the text itself
// stays in the legacy value field.
func ConvertLegacyForeground(fgType, fgValue, fgColor string) *ColorConfig {
	switch fgType {
	case LegacyForegroundSystemIcon:
		if fgValue == "" {
			return nil
		}
		return NewSystemIconConfig(fgValue, fgColor)
	case LegacyForegroundUploadedIcon:
		if fgValue == "" {
			return nil
		}
		return NewHostedAssetConfig(fgValue)
	case LegacyForegroundText:
		if fgColor == "" {
			return nil
		}
		return NewSimpleColorConfig(fgColor)
	}
	return nil
}

// DeriveLegacyBackground produces the legacy scalar pair mirroring a config.
func DeriveLegacyBackground(cfg *ColorConfig) (bgType, bgValue string) {
	if cfg == nil {
		return "", ""
	}
	switch cfg.Type {
	case TypeSimpleColor:
		return LegacyBackgroundSolidColor, cfg.Color
	case TypeHostedAsset:
		return LegacyBackgroundHostedImage, cfg.URL
	}
	return "", ""
}

// DeriveLegacyForeground produces legacy foreground scalars mirroring a
// config. The color is resolved through ExtractColor so svg configs keep a
// legacy-compatible representation.
func DeriveLegacyForeground(cfg *ColorConfig) (fgType, fgValue, fgColor string) {
	if cfg == nil {
		return "", "", ""
	}
	switch cfg.Type {
	case TypeSystemIcon:
		return LegacyForegroundSystemIcon, cfg.IconValue, cfg.Color
	case TypeHostedAsset:
		return LegacyForegroundUploadedIcon, cfg.URL, ""
	case TypeCustomizableSVG, TypeElementPath:
		return LegacyForegroundUploadedIcon, cfg.URL, ExtractColor(cfg, "")
	case TypeSimpleColor:
		return LegacyForegroundText, "", cfg.Color
	}
	return "", "", ""
}
