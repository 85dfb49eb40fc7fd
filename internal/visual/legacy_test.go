package visual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLegacyColor(t *testing.T) {
	cfg := NewSimpleColorConfig("#FF0000")
	assert.Same(t, cfg, MergeLegacyColor("#00FF00", cfg))

	synthesized := MergeLegacyColor("#00FF00", nil)
	require.NotNil(t, synthesized)
	assert.Equal(t, TypeSimpleColor, synthesized.Type)
	assert.Equal(t, "#00FF00", synthesized.Color)

	assert.Nil(t, MergeLegacyColor("", nil))
}

func TestConvertLegacyBackground(t *testing.T) {
	solid := ConvertLegacyBackground(LegacyBackgroundSolidColor, "#112233")
	require.NotNil(t, solid)
	assert.Equal(t, TypeSimpleColor, solid.Type)
	assert.Equal(t, "#112233", solid.Color)

	hosted := ConvertLegacyBackground(LegacyBackgroundHostedImage, "https://cdn.example.com/bg.png")
	require.NotNil(t, hosted)
	assert.Equal(t, TypeHostedAsset, hosted.Type)
	assert.Equal(t, "https://cdn.example.com/bg.png", hosted.URL)

	assert.Nil(t, ConvertLegacyBackground(LegacyBackgroundSolidColor, ""))
	assert.Nil(t, ConvertLegacyBackground("GRADIENT", "#112233"))
}

func TestConvertLegacyForeground(t *testing.T) {
	icon := ConvertLegacyForeground(LegacyForegroundSystemIcon, "Shield", "#FFD700")
	require.NotNil(t, icon)
	assert.Equal(t, TypeSystemIcon, icon.Type)
	assert.Equal(t, "Shield", icon.IconValue)
	assert.Equal(t, "#FFD700", icon.Color)

	uploaded := ConvertLegacyForeground(LegacyForegroundUploadedIcon, "https://cdn.example.com/i.png", "")
	require.NotNil(t, uploaded)
	assert.Equal(t, TypeHostedAsset, uploaded.Type)

	text := ConvertLegacyForeground(LegacyForegroundText, "MVP", "#FF00FF")
	require.NotNil(t, text)
	assert.Equal(t, TypeSimpleColor, text.Type)
	assert.Equal(t, "#FF00FF", text.Color)

	assert.Nil(t, ConvertLegacyForeground(LegacyForegroundSystemIcon, "", "#FFD700"))
	assert.Nil(t, ConvertLegacyForeground(LegacyForegroundText, "MVP", ""))
	assert.Nil(t, ConvertLegacyForeground("EMOJI", "🏆", ""))
}

func TestDeriveLegacyBackground(t *testing.T) {
	bgType, bgValue := DeriveLegacyBackground(NewSimpleColorConfig("#445566"))
	assert.Equal(t, LegacyBackgroundSolidColor, bgType)
	assert.Equal(t, "#445566", bgValue)

	bgType, bgValue = DeriveLegacyBackground(NewHostedAssetConfig("https://x/bg.png"))
	assert.Equal(t, LegacyBackgroundHostedImage, bgType)
	assert.Equal(t, "https://x/bg.png", bgValue)

	bgType, bgValue = DeriveLegacyBackground(nil)
	assert.Empty(t, bgType)
	assert.Empty(t, bgValue)

	bgType, bgValue = DeriveLegacyBackground(NewSystemIconConfig("Star", ""))
	assert.Empty(t, bgType)
	assert.Empty(t, bgValue)
}

func TestDeriveLegacyForeground(t *testing.T) {
	fgType, fgValue, fgColor := DeriveLegacyForeground(NewSystemIconConfig("Crown", "#FFD700"))
	assert.Equal(t, LegacyForegroundSystemIcon, fgType)
	assert.Equal(t, "Crown", fgValue)
	assert.Equal(t, "#FFD700", fgColor)

	fgType, fgValue, fgColor = DeriveLegacyForeground(NewHostedAssetConfig("https://x/i.png"))
	assert.Equal(t, LegacyForegroundUploadedIcon, fgType)
	assert.Equal(t, "https://x/i.png", fgValue)
	assert.Empty(t, fgColor)

	svg := NewCustomizableSVGConfig(ElementMappings{
		{Selector: "path.a", Colors: ElementColors{Fill: &ColorEndpoint{Current: "#0000FF"}}},
	}, "https://x/i.svg", 0)
	fgType, fgValue, fgColor = DeriveLegacyForeground(svg)
	assert.Equal(t, LegacyForegroundUploadedIcon, fgType)
	assert.Equal(t, "https://x/i.svg", fgValue)
	assert.Equal(t, "#0000FF", fgColor)

	fgType, fgValue, fgColor = DeriveLegacyForeground(NewSimpleColorConfig("#123123"))
	assert.Equal(t, LegacyForegroundText, fgType)
	assert.Empty(t, fgValue)
	assert.Equal(t, "#123123", fgColor)
}

func TestLegacyRoundTrip(t *testing.T) {
	// Deriving then converting must land back on an equivalent config.
	original := NewHostedAssetConfig("https://cdn.example.com/bg.png")
	bgType, bgValue := DeriveLegacyBackground(original)
	back := ConvertLegacyBackground(bgType, bgValue)
	require.NotNil(t, back)
	assert.Equal(t, original.Type, back.Type)
	assert.Equal(t, original.URL, back.URL)

	fg := NewSystemIconConfig("Gem", "#AA00AA")
	fgType, fgValue, fgColor := DeriveLegacyForeground(fg)
	fgBack := ConvertLegacyForeground(fgType, fgValue, fgColor)
	require.NotNil(t, fgBack)
	assert.Equal(t, fg.IconValue, fgBack.IconValue)
	assert.Equal(t, fg.Color, fgBack.Color)
}
