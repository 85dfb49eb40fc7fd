package models

import (
	"time"

	"viaguild/internal/visual"
)

// EntityType identifies the polymorphic owner/giver/receiver kinds.
type EntityType string

const (
	EntityTypeUser  EntityType = "USER"
	EntityTypeGuild EntityType = "GUILD"
)

// BadgeTier is the inherent scarcity tier of a template.
type BadgeTier string

const (
	TierGold   BadgeTier = "GOLD"
	TierSilver BadgeTier = "SILVER"
	TierBronze BadgeTier = "BRONZE"
)

// Fixed tier border colors. Tier identity must be visually unforgeable, so
// these unconditionally replace any customized border color at resolution.
const (
	TierColorGold   = "#FFD700"
	TierColorSilver = "#C0C0C0"
	TierColorBronze = "#CD7F32"
)

// Valid reports whether t is a known tier.
func (t BadgeTier) Valid() bool {
	switch t {
	case TierGold, TierSilver, TierBronze:
		return true
	}
	return false
}

// BorderColor returns the fixed border color for the tier.
func (t BadgeTier) BorderColor() string {
	switch t {
	case TierGold:
		return TierColorGold
	case TierSilver:
		return TierColorSilver
	case TierBronze:
		return TierColorBronze
	}
	return ""
}

// DefaultAllocation returns the lazily-created allocation count for the tier.
func (t BadgeTier) DefaultAllocation() int {
	switch t {
	case TierGold:
		return 5
	case TierSilver:
		return 10
	case TierBronze:
		return 20
	}
	return 0
}

// OuterShape is the badge outline shape.
type OuterShape string

const (
	ShapeCircle  OuterShape = "CIRCLE"
	ShapeSquare  OuterShape = "SQUARE"
	ShapeStar    OuterShape = "STAR"
	ShapeHexagon OuterShape = "HEXAGON"
	ShapeHeart   OuterShape = "HEART"
)

// BadgeTemplate is a reusable badge definition. It carries both the config
// union slots and their legacy scalar mirrors; the mirrors are derived, never
// hand-edited (see internal/visual).
type BadgeTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TemplateSlug     string     `gorm:"not null;uniqueIndex:idx_templates_owner_slug" json:"template_slug"`
	OwnerType        EntityType `gorm:"not null;uniqueIndex:idx_templates_owner_slug" json:"owner_type"`
	OwnerID          uint       `gorm:"not null;uniqueIndex:idx_templates_owner_slug" json:"owner_id"`
	AuthoredByUserID uint       `gorm:"not null" json:"authored_by_user_id"`

	DefaultBadgeName          string     `gorm:"not null" json:"default_badge_name"`
	DefaultSubtitleText       string     `json:"default_subtitle_text"`
	DefaultDisplayDescription string     `json:"default_display_description"`
	DefaultOuterShape         OuterShape `gorm:"default:'CIRCLE'" json:"default_outer_shape"`

	DefaultBorderConfig     *visual.ColorConfig `gorm:"type:json" json:"default_border_config,omitempty"`
	DefaultBackgroundConfig *visual.ColorConfig `gorm:"type:json" json:"default_background_config,omitempty"`
	DefaultForegroundConfig *visual.ColorConfig `gorm:"type:json" json:"default_foreground_config,omitempty"`

	// Legacy scalar mirrors, kept in sync with the config slots.
	DefaultBorderColor     string `json:"default_border_color"`
	DefaultBackgroundType  string `json:"default_background_type"`
	DefaultBackgroundValue string `json:"default_background_value"`
	DefaultForegroundType  string `json:"default_foreground_type"`
	DefaultForegroundValue string `json:"default_foreground_value"`
	DefaultForegroundColor string `json:"default_foreground_color"`

	InherentTier *BadgeTier `gorm:"type:varchar(16)" json:"inherent_tier,omitempty"`

	DefinesMeasure        bool     `gorm:"default:false" json:"defines_measure"`
	MeasureLabel          string   `json:"measure_label"`
	MeasureBest           *float64 `json:"measure_best,omitempty"`
	MeasureWorst          *float64 `json:"measure_worst,omitempty"`
	MeasureIsNormalizable bool     `gorm:"default:false" json:"measure_is_normalizable"`
	HigherIsBetter        bool     `gorm:"default:true" json:"higher_is_better"`
	MeasureBestLabel      string   `json:"measure_best_label"`
	MeasureWorstLabel     string   `json:"measure_worst_label"`

	// Template propagation to already-issued instances is not implemented;
	// this is forced false on every write path.
	IsModifiableByIssuer        bool `gorm:"default:false" json:"is_modifiable_by_issuer"`
	AllowsPushedInstanceUpdates bool `gorm:"default:false" json:"allows_pushed_instance_updates"`

	FieldDefinitions []MetadataFieldDefinition `gorm:"foreignKey:TemplateID" json:"field_definitions,omitempty"`
}

// MetadataFieldDefinition describes one instance-level key/value data slot a
// template exposes.
type MetadataFieldDefinition struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TemplateID   uint   `gorm:"not null;index" json:"template_id"`
	DataKey      string `gorm:"not null" json:"data_key"`
	Label        string `json:"label"`
	Prefix       string `json:"prefix"`
	Suffix       string `json:"suffix"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// FieldDefinition returns the definition for a data key, if the template
// declares one.
func (t *BadgeTemplate) FieldDefinition(dataKey string) (MetadataFieldDefinition, bool) {
	for _, def := range t.FieldDefinitions {
		if def.DataKey == dataKey {
			return def, true
		}
	}
	return MetadataFieldDefinition{}, false
}
