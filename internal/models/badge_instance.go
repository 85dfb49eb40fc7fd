package models

import (
	"time"

	"viaguild/internal/visual"
)

// AwardStatus is the lifecycle state of an awarded badge.
type AwardStatus string

const (
	AwardStatusPending  AwardStatus = "PENDING"
	AwardStatusAccepted AwardStatus = "ACCEPTED"
	AwardStatusRejected AwardStatus = "REJECTED"
)

// BadgeInstance is one concrete awarded badge. Every override field is
// nullable; nil means "inherit the template value".
type BadgeInstance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TemplateID uint          `gorm:"not null;index" json:"template_id"`
	Template   BadgeTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`

	GiverType    EntityType `gorm:"not null" json:"giver_type"`
	GiverID      uint       `gorm:"not null;index" json:"giver_id"`
	ReceiverType EntityType `gorm:"not null" json:"receiver_type"`
	ReceiverID   uint       `gorm:"not null;index" json:"receiver_id"`

	AwardStatus AwardStatus `gorm:"not null;default:'PENDING'" json:"award_status"`
	APIVisible  bool        `gorm:"default:false" json:"api_visible"`
	AssignedAt  time.Time   `json:"assigned_at"`
	RevokedAt   *time.Time  `gorm:"index" json:"revoked_at,omitempty"`

	OverrideBadgeName          *string     `json:"override_badge_name,omitempty"`
	OverrideSubtitle           *string     `json:"override_subtitle,omitempty"`
	OverrideDisplayDescription *string     `json:"override_display_description,omitempty"`
	OverrideOuterShape         *OuterShape `json:"override_outer_shape,omitempty"`

	OverrideBorderConfig     *visual.ColorConfig `gorm:"type:json" json:"override_border_config,omitempty"`
	OverrideBackgroundConfig *visual.ColorConfig `gorm:"type:json" json:"override_background_config,omitempty"`
	OverrideForegroundConfig *visual.ColorConfig `gorm:"type:json" json:"override_foreground_config,omitempty"`

	// Legacy scalar overrides mirroring the pre-config representation.
	OverrideBorderColor     *string `json:"override_border_color,omitempty"`
	OverrideBackgroundType  *string `json:"override_background_type,omitempty"`
	OverrideBackgroundValue *string `json:"override_background_value,omitempty"`
	OverrideForegroundType  *string `json:"override_foreground_type,omitempty"`
	OverrideForegroundValue *string `json:"override_foreground_value,omitempty"`
	OverrideForegroundColor *string `json:"override_foreground_color,omitempty"`

	MeasureValue              *float64 `json:"measure_value,omitempty"`
	OverrideMeasureBest       *float64 `json:"override_measure_best,omitempty"`
	OverrideMeasureWorst      *float64 `json:"override_measure_worst,omitempty"`
	OverrideMeasureBestLabel  *string  `json:"override_measure_best_label,omitempty"`
	OverrideMeasureWorstLabel *string  `json:"override_measure_worst_label,omitempty"`

	MetadataValues []BadgeMetadataValue `gorm:"foreignKey:BadgeInstanceID" json:"metadata_values,omitempty"`
}

// Revoked reports whether the instance has been soft-deleted.
func (b *BadgeInstance) Revoked() bool {
	return b.RevokedAt != nil
}

// BadgeMetadataValue is one key/value data point on an instance, matching a
// MetadataFieldDefinition on the template by DataKey.
type BadgeMetadataValue struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	BadgeInstanceID uint   `gorm:"not null;index" json:"badge_instance_id"`
	DataKey         string `gorm:"not null" json:"data_key"`
	DataValue       string `json:"data_value"`
}

// MetadataItem is one resolved metadata entry on display output. Fields with
// no corresponding instance value are dropped, not rendered empty.
type MetadataItem struct {
	Key          string `json:"key"`
	Label        string `json:"label,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
	Suffix       string `json:"suffix,omitempty"`
	Value        string `json:"value"`
	DisplayOrder int    `json:"display_order"`
}

// DisplayProps is the authoritative resolved appearance of an instance:
// overrides merged over template defaults, colors extracted into
// legacy-compatible scalars, and the tier border rule applied last.
type DisplayProps struct {
	InstanceID   uint        `json:"instance_id"`
	TemplateID   uint        `json:"template_id"`
	TemplateSlug string      `json:"template_slug"`
	AssignedAt   time.Time   `json:"assigned_at"`
	AwardStatus  AwardStatus `json:"award_status"`

	Name        string     `json:"name"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Description string     `json:"description,omitempty"`
	Shape       OuterShape `json:"shape"`
	Tier        *BadgeTier `json:"tier,omitempty"`

	BorderConfig     *visual.ColorConfig `json:"border_config,omitempty"`
	BackgroundConfig *visual.ColorConfig `json:"background_config,omitempty"`
	ForegroundConfig *visual.ColorConfig `json:"foreground_config,omitempty"`

	BorderColor     string `json:"border_color"`
	ForegroundColor string `json:"foreground_color"`

	BackgroundStyle visual.StyleProps `json:"background_style"`
	BorderStyle     visual.StyleProps `json:"border_style"`

	MeasureValue          *float64 `json:"measure_value,omitempty"`
	MeasureLabel          string   `json:"measure_label,omitempty"`
	MeasureBest           *float64 `json:"measure_best,omitempty"`
	MeasureWorst          *float64 `json:"measure_worst,omitempty"`
	MeasureBestLabel      string   `json:"measure_best_label,omitempty"`
	MeasureWorstLabel     string   `json:"measure_worst_label,omitempty"`
	HigherIsBetter        bool     `json:"higher_is_better"`
	MeasureIsNormalizable bool     `json:"measure_is_normalizable"`

	Metadata []MetadataItem `json:"metadata,omitempty"`
}
