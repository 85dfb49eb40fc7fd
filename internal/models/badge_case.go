package models

import "time"

// BadgeCase is a user's curated public display collection. One case per
// user, lazily created on first access.
type BadgeCase struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Title     string    `json:"title"`
	IsPublic  bool      `gorm:"default:true" json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []BadgeCaseItem `gorm:"foreignKey:BadgeCaseID" json:"items,omitempty"`
}

// BadgeCaseItem places one badge instance in a case. An instance appears in
// at most one case (BadgeInstanceID is globally unique here) and at most once
// within it.
type BadgeCaseItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BadgeCaseID     uint      `gorm:"not null;index" json:"badge_case_id"`
	BadgeInstanceID uint      `gorm:"not null;uniqueIndex" json:"badge_instance_id"`
	DisplayOrder    int       `gorm:"not null;default:0" json:"display_order"`
	AddedAt         time.Time `gorm:"autoCreateTime" json:"added_at"`

	BadgeInstance BadgeInstance `gorm:"foreignKey:BadgeInstanceID" json:"badge_instance,omitempty"`
}
