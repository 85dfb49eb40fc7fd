package models

import "time"

// Notification types emitted by the badge core.
const (
	NotificationTypeBadgeReceived = "BADGE_RECEIVED"
	NotificationTypeBadgeRevoked  = "BADGE_REVOKED"
)

// Notification is a persisted message for a user. The award workflow writes
// one inside its transaction; realtime fan-out happens after commit and is
// fire-and-forget.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Type       string    `gorm:"not null" json:"type"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	LinkURL    string    `json:"link_url"`
	SourceID   *uint     `json:"source_id,omitempty"`
	SourceType string    `json:"source_type,omitempty"`
	ActorID    *uint     `json:"actor_id,omitempty"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}
