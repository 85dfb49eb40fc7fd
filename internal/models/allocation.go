package models

import "time"

// UserBadgeAllocation is the scarcity ledger: how many awards of a tier the
// user has left to give. Rows are lazily created with the tier default on
// first read; Remaining only ever changes through the award transaction's
// conditional decrement.
type UserBadgeAllocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_allocations_user_tier" json:"user_id"`
	Tier      BadgeTier `gorm:"not null;uniqueIndex:idx_allocations_user_tier;type:varchar(16)" json:"tier"`
	Remaining int       `gorm:"not null;default:0" json:"remaining"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
