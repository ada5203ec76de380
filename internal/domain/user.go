package domain

import "time"

// User is the persistent account record. SessionVersion is the per-user
// counter that gates token freshness: a token is only valid while the
// version embedded in its claims matches this column.
type User struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username       string    `gorm:"size:64;not null" json:"username"`
	PasswordHash   string    `gorm:"size:128;not null" json:"-"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"is_admin"`
	SessionVersion int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
