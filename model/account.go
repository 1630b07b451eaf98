package model

import "time"

// Account represents a user account belonging to a club.
// Accounts are soft-deleted by setting Active=false; rows are never removed.
type Account struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmailAddress   string     `gorm:"uniqueIndex;size:255;not null" json:"email_address"`
	FirstName      string     `gorm:"size:100;not null" json:"first_name"`
	LastName       string     `gorm:"size:100;not null" json:"last_name"`
	PasswordDigest string     `gorm:"size:255;not null" json:"-"`
	ClubID         *int64     `gorm:"index" json:"club_id"`
	Active         bool       `gorm:"default:true;not null" json:"active"`
	EmailVerified  bool       `gorm:"default:false;not null" json:"email_verified"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
