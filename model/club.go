package model

import "time"

// Club represents a club that accounts belong to and that plays games.
type Club struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname     string     `gorm:"index;size:50;not null" json:"nickname"`
	Creator      string     `gorm:"size:50;not null" json:"creator"`
	ThumbnailURL string     `json:"thumbnail_url"`
	Active       bool       `gorm:"default:true;not null" json:"active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
