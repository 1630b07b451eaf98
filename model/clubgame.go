package model

import "time"

// ClubGame links a club to a game it plays.
// The composite primary key guarantees at most one row per (club, game) pair.
type ClubGame struct {
	ClubID    int64     `gorm:"primaryKey;index:idx_club_game" json:"club_id"`
	GameID    int64     `gorm:"primaryKey;index:idx_game_club" json:"game_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
