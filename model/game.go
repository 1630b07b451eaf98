package model

import "time"

// Game composition kinds.
const (
	CompositionPlayer       = "player"
	CompositionTeam         = "team"
	CompositionPlayerOrTeam = "player_or_team"
)

// Game defines the rules and participant limits for an activity clubs can play.
// Team and per-team limits are nullable for games that do not use teams.
type Game struct {
	ID                        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                      string     `gorm:"index;size:100;not null" json:"name"`
	Description               string     `gorm:"size:500" json:"description"`
	GameComposition           string     `gorm:"size:50;not null" json:"game_composition"`
	MinNumberOfTeams          *int       `json:"min_number_of_teams"`
	MaxNumberOfTeams          *int       `json:"max_number_of_teams"`
	MinNumberOfPlayers        int        `gorm:"not null" json:"min_number_of_players"`
	MaxNumberOfPlayers        *int       `json:"max_number_of_players"`
	MinNumberOfPlayersPerTeam *int       `gorm:"column:min_number_of_players_per_teams" json:"min_number_of_players_per_teams"`
	MaxNumberOfPlayersPerTeam *int       `gorm:"column:max_number_of_players_per_teams" json:"max_number_of_players_per_teams"`
	Thumbnail                 string     `json:"thumbnail"`
	Active                    bool       `gorm:"default:true;not null" json:"active"`
	CreatedAt                 time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 *time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
