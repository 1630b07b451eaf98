package clubgame

import (
	"context"
	"errors"
	"strings"

	"github.com/yoapunto/yoapunto-server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrClubNotFound means the club id does not resolve to an active club.
var ErrClubNotFound = errors.New("clubgame: club not found")

// ErrGameNotFound means the game id does not resolve to an active game.
var ErrGameNotFound = errors.New("clubgame: game not found")

// ErrAlreadyLinked means the (club, game) pair already exists.
var ErrAlreadyLinked = errors.New("clubgame: game already associated with club")

// ErrNotLinked means no association exists for the (club, game) pair.
var ErrNotLinked = errors.New("clubgame: game not associated with club")

// Service maintains the many-to-many relation between clubs and games.
// Existence and uniqueness are checked here; the composite primary key on
// club_games backs up the uniqueness invariant under concurrent writes.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a clubgame Service.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

func (s *Service) activeClub(tx *gorm.DB, clubID int64) error {
	var club model.Club
	if err := tx.Where("id = ? AND active = ?", clubID, true).First(&club).Error; err != nil {
		return ErrClubNotFound
	}
	return nil
}

func (s *Service) activeGame(tx *gorm.DB, gameID int64) (*model.Game, error) {
	var game model.Game
	if err := tx.Where("id = ? AND active = ?", gameID, true).First(&game).Error; err != nil {
		return nil, ErrGameNotFound
	}
	return &game, nil
}

// Link records that a club plays a game. Both must exist and be active.
// Linking an already-linked pair is a conflict, not a no-op.
func (s *Service) Link(ctx context.Context, clubID, gameID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.activeClub(tx, clubID); err != nil {
			return err
		}
		if _, err := s.activeGame(tx, gameID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.ClubGame{}).
			Where("club_id = ? AND game_id = ?", clubID, gameID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyLinked
		}

		if err := tx.Create(&model.ClubGame{ClubID: clubID, GameID: gameID}).Error; err != nil {
			// A concurrent Link for the same pair hits the composite PK.
			if isUniqueViolation(err) {
				return ErrAlreadyLinked
			}
			return err
		}
		return nil
	})
}

// Unlink removes the association between a club and a game. The game itself
// is untouched.
func (s *Service) Unlink(ctx context.Context, clubID, gameID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.activeClub(tx, clubID); err != nil {
			return err
		}
		if _, err := s.activeGame(tx, gameID); err != nil {
			return err
		}

		res := tx.Where("club_id = ? AND game_id = ?", clubID, gameID).
			Delete(&model.ClubGame{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotLinked
		}
		return nil
	})
}

// ListGames returns the active games a club plays, ordered by game id.
func (s *Service) ListGames(ctx context.Context, clubID int64) ([]model.Game, error) {
	tx := s.db.WithContext(ctx)
	if err := s.activeClub(tx, clubID); err != nil {
		return nil, err
	}

	games := []model.Game{}
	err := tx.Model(&model.Game{}).
		Joins("JOIN club_games ON club_games.game_id = games.id").
		Where("club_games.club_id = ? AND games.active = ?", clubID, true).
		Order("games.id").
		Find(&games).Error
	return games, err
}

// GetGame returns a specific active game if the club plays it.
func (s *Service) GetGame(ctx context.Context, clubID, gameID int64) (*model.Game, error) {
	exists, err := s.Exists(ctx, clubID, gameID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotLinked
	}
	return s.activeGame(s.db.WithContext(ctx), gameID)
}

// Exists reports whether the club plays the given game and the game is active.
func (s *Service) Exists(ctx context.Context, clubID, gameID int64) (bool, error) {
	tx := s.db.WithContext(ctx)
	if err := s.activeClub(tx, clubID); err != nil {
		return false, err
	}

	var count int64
	err := tx.Model(&model.ClubGame{}).
		Joins("JOIN games ON games.id = club_games.game_id").
		Where("club_games.club_id = ? AND club_games.game_id = ? AND games.active = ?", clubID, gameID, true).
		Count(&count).Error
	return count > 0, err
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
