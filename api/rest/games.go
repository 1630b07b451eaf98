package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoapunto/yoapunto-server/model"
	"gorm.io/gorm"
)

// GameHandler handles game CRUD REST endpoints.
type GameHandler struct {
	db *gorm.DB
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(db *gorm.DB) *GameHandler {
	return &GameHandler{db: db}
}

type createGameRequest struct {
	Name                      string `json:"name" binding:"required,min=1,max=100"`
	Description               string `json:"description" binding:"max=500"`
	GameComposition           string `json:"game_composition" binding:"required,oneof=player team player_or_team"`
	MinNumberOfTeams          *int   `json:"min_number_of_teams" binding:"omitempty,gte=1"`
	MaxNumberOfTeams          *int   `json:"max_number_of_teams" binding:"omitempty,gte=1"`
	MinNumberOfPlayers        int    `json:"min_number_of_players" binding:"required,gte=1"`
	MaxNumberOfPlayers        *int   `json:"max_number_of_players" binding:"omitempty,gte=1"`
	MinNumberOfPlayersPerTeam *int   `json:"min_number_of_players_per_teams" binding:"omitempty,gte=1"`
	MaxNumberOfPlayersPerTeam *int   `json:"max_number_of_players_per_teams" binding:"omitempty,gte=1"`
	Thumbnail                 string `json:"thumbnail"`
}

// checkLimits enforces max >= min for every pair where both ends are set.
func checkLimits(minTeams, maxTeams *int, minPlayers int, maxPlayers, minPerTeam, maxPerTeam *int) error {
	if minTeams != nil && maxTeams != nil && *maxTeams < *minTeams {
		return fmt.Errorf("max_number_of_teams must be >= min_number_of_teams")
	}
	if maxPlayers != nil && *maxPlayers < minPlayers {
		return fmt.Errorf("max_number_of_players must be >= min_number_of_players")
	}
	if minPerTeam != nil && maxPerTeam != nil && *maxPerTeam < *minPerTeam {
		return fmt.Errorf("max_number_of_players_per_teams must be >= min_number_of_players_per_teams")
	}
	return nil
}

// Create handles POST /api/v1/games.
func (h *GameHandler) Create(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := checkLimits(req.MinNumberOfTeams, req.MaxNumberOfTeams, req.MinNumberOfPlayers,
		req.MaxNumberOfPlayers, req.MinNumberOfPlayersPerTeam, req.MaxNumberOfPlayersPerTeam); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game := model.Game{
		Name:                      req.Name,
		Description:               req.Description,
		GameComposition:           req.GameComposition,
		MinNumberOfTeams:          req.MinNumberOfTeams,
		MaxNumberOfTeams:          req.MaxNumberOfTeams,
		MinNumberOfPlayers:        req.MinNumberOfPlayers,
		MaxNumberOfPlayers:        req.MaxNumberOfPlayers,
		MinNumberOfPlayersPerTeam: req.MinNumberOfPlayersPerTeam,
		MaxNumberOfPlayersPerTeam: req.MaxNumberOfPlayersPerTeam,
		Thumbnail:                 req.Thumbnail,
		Active:                    true,
	}
	if err := h.db.Create(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, game)
}

// List handles GET /api/v1/games with skip/limit pagination.
func (h *GameHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	games := []model.Game{}
	if err := h.db.Where("active = ?", true).
		Order("id").Offset(skip).Limit(limit).
		Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, games)
}

// Detail handles GET /api/v1/games/:id.
func (h *GameHandler) Detail(c *gin.Context) {
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var game model.Game
	if err := h.db.Where("id = ? AND active = ?", gameID, true).First(&game).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, game)
}

type updateGameRequest struct {
	Name                      *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description               *string `json:"description" binding:"omitempty,max=500"`
	GameComposition           *string `json:"game_composition" binding:"omitempty,oneof=player team player_or_team"`
	MinNumberOfTeams          *int    `json:"min_number_of_teams" binding:"omitempty,gte=1"`
	MaxNumberOfTeams          *int    `json:"max_number_of_teams" binding:"omitempty,gte=1"`
	MinNumberOfPlayers        *int    `json:"min_number_of_players" binding:"omitempty,gte=1"`
	MaxNumberOfPlayers        *int    `json:"max_number_of_players" binding:"omitempty,gte=1"`
	MinNumberOfPlayersPerTeam *int    `json:"min_number_of_players_per_teams" binding:"omitempty,gte=1"`
	MaxNumberOfPlayersPerTeam *int    `json:"max_number_of_players_per_teams" binding:"omitempty,gte=1"`
	Thumbnail                 *string `json:"thumbnail"`
	Active                    *bool   `json:"active"`
}

// Update handles PUT /api/v1/games/:id with partial updates. Limit pairs are
// re-validated against the merged result so an update can never leave a game
// with max < min.
func (h *GameHandler) Update(c *gin.Context) {
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var game model.Game
	if err := h.db.Where("id = ? AND active = ?", gameID, true).First(&game).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	merged := game
	updates := map[string]interface{}{}
	if req.Name != nil {
		merged.Name = *req.Name
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		merged.Description = *req.Description
		updates["description"] = *req.Description
	}
	if req.GameComposition != nil {
		merged.GameComposition = *req.GameComposition
		updates["game_composition"] = *req.GameComposition
	}
	if req.MinNumberOfTeams != nil {
		merged.MinNumberOfTeams = req.MinNumberOfTeams
		updates["min_number_of_teams"] = *req.MinNumberOfTeams
	}
	if req.MaxNumberOfTeams != nil {
		merged.MaxNumberOfTeams = req.MaxNumberOfTeams
		updates["max_number_of_teams"] = *req.MaxNumberOfTeams
	}
	if req.MinNumberOfPlayers != nil {
		merged.MinNumberOfPlayers = *req.MinNumberOfPlayers
		updates["min_number_of_players"] = *req.MinNumberOfPlayers
	}
	if req.MaxNumberOfPlayers != nil {
		merged.MaxNumberOfPlayers = req.MaxNumberOfPlayers
		updates["max_number_of_players"] = *req.MaxNumberOfPlayers
	}
	if req.MinNumberOfPlayersPerTeam != nil {
		merged.MinNumberOfPlayersPerTeam = req.MinNumberOfPlayersPerTeam
		updates["min_number_of_players_per_teams"] = *req.MinNumberOfPlayersPerTeam
	}
	if req.MaxNumberOfPlayersPerTeam != nil {
		merged.MaxNumberOfPlayersPerTeam = req.MaxNumberOfPlayersPerTeam
		updates["max_number_of_players_per_teams"] = *req.MaxNumberOfPlayersPerTeam
	}
	if req.Thumbnail != nil {
		merged.Thumbnail = *req.Thumbnail
		updates["thumbnail"] = *req.Thumbnail
	}
	if req.Active != nil {
		merged.Active = *req.Active
		updates["active"] = *req.Active
	}

	if err := checkLimits(merged.MinNumberOfTeams, merged.MaxNumberOfTeams, merged.MinNumberOfPlayers,
		merged.MaxNumberOfPlayers, merged.MinNumberOfPlayersPerTeam, merged.MaxNumberOfPlayersPerTeam); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(updates) > 0 {
		if err := h.db.Model(&game).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}
	c.JSON(http.StatusOK, game)
}

// Delete handles DELETE /api/v1/games/:id (soft delete).
func (h *GameHandler) Delete(c *gin.Context) {
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	res := h.db.Model(&model.Game{}).
		Where("id = ? AND active = ?", gameID, true).
		Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game deactivated"})
}
