package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoapunto/yoapunto-server/audit"
	"github.com/yoapunto/yoapunto-server/clubgame"
	mw "github.com/yoapunto/yoapunto-server/middleware"
)

// ClubGameHandler handles the nested /clubs/:id/games endpoints that manage
// which games a club plays.
type ClubGameHandler struct {
	svc      *clubgame.Service
	auditSvc *audit.Service
}

// NewClubGameHandler creates a new ClubGameHandler.
func NewClubGameHandler(svc *clubgame.Service, auditSvc *audit.Service) *ClubGameHandler {
	return &ClubGameHandler{svc: svc, auditSvc: auditSvc}
}

func clubGameIDs(c *gin.Context) (int64, int64, bool) {
	clubID, err1 := strconv.ParseInt(c.Param("id"), 10, 64)
	gameID, err2 := strconv.ParseInt(c.Param("game_id"), 10, 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, 0, false
	}
	return clubID, gameID, true
}

// List handles GET /api/v1/clubs/:id/games.
func (h *ClubGameHandler) List(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	games, err := h.svc.ListGames(c.Request.Context(), clubID)
	if err != nil {
		if errors.Is(err, clubgame.ErrClubNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "club not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, games)
}

// Detail handles GET /api/v1/clubs/:id/games/:game_id.
func (h *ClubGameHandler) Detail(c *gin.Context) {
	clubID, gameID, ok := clubGameIDs(c)
	if !ok {
		return
	}

	game, err := h.svc.GetGame(c.Request.Context(), clubID, gameID)
	if err != nil {
		switch {
		case errors.Is(err, clubgame.ErrClubNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "club not found"})
		case errors.Is(err, clubgame.ErrNotLinked), errors.Is(err, clubgame.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "game not associated with this club"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, game)
}

// Link handles POST /api/v1/clubs/:id/games/:game_id.
func (h *ClubGameHandler) Link(c *gin.Context) {
	clubID, gameID, ok := clubGameIDs(c)
	if !ok {
		return
	}

	err := h.svc.Link(c.Request.Context(), clubID, gameID)
	switch {
	case errors.Is(err, clubgame.ErrClubNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "club not found"})
	case errors.Is(err, clubgame.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	case errors.Is(err, clubgame.ErrAlreadyLinked):
		c.JSON(http.StatusBadRequest, gin.H{"error": "game already associated with this club"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		accountID := mw.GetAccountID(c)
		h.auditSvc.Log(audit.Entry{
			TraceID:   mw.GetTraceID(c),
			AccountID: &accountID,
			Action:    "club.game_linked",
			Request:   gin.H{"club_id": clubID, "game_id": gameID},
			IP:        c.ClientIP(),
		})
		c.JSON(http.StatusCreated, gin.H{"message": "game added to club"})
	}
}

// Unlink handles DELETE /api/v1/clubs/:id/games/:game_id.
func (h *ClubGameHandler) Unlink(c *gin.Context) {
	clubID, gameID, ok := clubGameIDs(c)
	if !ok {
		return
	}

	err := h.svc.Unlink(c.Request.Context(), clubID, gameID)
	switch {
	case errors.Is(err, clubgame.ErrClubNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "club not found"})
	case errors.Is(err, clubgame.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	case errors.Is(err, clubgame.ErrNotLinked):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not associated with this club"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		accountID := mw.GetAccountID(c)
		h.auditSvc.Log(audit.Entry{
			TraceID:   mw.GetTraceID(c),
			AccountID: &accountID,
			Action:    "club.game_unlinked",
			Request:   gin.H{"club_id": clubID, "game_id": gameID},
			IP:        c.ClientIP(),
		})
		c.JSON(http.StatusOK, gin.H{"message": "game removed from club"})
	}
}
