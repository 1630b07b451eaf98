package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoapunto/yoapunto-server/model"
	"gorm.io/gorm"
)

// ClubHandler handles club CRUD REST endpoints.
type ClubHandler struct {
	db *gorm.DB
}

// NewClubHandler creates a new ClubHandler.
func NewClubHandler(db *gorm.DB) *ClubHandler {
	return &ClubHandler{db: db}
}

type createClubRequest struct {
	Nickname     string `json:"nickname" binding:"required,min=1,max=50"`
	Creator      string `json:"creator" binding:"required,min=1,max=50"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Create handles POST /api/v1/clubs.
func (h *ClubHandler) Create(c *gin.Context) {
	var req createClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	club := model.Club{
		Nickname:     req.Nickname,
		Creator:      req.Creator,
		ThumbnailURL: req.ThumbnailURL,
		Active:       true,
	}
	if err := h.db.Create(&club).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, club)
}

// List handles GET /api/v1/clubs with skip/limit pagination.
func (h *ClubHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	clubs := []model.Club{}
	if err := h.db.Where("active = ?", true).
		Order("id").Offset(skip).Limit(limit).
		Find(&clubs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, clubs)
}

// Detail handles GET /api/v1/clubs/:id.
func (h *ClubHandler) Detail(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var club model.Club
	if err := h.db.Where("id = ? AND active = ?", clubID, true).First(&club).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "club not found"})
		return
	}
	c.JSON(http.StatusOK, club)
}

type updateClubRequest struct {
	Nickname     *string `json:"nickname" binding:"omitempty,min=1,max=50"`
	Creator      *string `json:"creator" binding:"omitempty,min=1,max=50"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Active       *bool   `json:"active"`
}

// Update handles PUT /api/v1/clubs/:id with partial updates.
func (h *ClubHandler) Update(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var club model.Club
	if err := h.db.Where("id = ? AND active = ?", clubID, true).First(&club).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "club not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Nickname != nil {
		updates["nickname"] = *req.Nickname
	}
	if req.Creator != nil {
		updates["creator"] = *req.Creator
	}
	if req.ThumbnailURL != nil {
		updates["thumbnail_url"] = *req.ThumbnailURL
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := h.db.Model(&club).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}
	c.JSON(http.StatusOK, club)
}

// Delete handles DELETE /api/v1/clubs/:id (soft delete).
func (h *ClubHandler) Delete(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	res := h.db.Model(&model.Club{}).
		Where("id = ? AND active = ?", clubID, true).
		Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "club not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "club deactivated"})
}

// pagination reads skip/limit query params with the API defaults.
func pagination(c *gin.Context) (int, int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}
	return skip, limit
}
