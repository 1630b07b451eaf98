package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoapunto/yoapunto-server/audit"
	"github.com/yoapunto/yoapunto-server/auth"
	mw "github.com/yoapunto/yoapunto-server/middleware"
	"github.com/yoapunto/yoapunto-server/model"
	"gorm.io/gorm"
)

// AccountHandler handles account CRUD REST endpoints. Password hashing and
// verification are delegated to the auth service.
type AccountHandler struct {
	db       *gorm.DB
	authSvc  *auth.Service
	auditSvc *audit.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(db *gorm.DB, authSvc *auth.Service, auditSvc *audit.Service) *AccountHandler {
	return &AccountHandler{db: db, authSvc: authSvc, auditSvc: auditSvc}
}

type createAccountRequest struct {
	EmailAddress string `json:"email_address" binding:"required,email"`
	FirstName    string `json:"first_name" binding:"required,min=1,max=100"`
	LastName     string `json:"last_name" binding:"required,min=1,max=100"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
	ClubID       *int64 `json:"club_id"`
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ClubID != nil {
		var club model.Club
		if err := h.db.Where("id = ? AND active = ?", *req.ClubID, true).First(&club).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "club not found"})
			return
		}
	}

	digest, err := h.authSvc.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	acc := model.Account{
		EmailAddress:   req.EmailAddress,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PasswordDigest: digest,
		ClubID:         req.ClubID,
		Active:         true,
	}
	if err := h.db.Create(&acc).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "email address already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, acc)
}

// List handles GET /api/v1/accounts with skip/limit pagination.
func (h *AccountHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	accounts := []model.Account{}
	if err := h.db.Where("active = ?", true).
		Order("id").Offset(skip).Limit(limit).
		Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// Detail handles GET /api/v1/accounts/:id.
func (h *AccountHandler) Detail(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var acc model.Account
	if err := h.db.Where("id = ? AND active = ?", accountID, true).First(&acc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, acc)
}

// ListByClub handles GET /api/v1/accounts/club/:club_id.
func (h *AccountHandler) ListByClub(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Param("club_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var club model.Club
	if err := h.db.Where("id = ? AND active = ?", clubID, true).First(&club).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "club not found"})
		return
	}

	accounts := []model.Account{}
	if err := h.db.Where("club_id = ? AND active = ?", clubID, true).
		Order("id").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

type updateAccountRequest struct {
	EmailAddress *string `json:"email_address" binding:"omitempty,email"`
	FirstName    *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName     *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	ClubID       *int64  `json:"club_id"`
}

// Update handles PUT /api/v1/accounts/:id with partial profile updates.
// Password changes go through UpdatePassword.
func (h *AccountHandler) Update(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var acc model.Account
	if err := h.db.Where("id = ? AND active = ?", accountID, true).First(&acc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.EmailAddress != nil {
		updates["email_address"] = *req.EmailAddress
	}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.ClubID != nil {
		var club model.Club
		if err := h.db.Where("id = ? AND active = ?", *req.ClubID, true).First(&club).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "club not found"})
			return
		}
		updates["club_id"] = *req.ClubID
	}
	if len(updates) > 0 {
		if err := h.db.Model(&acc).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "email address already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}
	c.JSON(http.StatusOK, acc)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// UpdatePassword handles PUT /api/v1/accounts/:id/password.
func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.authSvc.ChangePassword(c.Request.Context(), accountID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		h.auditSvc.Log(audit.Entry{
			TraceID:   mw.GetTraceID(c),
			AccountID: &accountID,
			Action:    "account.password_changed",
			IP:        c.ClientIP(),
		})
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}

// Delete handles DELETE /api/v1/accounts/:id (soft delete).
func (h *AccountHandler) Delete(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	res := h.db.Model(&model.Account{}).
		Where("id = ? AND active = ?", accountID, true).
		Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	h.auditSvc.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		Action:    "account.deactivated",
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"message": "account deactivated"})
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
