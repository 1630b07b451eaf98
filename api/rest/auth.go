package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoapunto/yoapunto-server/audit"
	"github.com/yoapunto/yoapunto-server/auth"
	"github.com/yoapunto/yoapunto-server/config"
	mw "github.com/yoapunto/yoapunto-server/middleware"
)

// AuthHandler handles authentication REST endpoints.
type AuthHandler struct {
	svc      *auth.Service
	auditSvc *audit.Service
	sec      config.SecurityConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service, auditSvc *audit.Service, sec config.SecurityConfig) *AuthHandler {
	return &AuthHandler{svc: svc, auditSvc: auditSvc, sec: sec}
}

type loginRequest struct {
	EmailAddress string `json:"email_address" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.svc.Authenticate(c.Request.Context(), req.EmailAddress, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.auditSvc.Log(audit.Entry{
				TraceID: mw.GetTraceID(c),
				Action:  "auth.login_failed",
				IP:      c.ClientIP(),
			})
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.auditSvc.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		Action:  "auth.login",
		IP:      c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
		"expires_in":    int(h.sec.AccessTTL.Seconds()),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	access, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": access,
		"token_type":   "bearer",
		"expires_in":   int(h.sec.AccessTTL.Seconds()),
	})
}

// Logout handles POST /api/v1/auth/logout. The refresh token is denylisted
// for its remaining lifetime; the response does not reveal whether the token
// was valid.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_ = h.svc.Revoke(c.Request.Context(), req.RefreshToken)
	c.Status(http.StatusNoContent)
}

type passwordResetRequest struct {
	EmailAddress string `json:"email_address" binding:"required,email"`
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset/request.
// Responds 200 with the same body whether or not the email exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.svc.RequestPasswordReset(c.Request.Context(), req.EmailAddress); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.auditSvc.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		Action:  "auth.password_reset_requested",
		IP:      c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"message": "if the email address is registered, a reset token has been issued"})
}

type passwordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// ConfirmPasswordReset handles POST /api/v1/auth/password-reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req passwordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.auditSvc.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		Action:  "auth.password_reset_confirmed",
		IP:      c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// RequestEmailVerification handles POST /api/v1/auth/verify-email/request.
// Requires authentication; issues a verification token for the caller.
func (h *AuthHandler) RequestEmailVerification(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	if _, err := h.svc.RequestEmailVerification(c.Request.Context(), accountID); err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification token issued"})
}

type verifyEmailConfirm struct {
	Token string `json:"token" binding:"required"`
}

// ConfirmEmailVerification handles POST /api/v1/auth/verify-email/confirm.
func (h *AuthHandler) ConfirmEmailVerification(c *gin.Context) {
	var req verifyEmailConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ConfirmEmailVerification(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}
