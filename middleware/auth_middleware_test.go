package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoapunto/yoapunto-server/config"
	"github.com/yoapunto/yoapunto-server/middleware"
	"github.com/yoapunto/yoapunto-server/model"
	"github.com/yoapunto/yoapunto-server/testutil"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func guardedRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sec := config.SecurityConfig{JWTSecret: testSecret, AccessTTL: time.Minute}

	r := gin.New()
	r.GET("/protected", middleware.Auth(sec, db), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": middleware.GetAccountID(c)})
	})
	return r, db
}

func get(r *gin.Engine, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	r, _ := guardedRouter(t)
	w := get(r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "could not validate credentials")
}

func TestAuth_GarbageToken(t *testing.T) {
	r, _ := guardedRouter(t)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Authorization", "Bearer not-a-jwt").Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	r, db := guardedRouter(t)
	acc := &model.Account{EmailAddress: "a@example.com", Active: true}
	require.NoError(t, db.Create(acc).Error)

	token, err := middleware.GenerateToken(acc.ID, middleware.TokenTypeAccess, testSecret, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Authorization", "Bearer "+token).Code)
}

func TestAuth_RefreshTokenRejected(t *testing.T) {
	r, db := guardedRouter(t)
	acc := &model.Account{EmailAddress: "a@example.com", Active: true}
	require.NoError(t, db.Create(acc).Error)

	token, err := middleware.GenerateToken(acc.ID, middleware.TokenTypeRefresh, testSecret, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Authorization", "Bearer "+token).Code)
}

func TestAuth_InactiveAccount(t *testing.T) {
	r, db := guardedRouter(t)
	acc := &model.Account{EmailAddress: "a@example.com", Active: false}
	require.NoError(t, db.Create(acc).Error)

	token, err := middleware.GenerateToken(acc.ID, middleware.TokenTypeAccess, testSecret, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Authorization", "Bearer "+token).Code)
}

func TestAuth_ValidToken(t *testing.T) {
	r, db := guardedRouter(t)
	acc := &model.Account{EmailAddress: "a@example.com", Active: true}
	require.NoError(t, db.Create(acc).Error)

	token, err := middleware.GenerateToken(acc.ID, middleware.TokenTypeAccess, testSecret, time.Minute)
	require.NoError(t, err)

	w := get(r, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "account_id")
}
