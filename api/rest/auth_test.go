package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoapunto/yoapunto-server/api/rest"
	"github.com/yoapunto/yoapunto-server/audit"
	"github.com/yoapunto/yoapunto-server/auth"
	"github.com/yoapunto/yoapunto-server/clubgame"
	"github.com/yoapunto/yoapunto-server/config"
	mw "github.com/yoapunto/yoapunto-server/middleware"
	"github.com/yoapunto/yoapunto-server/model"
	"github.com/yoapunto/yoapunto-server/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	authSvc  *auth.Service
	auditSvc *audit.Service
}

func testSec() config.SecurityConfig {
	return config.SecurityConfig{
		JWTSecret:      "test-secret",
		AccessTTL:      30 * time.Minute,
		RefreshTTL:     72 * time.Hour,
		ResetTokenTTL:  30 * time.Minute,
		VerifyTokenTTL: 24 * time.Hour,
		BcryptCost:     4,
	}
}

// newTestEnv wires the full route table the way main does, against an
// in-memory DB and local cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()
	sec := testSec()

	authSvc := auth.New(db, c, sec, logger)
	clubGameSvc := clubgame.New(db, logger)
	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	authH := rest.NewAuthHandler(authSvc, auditSvc, sec)
	accountH := rest.NewAccountHandler(db, authSvc, auditSvc)
	clubH := rest.NewClubHandler(db)
	gameH := rest.NewGameHandler(db)
	clubGameH := rest.NewClubGameHandler(clubGameSvc, auditSvc)

	requireAuth := mw.Auth(sec, db)

	r := gin.New()
	api := r.Group("/api/v1")

	authG := api.Group("/auth")
	authG.POST("/login", authH.Login)
	authG.POST("/refresh", authH.Refresh)
	authG.POST("/logout", authH.Logout)
	authG.POST("/password-reset/request", authH.RequestPasswordReset)
	authG.POST("/password-reset/confirm", authH.ConfirmPasswordReset)
	authG.POST("/verify-email/request", requireAuth, authH.RequestEmailVerification)
	authG.POST("/verify-email/confirm", authH.ConfirmEmailVerification)

	accountsG := api.Group("/accounts")
	accountsG.POST("", accountH.Create)
	accountsG.GET("", requireAuth, accountH.List)
	accountsG.GET("/:id", requireAuth, accountH.Detail)
	accountsG.GET("/club/:club_id", requireAuth, accountH.ListByClub)
	accountsG.PUT("/:id", requireAuth, accountH.Update)
	accountsG.PUT("/:id/password", requireAuth, accountH.UpdatePassword)
	accountsG.DELETE("/:id", requireAuth, accountH.Delete)

	clubsG := api.Group("/clubs")
	clubsG.GET("", clubH.List)
	clubsG.GET("/:id", clubH.Detail)
	clubsG.POST("", requireAuth, clubH.Create)
	clubsG.PUT("/:id", requireAuth, clubH.Update)
	clubsG.DELETE("/:id", requireAuth, clubH.Delete)
	clubsG.GET("/:id/games", clubGameH.List)
	clubsG.GET("/:id/games/:game_id", clubGameH.Detail)
	clubsG.POST("/:id/games/:game_id", requireAuth, clubGameH.Link)
	clubsG.DELETE("/:id/games/:game_id", requireAuth, clubGameH.Unlink)

	gamesG := api.Group("/games")
	gamesG.GET("", gameH.List)
	gamesG.GET("/:id", gameH.Detail)
	gamesG.POST("", requireAuth, gameH.Create)
	gamesG.PUT("/:id", requireAuth, gameH.Update)
	gamesG.DELETE("/:id", requireAuth, gameH.Delete)

	return &testEnv{router: r, db: db, authSvc: authSvc, auditSvc: auditSvc}
}

func (e *testEnv) request(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// createAccount inserts an active account directly and returns it.
func (e *testEnv) createAccount(t *testing.T, email, password string) *model.Account {
	t.Helper()
	digest, err := e.authSvc.HashPassword(password)
	require.NoError(t, err)
	acc := &model.Account{
		EmailAddress:   email,
		FirstName:      "Test",
		LastName:       "User",
		PasswordDigest: digest,
		Active:         true,
	}
	require.NoError(t, e.db.Create(acc).Error)
	return acc
}

// login authenticates and returns the token pair from the HTTP response.
func (e *testEnv) login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	w := e.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email_address": email,
		"password":      password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	return resp["access_token"].(string), resp["refresh_token"].(string)
}

func TestLogin_Success(t *testing.T) {
	e := newTestEnv(t)
	e.createAccount(t, "alice@example.com", "password123")

	w := e.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email_address": "alice@example.com",
		"password":      "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.NotEmpty(t, resp["access_token"])
	assert.NotEmpty(t, resp["refresh_token"])
	assert.Equal(t, "bearer", resp["token_type"])
	assert.Equal(t, float64(1800), resp["expires_in"])
}

func TestLogin_UniformUnauthorized(t *testing.T) {
	e := newTestEnv(t)
	e.createAccount(t, "bob@example.com", "correct-pass")

	w1 := e.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email_address": "bob@example.com",
		"password":      "wrong-pass",
	})
	w2 := e.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email_address": "ghost@example.com",
		"password":      "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w1.Code)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestLogin_MalformedEmail(t *testing.T) {
	e := newTestEnv(t)
	w := e.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email_address": "not-an-email",
		"password":      "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefresh_Success(t *testing.T) {
	e := newTestEnv(t)
	e.createAccount(t, "carol@example.com", "password123")
	_, refresh := e.login(t, "carol@example.com", "password123")

	w := e.request(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.NotEmpty(t, resp["access_token"])
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	e := newTestEnv(t)
	e.createAccount(t, "dave@example.com", "password123")
	access, _ := e.login(t, "dave@example.com", "password123")

	w := e.request(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": access,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	e := newTestEnv(t)
	e.createAccount(t, "eve@example.com", "password123")
	_, refresh := e.login(t, "eve@example.com", "password123")

	w := e.request(http.MethodPost, "/api/v1/auth/logout", map[string]string{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w2 := e.request(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
}

func TestPasswordResetRequest_AlwaysOK(t *testing.T) {
	e := newTestEnv(t)
	e.createAccount(t, "frank@example.com", "password123")

	w1 := e.request(http.MethodPost, "/api/v1/auth/password-reset/request", map[string]string{
		"email_address": "frank@example.com",
	})
	w2 := e.request(http.MethodPost, "/api/v1/auth/password-reset/request", map[string]string{
		"email_address": "ghost@example.com",
	})
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestPasswordResetConfirm_FullFlow(t *testing.T) {
	e := newTestEnv(t)
	e.createAccount(t, "grace@example.com", "old-password")

	// The token is delivered out-of-band; fetch it from the service layer.
	token, err := e.authSvc.RequestPasswordReset(t.Context(), "grace@example.com")
	require.NoError(t, err)

	w := e.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", map[string]string{
		"token":        token,
		"new_password": "new-password1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Token is single-use.
	w2 := e.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", map[string]string{
		"token":        token,
		"new_password": "another-pass2",
	})
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	e.login(t, "grace@example.com", "new-password1")
}

func TestPasswordResetConfirm_ShortPassword(t *testing.T) {
	e := newTestEnv(t)
	w := e.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", map[string]string{
		"token":        "irrelevant",
		"new_password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmailVerification_FullFlow(t *testing.T) {
	e := newTestEnv(t)
	acc := e.createAccount(t, "heidi@example.com", "password123")
	access, _ := e.login(t, "heidi@example.com", "password123")

	w := e.request(http.MethodPost, "/api/v1/auth/verify-email/request", nil,
		"Authorization", "Bearer "+access)
	require.Equal(t, http.StatusOK, w.Code)

	token, err := e.authSvc.RequestEmailVerification(t.Context(), acc.ID)
	require.NoError(t, err)

	w2 := e.request(http.MethodPost, "/api/v1/auth/verify-email/confirm", map[string]string{
		"token": token,
	})
	require.Equal(t, http.StatusOK, w2.Code)

	var reloaded model.Account
	require.NoError(t, e.db.First(&reloaded, acc.ID).Error)
	assert.True(t, reloaded.EmailVerified)
}

func TestVerifyEmailRequest_RequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	w := e.request(http.MethodPost, "/api/v1/auth/verify-email/request", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
