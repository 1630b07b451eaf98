package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/yoapunto/yoapunto-server/api/rest"
	"github.com/yoapunto/yoapunto-server/audit"
	"github.com/yoapunto/yoapunto-server/auth"
	"github.com/yoapunto/yoapunto-server/cache"
	"github.com/yoapunto/yoapunto-server/clubgame"
	"github.com/yoapunto/yoapunto-server/config"
	dbadapter "github.com/yoapunto/yoapunto-server/db"
	mw "github.com/yoapunto/yoapunto-server/middleware"
	"github.com/yoapunto/yoapunto-server/model"
	"github.com/yoapunto/yoapunto-server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		log.Fatal("security.jwt_secret must be set")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Services ----
	authSvc := auth.New(db, c, cfg.Security, logger)
	clubGameSvc := clubgame.New(db, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("auth_token_purge", time.Hour, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := authSvc.PurgeExpiredTokens(ctx)
		if err != nil {
			logger.Error("auth token purge failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("purged auth tokens", zap.Int64("count", n))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(authSvc, auditSvc, cfg.Security)
	accountH := apirest.NewAccountHandler(db, authSvc, auditSvc)
	clubH := apirest.NewClubHandler(db)
	gameH := apirest.NewGameHandler(db)
	clubGameH := apirest.NewClubGameHandler(clubGameSvc, auditSvc)

	requireAuth := mw.Auth(cfg.Security, db)

	api := r.Group("/api/v1")
	{
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
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
