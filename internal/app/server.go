// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helpdesk-service/internal/config"
	"helpdesk-service/internal/db"
	authHandler "helpdesk-service/internal/handlers/auth"
	wsHandler "helpdesk-service/internal/handlers/websocket"
	"helpdesk-service/internal/middleware"
	"helpdesk-service/internal/pkg/jwt"
	"helpdesk-service/internal/pkg/session"
	"helpdesk-service/internal/repository/postgres"
	authUsecase "helpdesk-service/internal/service/auth"
	"helpdesk-service/internal/websocket"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)

	// ----- Redis-backed session state -----
	blacklist := session.NewBlacklist(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- WebSocket Hub -----
	// The hub needs the auth service to authenticate connections and the
	// auth service needs the hub to push session events; break the loop by
	// wiring the validator in after construction.
	hub := websocket.NewHub(nil, logger)

	// ----- Service -----
	authService := authUsecase.NewAuthService(
		userRepo,
		tokenRepo,
		blacklist,
		rateLimiter,
		hub,
		jwtManager,
		s.cfg.RefreshTTL,
		logger,
	)
	hub.SetValidator(authService)

	go hub.Run(ctx)

	// ----- Handlers -----
	cookies := authHandler.CookieConfig{
		Domain: s.cfg.CookieDomain,
		Secure: s.cfg.CookieSecure,
		MaxAge: int(s.cfg.RefreshTTL.Seconds()),
	}
	authHandlerInst := authHandler.NewAuthHandler(authService, cookies, logger)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigin),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		AuthHandler:    authHandlerInst,
		WSHandler:      wsHandlerInst,
		AuthMiddleware: authMiddleware,
	})

	// ----- Start HTTP -----
	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}
