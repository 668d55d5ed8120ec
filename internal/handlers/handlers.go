package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"graphichelper/internal/config"
	"graphichelper/internal/middleware"
	"graphichelper/internal/queue"
	"graphichelper/internal/repository"
	"graphichelper/internal/service"
	"graphichelper/internal/storage"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	auth       *service.AuthService
	operations *service.OperationService
	db         *pgxpool.Pool
	cache      *redis.Client
	users      *repository.UserRepository
	sessions   *repository.SessionRepository
	records    *repository.RecordRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	temp *storage.TempStore,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	authService := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	uploadService := service.NewUploadService(temp, store, log)
	producer := queue.NewProducer(cache, cfg.Redis.Stream)
	operationService := service.NewOperationService(
		recordRepo,
		uploadService,
		producer,
		cfg.Security.RemoteCallBudget,
		log,
	)

	return HandlerSet{
		log:        log,
		cfg:        cfg,
		auth:       authService,
		operations: operationService,
		db:         db,
		cache:      cache,
		users:      userRepo,
		sessions:   sessionRepo,
		records:    recordRepo,
	}
}

// Sessions exposes the session repository for the housekeeping scheduler.
func (h HandlerSet) Sessions() *repository.SessionRepository {
	return h.sessions
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)

		authed := v1.Group("")
		authed.Use(middleware.Auth(h.cfg, h.users, h.sessions))

		authed.POST("/auth/logout", h.Logout)
		authed.GET("/session", h.CurrentView)
		authed.POST("/session/navigate", h.Navigate)
		authed.POST("/operations", h.RunOperation)
		authed.GET("/operations/history", h.History)

		admin := v1.Group("/admin")
		admin.Use(
			middleware.Auth(h.cfg, h.users, h.sessions),
			middleware.Signature(h.cfg, h.cache),
			middleware.RequireAdmin(),
		)
		admin.GET("/users", h.AdminListUsers)
		admin.GET("/records", h.AdminListRecords)
	}
}
