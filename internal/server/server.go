package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"santafe-store/internal/config"
	"santafe-store/internal/database"
	custommiddleware "santafe-store/internal/middleware"
	"santafe-store/internal/repository"
	"santafe-store/internal/service"
	"santafe-store/internal/session"
	"santafe-store/internal/storage"
	"santafe-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          database.Service
	redis       *redis.Client
	stopCleanup func()
}

// NewServer wires repositories, services and handlers onto a chi router
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) (*Server, error) {
	store, stopCleanup, err := session.NewStore(cfg.Session, db.DB(), redisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	sessions := session.NewManager(store, cfg.Session, cfg.Server.IsProduction())
	sessions.SetErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		custommiddleware.RespondWithServiceError(w, r, err, logger)
	})

	images, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		stopCleanup()
		return nil, fmt.Errorf("failed to create image store: %w", err)
	}

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.ClientURL, !cfg.Server.IsProduction()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(sessions.LoadAndSave)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB())
	categoryRepo := repository.NewCategoryRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	orderRepo := repository.NewOrderRepository(db.DB())

	// Initialize services
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, images, cfg.Storage.MaxUploadBytes, logger)
	orderService := service.NewOrderService(orderRepo)

	guards := transport.Guards{
		Authenticated: custommiddleware.RequireAuthenticated(sessions, logger),
		Admin:         custommiddleware.RequireAdmin(sessions, logger),
		RateLimit: custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit:auth",
		}, logger),
	}

	// Register routes
	authHandler := transport.NewAuthHandler(userService, sessions, logger)
	authHandler.RegisterRoutes(router, guards)
	transport.NewUserHandler(userService, authHandler, logger).RegisterRoutes(router, guards)
	transport.NewCatalogHandler(catalogService, cfg.Storage.MaxUploadBytes, logger).RegisterRoutes(router, guards)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router, guards)
	transport.NewHealthHandler(db).RegisterRoutes(router)

	// Disk uploads are served by the API; MinIO objects are public URLs
	if disk, ok := images.(*storage.DiskImageStore); ok {
		router.Handle(storage.URLPrefix+"*", disk.Handler())
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redis:       redisClient,
		stopCleanup: stopCleanup,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.stopCleanup != nil {
		s.stopCleanup()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
