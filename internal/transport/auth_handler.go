package transport

import (
	"context"
	"net/http"

	"santafe-store/internal/domain"
	"santafe-store/internal/middleware"
	"santafe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionAuthority binds and ends sessions for the auth endpoints
type SessionAuthority interface {
	middleware.IdentityResolver
	Bind(ctx context.Context, user *domain.User) error
	Destroy(ctx context.Context) error
}

// Guards are the route middlewares handlers attach to their routes
type Guards struct {
	Authenticated func(http.Handler) http.Handler
	Admin         func(http.Handler) http.Handler
	RateLimit     func(http.Handler) http.Handler
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler handles registration, login, logout and the current user
type AuthHandler struct {
	userService service.UserService
	sessions    SessionAuthority
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService service.UserService, sessions SessionAuthority, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(guards.RateLimit)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Post("/logout", h.Logout)

		r.With(guards.Authenticated).Get("/me", h.Me)
	})
}

// Register creates an account and signs the new user in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	if err := h.sessions.Bind(r.Context(), user); err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("User registered successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, map[string]interface{}{
		"user": newUserProfile(user),
	})
}

// Login verifies credentials and binds the session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	if err := h.sessions.Bind(r.Context(), user); err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"user": newUserProfile(user),
	})
}

// Logout ends the session; logging out twice is fine
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "logged out successfully")
}

// Me returns the profile of the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), identity(r).UserID)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"user": newUserProfile(user),
	})
}
