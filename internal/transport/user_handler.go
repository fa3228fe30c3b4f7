package transport

import (
	"net/http"

	"santafe-store/internal/middleware"
	"santafe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UpdateUserRequest represents the profile update payload. NewPassword is
// optional and requires CurrentPassword.
type UpdateUserRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// UserHandler handles HTTP requests for user profiles
type UserHandler struct {
	userService service.UserService
	auth        *AuthHandler
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, auth *AuthHandler, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		auth:        auth,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(guards.Authenticated)
		r.Get("/me", h.auth.Me)
		r.Put("/{id}", h.Update)
	})
}

// Update replaces a user's profile, optionally changing the password
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	targetID, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Profile update validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	caller := identity(r)
	user, err := h.userService.Update(r.Context(), caller, targetID, service.UpdateUserInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("User updated",
		zap.String("user_id", user.ID.String()),
		zap.String("by", caller.UserID.String()),
		zap.Bool("password_changed", req.NewPassword != ""),
	)
	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"user": newUserProfile(user),
	})
}
