package service

import (
	"context"
	"errors"
	"strings"

	"santafe-store/internal/domain"
	"santafe-store/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// RegisterInput carries the fields of a new account
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
	Address  *string
}

// UpdateUserInput replaces a user's profile. NewPassword is optional; when
// set, CurrentPassword must match the stored hash.
type UpdateUserInput struct {
	Name            string
	Email           string
	Phone           *string
	Address         *string
	CurrentPassword string
	NewPassword     string
}

// UserService defines the interface for user business logic
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, caller domain.Identity, targetID uuid.UUID, input UpdateUserInput) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Register creates a new account with a hashed password
func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, invalidInput("name, email and password are required", nil)
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, persistenceFailure(err)
	}
	if existingUser != nil {
		return nil, conflict("email already registered", repository.ErrUserAlreadyExists)
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, persistenceFailure(err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Phone:        input.Phone,
		Address:      input.Address,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, conflict("email already registered", err)
		}
		return nil, persistenceFailure(err)
	}

	return user, nil
}

// Login verifies credentials. Unknown email and wrong password fail identically.
func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalidInput("email and password are required", nil)
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, unauthenticated(ErrInvalidCredentials.Error())
		}
		return nil, persistenceFailure(err)
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, unauthenticated(ErrInvalidCredentials.Error())
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user not found", err)
		}
		return nil, persistenceFailure(err)
	}
	return user, nil
}

// Update replaces the target's profile. A password change re-verifies the
// current password first; the stored hash is untouched on any failure.
func (s *userService) Update(ctx context.Context, caller domain.Identity, targetID uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	if !caller.CanAccess(targetID) {
		return nil, forbidden("access denied")
	}

	user, err := s.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" {
		return nil, invalidInput("name and email are required", nil)
	}

	updated := *user
	updated.Name = input.Name
	updated.Email = input.Email
	updated.Phone = input.Phone
	updated.Address = input.Address

	if input.NewPassword != "" {
		if input.CurrentPassword == "" {
			return nil, invalidInput("current password is required to change the password", nil)
		}

		if err := VerifyPassword(user.PasswordHash, input.CurrentPassword); err != nil {
			return nil, unauthenticated(ErrWrongPassword.Error())
		}

		hashedPassword, err := HashPassword(input.NewPassword)
		if err != nil {
			return nil, persistenceFailure(err)
		}
		updated.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserAlreadyExists):
			return nil, conflict("email already registered", err)
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, notFound("user not found", err)
		default:
			return nil, persistenceFailure(err)
		}
	}

	return &updated, nil
}

// HashPassword hashes a password using bcrypt with cost factor 10
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
