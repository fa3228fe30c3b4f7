package service

import (
	"context"
	"testing"

	"santafe-store/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fewerRuns() *gopter.TestParameters {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 20
	return params
}

func registerUser(t *testing.T, svc UserService, email, password string) *domain.User {
	t.Helper()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Maria",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

// Feature: storefront, Property 1: Registration creates hashed passwords
func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(fewerRuns())

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, name string) bool {
			userRepo := newMockUserRepository()
			service := NewUserService(userRepo)
			ctx := context.Background()

			user, err := service.Register(ctx, RegisterInput{Name: name, Email: email, Password: password})
			if err != nil {
				t.Logf("FAIL: registration failed: %v", err)
				return false
			}

			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			storedUser, err := userRepo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}

			cost, err := bcrypt.Cost([]byte(storedUser.PasswordHash))
			if err != nil || cost != BcryptCost {
				t.Logf("FAIL: unexpected bcrypt cost %d: %v", cost, err)
				return false
			}

			if storedUser.IsAdmin {
				t.Logf("FAIL: new accounts must not be admins")
				return false
			}

			return bcrypt.CompareHashAndPassword([]byte(storedUser.PasswordHash), []byte(password)) == nil
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 2: Duplicate registration is a conflict
func TestProperty_DuplicateRegistrationConflicts(t *testing.T) {
	properties := gopter.NewProperties(fewerRuns())

	properties.Property("registering an existing email fails with Conflict and keeps the first account", prop.ForAll(
		func(email string) bool {
			userRepo := newMockUserRepository()
			service := NewUserService(userRepo)
			ctx := context.Background()

			first, err := service.Register(ctx, RegisterInput{Name: "First", Email: email, Password: "first-password"})
			if err != nil {
				return false
			}

			_, err = service.Register(ctx, RegisterInput{Name: "Second", Email: email, Password: "second-password"})
			if KindOf(err) != KindConflict {
				t.Logf("FAIL: expected Conflict, got %v", err)
				return false
			}

			stored, err := userRepo.FindByEmail(ctx, email)
			return err == nil && stored.ID == first.ID && len(userRepo.users) == 1
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegister_RequiresFields(t *testing.T) {
	service := NewUserService(newMockUserRepository())

	for _, input := range []RegisterInput{
		{Email: "a@b.com", Password: "secret"},
		{Name: "A", Password: "secret"},
		{Name: "A", Email: "a@b.com"},
		{Name: "   ", Email: "a@b.com", Password: "secret"},
	} {
		_, err := service.Register(context.Background(), input)
		assert.Equal(t, KindInvalidInput, KindOf(err))
	}
}

func TestRegister_StoresOptionalContactFields(t *testing.T) {
	userRepo := newMockUserRepository()
	service := NewUserService(userRepo)
	phone, address := "+55 11 99999-0000", "Rua A, 1"

	user, err := service.Register(context.Background(), RegisterInput{
		Name:     "  Ana  ",
		Email:    "ana@example.com",
		Password: "secret",
		Phone:    &phone,
		Address:  &address,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ana", user.Name)
	require.NotNil(t, user.Phone)
	assert.Equal(t, phone, *user.Phone)
	require.NotNil(t, user.Address)
	assert.Equal(t, address, *user.Address)
}

// Feature: storefront, Property 3: Login failures are indistinguishable
func TestProperty_LoginFailuresAreUniform(t *testing.T) {
	properties := gopter.NewProperties(fewerRuns())

	properties.Property("unknown email and wrong password yield the same error", prop.ForAll(
		func(email string, password string) bool {
			service := NewUserService(newMockUserRepository())
			ctx := context.Background()

			if _, err := service.Register(ctx, RegisterInput{Name: "U", Email: email, Password: password}); err != nil {
				return false
			}

			_, unknownErr := service.Login(ctx, "other-"+email, password)
			_, wrongErr := service.Login(ctx, email, password+"x")

			if KindOf(unknownErr) != KindUnauthenticated || KindOf(wrongErr) != KindUnauthenticated {
				t.Logf("FAIL: expected Unauthenticated, got %v / %v", unknownErr, wrongErr)
				return false
			}

			if MessageOf(unknownErr) != MessageOf(wrongErr) || MessageOf(wrongErr) != "invalid email or password" {
				t.Logf("FAIL: messages differ: %q / %q", MessageOf(unknownErr), MessageOf(wrongErr))
				return false
			}

			user, err := service.Login(ctx, email, password)
			return err == nil && user.Email == email
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLogin_RequiresFields(t *testing.T) {
	service := NewUserService(newMockUserRepository())

	_, err := service.Login(context.Background(), "", "secret")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = service.Login(context.Background(), "a@b.com", "")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestGetByID_Missing(t *testing.T) {
	service := NewUserService(newMockUserRepository())

	_, err := service.GetByID(context.Background(), uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdate_Authorization(t *testing.T) {
	userRepo := newMockUserRepository()
	service := NewUserService(userRepo)
	ctx := context.Background()

	owner := registerUser(t, service, "owner@example.com", "owner-pass")
	other := registerUser(t, service, "other@example.com", "other-pass")

	input := UpdateUserInput{Name: "Renamed", Email: "owner@example.com"}

	_, err := service.Update(ctx, domain.Identity{UserID: other.ID}, owner.ID, input)
	assert.Equal(t, KindForbidden, KindOf(err))

	admin := domain.Identity{UserID: uuid.New(), IsAdmin: true}
	updated, err := service.Update(ctx, admin, owner.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = service.Update(ctx, admin, uuid.New(), input)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdate_RequiresNameAndEmail(t *testing.T) {
	service := NewUserService(newMockUserRepository())
	user := registerUser(t, service, "x@example.com", "password")

	_, err := service.Update(context.Background(), domain.Identity{UserID: user.ID}, user.ID, UpdateUserInput{Email: "x@example.com"})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestUpdate_DuplicateEmailConflicts(t *testing.T) {
	service := NewUserService(newMockUserRepository())
	registerUser(t, service, "taken@example.com", "password")
	user := registerUser(t, service, "mine@example.com", "password")

	_, err := service.Update(context.Background(), domain.Identity{UserID: user.ID}, user.ID, UpdateUserInput{
		Name:  "Me",
		Email: "taken@example.com",
	})
	assert.Equal(t, KindConflict, KindOf(err))
}

// Feature: storefront, Property 4: Password change guards keep the stored hash
func TestUpdate_PasswordChangeGuards(t *testing.T) {
	userRepo := newMockUserRepository()
	service := NewUserService(userRepo)
	ctx := context.Background()

	user := registerUser(t, service, "guard@example.com", "original-pass")
	caller := domain.Identity{UserID: user.ID}
	originalHash := userRepo.users[user.ID].PasswordHash

	_, err := service.Update(ctx, caller, user.ID, UpdateUserInput{
		Name:        "Guard",
		Email:       "guard@example.com",
		NewPassword: "new-pass",
	})
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Equal(t, originalHash, userRepo.users[user.ID].PasswordHash)

	_, err = service.Update(ctx, caller, user.ID, UpdateUserInput{
		Name:            "Guard",
		Email:           "guard@example.com",
		CurrentPassword: "wrong-pass",
		NewPassword:     "new-pass",
	})
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	assert.Equal(t, originalHash, userRepo.users[user.ID].PasswordHash)

	_, err = service.Update(ctx, caller, user.ID, UpdateUserInput{
		Name:            "Guard",
		Email:           "guard@example.com",
		CurrentPassword: "original-pass",
		NewPassword:     "new-pass",
	})
	require.NoError(t, err)
	assert.NotEqual(t, originalHash, userRepo.users[user.ID].PasswordHash)

	_, err = service.Login(ctx, "guard@example.com", "original-pass")
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	_, err = service.Login(ctx, "guard@example.com", "new-pass")
	assert.NoError(t, err)
}

func TestUpdate_WithoutNewPasswordKeepsHash(t *testing.T) {
	userRepo := newMockUserRepository()
	service := NewUserService(userRepo)
	user := registerUser(t, service, "keep@example.com", "keep-pass")
	originalHash := userRepo.users[user.ID].PasswordHash

	address := "Av. Paulista, 1000"
	updated, err := service.Update(context.Background(), domain.Identity{UserID: user.ID}, user.ID, UpdateUserInput{
		Name:            "Keep",
		Email:           "keep@example.com",
		Address:         &address,
		CurrentPassword: "ignored without a new password",
	})
	require.NoError(t, err)

	assert.Equal(t, originalHash, userRepo.users[user.ID].PasswordHash)
	require.NotNil(t, updated.Address)
	assert.Equal(t, address, *updated.Address)
}
