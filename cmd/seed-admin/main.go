package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"santafe-store/internal/config"
	"santafe-store/internal/database"
	"santafe-store/internal/domain"
	"santafe-store/internal/logger"
	"santafe-store/internal/repository"
	"santafe-store/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Admin seeding failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	admin := cfg.Admin
	email := strings.TrimSpace(admin.Email)
	if email == "" || admin.Password == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	hash, err := service.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	dbService, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB(), log); err != nil {
		return err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         admin.Name,
		Email:        email,
		PasswordHash: hash,
	}
	if admin.Phone != "" {
		user.Phone = &admin.Phone
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.NewUserRepository(dbService.DB()).UpsertAdmin(ctx, user); err != nil {
		return err
	}

	log.Info("Admin user ready", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	return nil
}
