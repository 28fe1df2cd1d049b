package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"carwash/internal/cache"
	"carwash/internal/config"
	"carwash/internal/database"
	"carwash/internal/logger"
	"carwash/internal/model"
	"carwash/internal/repository"
	"carwash/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seed creates the built-in roles and permissions and optionally a first admin account.
func main() {
	os.Exit(run())
}

func run() int {
	adminUser := flag.String("admin-username", "", "create this admin user when it does not exist")
	adminPassword := flag.String("admin-password", "", "password for -admin-username")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Config error: %v", err)
		return 1
	}
	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "carwash-seed")
	if err != nil {
		log.Printf("Logger error: %v", err)
		return 1
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.NewConnection(cfg.Database.DSN(), zlog)
	if err != nil {
		zlog.Error("database connection failed", zap.Error(err))
		return 1
	}

	ctx := context.Background()
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	rolePermRepo := repository.NewRolePermissionRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Same cache as the API so seeding clears the permission sets it holds.
	permCache := cache.ForConfig(ctx, cfg.Redis, cfg.Cache.PermissionTTL, zlog)
	authz := service.NewAuthorizationService(roleRepo, permRepo, rolePermRepo, permCache, zlog)
	roles := service.NewRoleService(roleRepo, permRepo, rolePermRepo, userRepo,
		repository.NewAuditRepository(db), repository.NewTransactionManager(db), authz, zlog)

	report := roles.SeedDefaultRolesAndPermissions(ctx, service.DefaultSeedPlan())

	if *adminUser != "" {
		if err := ensureAdmin(ctx, userRepo, *adminUser, *adminPassword); err != nil {
			zlog.Error("failed to create admin user", zap.Error(err))
			return 1
		}
	}

	if len(report.Errors) > 0 {
		zlog.Error("seeding finished with errors", zap.Int("errors", len(report.Errors)))
		return 1
	}
	return 0
}

func ensureAdmin(ctx context.Context, repo repository.UserRepository, username, password string) error {
	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if len(password) < 6 {
		return errors.New("admin-password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return repo.Create(ctx, &model.User{
		Username:    username,
		Password:    string(hashed),
		DisplayName: username,
		Role:        model.RoleAdmin,
	})
}
