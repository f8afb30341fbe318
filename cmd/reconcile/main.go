// Command reconcile converges the bootstrap administrator account to the
// ADMIN_* configuration without starting the API server.
package main

import (
	"context"
	"time"

	"learnhub/internal/config"
	"learnhub/internal/db"
	"learnhub/internal/logging"
	"learnhub/internal/repository"
	"learnhub/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Configure(cfg.LogLevel, cfg.JSONLogging)
	log := logging.Log()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Connect(cfg.MySQLDSNs, cfg.DBConnectAttempts)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Info("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reconciler := service.NewAdminReconciler(repository.NewUserRepository(gormDB))
	outcome, err := reconciler.Reconcile(ctx, service.AdminTarget{
		Email:    cfg.Admin.Email,
		Name:     cfg.Admin.Name,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		log.Fatalf("Failed to reconcile admin account: %v", err)
	}
	log.WithField("outcome", outcome).Infof("Admin account %s", cfg.Admin.Email)
}
