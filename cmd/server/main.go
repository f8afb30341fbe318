package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"learnhub/docs"
	"learnhub/internal/auth"
	"learnhub/internal/cache"
	"learnhub/internal/config"
	"learnhub/internal/db"
	"learnhub/internal/handler"
	"learnhub/internal/logging"
	"learnhub/internal/qr"
	"learnhub/internal/repository"
	"learnhub/internal/router"
	"learnhub/internal/service"
)

const (
	version          = "1.0.0"
	reconcileTimeout = 30 * time.Second
)

// @title LearnHub Back Office API
// @version 1.0
// @description Certificate issuance and public verification, course catalog and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logging.Configure(cfg.LogLevel, cfg.JSONLogging)
	log := logging.Log()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Connect(cfg.MySQLDSNs, cfg.DBConnectAttempts)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.DropAll(gormDB); err != nil {
			log.Warnf("drop tables: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	courseRepo := repository.NewCourseRepository(gormDB)
	certificateRepo := repository.NewCertificateRepository(gormDB)

	// The bootstrap admin must match configuration before any request is served.
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	outcome, err := service.NewAdminReconciler(userRepo).Reconcile(ctx, service.AdminTarget{
		Email:    cfg.Admin.Email,
		Name:     cfg.Admin.Name,
		Password: cfg.Admin.Password,
	})
	cancel()
	if err != nil {
		log.Fatalf("admin reconciliation: %v", err)
	}
	log.WithField("outcome", outcome).Info("bootstrap admin reconciled")

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo)
	courseService := service.NewCourseService(courseRepo, cacheClient)
	certificateService := service.NewCertificateService(
		certificateRepo,
		userRepo,
		courseRepo,
		qr.NewPNGRenderer(),
		cfg.PublicBaseURL,
	)

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}
	healthHandler, err := handler.NewHealthHandler(version, sqlDB.PingContext, cacheClient.Ping)
	if err != nil {
		log.Fatalf("health check init: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		User:        handler.NewUserHandler(userService),
		Course:      handler.NewCourseHandler(courseService),
		Certificate: handler.NewCertificateHandler(certificateService),
		Health:      healthHandler,
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Infof("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost))

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// swaggerURL builds the docs address. host may already include a scheme.
func swaggerURL(host string) string {
	if host == "" {
		host = "localhost:5000"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
