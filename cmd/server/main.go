package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"academics/docs"
	"academics/internal/auth"
	"academics/internal/cache"
	"academics/internal/config"
	"academics/internal/db"
	"academics/internal/handler"
	"academics/internal/repository"
	"academics/internal/router"
	"academics/internal/service"
)

// @title Academic Records API
// @version 1.0
// @description Role-scoped academic records API: authentication, users, catalogue, inscriptions, grades and statistics.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Logger.Infof("starting with %s", cfg)

	gormDB, err := db.Open(cfg)
	if err != nil {
		e.Logger.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		e.Logger.Warn("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			e.Logger.Warnf("reset: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		e.Logger.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		e.Logger.Warnf("redis unavailable, serving without cache: %v", err)
	}
	cancelPing()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB, cfg.StoreTimeout)
	departementRepo := repository.NewDepartementRepository(gormDB, cfg.StoreTimeout)
	filiereRepo := repository.NewFiliereRepository(gormDB, cfg.StoreTimeout)
	moduleRepo := repository.NewModuleRepository(gormDB, cfg.StoreTimeout)
	inscriptionRepo := repository.NewInscriptionRepository(gormDB, cfg.StoreTimeout)
	noteRepo := repository.NewNoteRepository(gormDB, cfg.StoreTimeout)
	statsRepo := repository.NewStatsRepository(gormDB, cfg.StoreTimeout)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, auth.WithTTLs(cfg.AccessTokenTTL, cfg.RefreshTokenTTL))

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient, cfg.CacheTTL)
	authService := service.NewAuthService(userRepo, jwtService, userService)
	catalogueService := service.NewCatalogueService(departementRepo, filiereRepo, moduleRepo, userRepo, cacheClient)
	inscriptionService := service.NewInscriptionService(inscriptionRepo, filiereRepo, userRepo, cacheClient)
	noteService := service.NewNoteService(noteRepo, moduleRepo, inscriptionRepo)
	statsService := service.NewStatsService(statsRepo, cacheClient)

	// Register routes
	router.Register(e, jwtService, router.Handlers{
		Auth:        handler.NewAuthHandler(authService, userService),
		Users:       handler.NewUserHandler(userService),
		Catalogue:   handler.NewCatalogueHandler(catalogueService),
		Inscription: handler.NewInscriptionHandler(inscriptionService),
		Notes:       handler.NewNoteHandler(noteService),
		Stats:       handler.NewStatsHandler(statsService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	e.Logger.Infof("Swagger documentation available at: %s", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("shutdown: %v", err)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}

func logLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
