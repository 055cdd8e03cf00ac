// Package main provides the main entry point for the LovePage admin API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/novacoeur/lovepage-api/app/handlers"
	"github.com/novacoeur/lovepage-api/app/middleware"
	"github.com/novacoeur/lovepage-api/app/router"
	"github.com/novacoeur/lovepage-api/app/scheduler"
	"github.com/novacoeur/lovepage-api/app/services"
	businessflow "github.com/novacoeur/lovepage-api/business_flow"
	"github.com/novacoeur/lovepage-api/config"
	"github.com/novacoeur/lovepage-api/repository"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.Config
	stopFuncs []func()
}

func main() {
	log.Println("Starting LovePage API...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	app, cleanup, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to stdout, a rotated file, or both
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "file":
		log.SetOutput(fileWriter)
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	}
}

// initializeRepository builds the storage backend selected by configuration
func initializeRepository(cfg *config.Config) (repository.LovePageRepository, func(), error) {
	alloc := repository.NewPageIDAllocator()

	switch cfg.Storage.Backend {
	case config.BackendFile:
		repo, err := repository.NewFileLovePageRepository(cfg.Storage.PagesFile, alloc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open pages file: %w", err)
		}
		log.Printf("File storage ready at %s", cfg.Storage.PagesFile)
		return repo, func() {}, nil

	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.EffectiveMongoURI()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
		}

		repo := repository.NewMongoLovePageRepository(client, cfg.Mongo.Database, alloc)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to ensure mongodb indexes: %w", err)
		}

		cleanup := func() {
			disconnectCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Printf("Error disconnecting from mongodb: %v", err)
			}
		}
		log.Printf("MongoDB storage ready (database=%s)", cfg.Mongo.Database)
		return repo, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

// initializeApplication wires repositories, services, flows, and handlers
func initializeApplication(cfg *config.Config) (*Application, func(), error) {
	repo, cleanup, err := initializeRepository(cfg)
	if err != nil {
		return nil, nil, err
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	qrService := services.NewQRCodeService(cfg.Storage.QRDir)

	lovePageFlow := businessflow.NewLovePageFlow(repo, qrService, cfg.Deployment.Domain)
	adminAuthFlow := businessflow.NewAdminAuthFlow(cfg.Admin, tokenService)

	lovePageHandler := handlers.NewLovePageHandler(lovePageFlow)
	qrCodeHandler := handlers.NewQRCodeHandler(qrService)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminAuthFlow)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	app := &Application{
		router: router.NewFiberRouter(
			cfg,
			repo,
			lovePageHandler,
			qrCodeHandler,
			adminAuthHandler,
			authMiddleware,
		),
		config: cfg,
	}

	if cfg.Scheduler.ArtifactBackfillEnabled {
		reconciler := scheduler.NewArtifactReconciler(
			repo,
			qrService,
			cfg.Deployment.Domain,
			cfg.Scheduler.ArtifactBackfillInterval,
			log.Default(),
		)
		stop := reconciler.Start(context.Background())
		app.stopFuncs = append(app.stopFuncs, stop)
		log.Printf("QR artifact backfill enabled (interval=%s)", cfg.Scheduler.ArtifactBackfillInterval)
	}

	return app, cleanup, nil
}
