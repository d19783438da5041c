package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/heritage-routes-api/internal/domain/geocode"
	"github.com/FACorreiaa/heritage-routes-api/internal/domain/heritage"
	"github.com/FACorreiaa/heritage-routes-api/internal/domain/narrative"
	"github.com/FACorreiaa/heritage-routes-api/internal/domain/route"
	"github.com/FACorreiaa/heritage-routes-api/internal/handler"
	"github.com/FACorreiaa/heritage-routes-api/internal/llm"
	"github.com/FACorreiaa/heritage-routes-api/pkg/config"
	"github.com/FACorreiaa/heritage-routes-api/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	HeritageRepo  heritage.Repository
	RouteRepo     route.Repository
	NarrativeRepo narrative.Repository

	// Services
	RouteService     route.Service
	NarrativeService narrative.Service
	GeocodeService   geocode.Service

	// Handlers
	Server *handler.Server
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.HeritageRepo = heritage.NewRepository(d.DB.Pool, d.Logger)
	d.RouteRepo = route.NewRepository(d.DB.Pool, d.Logger)
	d.NarrativeRepo = narrative.NewRepository(d.DB.Pool, d.Logger)

	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	var aiClient llm.ChatClient
	if d.Config.Gemini.APIKey != "" {
		client, err := llm.NewGeminiChatClient(ctx, d.Config.Gemini.APIKey, d.Config.Gemini.Model)
		if err != nil {
			return fmt.Errorf("failed to init gemini client: %w", err)
		}
		aiClient = client
		d.Logger.Info("narrative generator enabled", slog.String("model", aiClient.Model()))
	} else {
		d.Logger.Warn("GEMINI_API_KEY not set, narratives will use the fallback composer")
	}

	if d.Config.Geocoder.APIKey != "" {
		d.GeocodeService = geocode.NewService(d.Config.Geocoder.APIKey, d.Config.Geocoder.Timeout, d.Logger)
		d.Logger.Info("reverse geocoding enabled")
	} else {
		d.Logger.Warn("YANDEX_GEOCODER_API_KEY not set, reverse geocoding is disabled")
	}

	d.RouteService = route.NewService(d.HeritageRepo, d.RouteRepo, d.Config.Route, d.Logger)
	d.NarrativeService = narrative.NewService(d.HeritageRepo, d.NarrativeRepo, aiClient, d.Config.Gemini.Timeout, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.Server = handler.NewServer(d.Logger, d.RouteService, d.NarrativeService, d.GeocodeService, d.DB.Pool)
	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
