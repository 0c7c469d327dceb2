package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dwellist/dwellist/internal/config"
	"github.com/dwellist/dwellist/internal/db"
	"github.com/dwellist/dwellist/internal/identity"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/dwellist/dwellist/internal/service"
	"github.com/dwellist/dwellist/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	AuthService      *service.AuthService
	UserService      *service.UserService
	ListingService   *service.ListingService
	ImageService     *service.ImageService
	IdentityVerifier identity.Verifier
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	listingRepository := repository.NewListingRepository(database)
	imageRepository := repository.NewImageRepository(database)

	// Storage
	imageStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(
		userRepository,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.SessionExpiry,
	)
	imageService := service.NewImageService(imageRepository, imageStorage)
	listingService := service.NewListingService(listingRepository)
	userService := service.NewUserService(userRepository, listingRepository, imageService, authService)

	// Bearer token verifier for the external identity provider
	verifier, err := newIdentityVerifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity verifier: %v", err)
	}

	return &App{
		Cfg:              cfg,
		DB:               database,
		AuthService:      authService,
		UserService:      userService,
		ListingService:   listingService,
		ImageService:     imageService,
		IdentityVerifier: verifier,
	}, nil
}

// newIdentityVerifier picks the bearer token verifier: provider-key
// verification when a project is configured, the unverified decoder
// only when explicitly allowed (config.Load refuses that combination
// in production).
func newIdentityVerifier(cfg *config.Config) (identity.Verifier, error) {
	if cfg.IdentityProjectID != "" {
		return identity.NewVerifier(context.Background(), cfg.IdentityProjectID)
	}
	if cfg.IdentityAllowUnverified {
		return identity.NewUnverifiedDecoder(), nil
	}
	slog.Info("no identity provider configured, bearer token sign-in disabled")
	return nil, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
