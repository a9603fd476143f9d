package app

import (
	"context"
	"fmt"

	"github.com/hustlehub/authgate/auth"
	"github.com/hustlehub/authgate/config"
	"github.com/hustlehub/authgate/handlers"
	"github.com/hustlehub/authgate/identity"
	"github.com/hustlehub/authgate/middleware"
	"github.com/hustlehub/authgate/repositories"
	"github.com/hustlehub/authgate/repositories/postgres"
	"github.com/hustlehub/authgate/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection. The identity
// client and the database pool are created once and shared by all requests.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Profiles repositories.ProfileRepository

	// Identity provider
	Identity      *identity.GoTrueClient
	TokenVerifier auth.TokenVerifier

	// Auth core
	Authenticator  *auth.Authenticator
	Authorizer     *auth.Authorizer
	AuthMiddleware *middleware.AuthMiddleware

	// Services and handlers
	Accounts       *services.AccountService
	AccountHandler *handlers.AccountHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := factory.GetDB().HealthCheck(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps := NewDependenciesWithFactory(cfg, factory, logger)
	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesWithFactory wires everything above an already open database
func NewDependenciesWithFactory(cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) *Dependencies {
	d := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	d.initRepositories()
	d.initIdentity()
	d.initAuth()
	d.initServices()

	return d
}

func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()
	d.Profiles = repos.Profiles
	d.Logger.Info("repositories initialized")
}

// initIdentity creates the process-wide provider client and picks the token
// verifier according to AUTH_VERIFY_MODE
func (d *Dependencies) initIdentity() {
	idCfg := d.Config.Identity
	d.Identity = identity.NewGoTrueClient(idCfg, d.Logger.Named("identity"))

	switch idCfg.VerifyMode {
	case config.VerifyModeJWT:
		d.TokenVerifier = identity.NewJWTVerifier(identity.JWTVerifierConfig{
			Secret:      idCfg.JWTSecret,
			JWKSURL:     idCfg.JWKSURL,
			Issuer:      idCfg.JWTIssuer,
			Audience:    idCfg.JWTAudience,
			HTTPTimeout: idCfg.Timeout,
		}, d.Logger.Named("jwt"))
		d.Logger.Info("verifying tokens locally",
			zap.Bool("hs256", idCfg.JWTSecret != ""),
			zap.Bool("jwks", idCfg.JWKSURL != ""))
	default:
		d.TokenVerifier = d.Identity
		d.Logger.Info("verifying tokens with identity provider", zap.String("url", idCfg.URL))
	}
}

func (d *Dependencies) initAuth() {
	d.Authenticator = auth.NewAuthenticator(d.TokenVerifier, d.Config.Identity.Timeout, d.Logger)
	d.Authorizer = auth.NewAuthorizer(d.Profiles, d.Config.Database.QueryTimeout, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Authenticator, d.Authorizer, d.Logger)
}

func (d *Dependencies) initServices() {
	d.Accounts = services.NewAccountService(
		d.Identity,
		d.Profiles,
		d.Config.Identity.ResetRedirectURL,
		d.Config.Database.QueryTimeout,
		d.Logger,
	)
	d.AccountHandler = handlers.NewAccountHandler(d.Accounts, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
