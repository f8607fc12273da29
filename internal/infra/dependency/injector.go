// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ethergyx/backend/config"
	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/application/usecase/auth"
	"github.com/ethergyx/backend/internal/application/usecase/dashboard"
	"github.com/ethergyx/backend/internal/infra/cache"
	"github.com/ethergyx/backend/internal/infra/metrics"
	"github.com/ethergyx/backend/internal/infra/server/router"
	"github.com/ethergyx/backend/internal/integration/adapters"
	"github.com/ethergyx/backend/internal/integration/email"
	"github.com/ethergyx/backend/internal/integration/email/templates"
	"github.com/ethergyx/backend/internal/integration/entrypoint/controller"
	"github.com/ethergyx/backend/internal/integration/entrypoint/middleware"
	"github.com/ethergyx/backend/internal/integration/persistence"
	"github.com/ethergyx/backend/internal/integration/persistence/memory"
)

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	DB          *gorm.DB
	Router      *router.Router
	EmailWorker *email.Worker
	Metrics     *metrics.AuthMetrics
}

// Options carries optional collaborators. Zero values select the defaults
// derived from the configuration.
type Options struct {
	Redis       *redis.Client
	EmailSender adapter.EmailSender
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB, opts Options) (*Injector, error) {
	authMetrics := metrics.NewAuthMetrics()

	// Repositories
	accountRepo, err := newAccountStore(cfg, db)
	if err != nil {
		return nil, err
	}
	tokenRepo := persistence.NewTokenRepository(db)
	emailQueueRepo := persistence.NewEmailQueueRepository(db)
	activityRepo := persistence.NewEnergyActivityRepository(db)

	// Adapters
	passwordService := adapters.NewPasswordService(cfg.Auth.BcryptCost)
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, adapters.TokenDurations{
		Access:            cfg.JWT.AccessTokenExpiry,
		Refresh:           cfg.JWT.RefreshTokenExpiry,
		RememberMeAccess:  cfg.JWT.RememberMeAccessExpiry,
		RememberMeRefresh: cfg.JWT.RememberMeRefreshExpiry,
	}, tokenRepo)
	oneTimeTokens := adapters.NewOneTimeTokenService(tokenRepo, cfg.Auth.ResetTTL, cfg.Auth.ConfirmationTTL)
	emailService := email.NewService(emailQueueRepo)

	sender := opts.EmailSender
	if sender == nil {
		sender, err = newEmailSender(cfg)
		if err != nil {
			return nil, err
		}
	}
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	worker := email.NewWorker(emailQueueRepo, sender, renderer, authMetrics, email.WorkerConfig{
		PollInterval: cfg.Email.PollInterval,
		BatchSize:    cfg.Email.BatchSize,
		Lease:        cfg.Email.ClaimLease,
	})

	// Auth use cases
	registerUseCase := auth.NewRegisterAccountUseCase(
		accountRepo,
		passwordService,
		oneTimeTokens,
		emailService,
		authMetrics,
		auth.RegistrationOptions{
			StoreTimeout:    cfg.Auth.StoreTimeout,
			AppBaseURL:      cfg.Email.AppBaseURL,
			ConfirmationTTL: cfg.Auth.ConfirmationTTL,
		},
	)
	verifier := auth.NewVerifyCredentialsUseCase(accountRepo, passwordService, cfg.Auth.StoreTimeout)
	loginUseCase := auth.NewLoginUseCase(verifier, tokenService, authMetrics, cfg.Auth.RequireEmailConfirmation)
	refreshTokenUseCase := auth.NewRefreshTokenUseCase(tokenService)
	logoutUseCase := auth.NewLogoutUseCase(tokenService)
	forgotPasswordUseCase := auth.NewForgotPasswordUseCase(
		accountRepo, oneTimeTokens, emailService, cfg.Email.AppBaseURL, cfg.Auth.ResetTTL, cfg.Auth.StoreTimeout,
	)
	resetPasswordUseCase := auth.NewResetPasswordUseCase(accountRepo, passwordService, oneTimeTokens, tokenService, cfg.Auth.StoreTimeout)
	confirmEmailUseCase := auth.NewConfirmEmailUseCase(accountRepo, oneTimeTokens, cfg.Auth.StoreTimeout)
	getAccountUseCase := auth.NewGetAccountUseCase(accountRepo, cfg.Auth.StoreTimeout)
	deleteAccountUseCase := auth.NewDeleteAccountUseCase(accountRepo, passwordService, tokenService, emailService, cfg.Auth.StoreTimeout)

	// Dashboard use cases
	getDashboardUseCase := dashboard.NewGetDashboardUseCase(accountRepo, activityRepo, cfg.Auth.StoreTimeout)
	recordActivityUseCase := dashboard.NewRecordActivityUseCase(activityRepo)

	// Controllers
	cookie := controller.CookieConfig{
		Domain: cfg.Server.CookieDomain,
		Secure: cfg.Server.SecureCookies,
	}

	var redisCheck controller.HealthChecker
	if opts.Redis != nil {
		redisCheck = cache.HealthCheck(opts.Redis)
	}
	healthController := controller.NewHealthController(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}, redisCheck)

	authController := controller.NewAuthController(
		registerUseCase,
		loginUseCase,
		refreshTokenUseCase,
		logoutUseCase,
		forgotPasswordUseCase,
		resetPasswordUseCase,
		confirmEmailUseCase,
		cookie,
	)
	userController := controller.NewUserController(getAccountUseCase, deleteAccountUseCase, cookie)
	dashboardController := controller.NewDashboardController(getDashboardUseCase, recordActivityUseCase)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		if opts.Redis != nil {
			limiter = middleware.NewRedisRateLimiter(opts.Redis, "ethergyx:ratelimit", cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
		} else {
			limiter = middleware.NewRateLimiterWithConfig(cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
		}
	}

	r := router.NewRouter(
		healthController,
		authController,
		userController,
		dashboardController,
		limiter,
		authMiddleware,
		authMetrics.Handler(),
	)

	return &Injector{
		Config:      cfg,
		DB:          db,
		Router:      r,
		EmailWorker: worker,
		Metrics:     authMetrics,
	}, nil
}

// newAccountStore selects the single AccountStore backing used by the process.
func newAccountStore(cfg *config.Config, db *gorm.DB) (adapter.AccountRepository, error) {
	switch cfg.Auth.AccountStore {
	case config.AccountStoreDatabase, "":
		return persistence.NewAccountRepository(db), nil
	case config.AccountStoreMemory:
		slog.Warn("Using in-memory account store, accounts are lost on restart")
		return memory.NewAccountStore(), nil
	default:
		return nil, fmt.Errorf("unknown account store %q", cfg.Auth.AccountStore)
	}
}

func newEmailSender(cfg *config.Config) (adapter.EmailSender, error) {
	if cfg.Email.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, emails are logged instead of sent")
		return email.NewLogSender(), nil
	}
	client := email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	if cfg.Email.ResendBaseURL != "" {
		if err := client.SetBaseURL(cfg.Email.ResendBaseURL); err != nil {
			return nil, fmt.Errorf("invalid RESEND_BASE_URL: %w", err)
		}
	}
	return client, nil
}
