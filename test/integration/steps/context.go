//go:build integration

// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"github.com/ethergyx/backend/config"
	"github.com/ethergyx/backend/internal/infra/dependency"
	"github.com/ethergyx/backend/internal/integration/adapters"
	"github.com/ethergyx/backend/internal/integration/persistence/model"
	"github.com/ethergyx/backend/test/integration/mock"
)

const (
	testJWTSecret   = "test-jwt-secret-key-for-testing-purposes"
	testAppBaseURL  = "https://app.ethergyx.test"
	resendEmailPath = "/emails"
)

// suite holds the resources shared by every scenario. The server is built
// once; scenarios reset its state through the database, Redis and API stubs.
type suite struct {
	server   *httptest.Server
	injector *dependency.Injector
	db       *mock.Db
	resend   *mock.ApiMock
}

var (
	suiteOnce sync.Once
	shared    *suite
)

type testContext struct {
	*suite

	client       *http.Client
	headers      map[string]string
	response     *response
	accessToken  string
	refreshToken string
	emailToken   string
}

type response struct {
	status  int
	body    any
	raw     string
	headers http.Header
	cookies []*http.Cookie
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
		setupSuite()
	})

	ctx.AfterSuite(func() {
		if shared == nil {
			return
		}
		shared.server.Close()
		shared.resend.Close()
	})
}

func setupSuite() {
	suiteOnce.Do(func() {
		database := mock.NewDb(map[string]any{
			"accounts":          &model.AccountModel{},
			"refresh_tokens":    &model.RefreshTokenModel{},
			"account_tokens":    &model.AccountTokenModel{},
			"email_queue":       &model.EmailQueueModel{},
			"energy_activities": &model.EnergyActivityModel{},
		})
		redisClient, _ := mock.NewRedis()

		resend := mock.NewApiServer()
		resend.SetDefaultResponse(http.MethodPost, resendEmailPath, http.StatusOK, map[string]any{
			"id": "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794",
		})
		resend.Start()

		cfg := config.Load()
		cfg.Server.Environment = "test"
		cfg.JWT.Secret = testJWTSecret
		cfg.Auth.BcryptCost = adapters.MinBcryptCost
		cfg.Auth.AccountStore = config.AccountStoreDatabase
		cfg.Auth.RequireEmailConfirmation = false
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.MaxAttempts = 5
		cfg.RateLimit.Window = time.Minute
		cfg.Email.ResendAPIKey = "re_integration_key"
		cfg.Email.ResendBaseURL = resend.GetUrl()
		cfg.Email.AppBaseURL = testAppBaseURL

		injector, err := dependency.NewInjector(cfg, database.DbConn, dependency.Options{
			Redis: redisClient,
		})
		if err != nil {
			panic("failed to build injector: " + err.Error())
		}

		shared = &suite{
			server:   httptest.NewServer(injector.Router.Setup(cfg.Server.Environment)),
			injector: injector,
			db:       database,
			resend:   resend,
		}
	})
}

// InitializeScenario registers all step definitions against a fresh test context.
func InitializeScenario(ctx *godog.ScenarioContext) {
	setupSuite()

	test := &testContext{
		suite:  shared,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	registerSetupSteps(ctx, test)
	registerRequestSteps(ctx, test)
	registerResponseSteps(ctx, test)
	registerStateSteps(ctx, test)
}

func (t *testContext) before() error {
	t.headers = make(map[string]string)
	t.response = nil
	t.accessToken = ""
	t.refreshToken = ""
	t.emailToken = ""

	_, redisServer := mock.NewRedis()
	mock.ClearRedis(redisServer)
	t.resend.Reset()
	return t.db.ClearDB()
}
