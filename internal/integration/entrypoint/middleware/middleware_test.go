package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethergyx/backend/internal/application/adapter"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTokenService struct {
	adapter.TokenService
	valid     string
	accountID uuid.UUID
}

func (s *stubTokenService) ValidateAccessToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	if token != s.valid {
		return nil, errors.New("invalid token")
	}
	return &adapter.TokenClaims{AccountID: s.accountID, Email: "ada@example.com"}, nil
}

func TestAuthMiddleware(t *testing.T) {
	accountID := uuid.New()
	tokens := &stubTokenService{valid: "good-token", accountID: accountID}

	router := gin.New()
	router.GET("/protected", NewAuthMiddleware(tokens).Authenticate(), func(c *gin.Context) {
		id, ok := GetAccountIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		email, _ := GetAccountEmailFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "email": email})
	})

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantCode   string
	}{
		{name: "bearer header", header: "Bearer good-token", wantStatus: http.StatusOK},
		{name: "session cookie", cookie: "good-token", wantStatus: http.StatusOK},
		{name: "no credentials", wantStatus: http.StatusUnauthorized, wantCode: "AUTH-030003"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: "AUTH-030001"},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: "AUTH-030003"},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: "AUTH-030001"},
		{name: "header wins over cookie", header: "Bearer nope", cookie: "good-token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rec.Body.String(), accountID.String())
			}
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	rl := NewRateLimiterWithConfig(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok, "third attempt in the window is refused")

	ok, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute + time.Second)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "a new window starts after expiry")

	rl.Cleanup()
	rl.Reset()
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRedisRateLimiter(client, "ratelimit", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := rl.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, time.Minute, mr.TTL("ratelimit:login:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = rl.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRateLimiter_RepairsCounterWithoutWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// A counter over the limit whose EXPIRE never landed.
	require.NoError(t, mr.Set("ratelimit:login:1.2.3.4", "9"))
	require.Zero(t, mr.TTL("ratelimit:login:1.2.3.4"))

	rl := NewRedisRateLimiter(client, "ratelimit", 3, time.Minute)
	ctx := context.Background()

	ok, err := rl.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:login:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = rl.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "the key is released once the repaired window ends")
}

func TestRateLimiter_SweepsExpiredKeys(t *testing.T) {
	rl := NewRateLimiterWithConfig(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		_, _ = rl.Allow(ctx, ip)
	}
	assert.Equal(t, 3, rl.size())

	now = now.Add(2 * time.Minute)
	_, _ = rl.Allow(ctx, "4.4.4.4")
	assert.Equal(t, 1, rl.size(), "expired keys are dropped without an explicit Cleanup")
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.POST("/login", RateLimit(NewRateLimiterWithConfig(1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "AUTH-020003")
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	router := gin.New()
	router.POST("/login", RateLimit(NewRedisRateLimiter(client, "ratelimit", 1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
