package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/integration/persistence/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqlDB, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestAccountRepository_InsertFindAndDuplicate(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()

	account := entity.NewAccount("Ada", "ada@example.com", "hash")
	require.NoError(t, repo.Insert(ctx, account))

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, "Ada", found.Name)
	assert.False(t, found.IsEmailConfirmed())

	_, err = repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, domainerror.ErrAccountNotFound)

	err = repo.Insert(ctx, entity.NewAccount("Impostor", "ada@example.com", "other"))
	assert.ErrorIs(t, err, domainerror.ErrAccountAlreadyExists)
}

func TestAccountRepository_ConcurrentInsertHasOneWinner(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		dupes   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Insert(ctx, entity.NewAccount("Racer", "race@example.com", "hash"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, domainerror.ErrAccountAlreadyExists):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, workers-1, dupes)
}

func TestAccountRepository_Updates(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()
	account := entity.NewAccount("Ada", "ada@example.com", "hash")
	require.NoError(t, repo.Insert(ctx, account))

	require.NoError(t, repo.UpdatePasswordHash(ctx, account.ID, "new-hash"))
	require.NoError(t, repo.MarkEmailConfirmed(ctx, account.ID))

	found, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)
	require.True(t, found.IsEmailConfirmed())
	firstConfirmation := *found.EmailConfirmedAt

	require.NoError(t, repo.MarkEmailConfirmed(ctx, account.ID))
	again, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, firstConfirmation.Equal(*again.EmailConfirmedAt))

	missing := uuid.New()
	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, missing, "x"), domainerror.ErrAccountNotFound)
	assert.ErrorIs(t, repo.MarkEmailConfirmed(ctx, missing), domainerror.ErrAccountNotFound)

	require.NoError(t, repo.Delete(ctx, account.ID))
	_, err = repo.FindByID(ctx, account.ID)
	assert.ErrorIs(t, err, domainerror.ErrAccountNotFound)
}

func TestAccountRepository_CancelledContextIsUnavailable(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, domainerror.ErrStoreUnavailable)
}

func TestTokenRepository(t *testing.T) {
	repo := NewTokenRepository(newTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("refresh tokens", func(t *testing.T) {
		require.NoError(t, repo.SaveRefreshToken(ctx, "r1", accountID, time.Now().Add(time.Hour)))
		require.NoError(t, repo.SaveRefreshToken(ctx, "r2", accountID, time.Now().Add(time.Hour)))
		require.NoError(t, repo.SaveRefreshToken(ctx, "expired", accountID, time.Now().Add(-time.Hour)))

		consumed, err := repo.ConsumeRefreshToken(ctx, "r1")
		require.NoError(t, err)
		assert.True(t, consumed)

		consumed, err = repo.ConsumeRefreshToken(ctx, "r1")
		require.NoError(t, err)
		assert.False(t, consumed, "a refresh token is spent once")

		consumed, err = repo.ConsumeRefreshToken(ctx, "expired")
		require.NoError(t, err)
		assert.False(t, consumed)

		consumed, err = repo.ConsumeRefreshToken(ctx, "never-issued")
		require.NoError(t, err)
		assert.False(t, consumed)

		require.NoError(t, repo.InvalidateAllAccountRefreshTokens(ctx, accountID))
		consumed, _ = repo.ConsumeRefreshToken(ctx, "r2")
		assert.False(t, consumed)
	})

	t.Run("account tokens are scoped by purpose and single use", func(t *testing.T) {
		require.NoError(t, repo.SaveAccountToken(ctx, &model.AccountTokenModel{
			ID:        uuid.New(),
			Token:     "reset-1",
			Purpose:   "password_reset",
			AccountID: accountID,
			Email:     "ada@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}))

		wrongPurpose, err := repo.GetAccountToken(ctx, "email_confirmation", "reset-1")
		require.NoError(t, err)
		assert.Nil(t, wrongPurpose)

		token, err := repo.GetAccountToken(ctx, "password_reset", "reset-1")
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.Equal(t, accountID, token.AccountID)

		marked, err := repo.MarkAccountTokenUsed(ctx, "reset-1")
		require.NoError(t, err)
		assert.True(t, marked)
		used, err := repo.GetAccountToken(ctx, "password_reset", "reset-1")
		require.NoError(t, err)
		assert.Nil(t, used)

		marked, err = repo.MarkAccountTokenUsed(ctx, "reset-1")
		require.NoError(t, err)
		assert.False(t, marked, "a used token cannot be used again")
	})
}

func TestTokenRepository_ConcurrentConsumeHasOneWinner(t *testing.T) {
	repo := NewTokenRepository(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.SaveRefreshToken(ctx, "shared", uuid.New(), time.Now().Add(time.Hour)))

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumed, err := repo.ConsumeRefreshToken(ctx, "shared")
			assert.NoError(t, err)
			if consumed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestEmailQueueRepository(t *testing.T) {
	repo := NewEmailQueueRepository(newTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	job := entity.NewEmailJob(accountID, entity.TemplatePasswordReset, "ada@example.com", "Ada", "Reset", map[string]string{"action_url": "https://x/reset"})
	later := entity.NewEmailJob(accountID, entity.TemplateEmailConfirmation, "ada@example.com", "Ada", "Confirm", nil)
	later.ScheduledAt = time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.Enqueue(ctx, job))
	require.NoError(t, repo.Enqueue(ctx, later))

	now := time.Now().UTC()
	claimed, err := repo.ClaimDue(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, job.ID, claimed[0].ID)
	assert.Equal(t, accountID, claimed[0].AccountID)
	assert.Equal(t, entity.EmailStatusProcessing, claimed[0].Status)
	assert.Equal(t, "https://x/reset", claimed[0].TemplateData["action_url"])

	again, err := repo.ClaimDue(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, again, "leased job must not be claimed twice")

	leasedUntil := claimed[0].ScheduledAt
	claimed[0].MarkSent("provider-123")
	completed, err := repo.Complete(ctx, claimed[0], leasedUntil)
	require.NoError(t, err)
	assert.True(t, completed)

	byRecipient, err := repo.ListByRecipient(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, byRecipient, 2)

	statuses := map[uuid.UUID]entity.EmailStatus{}
	for _, j := range byRecipient {
		statuses[j.ID] = j.Status
	}
	assert.Equal(t, entity.EmailStatusSent, statuses[job.ID])
	assert.Equal(t, entity.EmailStatusPending, statuses[later.ID])
}

func TestEmailQueueRepository_ExpiredLeaseIsReclaimed(t *testing.T) {
	repo := NewEmailQueueRepository(newTestDB(t))
	ctx := context.Background()

	job := entity.NewEmailJob(uuid.New(), entity.TemplateEmailConfirmation, "ada@example.com", "Ada", "Confirm", nil)
	require.NoError(t, repo.Enqueue(ctx, job))

	start := time.Now().UTC()
	first, err := repo.ClaimDue(ctx, start, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := repo.ClaimDue(ctx, start.Add(2*time.Minute), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, job.ID, second[0].ID)
}

func TestEmailQueueRepository_CompleteSkipsCancelledJob(t *testing.T) {
	repo := NewEmailQueueRepository(newTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	job := entity.NewEmailJob(accountID, entity.TemplatePasswordReset, "ada@example.com", "Ada", "Reset", nil)
	require.NoError(t, repo.Enqueue(ctx, job))

	now := time.Now().UTC()
	claimed, err := repo.ClaimDue(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	leasedUntil := claimed[0].ScheduledAt

	// The account is deleted while the worker is still sending.
	cancelled, err := repo.CancelPending(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(1), cancelled)

	claimed[0].MarkFailed(errors.New("503 service unavailable"), false)
	completed, err := repo.Complete(ctx, claimed[0], leasedUntil)
	require.NoError(t, err)
	assert.False(t, completed)

	jobs, err := repo.ListByRecipient(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, entity.EmailStatusCancelled, jobs[0].Status)

	again, err := repo.ClaimDue(ctx, now.Add(time.Hour), time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, again, "a cancelled job is never claimed again")
}

func TestEmailQueueRepository_CompleteSkipsReclaimedJob(t *testing.T) {
	repo := NewEmailQueueRepository(newTestDB(t))
	ctx := context.Background()

	job := entity.NewEmailJob(uuid.New(), entity.TemplateEmailConfirmation, "ada@example.com", "Ada", "Confirm", nil)
	require.NoError(t, repo.Enqueue(ctx, job))

	start := time.Now().UTC()
	first, err := repo.ClaimDue(ctx, start, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)
	staleLease := first[0].ScheduledAt

	second, err := repo.ClaimDue(ctx, start.Add(2*time.Minute), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, second, 1)

	first[0].MarkSent("late-worker")
	completed, err := repo.Complete(ctx, first[0], staleLease)
	require.NoError(t, err)
	assert.False(t, completed, "a worker whose lease expired cannot overwrite the new claim")

	currentLease := second[0].ScheduledAt
	second[0].MarkSent("current-worker")
	completed, err = repo.Complete(ctx, second[0], currentLease)
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestEmailQueueRepository_CancelPending(t *testing.T) {
	repo := NewEmailQueueRepository(newTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	pending := entity.NewEmailJob(accountID, entity.TemplateEmailConfirmation, "ada@example.com", "Ada", "Confirm", nil)
	sent := entity.NewEmailJob(accountID, entity.TemplatePasswordReset, "ada@example.com", "Ada", "Reset", nil)
	sent.MarkSent("provider-1")
	other := entity.NewEmailJob(uuid.New(), entity.TemplateEmailConfirmation, "bob@example.com", "Bob", "Confirm", nil)
	for _, j := range []*entity.EmailJob{pending, sent, other} {
		require.NoError(t, repo.Enqueue(ctx, j))
	}

	cancelled, err := repo.CancelPending(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cancelled)

	claimed, err := repo.ClaimDue(ctx, time.Now().UTC(), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, other.ID, claimed[0].ID)
}

func TestEnergyActivityRepository(t *testing.T) {
	repo := NewEnergyActivityRepository(newTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Now().UTC()

	seed := []*entity.EnergyActivity{
		entity.NewEnergyActivity(accountID, "Battery Discharge", entity.ActivityStatusCompleted,
			decimal.RequireFromString("10.5"), decimal.RequireFromString("2.25"), decimal.RequireFromString("0.01"), now.Add(-24*time.Hour)),
		entity.NewEnergyActivity(accountID, "Demand Response", entity.ActivityStatusCompleted,
			decimal.RequireFromString("4.5"), decimal.RequireFromString("0.75"), decimal.RequireFromString("0.02"), now.Add(-48*time.Hour)),
		entity.NewEnergyActivity(accountID, "Grid Integration", entity.ActivityStatusScheduled,
			decimal.NewFromInt(100), decimal.NewFromInt(100), decimal.NewFromInt(1), now.Add(-time.Hour)),
		entity.NewEnergyActivity(accountID, "Old", entity.ActivityStatusCompleted,
			decimal.NewFromInt(100), decimal.NewFromInt(100), decimal.NewFromInt(1), now.AddDate(0, 0, -40)),
		entity.NewEnergyActivity(uuid.New(), "Other account", entity.ActivityStatusCompleted,
			decimal.NewFromInt(100), decimal.NewFromInt(100), decimal.NewFromInt(1), now.Add(-time.Hour)),
	}
	for _, a := range seed {
		require.NoError(t, repo.Create(ctx, a))
	}

	totals, err := repo.SumSince(ctx, accountID, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.True(t, totals.EnergyKWh.Equal(decimal.NewFromInt(15)), "energy %s", totals.EnergyKWh)
	assert.True(t, totals.CostSavings.Equal(decimal.NewFromInt(3)), "savings %s", totals.CostSavings)
	assert.True(t, totals.CarbonOffset.Equal(decimal.RequireFromString("0.03")), "carbon %s", totals.CarbonOffset)

	recent, err := repo.ListRecent(ctx, accountID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Grid Integration", recent[0].Type)
	assert.Equal(t, "Battery Discharge", recent[1].Type)
}
