package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

func TestAccountStore_InsertAndFind(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()
	account := entity.NewAccount("Ada", "ada@example.com", "hash")

	require.NoError(t, store.Insert(ctx, account))

	byEmail, err := store.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	byID, err := store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	_, err = store.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domainerror.ErrAccountNotFound)

	err = store.Insert(ctx, entity.NewAccount("Other", "ada@example.com", "hash2"))
	assert.ErrorIs(t, err, domainerror.ErrAccountAlreadyExists)
	assert.Equal(t, 1, store.Len())
}

func TestAccountStore_ReturnsCopies(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()
	account := entity.NewAccount("Ada", "ada@example.com", "hash")
	require.NoError(t, store.Insert(ctx, account))

	account.Name = "mutated after insert"
	found, err := store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	found.PasswordHash = "mutated after read"

	again, err := store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Name)
	assert.Equal(t, "hash", again.PasswordHash)
}

func TestAccountStore_ConcurrentInsertHasOneWinner(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Insert(ctx, entity.NewAccount("Racer", "race@example.com", "hash"))
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domainerror.ErrAccountAlreadyExists) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, store.Len())
}

func TestAccountStore_UpdatesAndDelete(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()
	account := entity.NewAccount("Ada", "ada@example.com", "hash")
	require.NoError(t, store.Insert(ctx, account))

	require.NoError(t, store.UpdatePasswordHash(ctx, account.ID, "new-hash"))
	require.NoError(t, store.MarkEmailConfirmed(ctx, account.ID))

	found, err := store.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)
	assert.True(t, found.IsEmailConfirmed())

	require.NoError(t, store.Delete(ctx, account.ID))
	_, err = store.FindByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, domainerror.ErrAccountNotFound)
	assert.ErrorIs(t, store.Delete(ctx, account.ID), domainerror.ErrAccountNotFound)

	// The email is free again.
	assert.NoError(t, store.Insert(ctx, entity.NewAccount("Ada", "ada@example.com", "hash")))
}

func TestAccountStore_HonorsCancelledContext(t *testing.T) {
	store := NewAccountStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Insert(ctx, entity.NewAccount("Ada", "ada@example.com", "hash"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.Len())
}
