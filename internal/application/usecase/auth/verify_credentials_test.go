package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

func seedAccount(t *testing.T, repo *fakeAccountRepo, email, password string) *entity.Account {
	t.Helper()
	account := entity.NewAccount("Ada", email, "hashed:"+password)
	if err := repo.Insert(context.Background(), account); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return account
}

type failingHasher struct {
	fakePasswordService
	compared []string
}

func (h *failingHasher) HashPassword(string) (string, error) {
	return "", errors.New("entropy exhausted")
}

func (h *failingHasher) VerifyPassword(hashed, password string) error {
	h.compared = append(h.compared, hashed)
	return h.fakePasswordService.VerifyPassword(hashed, password)
}

func TestVerifyCredentials(t *testing.T) {
	repo := newFakeAccountRepo()
	seeded := seedAccount(t, repo, "ada@example.com", "Abcdef12")
	passwords := &fakePasswordService{}
	uc := NewVerifyCredentialsUseCase(repo, passwords, time.Second)

	t.Run("correct credentials return the account", func(t *testing.T) {
		account, err := uc.Execute(context.Background(), " ADA@example.com", "Abcdef12")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if account.ID != seeded.ID {
			t.Errorf("expected account %s, got %s", seeded.ID, account.ID)
		}
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		_, unknownErr := uc.Execute(context.Background(), "nobody@example.com", "Abcdef12")
		_, wrongErr := uc.Execute(context.Background(), "ada@example.com", "Wrong-pass1")

		var unknown, wrong *domainerror.AuthError
		if !errors.As(unknownErr, &unknown) || !errors.As(wrongErr, &wrong) {
			t.Fatalf("expected AuthErrors, got %v and %v", unknownErr, wrongErr)
		}
		if unknown.Error() != wrong.Error() || unknown.Code != wrong.Code {
			t.Errorf("errors differ: %q (%s) vs %q (%s)", unknown.Error(), unknown.Code, wrong.Error(), wrong.Code)
		}
		if unknown.Code != domainerror.ErrCodeInvalidCredentials {
			t.Errorf("expected invalid credentials code, got %s", unknown.Code)
		}
		if errors.Is(unknownErr, domainerror.ErrUnknownAccount) || errors.Is(wrongErr, domainerror.ErrBadPassword) {
			t.Error("internal reason must not be reachable through Unwrap")
		}
		if !errors.Is(unknown.Reason, domainerror.ErrUnknownAccount) {
			t.Errorf("expected unknown account reason, got %v", unknown.Reason)
		}
		if !errors.Is(wrong.Reason, domainerror.ErrBadPassword) {
			t.Errorf("expected bad password reason, got %v", wrong.Reason)
		}
	})

	t.Run("unknown email still runs a hash comparison", func(t *testing.T) {
		before := passwords.verifyCalls.Load()
		_, _ = uc.Execute(context.Background(), "ghost@example.com", "Abcdef12")
		if passwords.verifyCalls.Load() != before+1 {
			t.Error("expected a dummy comparison for unknown accounts")
		}
	})

	t.Run("unknown email compares against the fallback hash when hashing fails", func(t *testing.T) {
		hasher := &failingHasher{}
		_, err := NewVerifyCredentialsUseCase(repo, hasher, time.Second).
			Execute(context.Background(), "ghost@example.com", "Abcdef12")
		if !errors.Is(err, domainerror.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
		if len(hasher.compared) != 1 || hasher.compared[0] != fallbackDummyHash {
			t.Errorf("expected one comparison against the fallback hash, got %q", hasher.compared)
		}
	})

	t.Run("weak stored hash is upgraded after a successful check", func(t *testing.T) {
		legacy := entity.NewAccount("Grace", "grace@example.com", "legacy:Abcdef12")
		if err := repo.Insert(context.Background(), legacy); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if _, err := uc.Execute(context.Background(), "grace@example.com", "Abcdef12"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := repo.get("grace@example.com").PasswordHash; got != "hashed:Abcdef12" {
			t.Errorf("expected upgraded hash, got %q", got)
		}
	})

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		failing := newFakeAccountRepo()
		failing.findErr = domainerror.ErrStoreUnavailable
		_, err := NewVerifyCredentialsUseCase(failing, passwords, time.Second).
			Execute(context.Background(), "ada@example.com", "Abcdef12")
		if !errors.Is(err, domainerror.ErrStoreUnavailable) {
			t.Fatalf("expected store unavailable, got %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	newLogin := func(requireConfirmation bool) (*LoginUseCase, *fakeAccountRepo, *recordingMetrics) {
		repo := newFakeAccountRepo()
		metrics := &recordingMetrics{}
		verifier := NewVerifyCredentialsUseCase(repo, &fakePasswordService{}, time.Second)
		return NewLoginUseCase(verifier, newFakeTokenService(), metrics, requireConfirmation), repo, metrics
	}

	t.Run("issues tokens", func(t *testing.T) {
		uc, repo, metrics := newLogin(false)
		seedAccount(t, repo, "ada@example.com", "Abcdef12")

		out, err := uc.Execute(context.Background(), LoginInput{Email: "ada@example.com", Password: "Abcdef12"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Tokens.AccessToken == "" || out.Tokens.RefreshToken == "" {
			t.Error("expected a token pair")
		}
		if metrics.logins[0] != "success" {
			t.Errorf("expected success outcome, got %s", metrics.logins[0])
		}
	})

	t.Run("records the internal reason in metrics only", func(t *testing.T) {
		uc, repo, metrics := newLogin(false)
		seedAccount(t, repo, "ada@example.com", "Abcdef12")

		_, _ = uc.Execute(context.Background(), LoginInput{Email: "ghost@example.com", Password: "Abcdef12"})
		_, _ = uc.Execute(context.Background(), LoginInput{Email: "ada@example.com", Password: "nope"})
		if metrics.logins[0] != "unknown_account" || metrics.logins[1] != "bad_password" {
			t.Errorf("unexpected outcomes %v", metrics.logins)
		}
	})

	t.Run("unconfirmed email is refused when confirmation is required", func(t *testing.T) {
		uc, repo, _ := newLogin(true)
		seedAccount(t, repo, "ada@example.com", "Abcdef12")

		_, err := uc.Execute(context.Background(), LoginInput{Email: "ada@example.com", Password: "Abcdef12"})
		if !errors.Is(err, domainerror.ErrEmailNotConfirmed) {
			t.Fatalf("expected email not confirmed, got %v", err)
		}

		_, err = uc.Execute(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong"})
		if !errors.Is(err, domainerror.ErrInvalidCredentials) {
			t.Fatalf("wrong password must still report invalid credentials, got %v", err)
		}
	})

	t.Run("confirmed email logs in when confirmation is required", func(t *testing.T) {
		uc, repo, _ := newLogin(true)
		account := seedAccount(t, repo, "ada@example.com", "Abcdef12")
		if err := repo.MarkEmailConfirmed(context.Background(), account.ID); err != nil {
			t.Fatal(err)
		}

		if _, err := uc.Execute(context.Background(), LoginInput{Email: "ada@example.com", Password: "Abcdef12"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRefreshAndLogout(t *testing.T) {
	tokens := newFakeTokenService()
	refresh := NewRefreshTokenUseCase(tokens)
	logout := NewLogoutUseCase(tokens)
	ctx := context.Background()

	account := seedAccount(t, newFakeAccountRepo(), "a@b.co", "x")
	pair, _ := tokens.GenerateTokenPair(ctx, account.ID, "a@b.co", false)

	out, err := refresh.Execute(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tokens.RefreshToken == pair.RefreshToken {
		t.Error("expected a rotated refresh token")
	}

	if _, err := refresh.Execute(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken}); !errors.Is(err, domainerror.ErrInvalidToken) {
		t.Errorf("rotated token must be rejected, got %v", err)
	}
	if len(tokens.revokedAll) != 1 || tokens.revokedAll[0] != account.ID {
		t.Errorf("replaying a rotated token must revoke the account sessions, got %v", tokens.revokedAll)
	}

	logout.Execute(ctx, LogoutInput{RefreshToken: out.Tokens.RefreshToken})
	if _, err := refresh.Execute(ctx, RefreshTokenInput{RefreshToken: out.Tokens.RefreshToken}); !errors.Is(err, domainerror.ErrInvalidToken) {
		t.Errorf("logged out token must be rejected, got %v", err)
	}
}

func TestRefreshToken_ConcurrentExchangesSucceedOnce(t *testing.T) {
	tokens := newFakeTokenService()
	refresh := NewRefreshTokenUseCase(tokens)
	ctx := context.Background()
	pair, _ := tokens.GenerateTokenPair(ctx, uuid.New(), "a@b.co", false)

	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := refresh.Execute(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken}); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("expected one successful exchange, got %d", successes.Load())
	}
}
