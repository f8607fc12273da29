package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// fakeAccountRepo is a mutex guarded account store with injectable failures.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account

	findErr   error
	insertErr error
	// skipFind makes FindByEmail report "not found" so Insert has to settle races.
	skipFind bool
	// findDelay simulates a slow store; it honors context cancellation.
	findDelay time.Duration
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*entity.Account{}}
}

func (r *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	if r.findDelay > 0 {
		select {
		case <-time.After(r.findDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.skipFind {
		return nil, domainerror.ErrAccountNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[email]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, domainerror.ErrAccountNotFound
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domainerror.ErrAccountNotFound
}

func (r *fakeAccountRepo) Insert(_ context.Context, account *entity.Account) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.Email]; ok {
		return domainerror.ErrAccountAlreadyExists
	}
	clone := *account
	r.accounts[account.Email] = &clone
	return nil
}

func (r *fakeAccountRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			a.ChangePasswordHash(hash)
			return nil
		}
	}
	return domainerror.ErrAccountNotFound
}

func (r *fakeAccountRepo) MarkEmailConfirmed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			a.ConfirmEmail(time.Now())
			return nil
		}
	}
	return domainerror.ErrAccountNotFound
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, a := range r.accounts {
		if a.ID == id {
			delete(r.accounts, email)
			return nil
		}
	}
	return domainerror.ErrAccountNotFound
}

func (r *fakeAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

func (r *fakeAccountRepo) get(email string) *entity.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[email]
}

// fakePasswordService "hashes" by prefixing; it counts verifications.
// Hashes carrying the "legacy:" prefix verify too but ask to be rehashed.
type fakePasswordService struct {
	verifyCalls atomic.Int32
}

func (s *fakePasswordService) NeedsRehash(hashed string) bool {
	return strings.HasPrefix(hashed, "legacy:")
}

func (s *fakePasswordService) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (s *fakePasswordService) VerifyPassword(hashed, password string) error {
	s.verifyCalls.Add(1)
	if hashed != "hashed:"+password && hashed != "legacy:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokenService struct {
	mu          sync.Mutex
	revoked     map[string]bool
	revokedAll  []uuid.UUID
	generated   int
	claimsByTok map[string]*adapter.TokenClaims
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{
		revoked:     map[string]bool{},
		claimsByTok: map[string]*adapter.TokenClaims{},
	}
}

func (s *fakeTokenService) GenerateTokenPair(_ context.Context, accountID uuid.UUID, email string, _ bool) (*adapter.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated++
	refresh := "refresh-" + uuid.NewString()
	s.claimsByTok[refresh] = &adapter.TokenClaims{AccountID: accountID, Email: email}
	return &adapter.TokenPair{AccessToken: "access-" + uuid.NewString(), RefreshToken: refresh}, nil
}

func (s *fakeTokenService) ValidateAccessToken(context.Context, string) (*adapter.TokenClaims, error) {
	return nil, domainerror.ErrInvalidToken
}

func (s *fakeTokenService) ValidateRefreshToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.claimsByTok[token]; ok {
		return c, nil
	}
	return nil, domainerror.ErrInvalidToken
}

func (s *fakeTokenService) InvalidateRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
	return nil
}

func (s *fakeTokenService) InvalidateAllAccountTokens(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokedAll = append(s.revokedAll, accountID)
	return nil
}

func (s *fakeTokenService) ConsumeRefreshToken(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[token] {
		return false, nil
	}
	s.revoked[token] = true
	return true, nil
}

type fakeOneTimeTokens struct {
	mu     sync.Mutex
	tokens map[string]*adapter.OneTimeToken
	used   map[string]bool
	ttl    time.Duration
}

func newFakeOneTimeTokens() *fakeOneTimeTokens {
	return &fakeOneTimeTokens{
		tokens: map[string]*adapter.OneTimeToken{},
		used:   map[string]bool{},
		ttl:    time.Hour,
	}
}

func (s *fakeOneTimeTokens) Generate(_ context.Context, purpose adapter.OneTimeTokenPurpose, accountID uuid.UUID, email string) (*adapter.OneTimeToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &adapter.OneTimeToken{
		Token:     uuid.NewString(),
		Purpose:   purpose,
		AccountID: accountID,
		Email:     email,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	s.tokens[t.Token] = t
	return t, nil
}

func (s *fakeOneTimeTokens) Validate(_ context.Context, purpose adapter.OneTimeTokenPurpose, token string) (*adapter.OneTimeToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok || s.used[token] || t.Purpose != purpose {
		return nil, domainerror.ErrInvalidToken
	}
	return t, nil
}

func (s *fakeOneTimeTokens) Consume(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used[token] {
		return domainerror.ErrInvalidToken
	}
	s.used[token] = true
	return nil
}

func (s *fakeOneTimeTokens) latest(purpose adapter.OneTimeTokenPurpose) *adapter.OneTimeToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Purpose == purpose {
			return t
		}
	}
	return nil
}

type fakeEmailService struct {
	mu            sync.Mutex
	confirmations []adapter.QueueAccountEmailInput
	resets        []adapter.QueueAccountEmailInput
	cancelled     []uuid.UUID
}

func (s *fakeEmailService) QueueEmailConfirmation(_ context.Context, input adapter.QueueAccountEmailInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmations = append(s.confirmations, input)
	return nil
}

func (s *fakeEmailService) QueuePasswordResetEmail(_ context.Context, input adapter.QueueAccountEmailInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, input)
	return nil
}

func (s *fakeEmailService) CancelPendingEmails(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, accountID)
	return nil
}

type recordingMetrics struct {
	mu            sync.Mutex
	registrations []string
	logins        []string
}

func (m *recordingMetrics) ObserveRegistration(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations = append(m.registrations, outcome)
}

func (m *recordingMetrics) ObserveLogin(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, outcome)
}

func (m *recordingMetrics) ObserveEmail(string, string) {}

func containsPassword(err error, password string) bool {
	return err != nil && strings.Contains(err.Error(), password)
}
