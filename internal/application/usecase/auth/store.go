// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// DefaultStoreTimeout bounds account store calls when no timeout is configured.
const DefaultStoreTimeout = 3 * time.Second

// withStoreTimeout derives a context bounded by the store timeout.
func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError converts timeouts and connectivity failures into StoreUnavailable.
// Any other error is wrapped with the operation name.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, domainerror.ErrStoreUnavailable) {
		return domainerror.NewStoreUnavailableError(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// humanizeTTL renders token lifetimes for email copy ("1 hour", "24 hours", "30 minutes").
func humanizeTTL(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	case d >= time.Minute:
		if m := int(d / time.Minute); m != 1 {
			return fmt.Sprintf("%d minutes", m)
		}
		return "1 minute"
	default:
		return d.String()
	}
}
