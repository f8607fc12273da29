// Package error defines domain-specific errors for the EthergyX accounts service.
package error

import "errors"

// Authentication domain errors.
var (
	// ErrMissingField is returned when a required registration field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidEmail is returned when the provided email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrFieldTooLong is returned when a registration field exceeds its stored length.
	ErrFieldTooLong = errors.New("field is too long")

	// ErrWeakPassword is returned when the provided password does not meet requirements.
	ErrWeakPassword = errors.New("password does not meet minimum requirements")

	// ErrEmailAlreadyExists is returned when attempting to register with an existing email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUnknownAccount is the internal reason for a login against an unregistered email.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrBadPassword is the internal reason for a login with a wrong password.
	ErrBadPassword = errors.New("bad password")

	// ErrInvalidCredentials is the only login failure ever shown to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountNotFound is returned by stores when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists is returned by stores when the unique email constraint fires.
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrStoreUnavailable is returned when the account store times out or cannot be reached.
	ErrStoreUnavailable = errors.New("account store unavailable")

	// ErrInvalidToken is returned when a token is invalid or malformed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token has expired")

	// ErrInvalidResetToken is returned when a password reset token is invalid.
	ErrInvalidResetToken = errors.New("invalid or expired password reset token")

	// ErrInvalidConfirmationToken is returned when an email confirmation token is invalid.
	ErrInvalidConfirmationToken = errors.New("invalid or expired email confirmation token")

	// ErrEmailNotConfirmed is returned when login requires a confirmed email address.
	ErrEmailNotConfirmed = errors.New("email address not confirmed")
)

// AuthErrorCode defines error codes for authentication errors.
// Format: AUTH-XXYYYY where XX is category and YYYY is specific error.
type AuthErrorCode string

const (
	// Registration errors (01XXXX)
	ErrCodeEmailExists   AuthErrorCode = "AUTH-010001"
	ErrCodeWeakPassword  AuthErrorCode = "AUTH-010003"
	ErrCodeInvalidEmail  AuthErrorCode = "AUTH-010004"
	ErrCodeMissingFields AuthErrorCode = "AUTH-010005"
	ErrCodeFieldTooLong  AuthErrorCode = "AUTH-010006"

	// Login errors (02XXXX)
	ErrCodeInvalidCredentials AuthErrorCode = "AUTH-020001"
	ErrCodeRateLimited        AuthErrorCode = "AUTH-020003"
	ErrCodeEmailNotConfirmed  AuthErrorCode = "AUTH-020004"

	// Token errors (03XXXX)
	ErrCodeInvalidToken AuthErrorCode = "AUTH-030001"
	ErrCodeExpiredToken AuthErrorCode = "AUTH-030002"
	ErrCodeMissingToken AuthErrorCode = "AUTH-030003"

	// Password reset errors (04XXXX)
	ErrCodeInvalidResetToken AuthErrorCode = "AUTH-040001"
	ErrCodeExpiredResetToken AuthErrorCode = "AUTH-040002"

	// Email confirmation errors (05XXXX)
	ErrCodeInvalidConfirmationToken AuthErrorCode = "AUTH-050001"

	// Account management errors (06XXXX)
	ErrCodeAccountNotFound     AuthErrorCode = "AUTH-060001"
	ErrCodeInvalidConfirmation AuthErrorCode = "AUTH-060002"

	// Infrastructure errors (09XXXX)
	ErrCodeStoreUnavailable AuthErrorCode = "AUTH-090001"
)

// AuthError represents an authentication error with code and message.
//
// Details holds user-correctable specifics (e.g. unmet password requirements).
// Reason holds an internal diagnostic cause that is never rendered by Error()
// nor reachable through Unwrap, so it cannot leak through generic error handling.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Details []string
	Err     error
	Reason  error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError with the given code and message.
func NewAuthError(code AuthErrorCode, message string, err error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails returns the error with user-facing details attached.
func (e *AuthError) WithDetails(details ...string) *AuthError {
	e.Details = append(e.Details, details...)
	return e
}

// WithReason returns the error with an internal diagnostic cause attached.
func (e *AuthError) WithReason(reason error) *AuthError {
	e.Reason = reason
	return e
}

// NewInvalidCredentialsError builds the single login failure callers see,
// whatever the internal reason.
func NewInvalidCredentialsError(reason error) *AuthError {
	return NewAuthError(
		ErrCodeInvalidCredentials,
		"invalid email or password",
		ErrInvalidCredentials,
	).WithReason(reason)
}

// NewStoreUnavailableError wraps a store failure as a transient error.
func NewStoreUnavailableError(cause error) *AuthError {
	return NewAuthError(
		ErrCodeStoreUnavailable,
		"account service temporarily unavailable, please retry",
		ErrStoreUnavailable,
	).WithReason(cause)
}
