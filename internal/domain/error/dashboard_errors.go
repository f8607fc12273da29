package error

import (
	"errors"
	"strings"
)

// DashboardErrorCode identifies dashboard failures. Codes starting with
// DSH-01 are caller mistakes, DSH-04 means the account is gone and DSH-99 is internal.
type DashboardErrorCode string

const (
	ErrCodeInvalidActivityStatus  DashboardErrorCode = "DSH-010001"
	ErrCodeNegativeQuantity       DashboardErrorCode = "DSH-010002"
	ErrCodeMissingActivityType    DashboardErrorCode = "DSH-010003"
	ErrCodeInvalidPeriod          DashboardErrorCode = "DSH-010004"
	ErrCodeDashboardNoAccount     DashboardErrorCode = "DSH-040001"
	ErrCodeDashboardInternalError DashboardErrorCode = "DSH-990001"
)

const (
	dashboardValidationPrefix = "DSH-01"
	dashboardNotFoundPrefix   = "DSH-04"
)

var (
	ErrInvalidActivityStatus = errors.New("status must be: completed, in_progress, scheduled, or cancelled")
	ErrNegativeQuantity      = errors.New("activity quantities must not be negative")
	ErrMissingActivityType   = errors.New("activity type is required")
	ErrInvalidPeriod         = errors.New("period must be between 1 and 365 days")
)

var dashboardValidationCodes = map[error]DashboardErrorCode{
	ErrInvalidActivityStatus: ErrCodeInvalidActivityStatus,
	ErrNegativeQuantity:      ErrCodeNegativeQuantity,
	ErrMissingActivityType:   ErrCodeMissingActivityType,
	ErrInvalidPeriod:         ErrCodeInvalidPeriod,
}

// DashboardError carries a dashboard failure code alongside its cause.
type DashboardError struct {
	Code    DashboardErrorCode
	Message string
	Err     error
}

func (e *DashboardError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return "[" + string(e.Code) + "] " + e.Message + ": " + e.Err.Error()
	}
	return "[" + string(e.Code) + "] " + e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether the error was caused by bad input.
func (e *DashboardError) IsValidation() bool {
	return strings.HasPrefix(string(e.Code), dashboardValidationPrefix)
}

// IsNotFound reports whether the dashboard's account no longer exists.
func (e *DashboardError) IsNotFound() bool {
	return strings.HasPrefix(string(e.Code), dashboardNotFoundPrefix)
}

// NewDashboardError creates a DashboardError with an explicit code.
func NewDashboardError(code DashboardErrorCode, message string, err error) *DashboardError {
	return &DashboardError{Code: code, Message: message, Err: err}
}

// NewDashboardValidationError wraps one of the dashboard validation sentinels,
// taking the code and public message from it. Unknown causes are internal.
func NewDashboardValidationError(cause error) *DashboardError {
	code, ok := dashboardValidationCodes[cause]
	if !ok {
		return NewDashboardError(ErrCodeDashboardInternalError, "dashboard request failed", cause)
	}
	return NewDashboardError(code, cause.Error(), cause)
}
