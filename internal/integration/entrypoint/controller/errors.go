// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/integration/entrypoint/dto"
)

// retryAfterSeconds is advertised to clients when the account store is unavailable.
const retryAfterSeconds = "1"

// handleError maps domain errors to HTTP responses. Only the public message,
// code and details of an error are rendered.
func handleError(ctx *gin.Context, err error) {
	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		status := statusForAuthError(authErr.Code)
		if status == http.StatusServiceUnavailable {
			ctx.Header("Retry-After", retryAfterSeconds)
		}
		ctx.JSON(status, dto.ErrorResponse{
			Error:   authErr.Message,
			Code:    string(authErr.Code),
			Details: authErr.Details,
		})
		return
	}

	var dashErr *domainerror.DashboardError
	if errors.As(err, &dashErr) {
		ctx.JSON(statusForDashboardError(dashErr), dto.ErrorResponse{
			Error: dashErr.Message,
			Code:  string(dashErr.Code),
		})
		return
	}

	if errors.Is(err, domainerror.ErrStoreUnavailable) {
		ctx.Header("Retry-After", retryAfterSeconds)
		ctx.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error: "service temporarily unavailable, please retry",
			Code:  string(domainerror.ErrCodeStoreUnavailable),
		})
		return
	}

	slog.Error("Unhandled request error",
		"method", ctx.Request.Method,
		"path", ctx.FullPath(),
		"error", err,
	)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusForAuthError maps auth error codes to HTTP status codes.
func statusForAuthError(code domainerror.AuthErrorCode) int {
	switch code {
	case domainerror.ErrCodeEmailExists:
		return http.StatusConflict
	case domainerror.ErrCodeWeakPassword,
		domainerror.ErrCodeInvalidEmail,
		domainerror.ErrCodeMissingFields,
		domainerror.ErrCodeFieldTooLong,
		domainerror.ErrCodeInvalidResetToken,
		domainerror.ErrCodeExpiredResetToken,
		domainerror.ErrCodeInvalidConfirmationToken,
		domainerror.ErrCodeInvalidConfirmation:
		return http.StatusBadRequest
	case domainerror.ErrCodeInvalidCredentials,
		domainerror.ErrCodeInvalidToken,
		domainerror.ErrCodeExpiredToken,
		domainerror.ErrCodeMissingToken:
		return http.StatusUnauthorized
	case domainerror.ErrCodeEmailNotConfirmed:
		return http.StatusForbidden
	case domainerror.ErrCodeAccountNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case domainerror.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func statusForDashboardError(err *domainerror.DashboardError) int {
	switch {
	case err.IsValidation():
		return http.StatusBadRequest
	case err.IsNotFound():
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(ctx *gin.Context, code string) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request body",
		Code:  code,
	})
}

func unauthorized(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "Unauthorized",
		Code:  string(domainerror.ErrCodeMissingToken),
	})
}
