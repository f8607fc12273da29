// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ethergyx/backend/internal/application/usecase/auth"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/integration/entrypoint/dto"
	"github.com/ethergyx/backend/internal/integration/entrypoint/middleware"
)

// UserController handles account management endpoints.
type UserController struct {
	getAccountUseCase    *auth.GetAccountUseCase
	deleteAccountUseCase *auth.DeleteAccountUseCase
	cookie               CookieConfig
}

// NewUserController creates a new user controller instance.
func NewUserController(
	getAccountUseCase *auth.GetAccountUseCase,
	deleteAccountUseCase *auth.DeleteAccountUseCase,
	cookie CookieConfig,
) *UserController {
	return &UserController{
		getAccountUseCase:    getAccountUseCase,
		deleteAccountUseCase: deleteAccountUseCase,
		cookie:               cookie,
	}
}

// GetMe handles GET /users/me requests.
func (c *UserController) GetMe(ctx *gin.Context) {
	accountID, ok := middleware.GetAccountIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	account, err := c.getAccountUseCase.Execute(ctx.Request.Context(), accountID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// DeleteAccount handles DELETE /users/me requests.
func (c *UserController) DeleteAccount(ctx *gin.Context) {
	accountID, ok := middleware.GetAccountIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	var req dto.DeleteAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, string(domainerror.ErrCodeMissingFields))
		return
	}

	err := c.deleteAccountUseCase.Execute(ctx.Request.Context(), auth.DeleteAccountInput{
		AccountID:    accountID,
		Password:     req.Password,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", c.cookie.Domain, c.cookie.Secure, true)
	ctx.Status(http.StatusNoContent)
}
