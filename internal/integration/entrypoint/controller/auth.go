// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/application/usecase/auth"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/domain/valueobject"
	"github.com/ethergyx/backend/internal/integration/entrypoint/dto"
	"github.com/ethergyx/backend/internal/integration/entrypoint/middleware"
)

// registeredMessage is returned after a successful registration.
const registeredMessage = "Account created. Check your inbox to confirm your email address."

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	Domain string
	Secure bool
}

// AuthController handles authentication endpoints.
type AuthController struct {
	registerUseCase       *auth.RegisterAccountUseCase
	loginUseCase          *auth.LoginUseCase
	refreshTokenUseCase   *auth.RefreshTokenUseCase
	logoutUseCase         *auth.LogoutUseCase
	forgotPasswordUseCase *auth.ForgotPasswordUseCase
	resetPasswordUseCase  *auth.ResetPasswordUseCase
	confirmEmailUseCase   *auth.ConfirmEmailUseCase
	cookie                CookieConfig
}

// NewAuthController creates a new auth controller instance.
func NewAuthController(
	registerUseCase *auth.RegisterAccountUseCase,
	loginUseCase *auth.LoginUseCase,
	refreshTokenUseCase *auth.RefreshTokenUseCase,
	logoutUseCase *auth.LogoutUseCase,
	forgotPasswordUseCase *auth.ForgotPasswordUseCase,
	resetPasswordUseCase *auth.ResetPasswordUseCase,
	confirmEmailUseCase *auth.ConfirmEmailUseCase,
	cookie CookieConfig,
) *AuthController {
	return &AuthController{
		registerUseCase:       registerUseCase,
		loginUseCase:          loginUseCase,
		refreshTokenUseCase:   refreshTokenUseCase,
		logoutUseCase:         logoutUseCase,
		forgotPasswordUseCase: forgotPasswordUseCase,
		resetPasswordUseCase:  resetPasswordUseCase,
		confirmEmailUseCase:   confirmEmailUseCase,
		cookie:                cookie,
	}
}

// Register handles POST /auth/register requests.
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, string(domainerror.ErrCodeMissingFields))
		return
	}

	output, err := c.registerUseCase.Execute(ctx.Request.Context(), auth.RegisterAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.RegisterResponse{
		Message: registeredMessage,
		Account: dto.ToAccountResponse(output.Account),
	})
}

// Login handles POST /auth/login requests.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, string(domainerror.ErrCodeMissingFields))
		return
	}

	output, err := c.loginUseCase.Execute(ctx.Request.Context(), auth.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, output.Tokens)
	ctx.JSON(http.StatusOK, dto.ToAuthResponse(output.Tokens, output.Account))
}

// RefreshToken handles POST /auth/refresh requests.
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, string(domainerror.ErrCodeMissingToken))
		return
	}

	output, err := c.refreshTokenUseCase.Execute(ctx.Request.Context(), auth.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, output.Tokens)
	ctx.JSON(http.StatusOK, dto.ToTokenResponse(output.Tokens))
}

// Logout handles POST /auth/logout requests. It always succeeds.
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.LogoutRequest
	// A missing body still clears the cookie.
	_ = ctx.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		c.logoutUseCase.Execute(ctx.Request.Context(), auth.LogoutInput{
			RefreshToken: req.RefreshToken,
		})
	}

	c.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Successfully logged out",
	})
}

// ForgotPassword handles POST /auth/forgot-password requests.
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, string(domainerror.ErrCodeInvalidEmail))
		return
	}

	output, err := c.forgotPasswordUseCase.Execute(ctx.Request.Context(), auth.ForgotPasswordInput{
		Email: req.Email,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Message: output.Message,
	})
}

// ResetPassword handles POST /auth/reset-password requests.
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, string(domainerror.ErrCodeMissingFields))
		return
	}

	output, err := c.resetPasswordUseCase.Execute(ctx.Request.Context(), auth.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Message: output.Message,
	})
}

// ConfirmEmail handles GET /auth/confirm?token= requests.
func (c *AuthController) ConfirmEmail(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "token is required",
			Code:  string(domainerror.ErrCodeInvalidConfirmationToken),
		})
		return
	}

	if err := c.confirmEmailUseCase.Execute(ctx.Request.Context(), token); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Email address confirmed",
	})
}

// PasswordStrength handles POST /auth/password-strength requests.
func (c *AuthController) PasswordStrength(ctx *gin.Context) {
	var req dto.PasswordStrengthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, string(domainerror.ErrCodeMissingFields))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToPasswordStrengthResponse(valueobject.EvaluatePassword(req.Password)))
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, tokens *adapter.TokenPair) {
	maxAge := int(time.Until(tokens.AccessExpiresAt).Seconds())
	if maxAge <= 0 {
		return
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookieName, tokens.AccessToken, maxAge, "/", c.cookie.Domain, c.cookie.Secure, true)
}

func (c *AuthController) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", c.cookie.Domain, c.cookie.Secure, true)
}
