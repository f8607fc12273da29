// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ethergyx/backend/internal/application/usecase/dashboard"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/integration/entrypoint/dto"
	"github.com/ethergyx/backend/internal/integration/entrypoint/middleware"
)

// DashboardController handles dashboard endpoints.
type DashboardController struct {
	getDashboardUseCase   *dashboard.GetDashboardUseCase
	recordActivityUseCase *dashboard.RecordActivityUseCase
}

// NewDashboardController creates a new dashboard controller instance.
func NewDashboardController(
	getDashboardUseCase *dashboard.GetDashboardUseCase,
	recordActivityUseCase *dashboard.RecordActivityUseCase,
) *DashboardController {
	return &DashboardController{
		getDashboardUseCase:   getDashboardUseCase,
		recordActivityUseCase: recordActivityUseCase,
	}
}

// GetDashboard handles GET /dashboard requests.
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	accountID, ok := middleware.GetAccountIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	days := dashboard.DefaultPeriodDays
	if raw := ctx.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: domainerror.ErrInvalidPeriod.Error(),
				Code:  string(domainerror.ErrCodeInvalidPeriod),
			})
			return
		}
		days = parsed
	}

	output, err := c.getDashboardUseCase.Execute(ctx.Request.Context(), dashboard.GetDashboardInput{
		AccountID:  accountID,
		PeriodDays: days,
		Now:        time.Now(),
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToDashboardResponse(output))
}

// RecordActivity handles POST /dashboard/activities requests.
func (c *DashboardController) RecordActivity(ctx *gin.Context) {
	accountID, ok := middleware.GetAccountIDFromContext(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	var req dto.RecordActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, string(domainerror.ErrCodeMissingActivityType))
		return
	}

	input := dashboard.RecordActivityInput{
		AccountID:    accountID,
		Type:         req.Type,
		Status:       entity.ActivityStatus(req.Status),
		EnergyKWh:    req.EnergyKWh,
		CostSavings:  req.CostSavings,
		CarbonOffset: req.CarbonOffset,
	}
	if req.OccurredAt != nil {
		input.OccurredAt = *req.OccurredAt
	}

	activity, err := c.recordActivityUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToActivityResponse(activity))
}
