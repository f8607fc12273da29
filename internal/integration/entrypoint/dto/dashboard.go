// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ethergyx/backend/internal/application/usecase/dashboard"
	"github.com/ethergyx/backend/internal/domain/entity"
)

// DashboardResponse represents the response for the dashboard API.
type DashboardResponse struct {
	Data DashboardData `json:"data"`
}

// DashboardData represents the data section of the dashboard response.
type DashboardData struct {
	WelcomeName      string             `json:"welcome_name"`
	Period           PeriodResponse     `json:"period"`
	Metrics          DashboardMetrics   `json:"metrics"`
	RecentActivities []ActivityResponse `json:"recent_activities"`
}

// PeriodResponse represents the summarized window.
type PeriodResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// DashboardMetrics holds the period totals.
type DashboardMetrics struct {
	EnergyUsageKWh float64 `json:"energy_usage_kwh"`
	CostSavingsUSD float64 `json:"cost_savings_usd"`
	CarbonOffsetT  float64 `json:"carbon_offset_tons"`
}

// ActivityResponse represents a single energy activity.
type ActivityResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	EnergyKWh    float64   `json:"energy_kwh"`
	CostSavings  float64   `json:"cost_savings_usd"`
	CarbonOffset float64   `json:"carbon_offset_tons"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// RecordActivityRequest represents the request body for recording an energy activity.
// Quantities accept JSON numbers or decimal strings.
type RecordActivityRequest struct {
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	EnergyKWh    decimal.Decimal `json:"energy_kwh"`
	CostSavings  decimal.Decimal `json:"cost_savings_usd"`
	CarbonOffset decimal.Decimal `json:"carbon_offset_tons"`
	OccurredAt   *time.Time      `json:"occurred_at"`
}

// ToDashboardResponse converts a GetDashboardOutput to a DashboardResponse DTO.
func ToDashboardResponse(output *dashboard.GetDashboardOutput) DashboardResponse {
	activities := make([]ActivityResponse, len(output.RecentActivities))
	for i, activity := range output.RecentActivities {
		activities[i] = ToActivityResponse(activity)
	}

	return DashboardResponse{
		Data: DashboardData{
			WelcomeName: output.WelcomeName,
			Period: PeriodResponse{
				StartDate: output.PeriodStart.Format("2006-01-02"),
				EndDate:   output.PeriodEnd.Format("2006-01-02"),
			},
			Metrics: DashboardMetrics{
				EnergyUsageKWh: output.EnergyUsageKWh.InexactFloat64(),
				CostSavingsUSD: output.CostSavings.InexactFloat64(),
				CarbonOffsetT:  output.CarbonOffset.InexactFloat64(),
			},
			RecentActivities: activities,
		},
	}
}

// ToActivityResponse converts a domain EnergyActivity to an ActivityResponse DTO.
func ToActivityResponse(activity *entity.EnergyActivity) ActivityResponse {
	return ActivityResponse{
		ID:           activity.ID.String(),
		Type:         activity.Type,
		Status:       string(activity.Status),
		EnergyKWh:    activity.EnergyKWh.InexactFloat64(),
		CostSavings:  activity.CostSavings.InexactFloat64(),
		CarbonOffset: activity.CarbonOffset.InexactFloat64(),
		OccurredAt:   activity.OccurredAt,
	}
}
