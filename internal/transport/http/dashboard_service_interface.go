package http

import (
	"context"

	"cryptopulse/internal/analytics"
	"cryptopulse/internal/dataset"
	"cryptopulse/internal/forecast"
	"cryptopulse/internal/seasonal"
	"cryptopulse/internal/services"
)

// DashboardServiceInterface is what the dashboard handler needs from the
// service layer. Defined here so handler tests can substitute a stub.
type DashboardServiceInterface interface {
	Coins(ctx context.Context) ([]string, error)
	Series(ctx context.Context, coin string) (*dataset.CoinSeries, error)
	Forecast(ctx context.Context, coin string, horizonDays int) (*forecast.Result, error)
	Volatility(ctx context.Context) (analytics.VolatilityTable, error)
	Correlation(ctx context.Context, coin string, dropIncomplete bool) (analytics.CorrelationVector, error)
	Decomposition(ctx context.Context, coin string, period int) (*seasonal.Decomposition, error)
	Reload(ctx context.Context) (*dataset.Dataset, error)
}

// HealthServiceInterface reports backend readiness.
type HealthServiceInterface interface {
	Check(ctx context.Context) services.HealthStatus
}
