// Package services orchestrates the analytical engines over the cached
// dataset and exposes them as the query operations the transport layer
// consumes.
package services

import (
	"context"
	"log/slog"
	"sync"

	"cryptopulse/internal/analytics"
	"cryptopulse/internal/config"
	"cryptopulse/internal/dataset"
	"cryptopulse/internal/forecast"
	"cryptopulse/internal/seasonal"
)

// DashboardService answers every dashboard query. All operations are pure
// reads over the cached dataset; the volatility table is additionally
// memoized per dataset version since it does not depend on the selected
// coin. Everything else is cheap enough to recompute per request.
type DashboardService struct {
	cache    *dataset.Cache
	source   string
	defaults config.AnalyticsConfig
	logger   *slog.Logger

	mu             sync.Mutex
	volFingerprint string
	volTable       analytics.VolatilityTable
}

// NewDashboardService creates the dashboard service over a dataset cache.
func NewDashboardService(cache *dataset.Cache, source string, defaults config.AnalyticsConfig, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		cache:    cache,
		source:   source,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// Dataset returns the current dataset, loading or reloading it as needed.
func (s *DashboardService) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	return s.cache.Get(ctx, s.source)
}

// Coins lists the distinct coin identifiers in the dataset, sorted.
func (s *DashboardService) Coins(ctx context.Context) ([]string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Coins(), nil
}

// Series returns the date-ordered observation series for one coin.
func (s *DashboardService) Series(ctx context.Context, coin string) (*dataset.CoinSeries, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Select(coin)
}

// Forecast fits the forecasting model to the coin's close history.
// horizonDays <= 0 selects the configured default.
func (s *DashboardService) Forecast(ctx context.Context, coin string, horizonDays int) (*forecast.Result, error) {
	if horizonDays <= 0 {
		horizonDays = s.defaults.ForecastHorizonDays
	}

	series, err := s.Series(ctx, coin)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "fitting forecast model",
		slog.String("coin", coin),
		slog.Int("observations", series.Len()),
		slog.Int("horizon_days", horizonDays))

	return forecast.Forecast(series, horizonDays)
}

// Volatility returns the dataset-wide volatility ranking, memoized per
// dataset fingerprint.
func (s *DashboardService) Volatility(ctx context.Context) (analytics.VolatilityTable, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return analytics.VolatilityTable{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.volFingerprint != ds.Fingerprint() {
		s.volTable = analytics.RankVolatility(ds)
		s.volFingerprint = ds.Fingerprint()
		s.logger.InfoContext(ctx, "volatility table recomputed",
			slog.String("fingerprint", ds.Fingerprint()),
			slog.Int("coins", s.volTable.Len()))
	}

	return s.volTable, nil
}

// Correlation computes the coin's return correlation against all coins.
func (s *DashboardService) Correlation(ctx context.Context, coin string, dropIncomplete bool) (analytics.CorrelationVector, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.CorrelationFor(ds, coin, dropIncomplete)
}

// Decomposition computes the additive seasonal decomposition of the coin's
// close series. period <= 0 selects the configured default.
func (s *DashboardService) Decomposition(ctx context.Context, coin string, period int) (*seasonal.Decomposition, error) {
	if period <= 0 {
		period = s.defaults.SeasonalPeriod
	}

	series, err := s.Series(ctx, coin)
	if err != nil {
		return nil, err
	}
	return seasonal.Decompose(series, period)
}

// Reload invalidates the dataset cache and loads the source fresh.
func (s *DashboardService) Reload(ctx context.Context) (*dataset.Dataset, error) {
	s.cache.Invalidate(s.source)
	return s.Dataset(ctx)
}

// Defaults exposes the configured analytics defaults to the transport layer.
func (s *DashboardService) Defaults() config.AnalyticsConfig {
	return s.defaults
}
