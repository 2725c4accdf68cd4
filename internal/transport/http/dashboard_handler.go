// Package http exposes the dashboard's analytical queries over a chi
// router. Handlers validate parameters, call the service layer, and shape
// responses; all computation lives below the service boundary.
package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cryptopulse/internal/analytics"
	"cryptopulse/internal/config"
	apierrors "cryptopulse/internal/errors"
)

// DashboardHandler serves the analytical dashboard endpoints.
type DashboardHandler struct {
	service      DashboardServiceInterface
	defaults     config.AnalyticsConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates the dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, defaults config.AnalyticsConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		defaults:     defaults,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard API routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/coins", h.GetCoins)
	r.Get("/volatility", h.GetVolatility)
	r.Post("/dataset/reload", h.ReloadDataset)

	r.Route("/coins/{coin}", func(r chi.Router) {
		r.Use(h.CoinCtx)
		r.Get("/series", h.GetSeries)
		r.Get("/forecast", h.GetForecast)
		r.Get("/correlation", h.GetCorrelation)
		r.Get("/decomposition", h.GetDecomposition)
	})

	return r
}

// CoinCtx validates the coin URL parameter.
func (h *DashboardHandler) CoinCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		coin := chi.URLParam(r, "coin")
		if coin == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("coin", "Coin identifier is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// coinListResponse is the body of GET /coins.
type coinListResponse struct {
	Coins []string `json:"coins"`
	Count int      `json:"count"`
}

// GetCoins handles GET /api/coins.
func (h *DashboardHandler) GetCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := h.service.Coins(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, coinListResponse{Coins: coins, Count: len(coins)})
}

// observationResponse is one series row. Return is null on a coin's first
// observed day.
type observationResponse struct {
	Date      time.Time `json:"date"`
	Close     float64   `json:"close"`
	Marketcap float64   `json:"marketcap"`
	Return    *float64  `json:"return"`
}

// seriesResponse is the trend view plus the latest-observation metric.
type seriesResponse struct {
	Coin                 string                `json:"coin"`
	Observations         []observationResponse `json:"observations"`
	LatestClose          float64               `json:"latest_close"`
	LatestDate           time.Time             `json:"latest_date"`
	DailyChangePercent   *float64              `json:"daily_change_percent"`
	WeeklyChangePercent  *float64              `json:"weekly_change_percent"`
	MonthlyChangePercent *float64              `json:"monthly_change_percent"`
}

// GetSeries handles GET /api/coins/{coin}/series.
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	coin := chi.URLParam(r, "coin")

	series, err := h.service.Series(r.Context(), coin)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	observations := make([]observationResponse, series.Len())
	for i, obs := range series.Observations {
		observations[i] = observationResponse{
			Date:      obs.Date,
			Close:     obs.Close,
			Marketcap: obs.Marketcap,
			Return:    jsonFloat(obs.Return),
		}
	}

	closes := series.Closes()
	latest := series.Latest()
	render.JSON(w, r, seriesResponse{
		Coin:                 coin,
		Observations:         observations,
		LatestClose:          latest.Close,
		LatestDate:           latest.Date,
		DailyChangePercent:   jsonFloat(changePercent(closes, 1)),
		WeeklyChangePercent:  jsonFloat(changePercent(closes, 7)),
		MonthlyChangePercent: jsonFloat(changePercent(closes, 30)),
	})
}

// GetForecast handles GET /api/coins/{coin}/forecast?horizon=30.
func (h *DashboardHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	coin := chi.URLParam(r, "coin")

	horizon, ok := h.intQueryParam(w, r, "horizon", h.defaults.ForecastHorizonDays)
	if !ok {
		return
	}
	if horizon <= 0 || horizon > 365 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("horizon", "horizon must be between 1 and 365 days"))
		return
	}

	result, err := h.service.Forecast(r.Context(), coin, horizon)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// volatilityEntryResponse is one row of the volatility views. Volatility is
// null for coins whose standard deviation is undefined.
type volatilityEntryResponse struct {
	Coin       string   `json:"coin"`
	Volatility *float64 `json:"volatility"`
	Samples    int      `json:"samples"`
}

// volatilityResponse is the body of GET /volatility. Recommendation is the
// lowest-volatility coin; a stability heuristic, not financial advice.
type volatilityResponse struct {
	Table          []volatilityEntryResponse `json:"table"`
	MostStable     []volatilityEntryResponse `json:"most_stable"`
	MostVolatile   []volatilityEntryResponse `json:"most_volatile"`
	Recommendation *string                   `json:"recommendation"`
}

// GetVolatility handles GET /api/volatility?n=5.
func (h *DashboardHandler) GetVolatility(w http.ResponseWriter, r *http.Request) {
	n, ok := h.intQueryParam(w, r, "n", h.defaults.VolatilityTopN)
	if !ok {
		return
	}
	if n <= 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("n", "n must be positive"))
		return
	}

	table, err := h.service.Volatility(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := volatilityResponse{
		Table:        volatilityEntries(table.Entries()),
		MostStable:   volatilityEntries(table.MostStable(n)),
		MostVolatile: volatilityEntries(table.MostVolatile(n)),
	}
	if rec, ok := table.Recommendation(); ok {
		resp.Recommendation = &rec.Coin
	}
	render.JSON(w, r, resp)
}

// correlationEntryResponse is one coin's coefficient against the selected
// coin; null when the pair is degenerate.
type correlationEntryResponse struct {
	Coin        string   `json:"coin"`
	Coefficient *float64 `json:"coefficient"`
	Samples     int      `json:"samples"`
}

type correlationResponse struct {
	Coin           string                     `json:"coin"`
	DropIncomplete bool                       `json:"drop_incomplete"`
	Entries        []correlationEntryResponse `json:"entries"`
}

// GetCorrelation handles GET /api/coins/{coin}/correlation?complete=true.
func (h *DashboardHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	coin := chi.URLParam(r, "coin")

	dropIncomplete := h.defaults.DropIncompleteDates
	if raw := r.URL.Query().Get("complete"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("complete", "complete must be a boolean"))
			return
		}
		dropIncomplete = parsed
	}

	vector, err := h.service.Correlation(r.Context(), coin, dropIncomplete)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	entries := make([]correlationEntryResponse, len(vector))
	for i, entry := range vector {
		entries[i] = correlationEntryResponse{
			Coin:        entry.Coin,
			Coefficient: jsonFloat(entry.Coefficient),
			Samples:     entry.Samples,
		}
	}
	render.JSON(w, r, correlationResponse{
		Coin:           coin,
		DropIncomplete: dropIncomplete,
		Entries:        entries,
	})
}

// GetDecomposition handles GET /api/coins/{coin}/decomposition?period=30.
func (h *DashboardHandler) GetDecomposition(w http.ResponseWriter, r *http.Request) {
	coin := chi.URLParam(r, "coin")

	period, ok := h.intQueryParam(w, r, "period", h.defaults.SeasonalPeriod)
	if !ok {
		return
	}
	if period < 2 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("period", "period must be at least 2"))
		return
	}

	dec, err := h.service.Decomposition(r.Context(), coin, period)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dec)
}

// reloadResponse is the body of POST /dataset/reload.
type reloadResponse struct {
	Fingerprint string `json:"fingerprint"`
	Rows        int    `json:"rows"`
	Coins       int    `json:"coins"`
}

// ReloadDataset handles POST /api/dataset/reload.
func (h *DashboardHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded",
		slog.String("fingerprint", ds.Fingerprint()),
		slog.Int("rows", ds.Len()))

	render.JSON(w, r, reloadResponse{
		Fingerprint: ds.Fingerprint(),
		Rows:        ds.Len(),
		Coins:       len(ds.Coins()),
	})
}

// intQueryParam parses an optional integer query parameter, responding with
// a validation error (and returning ok=false) when it is malformed.
func (h *DashboardHandler) intQueryParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(name, name+" must be an integer"))
		return 0, false
	}
	return v, true
}

// jsonFloat converts NaN to a JSON null; encoding/json cannot encode NaN.
func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

// changePercent is the percent change between the last close and the close
// lag rows earlier (or the earliest available when history is shorter).
// NaN when undefined.
func changePercent(closes []float64, lag int) float64 {
	if len(closes) < 2 {
		return math.NaN()
	}
	current := closes[len(closes)-1]
	pastIdx := len(closes) - 1 - lag
	if pastIdx < 0 {
		pastIdx = 0
	}
	past := closes[pastIdx]
	if past == 0 {
		return math.NaN()
	}
	return (current - past) / past * 100
}

// volatilityEntries shapes analytics entries for JSON.
func volatilityEntries(entries []analytics.CoinVolatility) []volatilityEntryResponse {
	out := make([]volatilityEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = volatilityEntryResponse{
			Coin:       e.Coin,
			Volatility: jsonFloat(e.Volatility),
			Samples:    e.Samples,
		}
	}
	return out
}
