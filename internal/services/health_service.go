package services

import (
	"context"
	"time"
)

// HealthStatus reports service liveness and the dataset the instance serves.
type HealthStatus struct {
	Status             string    `json:"status"`
	DatasetFingerprint string    `json:"dataset_fingerprint,omitempty"`
	DatasetRows        int       `json:"dataset_rows,omitempty"`
	DatasetCoins       int       `json:"dataset_coins,omitempty"`
	Error              string    `json:"error,omitempty"`
	CheckedAt          time.Time `json:"checked_at"`
}

// HealthService reports the readiness of the dashboard backend.
type HealthService struct {
	dashboard *DashboardService
}

// NewHealthService creates a health service over the dashboard service.
func NewHealthService(dashboard *DashboardService) *HealthService {
	return &HealthService{dashboard: dashboard}
}

// Check loads the dataset through the cache and reports its identity. A
// dataset that cannot be loaded degrades the status rather than failing the
// endpoint.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "ok", CheckedAt: time.Now().UTC()}

	ds, err := s.dashboard.Dataset(ctx)
	if err != nil {
		status.Status = "degraded"
		status.Error = err.Error()
		return status
	}

	status.DatasetFingerprint = ds.Fingerprint()
	status.DatasetRows = ds.Len()
	status.DatasetCoins = len(ds.Coins())
	return status
}
