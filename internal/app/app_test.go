package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApplication builds a full application against a temp dataset,
// configured entirely through the environment.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("Date,Coin,Close,Marketcap,Return\n")
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 90; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		ret := ""
		if i > 0 {
			ret = "0.01"
		}
		fmt.Fprintf(&sb, "%s,Bitcoin,%f,800000000,%s\n", date, 20000.0+10*float64(i), ret)
		fmt.Fprintf(&sb, "%s,Ethereum,%f,200000000,%s\n", date, 1500.0+float64(i), ret)
	}

	path := filepath.Join(t.TempDir(), "crypto.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	t.Setenv("CRYPTOPULSE_DATASET_PATH", path)
	t.Setenv("CRYPTOPULSE_LOGGING_OUTPUT", "stdout")
	t.Setenv("CRYPTOPULSE_LOGGING_LEVEL", "error")

	application, err := NewApplication("")
	require.NoError(t, err)
	return application
}

func TestApplication_RouterEndpoints(t *testing.T) {
	application := newTestApplication(t)
	server := httptest.NewServer(application.Router)
	defer server.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK},
		{"coins", http.MethodGet, "/api/coins", http.StatusOK},
		{"series", http.MethodGet, "/api/coins/Bitcoin/series", http.StatusOK},
		{"forecast", http.MethodGet, "/api/coins/Bitcoin/forecast", http.StatusOK},
		{"volatility", http.MethodGet, "/api/volatility", http.StatusOK},
		{"correlation", http.MethodGet, "/api/coins/Ethereum/correlation", http.StatusOK},
		{"decomposition", http.MethodGet, "/api/coins/Ethereum/decomposition", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"reload", http.MethodPost, "/api/dataset/reload", http.StatusOK},
		{"unknown coin", http.MethodGet, "/api/coins/Dogecoin/series", http.StatusNotFound},
		{"bad horizon", http.MethodGet, "/api/coins/Bitcoin/forecast?horizon=forever", http.StatusBadRequest},
	}

	client := server.Client()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, server.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := client.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestApplication_RequestIDHeader(t *testing.T) {
	application := newTestApplication(t)
	server := httptest.NewServer(application.Router)
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestNewApplication_BadConfig(t *testing.T) {
	t.Setenv("CRYPTOPULSE_SERVER_PORT", "-1")

	_, err := NewApplication("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}
