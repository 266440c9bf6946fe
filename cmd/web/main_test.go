package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
)

const testCSV = `fecha,region,categoria,canal,vendedor,producto,unidades,ventas_total,costo_total,meta_mensual,cliente
2024-01-15,Norte,Electronica,Online,Ana,Laptop,2,1200,900,1000,C001
2024-01-20,Sur,Ropa,Tienda,Luis,Camisa,5,250,100,500,C002
2024-02-03,Norte,Hogar,Online,Eva,Silla,4,300,180,800,C003`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig loads defaults the same way main does, pointed at a temp CSV.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ventas_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))

	t.Setenv("DATA_CSV_FILE", path)
	t.Setenv("SECURITY_RATE_LIMIT_ENABLED", "false")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestApp_Routes(t *testing.T) {
	a := newApp(testConfig(t), testLogger())

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/dimensions", http.StatusOK, "application/json"},
		{"/api/kpis", http.StatusOK, "application/json"},
		{"/api/breakdown/region?order=sales", http.StatusOK, "application/json"},
		{"/api/monthly-sales", http.StatusOK, "application/json"},
		{"/api/salespeople", http.StatusOK, "application/json"},
		{"/api/goal", http.StatusOK, "application/json"},
		{"/api/transactions", http.StatusOK, "application/json"},
		{"/api/dashboard", http.StatusOK, "application/json"},
		{"/api/export.xlsx", http.StatusOK, "spreadsheetml"},
		{"/metrics", http.StatusOK, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			a.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

			if tt.contentType == "application/json" {
				var result map[string]any
				require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
				assert.Equal(t, true, result["success"])
			}
		})
	}
}

func TestApp_KPIsFiltered(t *testing.T) {
	a := newApp(testConfig(t), testLogger())

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/kpis?region=Norte", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			TotalSales      string `json:"total_sales"`
			UniqueCustomers int    `json:"unique_customers"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, "1500", response.Data.TotalSales)
	assert.Equal(t, 2, response.Data.UniqueCustomers)
}

func TestApp_SSERoutes(t *testing.T) {
	a := newApp(testConfig(t), testLogger())

	for _, route := range []string{"/sse/refresh", "/sse/kpis", "/sse/charts", "/sse/table"} {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			a.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, route, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
			assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
			assert.Contains(t, w.Body.String(), "datastar-patch-elements")
		})
	}
}

func TestApp_ErrorHandling(t *testing.T) {
	a := newApp(testConfig(t), testLogger())

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/nonexistent", http.StatusNotFound},
		{http.MethodPost, "/api/kpis", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/breakdown/weekday", http.StatusBadRequest},
		{http.MethodGet, "/api/transactions?limit=0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			a.handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestApp_RecordsMetrics(t *testing.T) {
	a := newApp(testConfig(t), testLogger())

	a.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/goal", nil))

	families, err := a.metrics.Registry().Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "sales_dashboard_http_requests_total")
	assert.Contains(t, names, "sales_dashboard_dataset_loads_total")
}

func TestRun_LoadFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.CSVFile = filepath.Join(t.TempDir(), "missing.csv")

	err := run(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Server.ShutdownTimeout = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, testLogger()) }()

	url := fmt.Sprintf("http://%s/health", cfg.Address())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(body), `"healthy"`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}
