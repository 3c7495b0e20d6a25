package restapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_monitor/internal/app/monitor"
	"wallet_monitor/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fixedBalances map[string]float64

func (b fixedBalances) Balances(context.Context, entity.Target) (map[string]float64, error) {
	out := make(map[string]float64, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out, nil
}

type fixedQuotes map[string]float64

func (q fixedQuotes) Price(_ context.Context, symbol string) (float64, error) {
	return q[symbol], nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *monitor.Facade) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := monitor.NewFacade(monitor.Config{BalanceInterval: time.Hour}, fixedQuotes{"ETH": 2000},
		monitor.WithBalanceSource(fixedBalances{"ETH": 40}))
	t.Cleanup(func() { _ = f.Shutdown() })
	return SetupRouter(NewMonitorHandler(f, nil), nil), f
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestTargetsLifecycle(t *testing.T) {
	r, f := newTestRouter(t)

	w, _ := do(t, r, http.MethodPost, "/api/v1/targets", TargetRequest{Chain: "Ethereum", Address: "0xABC"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/targets", TargetRequest{Chain: "ethereum", Address: "0xABC"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := do(t, r, http.MethodGet, "/api/v1/targets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	require.Eventually(t, func() bool { return len(f.ListAlerts()) == 1 }, time.Second, 5*time.Millisecond)

	w, body = do(t, r, http.MethodGet, "/api/v1/snapshots/balance/ethereum/0xABC", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := body["data"].(map[string]any)
	assert.Equal(t, 40.0, snap["balances"].(map[string]any)["ETH"])
	assert.Equal(t, 80000.0, snap["totalQuoteValue"])

	// 40 ETH * 2000 on first observation crosses the 50000 ETH threshold
	w, body = do(t, r, http.MethodGet, "/api/v1/alerts?symbol=eth&chain=ETHEREUM", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, body = do(t, r, http.MethodGet, "/api/v1/alerts?chain=bsc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])

	w, body = do(t, r, http.MethodGet, "/api/v1/alerts?symbol=ETH", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, body = do(t, r, http.MethodGet, "/api/v1/alerts?chain=ethereum", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, body = do(t, r, http.MethodGet, "/api/v1/alerts?symbol=btc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])

	w, body = do(t, r, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := body["data"].(map[string]any)
	assert.Equal(t, 80000.0, summary["totalMonitoredValue"])
	assert.Equal(t, 1.0, summary["alertCount"])
	assert.Equal(t, 1.0, summary["targetCount"])

	w, _ = do(t, r, http.MethodDelete, "/api/v1/targets/balance/Ethereum/0xABC", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/v1/targets/balance/Ethereum/0xABC", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterTarget_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := do(t, r, http.MethodPost, "/api/v1/targets", map[string]string{"chain": "Ethereum"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/targets", TargetRequest{Kind: "price", Chain: "Ethereum", Address: "0x1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// no transfer source configured
	w, body := do(t, r, http.MethodPost, "/api/v1/targets", TargetRequest{Kind: "transfer", Chain: "Ethereum", Address: "0x1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["error"])

	w, _ = do(t, r, http.MethodGet, "/api/v1/snapshots/balance/Ethereum/0xnone", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestThresholdEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := do(t, r, http.MethodGet, "/api/v1/thresholds/btc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BTC", body["data"].(map[string]any)["symbol"])
	assert.Equal(t, 500000.0, body["data"].(map[string]any)["value"])

	w, _ = do(t, r, http.MethodPut, "/api/v1/thresholds/doge", map[string]float64{"value": 250})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = do(t, r, http.MethodGet, "/api/v1/thresholds/DOGE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 250.0, body["data"].(map[string]any)["value"])

	w, _ = do(t, r, http.MethodPut, "/api/v1/thresholds/doge", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPruneAlerts(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := do(t, r, http.MethodPost, "/api/v1/alerts/prune?age=1h", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, body["data"].(map[string]any)["removed"])

	w, _ = do(t, r, http.MethodPost, "/api/v1/alerts/prune?age=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
