package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/calc/internal/config"
	"github.com/ternarybob/calc/internal/keypad"
	"github.com/ternarybob/calc/pkg/calc"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Service.DataDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	return NewServer(cfg, keypad.New(calc.New())).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) calc.Snapshot {
	t.Helper()
	var snap calc.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	return snap
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	SetVersion("1.2.3")
	rec = do(t, h, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"1.2.3","service":"calc"}`, rec.Body.String())
}

func TestKeys(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/calculator/keys", KeysRequest{Keys: []string{"2", "+", "3", "*", "4", "="}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "20", decodeSnapshot(t, rec).Current)

	rec = do(t, h, http.MethodGet, "/calculator", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20", decodeSnapshot(t, rec).Display)
}

func TestKeys_Errors(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/calculator/keys", KeysRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/calculator/keys", KeysRequest{Keys: []string{"1", "%"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown key")

	req := httptest.NewRequest(http.MethodPost, "/calculator/keys", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDiscreteOperations(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/calculator/digits", DigitRequest{Digit: "7"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/calculator/operations", OperationRequest{Operator: "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "pending(/)", snap.State)
	assert.Equal(t, "7", snap.Previous)

	rec = do(t, h, http.MethodPost, "/calculator/digits", DigitRequest{Digit: "2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/calculator/compute", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.5", decodeSnapshot(t, rec).Current)

	rec = do(t, h, http.MethodPost, "/calculator/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, calc.New().Snapshot(), decodeSnapshot(t, rec))
}

func TestDiscreteOperations_InvalidInput(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/calculator/digits", DigitRequest{Digit: "12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/calculator/operations", OperationRequest{Operator: "^"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDivisionByZero(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/calculator/keys", KeysRequest{Keys: []string{"5", "/", "0", "="}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Error", decodeSnapshot(t, rec).Display)
}

func TestAPIKeyAuth(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) {
		cfg.API.APIKey = "secret"
	})

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/calculator", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/calculator", nil)
	req.Header.Set("X-API-Key", "secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMCPRoute_NoRequestDeadline(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Service.DataDir = t.TempDir()

	hasDeadline := true
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusAccepted)
	})
	h := newServer(cfg, keypad.New(calc.New()), mcpHandler).Handler()

	rec := do(t, h, http.MethodPost, "/mcp", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.False(t, hasDeadline)

	rec = do(t, h, http.MethodGet, "/calculator", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMCPRoute_Disabled(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) {
		cfg.MCP.Enabled = false
	})

	rec := do(t, h, http.MethodPost, "/mcp", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
