package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/queue-backend/internal/infrastructure/logging"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{
		Level:       "info",
		Format:      "json",
		Output:      &buf,
		ServiceName: "test",
		Environment: "test",
	})

	handler := RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services?status=waiting", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/v1/services", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(len("short and stout")), entry["bytes"])
	assert.Equal(t, "status=waiting", entry["query"])
	assert.Equal(t, "WARN", entry["level"])

	// The context handler injects the request ID set by RequestID, which
	// must match the one echoed in the response header.
	assert.Equal(t, rec.Header().Get(RequestIDHeader), entry["request_id"])
}

func TestRecoveryLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	})

	handler := RecoveryLogger(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"An unexpected error occurred","code":"INTERNAL_ERROR"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}
