package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskpulse/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         interface{}
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusOK,
			data:         map[string]interface{}{"status": "ok", "connections": 3},
			expectedBody: `{"status":"ok","connections":3}`,
		},
		{
			name:         "created",
			status:       http.StatusCreated,
			data:         struct{ ID int64 `json:"id"` }{ID: 9},
			expectedBody: `{"id":9}`,
		},
		{
			name:         "nil response",
			status:       http.StatusOK,
			data:         nil,
			expectedBody: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRespondWithError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Task not found", resp.Error)
	assert.Equal(t, GetTraceID(req.Context()), resp.TraceID)
	assert.NotContains(t, w.Body.String(), "Code", "status code is not serialized")
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request format")

	assert.JSONEq(t, `{"error":"Invalid request format"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		opts          []ResponseOption
		expectedLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, expectedLevel: "ERROR"},
		{name: "client error", status: http.StatusBadRequest, expectedLevel: "DEBUG"},
		{
			name:          "elevated client error",
			status:        http.StatusUnauthorized,
			opts:          []ResponseOption{WithElevatedLogLevel()},
			expectedLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logBuf, log := logger.NewTestLogger(t)
			req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
			req = req.WithContext(logger.WithLogger(SetTraceID(req.Context()), log))
			w := httptest.NewRecorder()

			err := errors.New("dial postgres://app:hunter22@db:5432/tasks: refused")
			RespondWithErrorAndLog(w, req, tc.status, "Something went wrong", err, tc.opts...)

			assert.Equal(t, tc.status, w.Code)
			assert.NotContains(t, w.Body.String(), "postgres", "raw error must not reach the client")
			assert.Contains(t, w.Body.String(), "Something went wrong")

			entries, parseErr := logBuf.GetLogEntries()
			require.NoError(t, parseErr)
			require.NotEmpty(t, entries)
			last := entries[len(entries)-1]
			assert.Equal(t, tc.expectedLevel, last["level"])
			assert.Equal(t, "API error response", last["msg"])
			assert.NotContains(t, last["error"], "hunter22", "logged error must be redacted")
			assert.Equal(t, GetTraceID(req.Context()), last["trace_id"])
		})
	}
}
