package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmattila/artstore-go/internal/errors"
)

func TestLiveness(t *testing.T) {
	e, _, controller := setupTestEnvironment(t)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.Liveness(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "API is running", resp["message"])
}

func TestHealthCheck(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("Ping").Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/health", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.HealthCheck(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "connected", resp["database_status"])
	assert.NotContains(t, resp, "database_error")

	mockDS.AssertExpectations(t)
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("Ping").Return(errors.NewStd("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/api/v2/health", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.HealthCheck(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "disconnected", resp["database_status"])
	assert.Contains(t, resp["database_error"], "connection refused")

	mockDS.AssertExpectations(t)
}

func TestTestConnection(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("Ping").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/test-connection/", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.TestConnection(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestTestConnectionFailure(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("Ping").Return(errors.NewStd("connection refused"))

	req := httptest.NewRequest(http.MethodPost, "/api/v2/test-connection/", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.TestConnection(ctx))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CorrelationID)

	mockDS.AssertExpectations(t)
}
