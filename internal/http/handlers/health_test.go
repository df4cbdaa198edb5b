package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	httpH "github.com/inquiryos/inquiry-os/internal/http/handlers"
)

func TestHealthHandler_HealthReportsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := httpH.NewHealthHandler()
	r.GET("/health", h.Health)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "0.1.0", body["version"])
}

func TestHealthHandler_PingRepliesWithPong(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := httpH.NewHealthHandler()
	r.GET("/api/ping", h.Ping)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}
