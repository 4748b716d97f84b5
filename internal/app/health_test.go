package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/otclogin/internal/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_health(t *testing.T) {
	a := &App{}
	req := &router.Request{Request: httptest.NewRequest(http.MethodGet, "/health", nil)}

	got, err := a.health(req)
	require.NoError(t, err)

	resp, ok := got.(healthResponse)
	require.True(t, ok)
	assert.Equal(t, healthUp, resp.Status)
	assert.Empty(t, resp.Checks)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "service is up", resp.Message())
}

func TestHealthResponse_StatusCode(t *testing.T) {
	resp := healthResponse{Status: healthDown, Checks: map[string]string{"redis": healthDown}}

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
	assert.Equal(t, "service is down", resp.Message())
}
