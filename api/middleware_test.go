package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func newTestRouter(adminToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := newRouter()
	router.Use(loggingMiddleware(newTestLogger()))
	router.GET("/health", health())
	router.GET("/metrics", metricsHandler())

	admin := router.Group("/admin", adminAuthMiddleware(adminToken, newTestLogger()))
	admin.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	return router
}

func serve(router *gin.Engine, method string, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuthMiddleware(t *testing.T) {
	testCases := []struct {
		name           string
		configured     string
		authorization  string
		expectedStatus int
	}{
		{name: "ValidToken", configured: "s3cret", authorization: "Bearer s3cret", expectedStatus: http.StatusOK},
		{name: "WrongToken", configured: "s3cret", authorization: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "MissingHeader", configured: "s3cret", expectedStatus: http.StatusUnauthorized},
		{name: "NotBearer", configured: "s3cret", authorization: "Basic s3cret", expectedStatus: http.StatusUnauthorized},
		{name: "NoTokenConfigured", configured: "", authorization: "Bearer ", expectedStatus: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(tc.configured)
			w := serve(router, http.MethodGet, "/admin/ping", map[string]string{"Authorization": tc.authorization})
			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusUnauthorized {
				require.JSONEq(t, `{"error":"admin authorization required"}`, w.Body.String())
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	assert := require.New(t)
	router := newTestRouter("")

	w := serve(router, http.MethodGet, "/health", nil)
	assert.Equal(http.StatusOK, w.Code)
	assert.Len(w.Header().Get(HeaderRequestID), 36, "a uuid is generated")

	w = serve(router, http.MethodGet, "/health", map[string]string{HeaderRequestID: "abc-123"})
	assert.Equal("abc-123", w.Header().Get(HeaderRequestID), "a caller supplied id is echoed")
}

func TestCORSPreflight(t *testing.T) {
	assert := require.New(t)
	router := newTestRouter("")

	w := serve(router, http.MethodOptions, "/search", nil)
	assert.Equal(http.StatusNoContent, w.Code)
	assert.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	assert := require.New(t)
	router := newTestRouter("")

	serve(router, http.MethodGet, "/health", nil)
	w := serve(router, http.MethodGet, "/metrics", nil)
	assert.Equal(http.StatusOK, w.Code)
	assert.True(strings.Contains(w.Body.String(), `schoolfinder_http_requests_total{method="GET",route="/health",status="200"}`))
}
