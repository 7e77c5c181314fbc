// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sobrazero/sobrazero-backend/internal/config"
)

func limitedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAuthRateLimitBlocksAfterBudget(t *testing.T) {
	r := limitedRouter(AuthRateLimit(config.RateLimitConfig{
		GeneralPerSecond: 10,
		AuthPerMinute:    2,
		UploadPerMinute:  10,
	}))

	statuses := make([]int, 3)
	for i := range statuses {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		statuses[i] = w.Code
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}

func TestRateLimitBucketsArePerClient(t *testing.T) {
	r := limitedRouter(AuthRateLimit(config.RateLimitConfig{
		GeneralPerSecond: 10,
		AuthPerMinute:    1,
		UploadPerMinute:  10,
	}))

	for i, addr := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "client %d", i)
	}
}
