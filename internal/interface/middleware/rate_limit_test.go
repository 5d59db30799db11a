package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

func newLimitedRouter(t *testing.T, max int, allow AllowFunc) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.Use(RateLimit(rdb, max, time.Minute, KeyByIP("test"), allow, helpers.NopLogger()))
	r.Any("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r, mr
}

func hit(r *gin.Engine, method, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksAfterMax(t *testing.T) {
	r, mr := newLimitedRouter(t, 2, nil)

	w := hit(r, http.MethodPost, "203.0.113.9")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, hit(r, http.MethodPost, "203.0.113.9").Code)

	w = hit(r, http.MethodPost, "203.0.113.9")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, hit(r, http.MethodPost, "198.51.100.1").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusNoContent, hit(r, http.MethodPost, "203.0.113.9").Code)
}

func TestRateLimit_AllowFuncs(t *testing.T) {
	r, _ := newLimitedRouter(t, 1, AllowAny(AllowSafeMethods(), AllowPrivateIP()))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, hit(r, http.MethodGet, "203.0.113.9").Code)
		assert.Equal(t, http.StatusNoContent, hit(r, http.MethodPost, "10.0.0.4").Code)
	}
	assert.Equal(t, http.StatusNoContent, hit(r, http.MethodPost, "203.0.113.9").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, http.MethodDelete, "203.0.113.9").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r, mr := newLimitedRouter(t, 1, nil)
	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, hit(r, http.MethodPost, "203.0.113.9").Code)
	}
}

func TestRequestIDAndRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), RealIP())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id")+"|"+c.GetString("real_ip"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id+"|203.0.113.7", w.Body.String())

	const given = "3f1c2a8e-9b1d-4c55-8c7e-2b8f0e6d4a11"
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, given)
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, given+"|198.51.100.2", w.Body.String())
}
