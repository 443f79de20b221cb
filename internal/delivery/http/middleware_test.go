package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newMiddlewareRouter(middleware gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("allows exact origin", func(t *testing.T) {
		router := newMiddlewareRouter(CORSMiddleware([]string{"http://localhost:5173"}))

		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allows wildcard prefix origin", func(t *testing.T) {
		router := newMiddlewareRouter(CORSMiddleware([]string{"http://localhost:*"}))

		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("ignores unknown origin", func(t *testing.T) {
		router := newMiddlewareRouter(CORSMiddleware([]string{"http://localhost:5173"}))

		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight with 204", func(t *testing.T) {
		router := newMiddlewareRouter(CORSMiddleware([]string{"http://localhost:5173"}))

		req, _ := http.NewRequest("OPTIONS", "/ping", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("returns 429 past the per-IP budget", func(t *testing.T) {
		// 1 request per minute with burst 1
		router := newMiddlewareRouter(RateLimitMiddleware(1))

		first := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(first, req)
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		router.ServeHTTP(second, req)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("zero budget disables limiting", func(t *testing.T) {
		router := newMiddlewareRouter(RateLimitMiddleware(0))

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/ping", nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}
