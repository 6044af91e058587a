package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminal-bench/reliefops/internal/config"
)

const secret = "0123456789abcdef-test"

func init() {
	gin.SetMode(gin.TestMode)
}

func signed(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func responderClaims(sub, role string, exp time.Time) Claims {
	return Claims{
		Name: "Field Team",
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func protectedRouter(cfg *config.Config, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"responder": GetResponder(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	cfg := &config.Config{JWTSecret: secret}
	r := protectedRouter(cfg)

	t.Run("should reject missing header", func(t *testing.T) {
		w := do(r, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should reject header without bearer prefix", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", signed(t, jwt.SigningMethodHS256, []byte(secret), responderClaims("r-1", "", time.Now().Add(time.Hour))))
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("should accept a valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(secret), responderClaims("r-1", "", time.Now().Add(time.Hour))))
		w := do(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"responder":"r-1"`)
	})

	t.Run("should reject expired tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(secret), responderClaims("r-1", "", time.Now().Add(-time.Hour))))
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("should reject tokens signed with another key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, jwt.SigningMethodHS256, []byte("another-secret-value"), responderClaims("r-1", "", time.Now().Add(time.Hour))))
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("should reject other signing methods", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, jwt.SigningMethodHS512, []byte(secret), responderClaims("r-1", "", time.Now().Add(time.Hour))))
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("should reject tokens without a subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(secret), responderClaims("", "", time.Now().Add(time.Hour))))
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})
}

func TestRequireRole(t *testing.T) {
	cfg := &config.Config{JWTSecret: secret}
	r := protectedRouter(cfg, RequireRole("coordinator"))
	exp := time.Now().Add(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(secret), responderClaims("r-1", "volunteer", exp)))
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(secret), responderClaims("r-2", "coordinator", exp)))
	assert.Equal(t, http.StatusOK, do(r, req).Code)
}

func TestAPIKey(t *testing.T) {
	route := func(key string) *gin.Engine {
		r := gin.New()
		r.POST("/sos", APIKey(key), func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	t.Run("should allow everything when no key is configured", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, do(route(""), httptest.NewRequest(http.MethodPost, "/sos", nil)).Code)
	})

	t.Run("should check the header", func(t *testing.T) {
		r := route("k-123")
		assert.Equal(t, http.StatusUnauthorized, do(r, httptest.NewRequest(http.MethodPost, "/sos", nil)).Code)

		req := httptest.NewRequest(http.MethodPost, "/sos", nil)
		req.Header.Set("X-API-Key", "k-123")
		assert.Equal(t, http.StatusCreated, do(r, req).Code)
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://ops.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://ops.example")
	w := do(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ops.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	t.Run("should allow a burst then refill", func(t *testing.T) {
		now := time.Unix(1_700_000_000, 0)
		rl := NewRateLimiter(2)
		rl.now = func() time.Time { return now }

		for i := 0; i < 4; i++ {
			assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
		}
		assert.False(t, rl.Allow("1.2.3.4"))
		assert.True(t, rl.Allow("5.6.7.8"), "buckets are per key")

		now = now.Add(time.Second)
		assert.True(t, rl.Allow("1.2.3.4"))
	})

	t.Run("should be safe for concurrent use", func(t *testing.T) {
		rl := NewRateLimiter(1000)
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rl.Allow("shared")
			}()
		}
		wg.Wait()
	})

	t.Run("should drop idle buckets", func(t *testing.T) {
		now := time.Unix(1_700_000_000, 0)
		rl := NewRateLimiter(1)
		rl.now = func() time.Time { return now }
		rl.Allow("old")

		now = now.Add(2 * time.Hour)
		rl.CleanupOldBuckets(time.Hour)
		assert.Empty(t, rl.buckets)
	})

	t.Run("should answer 429 through the middleware", func(t *testing.T) {
		r := gin.New()
		r.Use(NewRateLimiter(1).Middleware())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			codes = append(codes, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}

func TestSlidingWindowLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewSlidingWindowLimiter(time.Minute, 2)
	s.now = func() time.Time { return now }

	assert.True(t, s.Allow("src"))
	assert.True(t, s.Allow("src"))
	assert.False(t, s.Allow("src"))

	now = now.Add(61 * time.Second)
	assert.True(t, s.Allow("src"))

	t.Run("should prune sources idle for a full window", func(t *testing.T) {
		assert.True(t, s.Allow("other"))
		now = now.Add(30 * time.Second)
		s.Prune()
		assert.Len(t, s.windows, 2)

		now = now.Add(31 * time.Second)
		s.Prune()
		assert.Empty(t, s.windows)
	})

	t.Run("should answer 429 per client address", func(t *testing.T) {
		r := gin.New()
		r.POST("/sos", NewSlidingWindowLimiter(time.Minute, 1).Middleware(), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		post := func(addr string) int {
			req := httptest.NewRequest(http.MethodPost, "/sos", nil)
			req.RemoteAddr = addr
			return do(r, req).Code
		}

		assert.Equal(t, http.StatusCreated, post("10.0.0.1:5000"))
		assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1:5001"))
		assert.Equal(t, http.StatusCreated, post("10.0.0.2:5000"))
	})
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	do(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "request rejected", hook.LastEntry().Message)
	assert.Equal(t, http.StatusNotFound, hook.LastEntry().Data["status"])
}
