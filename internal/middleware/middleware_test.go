package middleware

import (
	"bytes"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/pkg/auth"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTokens struct {
	claims *auth.Claims
}

func (s stubTokens) Authenticate(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, stderrors.New("bad token")
	}
	return s.claims, nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireCaregiver(t *testing.T) {
	id := uuid.New()
	m := NewAuthMiddleware(stubTokens{claims: &auth.Claims{CaregiverID: id, Email: "a@example.com"}})

	r := gin.New()
	r.GET("/me", m.RequireCaregiver(), func(c *gin.Context) {
		got, ok := CaregiverID(c)
		require.True(t, ok)
		c.String(http.StatusOK, got.String())
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"case insensitive scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, id.String(), w.Body.String())
			}
		})
	}
}

func TestServiceKey(t *testing.T) {
	handler := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	t.Run("disabled when empty", func(t *testing.T) {
		r := gin.New()
		r.POST("/hook", ServiceKey(""), handler)
		w := serve(r, httptest.NewRequest(http.MethodPost, "/hook", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("enforced when configured", func(t *testing.T) {
		r := gin.New()
		r.POST("/hook", ServiceKey("s3cret"), handler)

		w := serve(r, httptest.NewRequest(http.MethodPost, "/hook", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		req.Header.Set(HeaderServiceKey, "wrong")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

		req = httptest.NewRequest(http.MethodPost, "/hook", nil)
		req.Header.Set(HeaderServiceKey, "s3cret")
		assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderXRequestID)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "bad id\r\nX-Injected: 1")
	w = serve(r, req)
	assert.NotContains(t, w.Header().Get(HeaderXRequestID), "Injected")
	_, err = uuid.Parse(w.Header().Get(HeaderXRequestID))
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 20 * time.Millisecond}))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusGatewayTimeout, serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example.com"}
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), HeaderServiceKey)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 8, ErrorMessage: "too big"}))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "too big: body exceeds 8 bytes")

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, w.Code)

	// No declared length: the body reader is capped instead.
	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("0123456789"))))
	req.ContentLength = -1
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, req).Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2})

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other clients keep their own bucket")

	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, http.StatusTooManyRequests, serve(r, req).Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "includeSubDomains")
	assert.Empty(t, w.Header().Get("X-XSS-Protection"))
}

func TestValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	r := gin.New()
	r.POST("/contacts", func(c *gin.Context) {
		var req model.CreateContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, ValidationMessage(err))
			return
		}
		c.Status(http.StatusOK)
	})

	body := `{"full_name":"Ann","alert_methods":["sms","pager"]}`
	w := serve(r, httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be one of email, sms, voice_call")

	body = `{"full_name":"Ann","alert_methods":["sms","voice_call"]}`
	w = serve(r, httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(`{`)))
	assert.Equal(t, "Invalid request body", w.Body.String())
}
