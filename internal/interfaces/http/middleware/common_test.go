package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// invoiceEndpoint builds a router exposing a stand-in billing route behind
// the given middleware.
func invoiceEndpoint(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/api/v1/billing/invoices", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func serve(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/billing/invoices", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSDefaultRejectsCrossOrigin(t *testing.T) {
	router := invoiceEndpoint(CORS())

	t.Run("cross-origin request gets no CORS headers", func(t *testing.T) {
		w := serve(router, "GET", "https://crm.example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin request without Origin header passes", func(t *testing.T) {
		w := serve(router, "GET", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight still answered with 204", func(t *testing.T) {
		w := serve(router, "OPTIONS", "https://crm.example.com")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	allowed := "https://app.simbacrm.example"
	cfg := CORSConfig{
		AllowOrigins:     []string{allowed, "https://staging.simbacrm.example"},
		AllowMethods:     []string{"GET", "POST", "PUT"},
		AllowHeaders:     []string{"Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router := invoiceEndpoint(CORSWithConfig(cfg))

	t.Run("listed origin is echoed back with full header set", func(t *testing.T) {
		w := serve(router, "GET", allowed)
		assert.Equal(t, allowed, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "Content-Type, Idempotency-Key", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("second listed origin also allowed", func(t *testing.T) {
		w := serve(router, "GET", "https://staging.simbacrm.example")
		assert.Equal(t, "https://staging.simbacrm.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		w := serve(router, "GET", "https://elsewhere.example")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight from listed origin carries methods and headers", func(t *testing.T) {
		w := serve(router, "OPTIONS", allowed)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, allowed, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("preflight from unlisted origin is 204 without headers", func(t *testing.T) {
		w := serve(router, "OPTIONS", "https://elsewhere.example")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWildcard(t *testing.T) {
	// Credentials must never be sent alongside a wildcard origin.
	router := invoiceEndpoint(CORSWithConfig(CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	w := serve(router, "GET", "https://anywhere.example")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSMaxAgeSeconds(t *testing.T) {
	cases := []struct {
		duration time.Duration
		want     string
	}{
		{time.Minute, "60"},
		{time.Hour, "3600"},
		{24 * time.Hour, "86400"},
	}
	for _, tc := range cases {
		router := invoiceEndpoint(CORSWithConfig(CORSConfig{
			AllowOrigins: []string{"https://app.simbacrm.example"},
			MaxAge:       tc.duration,
		}))
		w := serve(router, "GET", "https://app.simbacrm.example")
		assert.Equal(t, tc.want, w.Header().Get("Access-Control-Max-Age"))
	}
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins, "origins must be opted in explicitly")
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.Contains(t, cfg.AllowHeaders, "Idempotency-Key")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/api/v1/billing/invoices", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDContextKey))
	})

	t.Run("generates an ID when the client sends none", func(t *testing.T) {
		w := serve(router, "GET", "")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("echoes the client's ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/billing/invoices", nil)
		req.Header.Set("X-Request-ID", "billing-trace-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "billing-trace-42", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "billing-trace-42", w.Body.String())
	})

	t.Run("ids differ across requests", func(t *testing.T) {
		first := serve(router, "GET", "").Header().Get("X-Request-ID")
		second := serve(router, "GET", "").Header().Get("X-Request-ID")
		assert.NotEqual(t, first, second)
	})
}

func TestSecureDefaults(t *testing.T) {
	w := serve(invoiceEndpoint(Secure()), "GET", "")

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=()")

	// HSTS waits for an HTTPS deployment to enable it
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("HSTS value reflects the flags", func(t *testing.T) {
		w := serve(invoiceEndpoint(SecureWithConfig(SecurityConfig{
			HSTSEnabled:           true,
			HSTSMaxAge:            63072000,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		})), "GET", "")
		assert.Equal(t, "max-age=63072000; includeSubDomains; preload", w.Header().Get("Strict-Transport-Security"))

		w = serve(invoiceEndpoint(SecureWithConfig(SecurityConfig{
			HSTSEnabled: true,
			HSTSMaxAge:  31536000,
		})), "GET", "")
		assert.Equal(t, "max-age=31536000", w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("optional headers can all be disabled", func(t *testing.T) {
		w := serve(invoiceEndpoint(SecureWithConfig(SecurityConfig{})), "GET", "")

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
	})

	t.Run("custom directives pass through verbatim", func(t *testing.T) {
		w := serve(invoiceEndpoint(SecureWithConfig(SecurityConfig{
			CSPEnabled:                 true,
			CSPDirective:               "default-src 'none'",
			PermissionsPolicyEnabled:   true,
			PermissionsPolicyDirective: "geolocation=(self)",
		})), "GET", "")

		assert.Equal(t, "default-src 'none'", w.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "geolocation=(self)", w.Header().Get("Permissions-Policy"))
	})
}
