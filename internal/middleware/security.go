package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig lists the response headers applied to every route. NoStore
// adds Cache-Control: no-store so profile and contact data stays out of shared caches.
type SecurityConfig struct {
	HSTS                  bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	FrameOptions          string
	ContentTypeOptions    string
	XSSProtection         string
	ReferrerPolicy        string
	CSPDirectives         []string
	PermissionsPolicy     string
	NoStore               bool
}

// DefaultSecurityConfig returns headers suited to a JSON-only API.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTS:                  true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "no-referrer",
		CSPDirectives:         []string{"default-src 'none'", "frame-ancestors 'none'"},
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=()",
		NoStore:               true,
	}
}

func (c SecurityConfig) headers() map[string]string {
	h := map[string]string{}
	set := func(name, value string) {
		if value != "" {
			h[name] = value
		}
	}
	if c.HSTS {
		value := fmt.Sprintf("max-age=%d", c.HSTSMaxAge)
		if c.HSTSIncludeSubdomains {
			value += "; includeSubDomains"
		}
		h["Strict-Transport-Security"] = value
	}
	set("X-Frame-Options", c.FrameOptions)
	set("X-Content-Type-Options", c.ContentTypeOptions)
	set("X-XSS-Protection", c.XSSProtection)
	set("Referrer-Policy", c.ReferrerPolicy)
	set("Content-Security-Policy", strings.Join(c.CSPDirectives, "; "))
	set("Permissions-Policy", c.PermissionsPolicy)
	if c.NoStore {
		h["Cache-Control"] = "no-store"
	}
	return h
}

// SecurityHeaders writes the configured headers before the handler runs.
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	headers := config.headers()
	return func(c *gin.Context) {
		for name, value := range headers {
			c.Header(name, value)
		}
		c.Next()
	}
}
