package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/carewatch-api/internal/handler/activity"
	"github.com/jwalitptl/carewatch-api/internal/handler/alert"
	"github.com/jwalitptl/carewatch-api/internal/handler/auth"
	"github.com/jwalitptl/carewatch-api/internal/handler/caregiver"
	"github.com/jwalitptl/carewatch-api/internal/handler/contact"
	"github.com/jwalitptl/carewatch-api/internal/handler/device"
	"github.com/jwalitptl/carewatch-api/internal/handler/health"
	"github.com/jwalitptl/carewatch-api/internal/handler/profile"
	"github.com/jwalitptl/carewatch-api/internal/handler/prometheus"
	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
	"github.com/jwalitptl/carewatch-api/pkg/metrics"
)

type Handlers struct {
	Auth      *auth.Handler
	Caregiver *caregiver.Handler
	Profile   *profile.Handler
	Contact   *contact.Handler
	Device    *device.Handler
	Alert     *alert.Handler
	Activity  *activity.Handler
	Health    *health.Handler
	Metrics   *prometheus.Handler
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	ServiceKey       string
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	h       Handlers
	config  RouterConfig
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	h Handlers,
	config RouterConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) (*Router, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	engine := gin.New()
	r := &Router{
		engine:  engine,
		auth:    auth,
		h:       h,
		config:  config,
		log:     log,
		metrics: m,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.ErrorHandler(log),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r, nil
}

// Setup mounts every route. Probes and metrics skip the body and timeout limits.
func (r *Router) Setup() {
	r.h.Health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", r.h.Metrics.Handler())

	limited := r.engine.Group("",
		middleware.SizeLimit(middleware.SizeLimitConfig{
			MaxBodySize:  r.config.MaxBodyBytes,
			ErrorMessage: "Request size exceeds limit",
		}),
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}),
	)

	// Machine-to-machine endpoints
	service := limited.Group("", middleware.ServiceKey(r.config.ServiceKey))
	r.h.Activity.RegisterServiceRoutes(service)
	r.h.Alert.RegisterServiceRoutes(service)

	api := limited.Group("/api/v1")
	r.h.Auth.RegisterRoutes(api)

	protected := api.Group("", r.auth.RequireCaregiver())
	r.h.Caregiver.RegisterRoutes(protected)
	r.h.Profile.RegisterRoutes(protected)
	r.h.Contact.RegisterRoutes(protected)
	r.h.Device.RegisterRoutes(protected)
	r.h.Alert.RegisterRoutes(protected)
	r.h.Activity.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
