package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/carewatch-api/internal/config"
	"github.com/jwalitptl/carewatch-api/internal/email"
	activityHandler "github.com/jwalitptl/carewatch-api/internal/handler/activity"
	alertHandler "github.com/jwalitptl/carewatch-api/internal/handler/alert"
	authHandler "github.com/jwalitptl/carewatch-api/internal/handler/auth"
	caregiverHandler "github.com/jwalitptl/carewatch-api/internal/handler/caregiver"
	contactHandler "github.com/jwalitptl/carewatch-api/internal/handler/contact"
	deviceHandler "github.com/jwalitptl/carewatch-api/internal/handler/device"
	"github.com/jwalitptl/carewatch-api/internal/handler/health"
	profileHandler "github.com/jwalitptl/carewatch-api/internal/handler/profile"
	"github.com/jwalitptl/carewatch-api/internal/handler/prometheus"
	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/internal/repository/postgres"
	"github.com/jwalitptl/carewatch-api/internal/router"
	activityService "github.com/jwalitptl/carewatch-api/internal/service/activity"
	alertService "github.com/jwalitptl/carewatch-api/internal/service/alert"
	authService "github.com/jwalitptl/carewatch-api/internal/service/auth"
	caregiverService "github.com/jwalitptl/carewatch-api/internal/service/caregiver"
	contactService "github.com/jwalitptl/carewatch-api/internal/service/contact"
	deviceService "github.com/jwalitptl/carewatch-api/internal/service/device"
	eventService "github.com/jwalitptl/carewatch-api/internal/service/event"
	profileService "github.com/jwalitptl/carewatch-api/internal/service/profile"
	"github.com/jwalitptl/carewatch-api/internal/twilio"
	"github.com/jwalitptl/carewatch-api/pkg/auth"
	"github.com/jwalitptl/carewatch-api/pkg/circuitbreaker"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
	"github.com/jwalitptl/carewatch-api/pkg/metrics"
	"github.com/jwalitptl/carewatch-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "Failed to load configuration")
	}

	log := logger.NewLogger(cfg.Log.ToLoggerConfig())
	if err := cfg.Validate(); err != nil {
		log.Fatal(err, "Invalid configuration")
	}
	gin.SetMode(gin.ReleaseMode)

	db, err := postgres.NewDB(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	caregiverRepo := postgres.NewCaregiverRepository(db)
	var profileOpts []postgres.ProfileOption
	if cfg.Security.NotesKey != "" {
		key, err := cfg.Security.NotesKeyBytes()
		if err != nil {
			log.Fatal(err, "Invalid notes key")
		}
		enc, err := security.NewAESEncryptor(key)
		if err != nil {
			log.Fatal(err, "Failed to build notes encryptor")
		}
		profileOpts = append(profileOpts, postgres.WithNotesEncryptor(enc))
		log.Info("Medical notes encryption enabled")
	}
	profileRepo := postgres.NewProfileRepository(db, profileOpts...)
	contactRepo := postgres.NewContactRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)
	alertRepo := postgres.NewAlertHistoryRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.New("carewatch")
	eventSvc := eventService.NewService(outboxRepo)

	// Channel senders, each behind its own breaker
	twilioClient := twilio.NewClient(twilio.Config{
		BaseURL:    cfg.Twilio.BaseURL,
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		FromNumber: cfg.Twilio.FromNumber,
		Timeout:    cfg.Twilio.Timeout,
	})
	emailSender := email.NewSender(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	breaker := func(name string) *circuitbreaker.CircuitBreaker {
		return circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        name,
			MaxFailures: cfg.Alerts.BreakerMaxFailures,
			Timeout:     cfg.Alerts.BreakerTimeout,
		})
	}
	senders := map[model.AlertMethod]alertService.Sender{
		model.AlertMethodEmail:     alertService.WithBreaker(emailSender, breaker("smtp")),
		model.AlertMethodSMS:       alertService.WithBreaker(twilioClient.SMS(), breaker("twilio-sms")),
		model.AlertMethodVoiceCall: alertService.WithBreaker(twilioClient.Voice(), breaker("twilio-voice")),
	}

	// Services
	authSvc := authService.NewService(
		caregiverRepo,
		auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour),
		security.NewBcryptHasher(bcrypt.DefaultCost),
	)
	profileSvc := profileService.NewService(profileRepo)
	contactSvc := contactService.NewService(contactRepo)
	deviceSvc := deviceService.NewService(deviceRepo)
	caregiverSvc := caregiverService.NewService(caregiverRepo)
	alertSvc := alertService.NewService(
		profileRepo,
		contactRepo,
		alertRepo,
		senders,
		eventSvc,
		alertService.Config{ChannelTimeout: cfg.Alerts.ChannelTimeout},
		log,
		m,
	)
	activitySvc := activityService.NewService(profileRepo, activityRepo, eventSvc, log, m)

	// Handlers
	promHandler, err := prometheus.New(m)
	if err != nil {
		log.Fatal(err, "Failed to register metrics")
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}

	r, err := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		router.Handlers{
			Auth:      authHandler.NewHandler(authSvc),
			Caregiver: caregiverHandler.NewHandler(caregiverSvc),
			Profile:   profileHandler.NewHandler(profileSvc),
			Contact:   contactHandler.NewHandler(contactSvc, profileSvc),
			Device:    deviceHandler.NewHandler(deviceSvc),
			Alert:     alertHandler.NewHandler(alertSvc, profileSvc),
			Activity:  activityHandler.NewHandler(activitySvc, profileSvc),
			Health:    health.NewHandler(db),
			Metrics:   promHandler,
		},
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       corsConfig,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			ServiceKey:       cfg.Server.ServiceKey,
		},
		log,
		m,
	)
	if err != nil {
		log.Fatal(err, "Failed to build router")
	}
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Dispatches in flight get the full channel timeout to finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Alerts.ChannelTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}

	log.Info("Server exited properly")
}
