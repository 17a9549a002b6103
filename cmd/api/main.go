// @title                       BGF Dashboard API
// @version                     1.0
// @description                 Grant request workflow, staff access codes and notifications for the BGF dashboard.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/api"
	"github.com/bgf/dashboard-api/internal/api/handler"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/service"
	"github.com/bgf/dashboard-api/internal/core/workflow"
	"github.com/bgf/dashboard-api/internal/infrastructure/config"
	mongodb "github.com/bgf/dashboard-api/internal/infrastructure/db/mongo"
	redisdb "github.com/bgf/dashboard-api/internal/infrastructure/db/redis"
	"github.com/bgf/dashboard-api/internal/infrastructure/mail"
	"github.com/bgf/dashboard-api/internal/infrastructure/queue"
	"github.com/bgf/dashboard-api/internal/infrastructure/realtime"
	"github.com/bgf/dashboard-api/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := bootLogger(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "bgf-api",
	})
	if cfg.EphemeralSecret {
		log.Warn().Msg("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}

	graphs, err := workflow.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("load workflow graphs")
	}

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	accessCodes := mongodb.NewAccessCodeRepository(db)
	activity := mongodb.NewActivityRepository(db)
	requests := mongodb.NewRequestRepository(db)
	workflows := mongodb.NewWorkflowRepository(db)
	notifications := mongodb.NewNotificationRepository(db)

	// --- Realtime and email fan-out ---
	bus := redisdb.NewNotificationBus(rdb, logger.Component("bus"))
	hub := realtime.NewHub(cfg.HTTP.FrontendOrigin, logger.Component("hub"))
	go func() {
		if err := bus.Subscribe(ctx, func(n domain.Notification) { hub.Deliver(n) }); err != nil {
			log.Error().Err(err).Msg("notification subscription stopped")
		}
	}()

	var emails service.EmailQueue
	smtpCfg := mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	if smtpCfg.Enabled() {
		dispatcher := queue.NewDispatcher(cfg.SMTP.Workers, mail.NewSMTPMailer(smtpCfg), logger.Component("email"))
		dispatcher.Start(ctx)
		emails = dispatcher
	} else {
		log.Info().Msg("SMTP not configured, companion emails disabled")
	}

	// --- Services ---
	codes := service.NewAccessCodeCache(accessCodes, cfg.Auth.AccessCodeCacheTTL, nil, logger.Component("access_codes"))
	staffAuth := service.NewStaffAuthService(codes, service.StaffAuthConfig{
		Secret:     cfg.JWTSecret,
		TTL:        cfg.Auth.StaffTokenTTL,
		CookieName: cfg.Auth.StaffCookie,
	}, logger.Component("staff_auth")).WithActivity(activity)
	authService := service.NewAuthService(users, cfg.JWTSecret, cfg.Auth.UserTokenTTL).
		WithActivity(activity, logger.Component("auth"))
	userService := service.NewUserService(users, activity, logger.Component("users"))
	notificationService := service.NewNotificationService(notifications, bus, emails, logger.Component("notifications"))
	requestService := service.NewRequestService(graphs, requests, workflows,
		redisdb.NewIdempotencyStore(rdb), activity, notificationService, logger.Component("requests"))
	workflowService := service.NewWorkflowService(graphs, requests, workflows, activity,
		notificationService, logger.Component("workflow"))
	reportService := service.NewReportService(requests, activity)

	e := api.NewRouter(api.Deps{
		Log:           log,
		StaffAuth:     staffAuth,
		Auth:          authService,
		Users:         userService,
		Requests:      requestService,
		Workflow:      workflowService,
		Notifications: notificationService,
		Reports:       reportService,
		Stream:        hub,
		Health: map[string]handler.Pinger{
			"mongo": mongodb.Pinger{Client: mongoClient},
			"redis": redisdb.Pinger{Client: rdb},
		},
		Cookie: handler.CookieConfig{
			Name:   staffAuth.CookieName(),
			TTL:    staffAuth.TTL(),
			Secure: cfg.IsProduction(),
		},
		LoginRatePerMin: cfg.Auth.LoginRatePerMin,
		AllowedOrigin:   cfg.HTTP.FrontendOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting bgf-api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	_ = rdb.Close()
	_ = mongoClient.Disconnect(shutdownCtx)
	log.Info().Msg("stopped")
}

// bootLogger logs failures that happen before the configured logger exists.
func bootLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("phase", "boot").Logger()
}
