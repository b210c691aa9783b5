package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"gymdesk/config"
	"gymdesk/db"
	"gymdesk/logger"
	"gymdesk/services"
	"gymdesk/store"
)

const resetCodeTTL = 15 * time.Minute

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *sql.DB
	registry *prometheus.Registry

	users    *store.UserStore
	plans    *store.PlanStore
	logs     *store.NotificationLogStore
	payments *store.PaymentStore

	tokens     *services.TokenIssuer
	auth       *services.AuthService
	dispatcher *services.Dispatcher
	gateway    *services.RazorpayGateway
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       conn,
		registry: registry,
		users:    store.NewUserStore(conn),
		plans:    store.NewPlanStore(conn),
		logs:     store.NewNotificationLogStore(conn),
		payments: store.NewPaymentStore(conn),
		tokens:   services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		gateway:  services.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
	}

	email := services.NewEmailSender(cfg)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	sms := services.NewFallbackSender(
		services.InstrumentSMS(services.NewFast2SMS(cfg.Fast2SMS, httpClient), metrics),
		services.InstrumentSMS(services.NewTwilio(cfg.Twilio, httpClient), metrics),
		log,
	)

	a.dispatcher = services.NewDispatcher(a.users, a.logs, email, sms, services.DispatchConfig{
		Workers:  cfg.Notify.Workers,
		ClubName: cfg.ClubName,
	}, metrics, log)
	a.auth = services.NewAuthService(a.users, a.tokens, services.NewResetCodes(resetCodeTTL), email, cfg.ClubName, log)

	log.Info("configuration loaded",
		"registration", cfg.Features.RegistrationEnabled,
		"payments", cfg.Features.PaymentsEnabled,
		"metrics", cfg.Features.MetricsEnabled,
		"email", emailBackend(cfg),
		"workers", cfg.Notify.Workers,
	)
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func emailBackend(cfg *config.Config) string {
	if cfg.SendGridAPIKey != "" {
		return "sendgrid"
	}
	return "smtp"
}
