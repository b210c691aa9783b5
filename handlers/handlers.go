package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gymdesk/config"
	"gymdesk/middleware"
	"gymdesk/models"
	"gymdesk/services"
	"gymdesk/store"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateMembership(ctx context.Context, u *models.User) error
	CountMembers(ctx context.Context) (store.MemberCounts, error)
}

type PlanStore interface {
	Create(ctx context.Context, p *models.Plan) error
	List(ctx context.Context) ([]models.Plan, error)
	GetByID(ctx context.Context, id string) (*models.Plan, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type LogReader interface {
	Recent(ctx context.Context, limit int) ([]models.NotificationLog, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

type PaymentRecorder interface {
	Capture(ctx context.Context, p *models.Payment) error
}

type Authenticator interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves the JSON API. Nil Metrics disables /metrics.
type Handler struct {
	Users      UserStore
	Plans      PlanStore
	Logs       LogReader
	Payments   PaymentRecorder
	Dispatcher services.DispatchRunner
	Auth       Authenticator
	Tokens     middleware.TokenParser
	Gateway    services.PaymentGateway
	DB         Pinger
	Features   config.Features
	TokenTTL   time.Duration
	Metrics    http.Handler
	Log        *slog.Logger
	Now        func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) RegisterRoutes(r *gin.Engine, corsOrigins []string) {
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", h.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	authRequired := middleware.AuthRequired(h.Tokens)
	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/validate", authRequired, h.Validate)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}

	api.GET("/user/dashboard", authRequired, h.UserDashboard)

	admin := api.Group("/admin", authRequired, middleware.AdminOnly())
	{
		admin.GET("/dashboard", h.AdminDashboard)

		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id", h.UpdateUser)

		admin.GET("/plans", h.ListPlans)
		admin.POST("/plans", h.CreatePlan)
		admin.DELETE("/plans/:id", h.DeletePlan)

		admin.POST("/notify", h.Notify)
		admin.POST("/notify-payments", h.Notify)
		admin.GET("/notification-logs", h.NotificationLogs)
		admin.GET("/logs", h.NotificationLogs)
	}

	payments := api.Group("/payments", authRequired)
	{
		payments.POST("/order", h.CreateOrder)
		payments.POST("/verify", h.VerifyPayment)
	}
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.DB.PingContext(c.Request.Context()); err != nil {
		h.Log.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.Log.Error(msg, "error", err, "path", c.FullPath(), "request_id", c.GetString(middleware.KeyRequestID))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
