package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gymdesk/models"
)

type MemberSource interface {
	ListByFeeStatus(ctx context.Context, status models.FeeStatus) ([]models.User, error)
}

type AuditLog interface {
	Create(ctx context.Context, l *models.NotificationLog) error
}

type SMSSender interface {
	Send(ctx context.Context, phone, body string) SMSResult
}

type DispatchRequest struct {
	Type models.Channel
	// Note is an optional admin message appended to every reminder.
	Note string
}

type RecipientResult struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	EmailStatus  string `json:"emailStatus"`
	SMSStatus    string `json:"smsStatus"`
	FallbackUsed bool   `json:"fallbackUsed"`

	Outcome models.Outcome `json:"-"`
}

type DispatchSummary struct {
	Message string            `json:"message"`
	Total   int               `json:"total"`
	Results []RecipientResult `json:"results"`
}

type DispatchConfig struct {
	Workers  int
	ClubName string
}

// Dispatcher sends fee reminders to every member whose fee is pending and is
// the only writer of notification logs.
type Dispatcher struct {
	members MemberSource
	audit   AuditLog
	email   EmailSender
	sms     SMSSender
	cfg     DispatchConfig
	metrics *Metrics
	log     *slog.Logger
}

func NewDispatcher(members MemberSource, audit AuditLog, email EmailSender, sms SMSSender,
	cfg DispatchConfig, metrics *Metrics, log *slog.Logger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Dispatcher{
		members: members,
		audit:   audit,
		email:   email,
		sms:     sms,
		cfg:     cfg,
		metrics: metrics,
		log:     log,
	}
}

// Run processes the whole pending-fee member set once. Channel failures are
// recorded per member; only a failure to load the members is returned.
// Running twice sends twice and writes two sets of logs.
func (d *Dispatcher) Run(ctx context.Context, req DispatchRequest) (DispatchSummary, error) {
	start := time.Now()
	if req.Type == "" {
		req.Type = models.ChannelBoth
	}

	members, err := d.members.ListByFeeStatus(ctx, models.FeeStatusPending)
	if err != nil {
		return DispatchSummary{}, fmt.Errorf("load pending members: %w", err)
	}
	if len(members) == 0 {
		d.log.Info("no members with pending fees")
		return DispatchSummary{Message: "No users with pending fees", Results: []RecipientResult{}}, nil
	}

	d.log.Info("dispatch started", "members", len(members), "type", req.Type)

	results := make([]RecipientResult, len(members))
	var g errgroup.Group
	g.SetLimit(d.cfg.Workers)
	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			results[i] = d.notify(ctx, m, req)
			return nil
		})
	}
	_ = g.Wait()

	d.metrics.observeRun(start)

	succeeded := 0
	for _, r := range results {
		if r.Outcome == models.OutcomeSuccess {
			succeeded++
		}
	}
	d.log.Info("dispatch finished", "members", len(results), "succeeded", succeeded,
		"duration", time.Since(start))

	return DispatchSummary{
		Message: fmt.Sprintf("Notifications processed for %d members", len(results)),
		Total:   len(results),
		Results: results,
	}, nil
}

func (d *Dispatcher) notify(ctx context.Context, m models.User, req DispatchRequest) RecipientResult {
	log := d.log.With("user_id", m.ID, "email", m.Email)
	msg := ComposeFeeReminder(m, d.cfg.ClubName, req.Note)

	emailStatus := models.DeliverySkipped
	if req.Type.IncludesEmail() {
		err := d.email.Send(ctx, Email{To: m.Email, Subject: msg.Subject, HTML: msg.HTML, Text: msg.Text})
		if err != nil {
			emailStatus = models.DeliveryFailed
			log.Warn("email reminder failed", "error", err)
		} else {
			emailStatus = models.DeliverySent
		}
		d.metrics.observeDelivery("email", emailStatus)
	}

	smsStatus := models.DeliverySkipped
	fallbackUsed := false
	var smsRoute SMSRoute
	if req.Type.IncludesSMS() && strings.TrimSpace(m.Phone) != "" {
		res := d.sms.Send(ctx, m.Phone, msg.SMS)
		smsStatus = res.Status
		fallbackUsed = res.FallbackUsed
		smsRoute = res.Route
		if res.Status != models.DeliverySent {
			log.Warn("sms reminder failed", "route", res.Route, "error", res.Err)
		}
		d.metrics.observeDelivery("sms", smsStatus)
	}

	outcome := models.OutcomeFailed
	if emailStatus == models.DeliverySent || smsStatus == models.DeliverySent {
		outcome = models.OutcomeSuccess
	}

	record := &models.NotificationLog{
		UserID:       m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		Category:     ReminderCategory,
		Type:         req.Type,
		Status:       outcome,
		EmailStatus:  emailStatus,
		SMSStatus:    smsStatus,
		Message:      fmt.Sprintf("Email: %s, SMS: %s", emailStatus, smsStatus.Label(fallbackUsed)),
		FallbackUsed: fallbackUsed,
	}
	// the messages are already out, so the record is written even if the caller gave up
	if err := d.audit.Create(context.WithoutCancel(ctx), record); err != nil {
		d.metrics.observeAuditFailure()
		log.Warn("notification log write failed", "error", err)
	}

	log.Info("member notified", "status", outcome, "email_status", emailStatus,
		"sms_status", smsStatus, "sms_route", smsRoute, "fallback_used", fallbackUsed)

	return RecipientResult{
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		EmailStatus:  string(emailStatus),
		SMSStatus:    smsStatus.Label(fallbackUsed),
		FallbackUsed: fallbackUsed,
		Outcome:      outcome,
	}
}
