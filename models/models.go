package models

import (
	"fmt"
	"strings"
	"time"
)

type Plan struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DurationMonths int       `json:"duration"`
	Price          float64   `json:"price"`
	Features       []string  `json:"features"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Channel selects which delivery media a dispatch run uses.
type Channel string

const (
	ChannelEmail Channel = "Email"
	ChannelSMS   Channel = "SMS"
	ChannelBoth  Channel = "Both"
)

// ParseChannel accepts Email, SMS or Both in any case. Empty means Both.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ChannelBoth, nil
	case "email":
		return ChannelEmail, nil
	case "sms":
		return ChannelSMS, nil
	case "both":
		return ChannelBoth, nil
	default:
		return "", fmt.Errorf("invalid notification type %q: must be Email, SMS or Both", s)
	}
}

func (c Channel) IncludesEmail() bool { return c == ChannelEmail || c == ChannelBoth }
func (c Channel) IncludesSMS() bool   { return c == ChannelSMS || c == ChannelBoth }

// DeliveryStatus is the outcome of one channel for one member.
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "Sent"
	DeliveryFailed  DeliveryStatus = "Failed"
	DeliverySkipped DeliveryStatus = "Skipped"
)

// Label renders the status for display, marking fallback deliveries.
func (s DeliveryStatus) Label(viaFallback bool) string {
	if s == DeliverySent && viaFallback {
		return "Sent (via fallback)"
	}
	return string(s)
}

type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomeFailed  Outcome = "Failed"
)

// NotificationLog is one immutable audit record of a dispatch attempt.
type NotificationLog struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Category     string         `json:"category"`
	Type         Channel        `json:"type"`
	Status       Outcome        `json:"status"`
	EmailStatus  DeliveryStatus `json:"emailStatus"`
	SMSStatus    DeliveryStatus `json:"smsStatus"`
	Message      string         `json:"message"`
	FallbackUsed bool           `json:"fallbackUsed"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type Payment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	OrderID   string    `json:"orderId"`
	PaymentID string    `json:"paymentId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
