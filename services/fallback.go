package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"gymdesk/models"
)

type SMSRoute string

const (
	RoutePrimary  SMSRoute = "primary"
	RouteFallback SMSRoute = "fallback"
)

type SMSResult struct {
	Route        SMSRoute
	Status       models.DeliveryStatus
	FallbackUsed bool
	// Err holds every provider error seen, including a primary error that the
	// fallback recovered from.
	Err error
}

// FallbackSender tries the primary gateway once and, on any error, the
// fallback gateway once. There are no further retries.
type FallbackSender struct {
	primary  SMSProvider
	fallback SMSProvider
	log      *slog.Logger
}

func NewFallbackSender(primary, fallback SMSProvider, log *slog.Logger) *FallbackSender {
	return &FallbackSender{primary: primary, fallback: fallback, log: log}
}

func (f *FallbackSender) Send(ctx context.Context, phone, body string) SMSResult {
	err := f.primary.Send(ctx, phone, body)
	if err == nil {
		return SMSResult{Route: RoutePrimary, Status: models.DeliverySent}
	}

	var errs *multierror.Error
	errs = multierror.Append(errs, fmt.Errorf("%s: %w", f.primary.Name(), err))
	f.log.Warn("primary sms provider failed, trying fallback",
		"primary", f.primary.Name(), "fallback", f.fallback.Name(), "error", err)

	if err := f.fallback.Send(ctx, phone, body); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", f.fallback.Name(), err))
		return SMSResult{Route: RouteFallback, Status: models.DeliveryFailed, Err: errs.ErrorOrNil()}
	}
	return SMSResult{Route: RouteFallback, Status: models.DeliverySent, FallbackUsed: true, Err: errs.ErrorOrNil()}
}
