// Package notification tells guests, staff and other services about booking lifecycle events.
// Callers treat every send as advisory: a failed notification never undoes a booking write.
package notification

import (
	"context"
	"errors"

	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
)

// Event names a booking lifecycle event.
type Event string

const (
	EventBookingCreated   Event = "booking.created"
	EventBookingConfirmed Event = "booking.confirmed"
	EventBookingCancelled Event = "booking.cancelled"
	EventBookingExpired   Event = "booking.expired"
)

// Dispatcher delivers a lifecycle event for a booking.
type Dispatcher interface {
	Send(ctx context.Context, event Event, bk *bookingDomain.Booking) error
}

// ApprovalRequest asks the approver to activate a new admin account.
type ApprovalRequest struct {
	AdminName  string
	AdminEmail string
	ApproveURL string
}

// AdminMailer delivers admin account emails.
type AdminMailer interface {
	SendApprovalRequest(ctx context.Context, req ApprovalRequest) error
}

// MultiDispatcher fans an event out to every dispatcher and joins their errors.
type MultiDispatcher []Dispatcher

// Send calls every dispatcher even when an earlier one fails.
func (m MultiDispatcher) Send(ctx context.Context, event Event, bk *bookingDomain.Booking) error {
	var errs []error
	for _, d := range m {
		if err := d.Send(ctx, event, bk); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopDispatcher discards events.
type NoopDispatcher struct{}

func (NoopDispatcher) Send(context.Context, Event, *bookingDomain.Booking) error { return nil }

func (NoopDispatcher) SendApprovalRequest(context.Context, ApprovalRequest) error { return nil }
