package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/pyrecrest/service-booking/internal/common/kafka"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

// TopicBookingEvents carries booking lifecycle CloudEvents.
const TopicBookingEvents = "booking.events"

const eventSource = "service-booking"

// BookingEventData is the CloudEvent payload for every booking lifecycle event.
type BookingEventData struct {
	BookingID     string    `json:"bookingId"`
	Reference     string    `json:"bookingReference"`
	PropertyID    string    `json:"propertyId"`
	CheckIn       string    `json:"checkIn"`
	CheckOut      string    `json:"checkOut"`
	Nights        int       `json:"nights"`
	Total         int64     `json:"total"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher is the part of the Kafka producer the dispatcher needs.
type Publisher interface {
	PublishEventWithKey(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// EventDispatcher publishes booking lifecycle events to Kafka, keyed by booking id so that
// one booking's events stay ordered.
type EventDispatcher struct {
	publisher Publisher
}

// NewEventDispatcher creates an EventDispatcher.
func NewEventDispatcher(publisher Publisher) *EventDispatcher {
	return &EventDispatcher{publisher: publisher}
}

// Send publishes event for bk.
func (d *EventDispatcher) Send(ctx context.Context, event Event, bk *bookingDomain.Booking) error {
	data := BookingEventData{
		BookingID:     bk.ID().String(),
		Reference:     bk.Reference(),
		PropertyID:    bk.PropertyID(),
		CheckIn:       bk.CheckIn().Format(daterange.DateLayout),
		CheckOut:      bk.CheckOut().Format(daterange.DateLayout),
		Nights:        bk.Nights(),
		Total:         bk.Total(),
		Currency:      bk.Currency(),
		Status:        string(bk.Status()),
		PaymentStatus: string(bk.PaymentStatus()),
		OccurredAt:    bk.UpdatedAt(),
	}

	ce, err := kafka.NewCloudEvent(eventSource, string(event), data)
	if err != nil {
		return fmt.Errorf("failed to create cloud event: %w", err)
	}
	if err := d.publisher.PublishEventWithKey(ctx, TopicBookingEvents, data.BookingID, ce); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	return nil
}
