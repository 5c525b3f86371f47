package events

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pyrecrest/service-booking/internal/application"
	"github.com/pyrecrest/service-booking/internal/common/domain"
	"github.com/pyrecrest/service-booking/internal/common/kafka"
)

// Payment topic and event types published by the bank-feed integration.
const (
	TopicPaymentEvents   = "payment.events"
	PaymentReceivedEvent = "payment.received"
)

// PaymentReceived is the data of a payment.received event. Amount is in whole currency units.
type PaymentReceived struct {
	BookingReference string    `json:"bookingReference"`
	Amount           int64     `json:"amount"`
	ReceivedAt       time.Time `json:"receivedAt"`
}

// PaymentConfirmer confirms a booking once its transfer has arrived.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, reference string, amount int64) (*application.BookingDTO, error)
}

// PaymentEventConsumer listens to payment events and confirms the matching bookings.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  PaymentConfirmer
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service PaymentConfirmer,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PaymentReceivedEvent:
		return c.handlePaymentReceived(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentReceived(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PaymentReceived
	if err := cloudEvent.ParseData(&evt); err != nil || evt.BookingReference == "" {
		c.logger.Error("failed to parse PaymentReceived data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	log := c.logger.With(
		zap.String("reference", evt.BookingReference),
		zap.Int64("amount", evt.Amount),
		zap.Time("received_at", evt.ReceivedAt),
	)
	log.Info("processing payment received event")

	bk, err := c.service.ConfirmPayment(ctx, evt.BookingReference, evt.Amount)
	switch {
	case err == nil:
		log.Info("booking confirmed after payment",
			zap.String("booking_id", bk.ID),
			zap.String("status", bk.Status),
		)
		return nil
	case domain.IsValidation(err) || domain.IsNotFound(err):
		log.Warn("payment needs manual review", zap.Error(err))
		return nil
	default:
		log.Error("failed to confirm booking after payment", zap.Error(err))
		return err
	}
}
