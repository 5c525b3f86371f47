package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	queue     []kafkago.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func newTestConsumer(reader messageReader) *Consumer {
	c := newConsumer(reader, zap.NewNop())
	c.backoff = time.Millisecond
	c.maxBackoff = 4 * time.Millisecond
	return c
}

func TestConsume_RetriesFailedMessageBeforeCommitting(t *testing.T) {
	reader := &fakeReader{queue: []kafkago.Message{
		{Topic: "payment-events", Offset: 1},
		{Topic: "payment-events", Offset: 2},
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var handled []int64
	failOnce := true
	err := newTestConsumer(reader).Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
		handled = append(handled, msg.Offset)
		if msg.Offset == 1 && failOnce {
			failOnce = false
			return errors.New("store unavailable")
		}
		if msg.Offset == 2 {
			cancel()
		}
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{1, 1, 2}, handled)
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestConsume_StopsRetryingWhenCancelled(t *testing.T) {
	reader := &fakeReader{queue: []kafkago.Message{{Topic: "payment-events", Offset: 7}}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	attempts := 0
	err := newTestConsumer(reader).Consume(ctx, func(context.Context, kafkago.Message) error {
		attempts++
		if attempts == 5 {
			cancel()
		}
		return errors.New("store unavailable")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, attempts)
	assert.Empty(t, reader.committed)
}

func TestConsume_FetchError(t *testing.T) {
	err := newTestConsumer(&failingReader{}).Consume(context.Background(), func(context.Context, kafkago.Message) error {
		t.Fatal("handler must not run")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch message")
}

type failingReader struct{ fakeReader }

func (failingReader) FetchMessage(context.Context) (kafkago.Message, error) {
	return kafkago.Message{}, errors.New("broker unreachable")
}
