package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/panemexpress/rail-booking/internal/logger"
)

// Consumer reads booking events and hands each one to its sinks.  Messages
// that fail are rejected without requeue so a bad message cannot spin.
type Consumer struct {
	url   string
	sinks []Sink
	log   *logrus.Entry
}

// NewConsumer creates a consumer for the broker at url.
func NewConsumer(url string, sinks ...Sink) *Consumer {
	return &Consumer{url: url, sinks: sinks, log: logger.Module("consumer")}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}
	if err := declareQueues(ch); err != nil {
		return err
	}

	confirmed, err := ch.Consume(EventBookingConfirmed, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", EventBookingConfirmed, err)
	}
	cancelled, err := ch.Consume(EventBookingCancelled, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", EventBookingCancelled, err)
	}
	c.log.Info("consuming booking events")

	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-confirmed:
		case d, ok = <-cancelled:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.handle(ctx, d.Body); err != nil {
			c.log.WithError(err).WithField("routing_key", d.RoutingKey).Error("handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	switch ev.Type {
	case EventBookingConfirmed, EventBookingCancelled:
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return Dispatch(ctx, c.sinks, ev)
}
