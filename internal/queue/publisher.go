package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/panemexpress/rail-booking/internal/logger"
	"github.com/panemexpress/rail-booking/internal/model"
)

// Publisher publishes booking events to RabbitMQ.  The connection is opened
// on first use and reopened after the broker drops it.  It satisfies the
// booking service's Notifier.
type Publisher struct {
	url string
	now func() time.Time
	log *logrus.Entry

	dial func(ctx context.Context, url string) (*amqp.Connection, error)

	// sem guards conn and ch.  It is a channel so waiting callers give up
	// when their context ends.
	sem  chan struct{}
	conn *amqp.Connection
	ch   *amqp.Channel
}

// defaultDialTimeout bounds the TCP connect and AMQP handshake when the
// caller's context has no deadline.
const defaultDialTimeout = 10 * time.Second

// NewPublisher creates a publisher for the broker at url.  No connection is
// made until the first event.
func NewPublisher(url string) *Publisher {
	return &Publisher{
		url:  url,
		now:  time.Now,
		log:  logger.Module("publisher"),
		dial: dialContext,
		sem:  make(chan struct{}, 1),
	}
}

// dialContext opens a connection whose connect and handshake end no later
// than ctx.
func dialContext(ctx context.Context, url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			deadline, ok := ctx.Deadline()
			if !ok {
				deadline = time.Now().Add(defaultDialTimeout)
			}
			// amqp091 clears the deadline once the handshake completes.
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return conn, nil
		},
	})
}

func (p *Publisher) lock(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) unlock() { <-p.sem }

// NotifyBookingConfirmed publishes to booking.confirmed.
func (p *Publisher) NotifyBookingConfirmed(ctx context.Context, d model.BookingWithDetails) error {
	return p.Publish(ctx, NewBookingEvent(EventBookingConfirmed, d, p.now()))
}

// NotifyBookingCancelled publishes to booking.cancelled.
func (p *Publisher) NotifyBookingCancelled(ctx context.Context, d model.BookingWithDetails) error {
	return p.Publish(ctx, NewBookingEvent(EventBookingCancelled, d, p.now()))
}

// Publish sends ev to the queue named by its type.  Messages are marked
// persistent.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	msg, err := encode(ev, p.now())
	if err != nil {
		return err
	}

	if err := p.lock(ctx); err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", ev.Type, err)
	}
	defer p.unlock()
	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		ev.Type, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		p.resetLocked()
		return fmt.Errorf("rabbitmq: publish %s: %w", ev.Type, err)
	}
	p.log.WithFields(logrus.Fields{"event": ev.Type, "pnr": ev.PNR}).Debug("event published")
	return nil
}

func encode(ev BookingEvent, at time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    at.UTC(),
		Type:         ev.Type,
		Body:         body,
	}, nil
}

// channel returns an open channel, dialing if needed.  Callers hold sem.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := p.dial(ctx, p.url)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		p.resetLocked()
		return nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	if err := declareQueues(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.sem <- struct{}{}
	defer p.unlock()
	p.resetLocked()
	return nil
}

// declareQueues ensures the booking queues exist.  Durable so messages
// survive broker restarts.
func declareQueues(ch *amqp.Channel) error {
	for _, q := range Queues {
		if _, err := ch.QueueDeclare(
			q,     // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		); err != nil {
			return fmt.Errorf("rabbitmq: queue declare %s: %w", q, err)
		}
	}
	return nil
}
