package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/panemexpress/rail-booking/internal/mailer"
	"github.com/panemexpress/rail-booking/internal/model"
)

// Sink processes one booking event.
type Sink interface {
	Handle(ctx context.Context, ev BookingEvent) error
}

// Dispatch runs every sink, even after one fails, and joins the errors.
func Dispatch(ctx context.Context, sinks []Sink, ev BookingEvent) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Handle(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AuditLog appends one human-readable line per event to W.
type AuditLog struct {
	mu sync.Mutex
	W  io.Writer
}

// Handle writes the audit line.
func (a *AuditLog) Handle(ctx context.Context, ev BookingEvent) error {
	verb := "confirmed"
	if ev.Type == EventBookingCancelled {
		verb = "cancelled"
	}
	line := fmt.Sprintf("[%s] Booking %s | pnr=%s | booking_id=%d | user_id=%d | route=%q | date=%s | coach=%s | seat=%s | passenger=%q | fare=%s\n",
		ev.OccurredAt, verb, ev.PNR, ev.BookingID, ev.UserID, ev.RouteName, ev.TravelDate, ev.Coach, ev.Seat, ev.PassengerName, ev.Fare)

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := io.WriteString(a.W, line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// ReceiptSender is implemented by *mailer.Mailer.
type ReceiptSender interface {
	SendBookingConfirmation(ctx context.Context, r mailer.Receipt) error
	SendBookingCancellation(ctx context.Context, r mailer.Receipt) error
}

// MailSink emails the booking owner.
type MailSink struct {
	Sender ReceiptSender
}

// Handle sends the receipt matching the event type.
func (m MailSink) Handle(ctx context.Context, ev BookingEvent) error {
	r := mailer.Receipt{
		To:            ev.Email,
		Username:      ev.Username,
		PNR:           ev.PNR,
		PassengerName: ev.PassengerName,
		PassengerAge:  ev.PassengerAge,
		RouteName:     ev.RouteName,
		FromStation:   ev.FromStation,
		ToStation:     ev.ToStation,
		DistanceKm:    ev.DistanceKm,
		TravelDate:    ev.TravelDate,
		Coach:         ev.CoachName,
		Seat:          ev.Seat,
		Fare:          ev.Fare,
	}
	if ev.Type == EventBookingCancelled {
		return m.Sender.SendBookingCancellation(ctx, r)
	}
	return m.Sender.SendBookingConfirmation(ctx, r)
}

// LocalNotifier delivers events to sinks in-process, without a broker.
type LocalNotifier struct {
	Sinks []Sink
	Now   func() time.Time
}

func (l *LocalNotifier) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// NotifyBookingConfirmed runs the sinks for a confirmation.
func (l *LocalNotifier) NotifyBookingConfirmed(ctx context.Context, d model.BookingWithDetails) error {
	return Dispatch(ctx, l.Sinks, NewBookingEvent(EventBookingConfirmed, d, l.now()))
}

// NotifyBookingCancelled runs the sinks for a cancellation.
func (l *LocalNotifier) NotifyBookingCancelled(ctx context.Context, d model.BookingWithDetails) error {
	return Dispatch(ctx, l.Sinks, NewBookingEvent(EventBookingCancelled, d, l.now()))
}
