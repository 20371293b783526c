// Package mailer sends booking receipts over SMTP.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"

	"github.com/panemexpress/rail-booking/internal/logger"
)

// Config holds SMTP settings.  An empty Host disables delivery.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

// Receipt is the data printed on a booking email.
type Receipt struct {
	To            string
	Username      string
	PNR           string
	PassengerName string
	PassengerAge  int
	RouteName     string
	FromStation   string
	ToStation     string
	DistanceKm    int
	TravelDate    string
	Coach         string
	Seat          string
	Fare          string
}

// Mailer renders and delivers receipts.
type Mailer struct {
	cfg  Config
	send func(ctx context.Context, msg *mail.Msg) error
	log  *logrus.Entry
}

// New returns a Mailer that dials cfg.Host for every message.
func New(cfg Config) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	m := &Mailer{cfg: cfg, log: logger.Module("mailer")}
	m.send = m.dialAndSend
	return m
}

// Enabled reports whether SMTP delivery is configured.
func (m *Mailer) Enabled() bool { return m.cfg.Host != "" && m.cfg.From != "" }

// SendBookingConfirmation mails the ticket for a new booking.
func (m *Mailer) SendBookingConfirmation(ctx context.Context, r Receipt) error {
	body, err := render(confirmationTmpl, r)
	if err != nil {
		return err
	}
	return m.deliver(ctx, r, "Booking confirmed - PNR "+r.PNR, body)
}

// SendBookingCancellation mails the cancellation notice.
func (m *Mailer) SendBookingCancellation(ctx context.Context, r Receipt) error {
	body, err := render(cancellationTmpl, r)
	if err != nil {
		return err
	}
	return m.deliver(ctx, r, "Booking cancelled - PNR "+r.PNR, body)
}

func (m *Mailer) deliver(ctx context.Context, r Receipt, subject, body string) error {
	entry := m.log.WithFields(logrus.Fields{"pnr": r.PNR, "to": r.To})
	if !m.Enabled() {
		entry.Warn("smtp not configured, receipt not sent")
		return nil
	}
	msg, err := m.buildMessage(r.To, subject, body)
	if err != nil {
		return err
	}
	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("send %q: %w", subject, err)
	}
	entry.Info("receipt sent")
	return nil
}

func (m *Mailer) buildMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	c, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return c.DialAndSendWithContext(ctx, msg)
}
