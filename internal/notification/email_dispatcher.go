package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
)

const displayDateLayout = "02/01/2006"

// Message is one outgoing email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EmailConfig configures the email dispatcher.
type EmailConfig struct {
	Brand         string
	FromAddress   string
	AdminEmail    string
	ApproverEmail string
	Bank          bookingDomain.BankDetails
	HoldWindow    time.Duration
}

// EmailDispatcher renders booking emails and hands them to a Sender.
type EmailDispatcher struct {
	sender Sender
	cfg    EmailConfig
	logger *zap.Logger
}

// NewEmailDispatcher creates an EmailDispatcher.
func NewEmailDispatcher(sender Sender, cfg EmailConfig, logger *zap.Logger) *EmailDispatcher {
	if cfg.Brand == "" {
		cfg.Brand = "Pyrecrest"
	}
	return &EmailDispatcher{sender: sender, cfg: cfg, logger: logger}
}

type bookingView struct {
	Brand           string
	Heading         string
	Year            int
	Reference       string
	PropertyID      string
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	GuestCount      int
	CheckIn         string
	CheckOut        string
	Nights          int
	Total           string
	SpecialRequests string
	ExpiresAt       string
	HoldWindow      string
	Bank            bookingDomain.BankDetails
	ReplyTo         string
	Expired         bool
}

// Send emails the guest and, for new bookings, the admin. Both are attempted; their errors
// are joined.
func (d *EmailDispatcher) Send(ctx context.Context, event Event, bk *bookingDomain.Booking) error {
	view := d.view(bk)
	guest := bk.Guest()

	switch event {
	case EventBookingCreated:
		view.Heading = "Booking Confirmation"
		guestErr := d.render(ctx, guestCreatedTmpl, view, Message{
			To: guest.Email, ToName: guest.Name,
			Subject: "Booking Confirmation - " + bk.Reference(),
		})
		var adminErr error
		if d.cfg.AdminEmail != "" {
			view.Heading = "New Booking Received"
			adminErr = d.render(ctx, adminCreatedTmpl, view, Message{
				To:      d.cfg.AdminEmail,
				Subject: "New Booking - " + bk.Reference(),
			})
		}
		return errors.Join(guestErr, adminErr)

	case EventBookingConfirmed:
		view.Heading = "Booking Confirmed"
		return d.render(ctx, guestConfirmedTmpl, view, Message{
			To: guest.Email, ToName: guest.Name,
			Subject: "Booking Confirmed - " + bk.Reference(),
		})

	case EventBookingCancelled, EventBookingExpired:
		view.Heading = "Booking Cancelled"
		view.Expired = event == EventBookingExpired
		return d.render(ctx, guestCancelledTmpl, view, Message{
			To: guest.Email, ToName: guest.Name,
			Subject: "Booking Cancelled - " + bk.Reference(),
		})
	}

	d.logger.Debug("no email for event", zap.String("event", string(event)))
	return nil
}

// SendApprovalRequest emails the approver a link that activates a new admin.
func (d *EmailDispatcher) SendApprovalRequest(ctx context.Context, req ApprovalRequest) error {
	to := d.cfg.ApproverEmail
	if to == "" {
		to = d.cfg.AdminEmail
	}
	if to == "" {
		return errors.New("no approver email configured")
	}

	view := struct {
		ApprovalRequest
		Brand   string
		Heading string
		Year    int
	}{req, d.cfg.Brand, "Admin Approval", time.Now().Year()}

	return d.render(ctx, approvalTmpl, view, Message{
		To:      to,
		Subject: "Approve admin access for " + req.AdminName,
	})
}

func (d *EmailDispatcher) render(ctx context.Context, tmpl *template.Template, view interface{}, msg Message) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", view); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	msg.HTML = buf.String()
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", msg.Subject, msg.To, err)
	}
	return nil
}

func (d *EmailDispatcher) view(bk *bookingDomain.Booking) bookingView {
	guest := bk.Guest()
	v := bookingView{
		Brand:           d.cfg.Brand,
		Year:            time.Now().Year(),
		Reference:       bk.Reference(),
		PropertyID:      bk.PropertyID(),
		GuestName:       guest.Name,
		GuestEmail:      guest.Email,
		GuestPhone:      guest.Phone,
		GuestCount:      guest.Count,
		CheckIn:         bk.CheckIn().Format(displayDateLayout),
		CheckOut:        bk.CheckOut().Format(displayDateLayout),
		Nights:          bk.Nights(),
		Total:           FormatAmount(bk.Total(), bk.Currency()),
		SpecialRequests: bk.SpecialRequests(),
		HoldWindow:      HumanizeDuration(d.cfg.HoldWindow),
		Bank:            d.cfg.Bank,
		ReplyTo:         d.cfg.FromAddress,
	}
	if exp := bk.ExpiresAt(); exp != nil {
		v.ExpiresAt = exp.Format("02/01/2006 15:04 MST")
	}
	return v
}

// FormatAmount renders whole currency units with a symbol and thousands separators.
func FormatAmount(amount int64, currency string) string {
	symbol := currency + " "
	switch currency {
	case "NGN":
		symbol = "₦"
	case "USD":
		symbol = "$"
	case "GBP":
		symbol = "£"
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + symbol + b.String()
}

// HumanizeDuration renders a hold window as guest-facing copy, e.g. "24 hours" or "30 minutes".
func HumanizeDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "the payment window"
	case d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	default:
		return plural(int64(d.Round(time.Minute)/time.Minute), "minute")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.FormatInt(n, 10) + " " + unit + "s"
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *zap.Logger
}

// NewSendGridSender creates a SendGridSender.
func NewSendGridSender(apiKey, fromAddress, fromName string, logger *zap.Logger) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
		logger: logger,
	}
}

// Send posts msg and treats any non-2xx status as failure.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail(msg.ToName, msg.To), "", msg.HTML)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	s.logger.Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// LogSender logs emails instead of sending them. It is used when no API key is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Warn("email API key not configured, mock email logged",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}
