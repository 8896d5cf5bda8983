package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// OTPNotifier delivers a one-time passcode to an email address.
type OTPNotifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(host string, port int, user, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (n *SMTPNotifier) SendOTP(_ context.Context, email, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your Discord OTP")
	m.SetBody("text/plain", fmt.Sprintf("Your OTP is: %s", code))
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// DevNotifier logs the code instead of sending mail. Used when SMTP
// is not configured.
type DevNotifier struct {
	logger *slog.Logger
}

func NewDevNotifier(logger *slog.Logger) *DevNotifier {
	return &DevNotifier{logger: logger}
}

func (n *DevNotifier) SendOTP(ctx context.Context, email, code string) error {
	n.logger.InfoContext(ctx, "otp issued", "email", email, "code", code)
	return nil
}
