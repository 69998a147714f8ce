package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig carries transport settings for the SMTP dispatcher.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPDispatcher sends mail over authenticated SMTP with STARTTLS.
type SMTPDispatcher struct {
	cfg SMTPConfig
}

func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	return &SMTPDispatcher{cfg: cfg}
}

// Send delivers one HTML message. Any transport-level failure is wrapped
// in ErrDelivery so callers can map it without knowing SMTP details.
func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(d.cfg.From); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	client, err := gomail.NewClient(d.cfg.Host,
		gomail.WithPort(d.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(d.cfg.Username),
		gomail.WithPassword(d.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}
