package smtp

import (
	"fmt"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer delivers HTML email over SMTP.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewMailer builds a Mailer from the SMTP_* settings. Username may be empty
// for local relays such as MailHog.
func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		from:   cfg.SMTPFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// SendEmail sends a single HTML message to one recipient.
func (m *Mailer) SendEmail(to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}
	if err := m.dialer.DialAndSend(m.message(to, subject, htmlBody)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (m *Mailer) message(to, subject, htmlBody string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return msg
}
