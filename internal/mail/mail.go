package mail

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Mailer delivers the notification emails the service sends as side effects.
// Failures are the caller's to log; no operation fails because mail did not
// go out.
type Mailer interface {
	SendWelcome(to, name string) error
	SendDocumentShared(to, recipientName, senderName, documentTitle, documentLink string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewSMTP(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) SendWelcome(to, name string) error {
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to Inkwell! Your account is ready.</p>", name)
	return m.send(to, "Welcome to Inkwell", body)
}

func (m *SMTPMailer) SendDocumentShared(to, recipientName, senderName, documentTitle, documentLink string) error {
	subject := fmt.Sprintf("%q was shared with you", documentTitle)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s shared the document <b>%s</b> with you.</p><p><a href=%q>Open it</a></p>",
		recipientName, senderName, documentTitle, documentLink,
	)
	return m.send(to, subject, body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// Disabled is used when SMTP is not configured. It logs what it would have
// sent at debug level and reports success.
type Disabled struct {
	Logger *slog.Logger
}

func (d Disabled) SendWelcome(to, _ string) error {
	if d.Logger != nil {
		d.Logger.Debug("mail disabled, skipping welcome email", "to", to)
	}
	return nil
}

func (d Disabled) SendDocumentShared(to, _, _, documentTitle, _ string) error {
	if d.Logger != nil {
		d.Logger.Debug("mail disabled, skipping share email", "to", to, "title", documentTitle)
	}
	return nil
}
