package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
	StudioName string
}

// Mailer is the SMTP Notifier.
type Mailer struct {
	cfg  SMTPConfig
	send func(ctx context.Context, msgs ...*mail.Msg) error
}

// NewMailer builds an SMTP client from cfg. No connection is made until the
// first message is sent.
func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{cfg: cfg, send: client.DialAndSendWithContext}, nil
}

var _ Notifier = (*Mailer)(nil)

func (m *Mailer) NotifyAdmin(ctx context.Context, c *model.ContactMessage) error {
	msg, err := m.adminMessage(c)
	if err != nil {
		return err
	}
	return m.send(ctx, msg)
}

func (m *Mailer) Acknowledge(ctx context.Context, c *model.ContactMessage) error {
	msg, err := m.ackMessage(c)
	if err != nil {
		return err
	}
	return m.send(ctx, msg)
}

func (m *Mailer) SendTest(ctx context.Context, to string) error {
	msg, err := m.newMessage(to, m.cfg.StudioName+" email service test")
	if err != nil {
		return err
	}
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"This is a test message from the %s backend.\nSent at %s.\n",
		m.cfg.StudioName, time.Now().UTC().Format(time.RFC1123)))
	return m.send(ctx, msg)
}

func (m *Mailer) newMessage(to, subject string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	return msg, nil
}

func (m *Mailer) adminMessage(c *model.ContactMessage) (*mail.Msg, error) {
	msg, err := m.newMessage(m.cfg.AdminEmail, "New Contact Form Submission - "+c.Subject)
	if err != nil {
		return nil, err
	}
	if err := msg.ReplyTo(c.Email); err != nil {
		return nil, fmt.Errorf("reply-to address: %w", err)
	}
	return withBodies(msg, adminTextTmpl, adminHTMLTmpl, templateData{Studio: m.cfg.StudioName, Contact: c})
}

func (m *Mailer) ackMessage(c *model.ContactMessage) (*mail.Msg, error) {
	msg, err := m.newMessage(c.Email, "Thank you for contacting "+m.cfg.StudioName+" - we received your message")
	if err != nil {
		return nil, err
	}
	return withBodies(msg, ackTextTmpl, ackHTMLTmpl, templateData{Studio: m.cfg.StudioName, Contact: c})
}

func withBodies(msg *mail.Msg, text, html renderer, data templateData) (*mail.Msg, error) {
	plain, err := render(text, data)
	if err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	rich, err := render(html, data)
	if err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	msg.SetBodyString(mail.TypeTextPlain, plain)
	msg.AddAlternativeString(mail.TypeTextHTML, rich)
	return msg, nil
}
