package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	gomail "github.com/wneessen/go-mail"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers one message and returns its Message-ID.
type Transport interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string

	// RequireTLS enforces STARTTLS. Production relays need it, local
	// sandboxes usually do not offer it.
	RequireTLS bool
	Timeout    time.Duration
}

type SMTPTransport struct {
	client      *gomail.Client
	fromName    string
	fromAddress string
}

func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	policy := gomail.TLSOpportunistic
	if cfg.RequireTLS {
		policy = gomail.TLSMandatory
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(policy),
		gomail.WithTimeout(timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPTransport{
		client:      client,
		fromName:    cfg.FromName,
		fromAddress: cfg.FromAddress,
	}, nil
}

func (s *SMTPTransport) Send(ctx context.Context, msg *Message) (string, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromAddress); err != nil {
		return "", fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return "", fmt.Errorf("set recipient: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetImportance(gomail.ImportanceHigh)
	m.SetMessageID()
	m.SetDate()
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return "", err
	}
	return m.GetMessageID(), nil
}

// LogTransport writes emails to the log instead of sending them. It is
// used when no SMTP host is configured.
type LogTransport struct{}

func (LogTransport) Send(_ context.Context, msg *Message) (string, error) {
	id := "<" + uuid.NewString() + "@localhost>"
	log.Infof("email %s to %s (%s) not sent, no SMTP host configured:\n%s", id, msg.To, msg.Subject, msg.Text)
	return id, nil
}
