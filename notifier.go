package accounts

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/gomail.v2"
)

// Notifier delivers activation and reset keys to account owners. Delivery
// failures are logged by the caller, never surfaced to the requester.
type Notifier interface {
	SendActivationKey(ctx context.Context, account *Account, key string) error
	SendResetKey(ctx context.Context, account *Account, key string) error
}

// logNotifier is the default sink: it prints the would-be email so local
// setups work without an SMTP server.
type logNotifier struct {
	logger Logger
}

func (n logNotifier) SendActivationKey(_ context.Context, account *Account, key string) error {
	n.logger.Info("activation notification",
		"to", account.Email,
		"link", fmt.Sprintf("/api/activate?key=%s", key),
	)
	return nil
}

func (n logNotifier) SendResetKey(_ context.Context, account *Account, key string) error {
	n.logger.Info("password reset notification",
		"to", account.Email,
		"link", fmt.Sprintf("/password-reset/%s", key),
	)
	return nil
}

// MailNotifier sends keys over SMTP.
type MailNotifier struct {
	config *mailerConfig
	dialer *gomail.Dialer
}

var _ Notifier = (*MailNotifier)(nil)

// NewMailNotifier builds an SMTP-backed notifier from environment
// configuration.
func NewMailNotifier() (*MailNotifier, error) {
	cfg, err := newMailerConfig()
	if err != nil {
		return nil, err
	}

	dialer := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &MailNotifier{
		config: cfg,
		dialer: dialer,
	}, nil
}

// SendActivationKey emails the activation link to the account owner.
func (m *MailNotifier) SendActivationKey(_ context.Context, account *Account, key string) error {
	return m.send(account.Email,
		"Account activation",
		fmt.Sprintf("Hello %s,\r\n\r\nactivate your account: %s/api/activate?key=%s\r\n",
			account.FirstName, m.config.BaseURL, key),
	)
}

// SendResetKey emails the password reset link to the account owner.
func (m *MailNotifier) SendResetKey(_ context.Context, account *Account, key string) error {
	return m.send(account.Email,
		"Password reset",
		fmt.Sprintf("Hello %s,\r\n\r\nreset your password: %s/password-reset/%s\r\n",
			account.FirstName, m.config.BaseURL, key),
	)
}

func (m *MailNotifier) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

// mailerConfig holds SMTP configuration for sending emails.
type mailerConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	BaseURL  string `env:"SMTP_LINK_BASE_URL" envDefault:"http://localhost:3000"`
}

func newMailerConfig() (*mailerConfig, error) {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse mailer configuration")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return goerrors.New("missing SMTP_HOST environment variable", goerrors.CategoryValidation)
	}
	if c.From == "" {
		return goerrors.New("missing SMTP_FROM environment variable", goerrors.CategoryValidation)
	}

	return nil
}
