package notify

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// Default configuration values.
const (
	defaultSMTPHost = "smtp.gmail.com"
	defaultSMTPPort = 587
	defaultCurrency = "€"
)

// Config holds the mail settings. Sender, Password and Recipient must all be
// set for mail to be sent.
type Config struct {
	Sender    string `env:"EMAIL_SENDER"    yaml:"sender"`
	Password  string `env:"EMAIL_PASSWORD"  yaml:"password"` //nolint:gosec // SMTP credential
	Recipient string `env:"EMAIL_RECIPIENT" yaml:"recipient"`
	SMTPHost  string `env:"SMTP_HOST"       yaml:"smtp_host"`
	SMTPPort  int    `env:"SMTP_PORT"       yaml:"smtp_port"`
	Currency  string `yaml:"currency"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.SMTPHost == "" {
		c.SMTPHost = defaultSMTPHost
	}
	if c.SMTPPort <= 0 {
		c.SMTPPort = defaultSMTPPort
	}
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	return c
}

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends alerts over SMTP with PLAIN auth. smtp.SendMail
// upgrades to STARTTLS when the server offers it.
type EmailNotifier struct {
	cfg      Config
	sendMail SendMailFunc
	now      func() time.Time
	logger   logger.Logger
}

// NewEmailNotifier returns a notifier for cfg.
func NewEmailNotifier(cfg Config, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:      cfg.WithDefaults(),
		sendMail: smtp.SendMail,
		now:      time.Now,
		logger:   log,
	}
}

// WithSendMail replaces the SMTP transport.
func (n *EmailNotifier) WithSendMail(fn SendMailFunc) *EmailNotifier {
	n.sendMail = fn
	return n
}

// Enabled implements Notifier.
func (n *EmailNotifier) Enabled() bool {
	return n.cfg.Sender != "" && n.cfg.Password != "" && n.cfg.Recipient != ""
}

// Notify implements Notifier. Without alerts or credentials it does nothing.
func (n *EmailNotifier) Notify(ctx context.Context, alerts []domain.Observation) error {
	if len(alerts) == 0 {
		return nil
	}
	if !n.Enabled() {
		n.logger.Debug("Email credentials incomplete, skipping notification",
			logger.Int("alerts", len(alerts)),
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(n.cfg.SMTPHost, strconv.Itoa(n.cfg.SMTPPort))
	auth := smtp.PlainAuth("", n.cfg.Sender, n.cfg.Password, n.cfg.SMTPHost)
	msg := n.Message(alerts)

	if err := n.sendMail(addr, auth, n.cfg.Sender, []string{n.cfg.Recipient}, msg); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}

	n.logger.Info("Alert email sent",
		logger.Int("alerts", len(alerts)),
		logger.String("recipient", n.cfg.Recipient),
	)
	return nil
}

// Subject returns the subject line for alerts.
func Subject(alerts []domain.Observation) string {
	if len(alerts) == 1 {
		return "Price alert: " + alerts[0].ProductName + " reached its target"
	}
	return fmt.Sprintf("Price alert: %d products reached their target", len(alerts))
}

// Message renders the full RFC 5322 message.
func (n *EmailNotifier) Message(alerts []domain.Observation) []byte {
	var b strings.Builder

	b.WriteString("From: " + n.cfg.Sender + "\r\n")
	b.WriteString("To: " + n.cfg.Recipient + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", Subject(alerts)) + "\r\n")
	b.WriteString("Date: " + n.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(n.Body(alerts), "\n", "\r\n"))

	return []byte(b.String())
}

// Body lists every alert with its prices, savings and link.
func (n *EmailNotifier) Body(alerts []domain.Observation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d product(s) are at or below the target price:\n\n", len(alerts))
	for _, a := range alerts {
		fmt.Fprintf(&b, "%s\n", a.ProductName)
		if a.CurrentPrice != nil {
			fmt.Fprintf(&b, "  Current price: %s %s\n", a.CurrentPrice.StringFixed(2), n.cfg.Currency)
		}
		fmt.Fprintf(&b, "  Target price:  %s %s\n", a.TargetPrice.StringFixed(2), n.cfg.Currency)
		fmt.Fprintf(&b, "  Savings:       %s %s\n", a.Savings().StringFixed(2), n.cfg.Currency)
		fmt.Fprintf(&b, "  %s\n\n", a.URL)
	}
	return b.String()
}
