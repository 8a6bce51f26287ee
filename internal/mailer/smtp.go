package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

const implicitTLSPort = 465

var (
	// ErrNotConfigured is returned when the mailer has no attachments configured.
	ErrNotConfigured = errors.New("mailer: not configured")

	// ErrInvalidRecipient is returned for addresses that do not parse.
	ErrInvalidRecipient = errors.New("mailer: invalid recipient address")
)

// Config holds the relay and message settings. It is fixed at startup.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string

	// AttachmentDir holds the files named in AttachmentFiles. They are read on
	// every send and never written by the application.
	AttachmentDir   string
	AttachmentFiles []string
}

// Message is one outgoing email.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer sends the fixed document email via SMTP.
type Mailer struct {
	cfg    *Config
	sendFn func(ctx context.Context, msg Message) error
}

// New returns a Mailer. With an empty Host it logs messages instead of sending them.
func New(cfg *Config) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.Host == "" {
		m.sendFn = m.logOnly
	} else {
		m.sendFn = m.deliver
	}
	return m
}

// Send emails the configured attachments to recipient. It blocks until the
// relay has accepted or refused the message.
func (m *Mailer) Send(ctx context.Context, recipient string) error {
	to, err := parseRecipient(recipient)
	if err != nil {
		return err
	}

	attachments, err := m.loadAttachments()
	if err != nil {
		return err
	}

	return m.sendFn(ctx, Message{
		To:          []string{to},
		Subject:     Subject,
		Body:        Body,
		Attachments: attachments,
	})
}

func parseRecipient(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, "\r\n") {
		return "", ErrInvalidRecipient
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRecipient, raw)
	}
	return addr.Address, nil
}

func (m *Mailer) from() string {
	if m.cfg.FromAddress != "" {
		return m.cfg.FromAddress
	}
	return m.cfg.Username
}

func (m *Mailer) logOnly(ctx context.Context, msg Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	slog.Info("mailer: SMTP_HOST not set, email not sent",
		"to", msg.To, "subject", msg.Subject, "attachments", names)
	return nil
}

// deliver sends msg to the relay. Port 465 uses implicit TLS; any other port
// upgrades with STARTTLS when the server offers it.
func (m *Mailer) deliver(ctx context.Context, msg Message) error {
	raw, err := m.formatMessage(msg)
	if err != nil {
		return fmt.Errorf("build email: %w", err)
	}

	host := m.cfg.Host
	addr := net.JoinHostPort(host, strconv.Itoa(m.cfg.Port))
	tlsCfg := &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	if m.cfg.Port == implicitTLSPort {
		d := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 30 * time.Second}, Config: tlsCfg}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		d := &net.Dialer{Timeout: 30 * time.Second}
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if m.cfg.Port != implicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if m.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.from()); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, to := range msg.To {
		if err := c.Rcpt(to); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", to, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	if err := c.Quit(); err != nil {
		slog.Warn("mailer: QUIT failed after successful send", "err", err)
	}
	slog.Info("mailer: email sent", "to", msg.To, "attachments", len(msg.Attachments))
	return nil
}
