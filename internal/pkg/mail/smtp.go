package mail

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultPort is the submission port used when none is configured.
	DefaultPort = 587
	// implicitTLSPort always speaks TLS from the first byte.
	implicitTLSPort = 465

	defaultTimeout = 15 * time.Second
)

var (
	// ErrSMTPNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
	// ErrSMTPNoSender is returned when both Message.From and the configured default From are empty.
	ErrSMTPNoSender = errors.New("no sender provided")
)

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string
	// Port is the SMTP server port. Zero means DefaultPort.
	Port int
	// Secure forces implicit TLS. Port 465 implies it.
	Secure bool
	// Username is the SMTP authentication username.
	Username string
	// Password is the SMTP authentication password.
	Password string
	// From is the default sender when Message.From is empty.
	From string
	// Timeout bounds dialing and each send. Zero means 15s.
	Timeout time.Duration
}

// Configured reports whether host, credentials and sender are all present.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.From != ""
}

func (c SMTPConfig) implicitTLS() bool {
	return c.Secure || c.Port == implicitTLSPort
}

// SMTP is a Mail implementation backed by net/smtp with a cached connection.
type SMTP struct {
	cfg  SMTPConfig
	addr string
	auth smtp.Auth

	mu     sync.Mutex
	conn   net.Conn
	client *smtp.Client
}

// NewSMTP constructs an SMTP mail sender. Nothing is dialed until the first Send.
func NewSMTP(cfg SMTPConfig) *SMTP {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.From = strings.TrimSpace(cfg.From)
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	s := &SMTP{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	if cfg.Username != "" && cfg.Password != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	slog.Info("smtp transport configured",
		"configured", cfg.Configured(),
		"has_host", cfg.Host != "",
		"port", cfg.Port,
		"secure", cfg.implicitTLS(),
		"has_user", cfg.Username != "",
		"has_pass", cfg.Password != "",
		"has_from", cfg.From != "",
	)

	return s
}

// Configured reports whether Send can attempt delivery.
func (s *SMTP) Configured() bool {
	return s.cfg.Configured()
}

// Send delivers a message over SMTP.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Configured() {
		return ErrUnconfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	recipients := append([]string{}, msg.To...)
	recipients = append(recipients, msg.Cc...)
	recipients = append(recipients, msg.Bcc...)

	if len(recipients) == 0 {
		return ErrSMTPNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.cfg.From
	}
	if from == "" {
		return ErrSMTPNoSender
	}

	raw := buildRaw(from, msg)

	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := s.clientLocked(ctx)
	if err != nil {
		return err
	}

	if err := s.deliver(ctx, client, from, recipients, raw); err != nil {
		s.dropLocked()
		return fmt.Errorf("mail: send: %w", err)
	}

	return nil
}

// Close sends QUIT on the cached connection, if any.
func (s *SMTP) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}

	err := s.client.Quit()
	s.client = nil
	s.conn = nil
	return err
}

func (s *SMTP) deliver(ctx context.Context, c *smtp.Client, from string, to []string, raw []byte) error {
	if err := s.conn.SetDeadline(s.deadline(ctx)); err != nil {
		return err
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// clientLocked returns the cached client when it still answers NOOP and dials a fresh one otherwise.
func (s *SMTP) clientLocked(ctx context.Context) (*smtp.Client, error) {
	if s.client != nil {
		if err := s.conn.SetDeadline(s.deadline(ctx)); err == nil {
			if err := s.client.Noop(); err == nil {
				return s.client, nil
			}
		}
		slog.WarnContext(ctx, "smtp connection is stale, reconnecting", "addr", s.addr)
		s.dropLocked()
	}

	conn, client, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("mail: connect %s: %w", s.addr, err)
	}

	s.conn = conn
	s.client = client

	slog.InfoContext(ctx, "smtp connection established", "addr", s.addr)

	return client, nil
}

func (s *SMTP) dial(ctx context.Context) (net.Conn, *smtp.Client, error) {
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.implicitTLS() {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", s.addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", s.addr)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := conn.SetDeadline(s.deadline(ctx)); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	if !s.cfg.implicitTLS() {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsCfg); err != nil {
				_ = client.Close()
				return nil, nil, err
			}
		}
	}

	if s.auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(s.auth); err != nil {
				_ = client.Close()
				return nil, nil, err
			}
		}
	}

	return conn, client, nil
}

func (s *SMTP) dropLocked() {
	if s.client != nil {
		_ = s.client.Close()
	}
	s.client = nil
	s.conn = nil
}

func (s *SMTP) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(s.cfg.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(d) {
		return dl
	}
	return d
}

func buildRaw(from string, msg Message) []byte {
	body, contentType := buildBody(msg)

	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", strings.Join(msg.To, ", ")),
	}
	if len(msg.Cc) > 0 {
		headers = append(headers, fmt.Sprintf("Cc: %s", strings.Join(msg.Cc, ", ")))
	}
	headers = append(headers,
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", msg.Subject)),
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: %s", contentType),
	)

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}

func buildBody(msg Message) (body string, contentType string) {
	if msg.HTMLBody != "" && msg.TextBody != "" {
		boundary := multipartBoundary()
		var sb strings.Builder
		sb.WriteString("This is a multipart message in MIME format.\r\n")
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		sb.WriteString("\r\n")
		sb.WriteString(msg.TextBody)
		sb.WriteString("\r\n")
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		sb.WriteString("\r\n")
		sb.WriteString(msg.HTMLBody)
		sb.WriteString("\r\n")
		fmt.Fprintf(&sb, "--%s--", boundary)
		return sb.String(), fmt.Sprintf("multipart/alternative; boundary=%s", boundary)
	}

	if msg.HTMLBody != "" {
		return msg.HTMLBody, "text/html; charset=UTF-8"
	}

	return msg.TextBody, "text/plain; charset=UTF-8"
}

func multipartBoundary() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "otclogin-boundary-fallback"
	}
	return "otclogin-boundary-" + hex.EncodeToString(b[:])
}
