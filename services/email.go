package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/smtp"
	"strconv"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"gymdesk/config"
)

// ErrNotConfigured is returned by a channel whose credentials are missing.
var ErrNotConfigured = errors.New("channel not configured")

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender hands one message to a relay. A nil error means the relay
// accepted it; delivery is not guaranteed. Implementations do not retry.
type EmailSender interface {
	Send(ctx context.Context, e Email) error
}

// NewEmailSender picks SendGrid when an API key is configured and the SMTP
// relay otherwise.
func NewEmailSender(cfg *config.Config) EmailSender {
	if cfg.SendGridAPIKey != "" {
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFrom(), cfg.ClubName, cfg.HTTPTimeout)
	}
	return NewSMTPSender(cfg.SMTP, cfg.EmailFrom(), cfg.HTTPTimeout)
}

type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
	fromName string
	timeout  time.Duration
}

func NewSMTPSender(cfg config.SMTPConfig, from string, timeout time.Duration) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     from,
		fromName: cfg.FromName,
		timeout:  timeout,
	}
}

func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	if s.host == "" || s.user == "" || s.password == "" || s.from == "" {
		return fmt.Errorf("smtp: %w", ErrNotConfigured)
	}

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if err := client.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(e.To); err != nil {
		return fmt.Errorf("smtp rcpt %s: %w", e.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(s.buildMessage(e)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return client.Quit()
}

func (s *SMTPSender) buildMessage(e Email) []byte {
	var b bytes.Buffer
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.fromName), s.from)
	}
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.HTML)
	return b.Bytes()
}

// SendGridSender posts to the v3 mail API. Each Send builds its own request,
// so one sender is safe for concurrent use.
type SendGridSender struct {
	apiKey  string
	host    string
	from    *mail.Email
	client  *rest.Client
	timeout time.Duration
}

func NewSendGridSender(apiKey, from, fromName string, timeout time.Duration) *SendGridSender {
	return &SendGridSender{
		apiKey:  apiKey,
		host:    sendGridHost,
		from:    mail.NewEmail(fromName, from),
		client:  &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
		timeout: timeout,
	}
}

const sendGridHost = "https://api.sendgrid.com"

func (s *SendGridSender) Send(ctx context.Context, e Email) error {
	if s.apiKey == "" || s.from.Address == "" {
		return fmt.Errorf("sendgrid: %w", ErrNotConfigured)
	}
	text := e.Text
	if text == "" {
		text = e.Subject
	}
	message := mail.NewSingleEmail(s.from, e.Subject, mail.NewEmail("", e.To), text, e.HTML)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(message)

	response, err := s.client.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
