// Package mailer sends ranking results by e-mail.
package mailer

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
)

// ErrCredentialsMissing is returned when no sender address or password is configured.
var ErrCredentialsMissing = errors.New("mailer: email credentials not configured")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender submits mail through an authenticated SMTP relay using STARTTLS.
type SMTPSender struct {
	from     string
	password string
	host     string
	port     int
	dialer   net.Dialer
}

func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	if cfg.Address == "" || cfg.Password == "" {
		return nil, ErrCredentialsMissing
	}
	host := cfg.Server
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		from:     cfg.Address,
		password: cfg.Password,
		host:     host,
		port:     port,
		dialer:   net.Dialer{Timeout: 30 * time.Second},
	}, nil
}

func (s *SMTPSender) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	raw, err := Build(s.from, msg, time.Now())
	if err != nil {
		return err
	}

	conn, err := s.dialer.DialContext(ctx, "tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.Addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if err := c.Auth(smtp.PlainAuth("", s.from, s.password, s.host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt %s: %w", msg.To, err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

// Build renders msg as a MIME multipart/mixed document with base64 attachments.
func Build(from string, msg *Message, date time.Time) ([]byte, error) {
	if msg.To == "" {
		return nil, errors.New("mailer: message has no recipient")
	}
	boundary, err := newBoundary()
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	writeHeader(&b, "From", from)
	writeHeader(&b, "To", msg.To)
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&b, "Date", date.Format(time.RFC1123Z))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", boundary))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	writeHeader(&b, "Content-Type", `text/plain; charset="utf-8"`)
	writeHeader(&b, "Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		writeHeader(&b, "Content-Type", mime.FormatMediaType(ct, map[string]string{"name": a.Filename}))
		writeHeader(&b, "Content-Transfer-Encoding", "base64")
		writeHeader(&b, "Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
		b.WriteString("\r\n")
		writeBase64(&b, a.Data)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}

func writeHeader(b *bytes.Buffer, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(strings.NewReplacer("\r", "", "\n", "").Replace(value))
	b.WriteString("\r\n")
}

// writeBase64 wraps encoded data at 76 characters per line.
func writeBase64(b *bytes.Buffer, data []byte) {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		b.WriteString(enc[:76])
		b.WriteString("\r\n")
		enc = enc[76:]
	}
	if enc != "" {
		b.WriteString(enc)
		b.WriteString("\r\n")
	}
}

func newBoundary() (string, error) {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("mailer: boundary: %w", err)
	}
	return "topsis-" + hex.EncodeToString(buf[:]), nil
}
