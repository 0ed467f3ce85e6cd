package mailer

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
)

func TestNewSMTPSenderRequiresCredentials(t *testing.T) {
	_, err := NewSMTPSender(config.MailConfig{Address: "bot@example.com"})
	assert.ErrorIs(t, err, ErrCredentialsMissing)

	_, err = NewSMTPSender(config.MailConfig{Password: "pw"})
	assert.ErrorIs(t, err, ErrCredentialsMissing)
}

func TestNewSMTPSenderDefaults(t *testing.T) {
	s, err := NewSMTPSender(config.MailConfig{Address: "bot@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com:587", s.Addr())

	s, err = NewSMTPSender(config.MailConfig{Address: "bot@example.com", Password: "pw", Server: "mail.local", Port: 2525})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", s.Addr())
}

func TestBuild(t *testing.T) {
	csv := []byte(strings.Repeat("Model,Price,Score,Rank\nM1,250,0.5,1\n", 10))
	msg := &Message{
		To:      "user@example.com",
		Subject: "TOPSIS Result",
		Body:    "Find attached your TOPSIS result.",
		Attachments: []Attachment{
			{Filename: "result_data.csv", ContentType: "text/csv", Data: csv},
		},
	}
	date := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raw, err := Build("bot@example.com", msg, date)
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "bot@example.com", parsed.Header.Get("From"))
	assert.Equal(t, "user@example.com", parsed.Header.Get("To"))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "TOPSIS Result", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])

	body, err := mr.NextPart()
	require.NoError(t, err)
	text, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "Find attached your TOPSIS result.", string(text))

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "result_data.csv", att.FileName())
	assert.Equal(t, "base64", att.Header.Get("Content-Transfer-Encoding"))
	encoded, err := io.ReadAll(att)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(string(encoded)), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, csv, decoded)

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBuildRejectsMissingRecipient(t *testing.T) {
	_, err := Build("bot@example.com", &Message{Subject: "x"}, time.Now())
	assert.Error(t, err)
}

func TestBuildStripsHeaderInjection(t *testing.T) {
	raw, err := Build("bot@example.com", &Message{To: "a@b.c\r\nBcc: evil@x.y", Subject: "s"}, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "\r\nBcc:")
}
