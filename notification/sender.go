package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Sender delivers one email to a recipient list. Implementations must honor
// ctx cancellation so a slow mail server cannot stall the caller; failures
// are reported as errors and never panic.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SendGridSender sends email through the SendGrid v3 API.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	client    *http.Client
	log       *zap.SugaredLogger
}

// NewSendGridSender creates a SendGrid-backed sender
func NewSendGridSender(apiKey, fromEmail, fromName string, log *zap.SugaredLogger) *SendGridSender {
	return &SendGridSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		client:    &http.Client{},
		log:       log,
	}
}

const sendGridURL = "https://api.sendgrid.com/v3/mail/send"
const maxSendGridRetries = 3

// Send delivers one email to all recipients as a single message. Retries
// transient failures with linear backoff; the caller's ctx bounds the whole
// attempt sequence.
func (s *SendGridSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	recipients := make([]map[string]any, 0, len(to))
	for _, addr := range to {
		recipients = append(recipients, map[string]any{"email": addr})
	}
	body := map[string]any{
		"personalizations": []map[string]any{{"to": recipients}},
		"from":             map[string]string{"email": s.fromEmail, "name": s.fromName},
		"subject":          subject,
		"content":          []map[string]string{{"type": "text/html", "value": htmlBody}},
	}
	payload, _ := json.Marshal(body)

	var lastErr error
	for attempt := 0; attempt < maxSendGridRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendGridURL, bytes.NewReader(payload))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return lastErr
}

// LogSender logs emails instead of sending them. Used in development and when
// no SendGrid API key is configured.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender creates a log-only sender
func NewLogSender(log *zap.SugaredLogger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the email and reports success
func (s *LogSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	s.log.Infow("email (log sender)", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
