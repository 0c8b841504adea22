package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"complaintdesk/metrics"
	"complaintdesk/models"
	"complaintdesk/notification"
)

// OutboxQueue is the delivery-side contract over the email outbox.
type OutboxQueue interface {
	Outbox
	GetDeliverable(limit int, now time.Time) ([]models.OutboxEmail, error)
	MarkSent(emailID int64, sentAt time.Time) error
	ScheduleRetry(emailID int64, retryCount int, nextRetryAt time.Time, sendErr string) error
	MarkFailed(emailID int64, sendErr string) error
}

// MailerService drains the email outbox: it picks up pending and retry-due
// emails, hands them to the sender, and advances their state to sent, retrying
// or failed. Delivery is at-least-once; a crash between send and MarkSent
// re-sends on the next pass.
type MailerService struct {
	outbox OutboxQueue
	sender notification.Sender
	cfg    *models.MailerConfig
	log    *zap.SugaredLogger
	now    func() time.Time
}

// NewMailerService creates a new outbox delivery service
func NewMailerService(outbox OutboxQueue, sender notification.Sender, cfg *models.MailerConfig, log *zap.SugaredLogger) *MailerService {
	if cfg == nil {
		cfg = models.DefaultMailerConfig()
	}
	return &MailerService{
		outbox: outbox,
		sender: sender,
		cfg:    cfg,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ProcessOutbox delivers one batch of due emails. Each email is handled
// independently; a send failure schedules that email's retry and moves on.
// Returns the number of emails successfully sent.
func (s *MailerService) ProcessOutbox(ctx context.Context) (int, error) {
	batch, err := s.outbox.GetDeliverable(s.cfg.BatchSize, s.now())
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range batch {
		if ctx.Err() != nil {
			break
		}
		if s.deliver(ctx, &batch[i]) {
			sent++
		}
	}
	return sent, nil
}

func (s *MailerService) deliver(ctx context.Context, email *models.OutboxEmail) bool {
	recipients := strings.Split(email.Recipients, ",")

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	err := s.sender.Send(sendCtx, recipients, email.Subject, email.Body)
	cancel()

	if err == nil {
		if markErr := s.outbox.MarkSent(email.EmailID, s.now()); markErr != nil {
			s.log.Errorw("failed to mark email sent", "email", email.EmailID, "error", markErr)
			return false
		}
		metrics.RecordOutboxDelivery("sent")
		return true
	}

	retryCount := email.RetryCount + 1
	maxRetries := email.MaxRetries
	if maxRetries == 0 {
		maxRetries = s.cfg.DefaultMaxRetries
	}

	if retryCount > maxRetries {
		s.log.Errorw("email delivery failed permanently",
			"email", email.EmailID, "retries", email.RetryCount, "error", err)
		if markErr := s.outbox.MarkFailed(email.EmailID, err.Error()); markErr != nil {
			s.log.Errorw("failed to mark email failed", "email", email.EmailID, "error", markErr)
		}
		metrics.RecordOutboxDelivery("failed")
		return false
	}

	nextRetryAt := s.now().Add(s.retryDelay(retryCount))
	s.log.Warnw("email delivery failed, scheduling retry",
		"email", email.EmailID, "attempt", retryCount, "next_retry_at", nextRetryAt, "error", err)
	if markErr := s.outbox.ScheduleRetry(email.EmailID, retryCount, nextRetryAt, err.Error()); markErr != nil {
		s.log.Errorw("failed to schedule email retry", "email", email.EmailID, "error", markErr)
	}
	metrics.RecordOutboxDelivery("retrying")
	return false
}

// retryDelay computes the exponential backoff for the given attempt, capped
// at MaxRetryDelay.
func (s *MailerService) retryDelay(attempt int) time.Duration {
	delay := s.cfg.InitialRetryDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * s.cfg.BackoffMultiplier)
		if delay >= s.cfg.MaxRetryDelay {
			return s.cfg.MaxRetryDelay
		}
	}
	if delay > s.cfg.MaxRetryDelay {
		delay = s.cfg.MaxRetryDelay
	}
	return delay
}
