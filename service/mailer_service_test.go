package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"complaintdesk/models"
)

// fakeOutboxQueue is a standalone outbox for mailer tests
type fakeOutboxQueue struct {
	emails  []models.OutboxEmail
	sent    []int64
	retried []int64
	failed  []int64

	lastRetryAt    time.Time
	lastRetryCount int
}

func (q *fakeOutboxQueue) Enqueue(e *models.OutboxEmail) error {
	e.EmailID = int64(len(q.emails) + 1)
	q.emails = append(q.emails, *e)
	return nil
}

func (q *fakeOutboxQueue) GetDeliverable(limit int, now time.Time) ([]models.OutboxEmail, error) {
	var out []models.OutboxEmail
	for _, e := range q.emails {
		if len(out) >= limit {
			break
		}
		switch e.Status {
		case "", models.OutboxStatusPending:
			out = append(out, e)
		case models.OutboxStatusRetrying:
			if e.NextRetryAt.Valid && !e.NextRetryAt.Time.After(now) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (q *fakeOutboxQueue) MarkSent(emailID int64, sentAt time.Time) error {
	q.sent = append(q.sent, emailID)
	q.setStatus(emailID, models.OutboxStatusSent)
	return nil
}

func (q *fakeOutboxQueue) ScheduleRetry(emailID int64, retryCount int, nextRetryAt time.Time, sendErr string) error {
	q.retried = append(q.retried, emailID)
	q.lastRetryAt = nextRetryAt
	q.lastRetryCount = retryCount
	for i := range q.emails {
		if q.emails[i].EmailID == emailID {
			q.emails[i].Status = models.OutboxStatusRetrying
			q.emails[i].RetryCount = retryCount
			q.emails[i].NextRetryAt = sqlNullTime(nextRetryAt)
		}
	}
	return nil
}

func (q *fakeOutboxQueue) MarkFailed(emailID int64, sendErr string) error {
	q.failed = append(q.failed, emailID)
	q.setStatus(emailID, models.OutboxStatusFailed)
	return nil
}

func (q *fakeOutboxQueue) setStatus(emailID int64, status models.OutboxStatus) {
	for i := range q.emails {
		if q.emails[i].EmailID == emailID {
			q.emails[i].Status = status
		}
	}
}

// fakeSender records sends and fails a configurable number of times
type fakeSender struct {
	failures int
	calls    int
	lastTo   []string
}

func (s *fakeSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	s.calls++
	s.lastTo = to
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	return nil
}

func newMailer(q *fakeOutboxQueue, s *fakeSender, now time.Time) *MailerService {
	svc := NewMailerService(q, s, nil, zap.NewNop().Sugar())
	svc.now = func() time.Time { return now }
	return svc
}

func TestProcessOutboxDeliversBatch(t *testing.T) {
	q := &fakeOutboxQueue{}
	q.Enqueue(&models.OutboxEmail{Recipients: "a@example.com,b@example.com", Subject: "s"})
	q.Enqueue(&models.OutboxEmail{Recipients: "c@example.com", Subject: "s"})
	sender := &fakeSender{}

	svc := newMailer(q, sender, testClock)
	sent, err := svc.ProcessOutbox(context.Background())
	if err != nil {
		t.Fatalf("ProcessOutbox: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if len(q.sent) != 2 {
		t.Errorf("MarkSent calls = %d, want 2", len(q.sent))
	}
	// comma-separated recipients are split before handing off
	if len(sender.lastTo) != 1 || sender.lastTo[0] != "c@example.com" {
		t.Errorf("last send recipients = %v", sender.lastTo)
	}
}

func TestProcessOutboxSchedulesRetryWithBackoff(t *testing.T) {
	q := &fakeOutboxQueue{}
	q.Enqueue(&models.OutboxEmail{Recipients: "a@example.com", Subject: "s"})
	sender := &fakeSender{failures: 1}

	svc := newMailer(q, sender, testClock)
	sent, err := svc.ProcessOutbox(context.Background())
	if err != nil {
		t.Fatalf("ProcessOutbox: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
	if len(q.retried) != 1 {
		t.Fatalf("ScheduleRetry calls = %d, want 1", len(q.retried))
	}
	if q.lastRetryCount != 1 {
		t.Errorf("retry count = %d, want 1", q.lastRetryCount)
	}
	wantAt := testClock.Add(time.Minute)
	if !q.lastRetryAt.Equal(wantAt) {
		t.Errorf("first retry at %v, want %v (initial delay)", q.lastRetryAt, wantAt)
	}
}

func TestRetryDelayGrowsExponentially(t *testing.T) {
	svc := newMailer(&fakeOutboxQueue{}, &fakeSender{}, testClock)

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{10, 30 * time.Minute}, // capped
	}
	for _, tc := range cases {
		if got := svc.retryDelay(tc.attempt); got != tc.want {
			t.Errorf("retryDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestProcessOutboxMarksFailedAfterMaxRetries(t *testing.T) {
	q := &fakeOutboxQueue{}
	q.Enqueue(&models.OutboxEmail{Recipients: "a@example.com", Subject: "s", RetryCount: 3, MaxRetries: 3,
		Status: models.OutboxStatusRetrying, NextRetryAt: sqlNullTime(testClock.Add(-time.Minute))})
	sender := &fakeSender{failures: 1}

	svc := newMailer(q, sender, testClock)
	if _, err := svc.ProcessOutbox(context.Background()); err != nil {
		t.Fatalf("ProcessOutbox: %v", err)
	}
	if len(q.failed) != 1 {
		t.Errorf("MarkFailed calls = %d, want 1", len(q.failed))
	}
	if len(q.retried) != 0 {
		t.Errorf("no further retries expected, got %d", len(q.retried))
	}
}

func TestProcessOutboxRetryNotDueYet(t *testing.T) {
	q := &fakeOutboxQueue{}
	q.Enqueue(&models.OutboxEmail{Recipients: "a@example.com", Subject: "s", RetryCount: 1,
		Status: models.OutboxStatusRetrying, NextRetryAt: sqlNullTime(testClock.Add(time.Hour))})
	sender := &fakeSender{}

	svc := newMailer(q, sender, testClock)
	if _, err := svc.ProcessOutbox(context.Background()); err != nil {
		t.Fatalf("ProcessOutbox: %v", err)
	}
	if sender.calls != 0 {
		t.Errorf("email not yet due must not be sent, calls = %d", sender.calls)
	}
}
