package repository

import (
	"database/sql"
	"fmt"
	"time"

	"complaintdesk/models"
)

// OutboxRepository handles the email_outbox queue. Rows are written in the
// same flow that commits the triggering state change; the mail worker drains
// them afterwards.
type OutboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue inserts a pending outbox email
func (r *OutboxRepository) Enqueue(e *models.OutboxEmail) error {
	if e.Status == "" {
		e.Status = models.OutboxStatusPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO email_outbox (complaint_id, recipients, subject, body, status, retry_count, max_retries, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		e.ComplaintID, e.Recipients, e.Subject, e.Body,
		string(e.Status), e.RetryCount, e.MaxRetries, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get email ID: %w", err)
	}
	e.EmailID = id
	return nil
}

// GetDeliverable returns emails due for delivery: pending ones, plus retrying
// ones whose next_retry_at has passed.
func (r *OutboxRepository) GetDeliverable(limit int, now time.Time) ([]models.OutboxEmail, error) {
	query := `
		SELECT email_id, complaint_id, recipients, subject, body, status,
		       retry_count, max_retries, next_retry_at, sent_at, error_message, created_at
		FROM email_outbox
		WHERE status = 'pending'
		   OR (status = 'retrying' AND next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?
	`
	rows, err := r.db.Query(query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var emails []models.OutboxEmail
	for rows.Next() {
		var e models.OutboxEmail
		var status string
		err := rows.Scan(
			&e.EmailID, &e.ComplaintID, &e.Recipients, &e.Subject, &e.Body, &status,
			&e.RetryCount, &e.MaxRetries, &e.NextRetryAt, &e.SentAt, &e.ErrorMessage, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox email: %w", err)
		}
		e.Status = models.OutboxStatus(status)
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// MarkSent records a successful delivery
func (r *OutboxRepository) MarkSent(emailID int64, sentAt time.Time) error {
	query := `UPDATE email_outbox SET status = 'sent', sent_at = ?, error_message = NULL WHERE email_id = ?`
	if _, err := r.db.Exec(query, sentAt, emailID); err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

// ScheduleRetry bumps the retry count and schedules the next attempt
func (r *OutboxRepository) ScheduleRetry(emailID int64, retryCount int, nextRetryAt time.Time, sendErr string) error {
	query := `
		UPDATE email_outbox
		SET status = 'retrying', retry_count = ?, next_retry_at = ?, error_message = ?
		WHERE email_id = ?
	`
	if _, err := r.db.Exec(query, retryCount, nextRetryAt, sendErr, emailID); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	return nil
}

// MarkFailed records a terminal delivery failure
func (r *OutboxRepository) MarkFailed(emailID int64, sendErr string) error {
	query := `UPDATE email_outbox SET status = 'failed', error_message = ? WHERE email_id = ?`
	if _, err := r.db.Exec(query, sendErr, emailID); err != nil {
		return fmt.Errorf("failed to mark email failed: %w", err)
	}
	return nil
}
