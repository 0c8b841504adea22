package models

import (
	"database/sql"
	"time"
)

// NotificationType tags an in-app notification. SLA types double as the
// idempotence ledger for the escalation sweeps: a sweep re-notifies a
// complaint only when no notification of its type exists inside the dedup
// window. These rows are also the user-facing inbox; the dual use is
// intentional and must not be split into a separate ledger table.
type NotificationType string

const (
	NotificationComplaintCreated NotificationType = "COMPLAINT_CREATED"
	NotificationAssignment       NotificationType = "ASSIGNMENT"
	NotificationAssignmentNeeded NotificationType = "ASSIGNMENT_NEEDED"
	NotificationSLAReminder1H    NotificationType = "SLA_REMINDER_1H"
	NotificationSLAReminder2H    NotificationType = "SLA_REMINDER_2H"
	NotificationSLABreach        NotificationType = "SLA_BREACH"
	NotificationSLABreachSummary NotificationType = "SLA_BREACH_SUMMARY"
)

// Notification represents an in-app notification record (append-only; only
// the read flag is ever mutated, and only the owner may delete).
type Notification struct {
	NotificationID int64            `db:"notification_id" json:"notification_id"`
	UserID         int64            `db:"user_id" json:"user_id"`
	ComplaintID    sql.NullInt64    `db:"complaint_id" json:"complaint_id"`
	Type           NotificationType `db:"type" json:"type"`
	Title          string           `db:"title" json:"title"`
	Message        string           `db:"message" json:"message"`
	Read           bool             `db:"is_read" json:"read"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// OutboxStatus represents the delivery status of an outbox email
type OutboxStatus string

const (
	OutboxStatusPending  OutboxStatus = "pending"
	OutboxStatusSent     OutboxStatus = "sent"
	OutboxStatusFailed   OutboxStatus = "failed"
	OutboxStatusRetrying OutboxStatus = "retrying"
)

// OutboxEmail is a queued email. State changes commit first; email delivery
// happens afterwards from this queue, so a slow or failing mail server never
// rolls back an assignment or aborts a sweep.
type OutboxEmail struct {
	EmailID      int64          `db:"email_id" json:"email_id"`
	ComplaintID  sql.NullInt64  `db:"complaint_id" json:"complaint_id"`
	Recipients   string         `db:"recipients" json:"recipients"` // comma-separated
	Subject      string         `db:"subject" json:"subject"`
	Body         string         `db:"body" json:"body"` // HTML
	Status       OutboxStatus   `db:"status" json:"status"`
	RetryCount   int            `db:"retry_count" json:"retry_count"`
	MaxRetries   int            `db:"max_retries" json:"max_retries"`
	NextRetryAt  sql.NullTime   `db:"next_retry_at" json:"next_retry_at"`
	SentAt       sql.NullTime   `db:"sent_at" json:"sent_at"`
	ErrorMessage sql.NullString `db:"error_message" json:"error_message"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// MailerConfig holds outbox delivery configuration
type MailerConfig struct {
	DefaultMaxRetries int
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration
	BackoffMultiplier float64
	SendTimeout       time.Duration
	BatchSize         int
	WorkerInterval    time.Duration
}

// DefaultMailerConfig returns the default outbox delivery configuration
func DefaultMailerConfig() *MailerConfig {
	return &MailerConfig{
		DefaultMaxRetries: 3,
		InitialRetryDelay: 1 * time.Minute,
		MaxRetryDelay:     30 * time.Minute,
		BackoffMultiplier: 2.0,
		SendTimeout:       15 * time.Second,
		BatchSize:         100,
		WorkerInterval:    30 * time.Second,
	}
}
