package repository

import (
	"database/sql"
	"fmt"
	"time"

	"complaintdesk/models"
)

// NotificationRepository handles database operations for in-app notifications
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts a notification. CreatedAt defaults to the
// database clock when the caller leaves it zero.
func (r *NotificationRepository) CreateNotification(n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO notifications (user_id, complaint_id, type, title, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		n.UserID, n.ComplaintID, string(n.Type), n.Title, n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get notification ID: %w", err)
	}
	n.NotificationID = id
	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(userID int64) ([]models.Notification, error) {
	query := `
		SELECT notification_id, user_id, complaint_id, type, title, message, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var typ string
		err := rows.Scan(
			&n.NotificationID, &n.UserID, &n.ComplaintID, &typ,
			&n.Title, &n.Message, &n.Read, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead sets the read flag on a notification owned by the given user
func (r *NotificationRepository) MarkRead(notificationID, userID int64, read bool) error {
	query := `UPDATE notifications SET is_read = ? WHERE notification_id = ? AND user_id = ?`
	result, err := r.db.Exec(query, read, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check mark result: %w", err)
	}
	if affected == 0 {
		var exists int
		check := `SELECT COUNT(*) FROM notifications WHERE notification_id = ? AND user_id = ?`
		if err := r.db.QueryRow(check, notificationID, userID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to verify notification: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("notification %d: %w", notificationID, models.ErrNotFound)
		}
	}
	return nil
}

// Delete removes a notification owned by the given user
func (r *NotificationRepository) Delete(notificationID, userID int64) error {
	result, err := r.db.Exec(
		`DELETE FROM notifications WHERE notification_id = ? AND user_id = ?`,
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %d: %w", notificationID, models.ErrNotFound)
	}
	return nil
}

// HasUserNotificationSince reports whether the user already has a
// notification of the given type created at or after the given instant.
// Used for the admin breach-summary dedup.
func (r *NotificationRepository) HasUserNotificationSince(
	userID int64, notifType models.NotificationType, since time.Time,
) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = ? AND type = ? AND created_at >= ?
	`
	if err := r.db.QueryRow(query, userID, string(notifType), since).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check user notifications: %w", err)
	}
	return count > 0, nil
}
