package repository

import (
	"database/sql"
	"fmt"
	"time"

	"complaintdesk/models"
)

// ActionRepository handles the append-only complaint audit trail
type ActionRepository struct {
	db *sql.DB
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// CreateAction appends an audit trail entry
func (r *ActionRepository) CreateAction(a *models.ComplaintAction) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO complaint_actions (complaint_id, user_id, description, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, a.ComplaintID, a.UserID, a.Description, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get action ID: %w", err)
	}
	a.ActionID = id
	return nil
}

// ListByComplaint returns a complaint's audit trail, oldest first
func (r *ActionRepository) ListByComplaint(complaintID int64) ([]models.ComplaintAction, error) {
	query := `
		SELECT action_id, complaint_id, user_id, description, created_at
		FROM complaint_actions
		WHERE complaint_id = ?
		ORDER BY created_at
	`
	rows, err := r.db.Query(query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []models.ComplaintAction
	for rows.Next() {
		var a models.ComplaintAction
		if err := rows.Scan(&a.ActionID, &a.ComplaintID, &a.UserID, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
