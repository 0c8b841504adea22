package repository

import (
	"database/sql"
	"fmt"

	"complaintdesk/models"
)

// StatusRepository handles the complaint_statuses lookup table. It is the
// translation boundary between the internal closed status set and the
// persisted lookup rows.
type StatusRepository struct {
	db *sql.DB
}

// NewStatusRepository creates a new status repository
func NewStatusRepository(db *sql.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// EnsureDefaults inserts any missing rows of the closed status set.
func (r *StatusRepository) EnsureDefaults() error {
	descriptions := map[models.Status]string{
		models.StatusPending:    "Complaint is pending review",
		models.StatusInProgress: "Complaint is being worked on",
		models.StatusResolved:   "Complaint has been resolved",
		models.StatusClosed:     "Complaint is closed",
	}

	for _, status := range models.AllStatuses {
		query := `INSERT IGNORE INTO complaint_statuses (name, description) VALUES (?, ?)`
		if _, err := r.db.Exec(query, string(status), descriptions[status]); err != nil {
			return fmt.Errorf("failed to ensure status %s: %w", status, err)
		}
	}
	return nil
}

// GetIDByName resolves a status name to its lookup-table id.
func (r *StatusRepository) GetIDByName(status models.Status) (int64, error) {
	var id int64
	query := `SELECT status_id FROM complaint_statuses WHERE name = ?`
	err := r.db.QueryRow(query, string(status)).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("status %s: %w", status, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve status %s: %w", status, err)
	}
	return id, nil
}

// List returns all status lookup rows
func (r *StatusRepository) List() ([]models.StatusRecord, error) {
	query := `SELECT status_id, name, description FROM complaint_statuses ORDER BY status_id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer rows.Close()

	var statuses []models.StatusRecord
	for rows.Next() {
		var s models.StatusRecord
		var name string
		if err := rows.Scan(&s.StatusID, &name, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		s.Name = models.Status(name)
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}
