package repository

import (
	"database/sql"
	"fmt"

	"complaintdesk/models"
)

// LineOfBusinessRepository handles database operations for lines of business
type LineOfBusinessRepository struct {
	db *sql.DB
}

// NewLineOfBusinessRepository creates a new line-of-business repository
func NewLineOfBusinessRepository(db *sql.DB) *LineOfBusinessRepository {
	return &LineOfBusinessRepository{db: db}
}

// CreateLineOfBusiness creates a new line of business
func (r *LineOfBusinessRepository) CreateLineOfBusiness(l *models.LineOfBusiness) error {
	query := `INSERT INTO lines_of_business (name, description) VALUES (?, ?)`
	result, err := r.db.Exec(query, l.Name, l.Description)
	if err != nil {
		return fmt.Errorf("failed to create line of business: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get line of business ID: %w", err)
	}
	l.LineOfBusinessID = id
	return nil
}

// GetLineOfBusinessByID retrieves a line of business by id
func (r *LineOfBusinessRepository) GetLineOfBusinessByID(lobID int64) (*models.LineOfBusiness, error) {
	var l models.LineOfBusiness
	query := `SELECT line_of_business_id, name, description, created_at FROM lines_of_business WHERE line_of_business_id = ?`
	err := r.db.QueryRow(query, lobID).Scan(&l.LineOfBusinessID, &l.Name, &l.Description, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("line of business %d: %w", lobID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get line of business: %w", err)
	}
	return &l, nil
}

// ListLinesOfBusiness returns all lines of business ordered by name
func (r *LineOfBusinessRepository) ListLinesOfBusiness() ([]models.LineOfBusiness, error) {
	query := `SELECT line_of_business_id, name, description, created_at FROM lines_of_business ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of business: %w", err)
	}
	defer rows.Close()

	var lobs []models.LineOfBusiness
	for rows.Next() {
		var l models.LineOfBusiness
		if err := rows.Scan(&l.LineOfBusinessID, &l.Name, &l.Description, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan line of business: %w", err)
		}
		lobs = append(lobs, l)
	}
	return lobs, rows.Err()
}

// UpdateLineOfBusiness overwrites a line of business's name and description
func (r *LineOfBusinessRepository) UpdateLineOfBusiness(l *models.LineOfBusiness) error {
	query := `UPDATE lines_of_business SET name = ?, description = ? WHERE line_of_business_id = ?`
	result, err := r.db.Exec(query, l.Name, l.Description, l.LineOfBusinessID)
	if err != nil {
		return fmt.Errorf("failed to update line of business: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		if _, getErr := r.GetLineOfBusinessByID(l.LineOfBusinessID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// DeleteLineOfBusiness removes a line of business by id
func (r *LineOfBusinessRepository) DeleteLineOfBusiness(lobID int64) error {
	result, err := r.db.Exec(`DELETE FROM lines_of_business WHERE line_of_business_id = ?`, lobID)
	if err != nil {
		return fmt.Errorf("failed to delete line of business: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("line of business %d: %w", lobID, models.ErrNotFound)
	}
	return nil
}
