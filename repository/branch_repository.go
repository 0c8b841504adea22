package repository

import (
	"database/sql"
	"fmt"

	"complaintdesk/models"
)

// BranchRepository handles database operations for branches
type BranchRepository struct {
	db *sql.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *sql.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// CreateBranch creates a new branch
func (r *BranchRepository) CreateBranch(b *models.Branch) error {
	query := `INSERT INTO branches (name, description) VALUES (?, ?)`
	result, err := r.db.Exec(query, b.Name, b.Description)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get branch ID: %w", err)
	}
	b.BranchID = id
	return nil
}

// GetBranchByID retrieves a branch by id
func (r *BranchRepository) GetBranchByID(branchID int64) (*models.Branch, error) {
	var b models.Branch
	query := `SELECT branch_id, name, description, created_at FROM branches WHERE branch_id = ?`
	err := r.db.QueryRow(query, branchID).Scan(&b.BranchID, &b.Name, &b.Description, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("branch %d: %w", branchID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &b, nil
}

// ListBranches returns all branches ordered by name
func (r *BranchRepository) ListBranches() ([]models.Branch, error) {
	query := `SELECT branch_id, name, description, created_at FROM branches ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer rows.Close()

	var branches []models.Branch
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.BranchID, &b.Name, &b.Description, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// UpdateBranch overwrites a branch's name and description
func (r *BranchRepository) UpdateBranch(b *models.Branch) error {
	query := `UPDATE branches SET name = ?, description = ? WHERE branch_id = ?`
	result, err := r.db.Exec(query, b.Name, b.Description, b.BranchID)
	if err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		if _, getErr := r.GetBranchByID(b.BranchID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// DeleteBranch removes a branch by id
func (r *BranchRepository) DeleteBranch(branchID int64) error {
	result, err := r.db.Exec(`DELETE FROM branches WHERE branch_id = ?`, branchID)
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("branch %d: %w", branchID, models.ErrNotFound)
	}
	return nil
}
