package repository

import (
	"database/sql"
	"fmt"

	"complaintdesk/models"
)

// AttachmentRepository handles database operations for complaint attachments
type AttachmentRepository struct {
	db *sql.DB
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// CreateAttachment records an uploaded file
func (r *AttachmentRepository) CreateAttachment(a *models.ComplaintAttachment) error {
	query := `
		INSERT INTO complaint_attachments (complaint_id, file_name, file_path, file_type, file_size, uploaded_by_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		a.ComplaintID, a.FileName, a.FilePath, a.FileType, a.FileSize, a.UploadedByID,
	)
	if err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get attachment ID: %w", err)
	}
	a.AttachmentID = id
	return nil
}

// GetAttachmentByID retrieves an attachment by id
func (r *AttachmentRepository) GetAttachmentByID(attachmentID int64) (*models.ComplaintAttachment, error) {
	var a models.ComplaintAttachment
	query := `
		SELECT attachment_id, complaint_id, file_name, file_path, file_type, file_size, uploaded_by_id, created_at
		FROM complaint_attachments WHERE attachment_id = ?
	`
	err := r.db.QueryRow(query, attachmentID).Scan(
		&a.AttachmentID, &a.ComplaintID, &a.FileName, &a.FilePath,
		&a.FileType, &a.FileSize, &a.UploadedByID, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attachment %d: %w", attachmentID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &a, nil
}

// ListByComplaint returns a complaint's attachments, oldest first
func (r *AttachmentRepository) ListByComplaint(complaintID int64) ([]models.ComplaintAttachment, error) {
	query := `
		SELECT attachment_id, complaint_id, file_name, file_path, file_type, file_size, uploaded_by_id, created_at
		FROM complaint_attachments
		WHERE complaint_id = ?
		ORDER BY created_at
	`
	rows, err := r.db.Query(query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	var attachments []models.ComplaintAttachment
	for rows.Next() {
		var a models.ComplaintAttachment
		err := rows.Scan(
			&a.AttachmentID, &a.ComplaintID, &a.FileName, &a.FilePath,
			&a.FileType, &a.FileSize, &a.UploadedByID, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// DeleteAttachment removes an attachment record
func (r *AttachmentRepository) DeleteAttachment(attachmentID int64) error {
	result, err := r.db.Exec(`DELETE FROM complaint_attachments WHERE attachment_id = ?`, attachmentID)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("attachment %d: %w", attachmentID, models.ErrNotFound)
	}
	return nil
}
