package repository

import (
	"database/sql"
	"fmt"
	"time"

	"complaintdesk/models"
)

// ComplaintRepository handles database operations for complaints. Reads join
// the complaint_statuses lookup so callers only ever see the closed Status
// set; writes resolve status names back to lookup ids.
type ComplaintRepository struct {
	db *sql.DB
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db *sql.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `
	c.complaint_id, c.complaint_number, c.customer_name, c.customer_id,
	c.policy_number, c.policy_type, c.description, c.channel, s.name,
	c.branch_id, c.line_of_business_id, c.assigned_to_id, c.created_by_id,
	c.due_date, c.resolved_at, c.created_at, c.updated_at`

const complaintFrom = `
	FROM complaints c
	JOIN complaint_statuses s ON s.status_id = c.status_id`

func scanComplaint(scanner interface{ Scan(...any) error }) (*models.Complaint, error) {
	var c models.Complaint
	var status string
	err := scanner.Scan(
		&c.ComplaintID, &c.ComplaintNumber, &c.CustomerName, &c.CustomerID,
		&c.PolicyNumber, &c.PolicyType, &c.Description, &c.Channel, &status,
		&c.BranchID, &c.LineOfBusinessID, &c.AssignedToID, &c.CreatedByID,
		&c.DueDate, &c.ResolvedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = models.Status(status)
	return &c, nil
}

// CreateComplaint inserts a new complaint. Status is resolved by name; the
// caller has already fixed complaint_number, due_date and created_at.
func (r *ComplaintRepository) CreateComplaint(c *models.Complaint) error {
	query := `
		INSERT INTO complaints (
			complaint_number, customer_name, customer_id, policy_number,
			policy_type, description, channel, status_id,
			branch_id, line_of_business_id, assigned_to_id, created_by_id,
			due_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?,
			(SELECT status_id FROM complaint_statuses WHERE name = ?),
			?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		c.ComplaintNumber, c.CustomerName, c.CustomerID, c.PolicyNumber,
		c.PolicyType, c.Description, c.Channel, string(c.Status),
		c.BranchID, c.LineOfBusinessID, c.AssignedToID, c.CreatedByID,
		c.DueDate, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}

	complaintID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get complaint ID: %w", err)
	}
	c.ComplaintID = complaintID
	return nil
}

// GetComplaintByID retrieves a complaint by id
func (r *ComplaintRepository) GetComplaintByID(complaintID int64) (*models.Complaint, error) {
	query := `SELECT` + complaintColumns + complaintFrom + ` WHERE c.complaint_id = ?`
	c, err := scanComplaint(r.db.QueryRow(query, complaintID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return c, nil
}

// ListComplaints returns all complaints, newest first
func (r *ComplaintRepository) ListComplaints() ([]models.Complaint, error) {
	query := `SELECT` + complaintColumns + complaintFrom + ` ORDER BY c.created_at DESC`
	return r.queryComplaints(query)
}

// ListComplaintsForUser returns complaints the user created or is assigned to,
// newest first. Admins use ListComplaints instead.
func (r *ComplaintRepository) ListComplaintsForUser(userID int64) ([]models.Complaint, error) {
	query := `SELECT` + complaintColumns + complaintFrom + `
		WHERE c.created_by_id = ? OR c.assigned_to_id = ?
		ORDER BY c.created_at DESC`
	return r.queryComplaints(query, userID, userID)
}

func (r *ComplaintRepository) queryComplaints(query string, args ...any) ([]models.Complaint, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

// CountCreatedInYear counts complaints created in the given calendar year,
// used for sequential complaint number generation.
func (r *ComplaintRepository) CountCreatedInYear(year int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM complaints WHERE YEAR(created_at) = ?`
	if err := r.db.QueryRow(query, year).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count complaints for year %d: %w", year, err)
	}
	return count, nil
}

// UpdateComplaintFields overwrites the editable complaint fields
func (r *ComplaintRepository) UpdateComplaintFields(c *models.Complaint) error {
	query := `
		UPDATE complaints
		SET customer_name = ?, customer_id = ?, policy_number = ?,
		    policy_type = ?, description = ?, channel = ?, updated_at = ?
		WHERE complaint_id = ?
	`
	_, err := r.db.Exec(query,
		c.CustomerName, c.CustomerID, c.PolicyNumber,
		c.PolicyType, c.Description, c.Channel, time.Now().UTC(),
		c.ComplaintID,
	)
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
	}
	return nil
}

// UpdateAssignment sets the complaint's assignee
func (r *ComplaintRepository) UpdateAssignment(complaintID, userID int64) error {
	query := `UPDATE complaints SET assigned_to_id = ?, updated_at = ? WHERE complaint_id = ?`
	result, err := r.db.Exec(query, userID, time.Now().UTC(), complaintID)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check assignment result: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetComplaintByID(complaintID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// UpdateStatus sets the complaint's status. Transitioning to RESOLVED stamps
// resolved_at, but only if it has never been set (set at most once).
func (r *ComplaintRepository) UpdateStatus(complaintID int64, status models.Status, now time.Time) error {
	var query string
	var args []any
	if status == models.StatusResolved {
		query = `
			UPDATE complaints
			SET status_id = (SELECT status_id FROM complaint_statuses WHERE name = ?),
			    resolved_at = COALESCE(resolved_at, ?), updated_at = ?
			WHERE complaint_id = ?
		`
		args = []any{string(status), now, now, complaintID}
	} else {
		query = `
			UPDATE complaints
			SET status_id = (SELECT status_id FROM complaint_statuses WHERE name = ?),
			    updated_at = ?
			WHERE complaint_id = ?
		`
		args = []any{string(status), now, complaintID}
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update result: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetComplaintByID(complaintID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// FindReminderCandidates returns unresolved complaints created inside
// [createdFrom, createdTo) that have no notification of the given type newer
// than notifiedSince. The NOT EXISTS subquery is the sweep's idempotence
// ledger: notification rows suppress re-notification inside the dedup window.
func (r *ComplaintRepository) FindReminderCandidates(
	createdFrom, createdTo time.Time,
	notifType models.NotificationType,
	notifiedSince time.Time,
) ([]models.Complaint, error) {
	query := `SELECT` + complaintColumns + complaintFrom + `
		WHERE c.created_at >= ? AND c.created_at < ?
		  AND s.name <> 'RESOLVED'
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.complaint_id = c.complaint_id
			  AND n.type = ?
			  AND n.created_at >= ?
		  )
		ORDER BY c.created_at`
	return r.queryComplaints(query, createdFrom, createdTo, string(notifType), notifiedSince)
}

// FindBreachCandidates returns unresolved complaints whose due date has
// passed and that have no SLA_BREACH notification newer than notifiedSince.
func (r *ComplaintRepository) FindBreachCandidates(
	dueBefore time.Time,
	notifType models.NotificationType,
	notifiedSince time.Time,
) ([]models.Complaint, error) {
	query := `SELECT` + complaintColumns + complaintFrom + `
		WHERE c.due_date < ?
		  AND s.name <> 'RESOLVED'
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.complaint_id = c.complaint_id
			  AND n.type = ?
			  AND n.created_at >= ?
		  )
		ORDER BY c.due_date`
	return r.queryComplaints(query, dueBefore, string(notifType), notifiedSince)
}

// CountBreaching counts all currently-breaching complaints regardless of
// notification state, for the admin breach summary.
func (r *ComplaintRepository) CountBreaching(now time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)` + complaintFrom + `
		WHERE c.due_date < ? AND s.name <> 'RESOLVED'
	`
	if err := r.db.QueryRow(query, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count breaching complaints: %w", err)
	}
	return count, nil
}

// GetDashboardStats aggregates complaint counts for the dashboard
func (r *ComplaintRepository) GetDashboardStats(now time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		ByStatus: make(map[models.Status]int),
		ByBranch: make(map[string]int),
	}

	statusQuery := `
		SELECT s.name, COUNT(*)` + complaintFrom + `
		GROUP BY s.name
	`
	rows, err := r.db.Query(statusQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query status stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status stat: %w", err)
		}
		stats.ByStatus[models.Status(name)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	branchQuery := `
		SELECT b.name, COUNT(*)
		FROM complaints c
		JOIN branches b ON b.branch_id = c.branch_id
		GROUP BY b.name
	`
	branchRows, err := r.db.Query(branchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query branch stats: %w", err)
	}
	defer branchRows.Close()
	for branchRows.Next() {
		var name string
		var count int
		if err := branchRows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan branch stat: %w", err)
		}
		stats.ByBranch[name] = count
	}
	if err := branchRows.Err(); err != nil {
		return nil, err
	}

	overdue, err := r.CountBreaching(now)
	if err != nil {
		return nil, err
	}
	stats.Overdue = overdue

	unassignedQuery := `SELECT COUNT(*) FROM complaints WHERE assigned_to_id IS NULL`
	if err := r.db.QueryRow(unassignedQuery).Scan(&stats.Unassigned); err != nil {
		return nil, fmt.Errorf("failed to count unassigned complaints: %w", err)
	}

	return stats, nil
}
