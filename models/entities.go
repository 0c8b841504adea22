package models

import (
	"database/sql"
	"time"
)

// Status represents the lifecycle status of a complaint.
// Business logic always compares statuses against this closed set; the
// persisted lookup-table representation (complaint_statuses) is translated
// at the repository boundary.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// AllStatuses lists every valid complaint status in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusClosed}

// ParseStatus validates a status name against the closed set.
func ParseStatus(name string) (Status, bool) {
	switch Status(name) {
	case StatusPending, StatusInProgress, StatusResolved, StatusClosed:
		return Status(name), true
	}
	return "", false
}

// IsActive reports whether a complaint in this status counts toward an
// agent's workload for assignment balancing.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

// Role represents a user role
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleAgent Role = "AGENT"
)

// StatusRecord is a row of the complaint_statuses lookup table.
type StatusRecord struct {
	StatusID    int64          `db:"status_id" json:"status_id"`
	Name        Status         `db:"name" json:"name"`
	Description sql.NullString `db:"description" json:"description"`
}

// User represents a user entity
type User struct {
	UserID           int64         `db:"user_id" json:"user_id"`
	Name             string        `db:"name" json:"name"`
	Email            string        `db:"email" json:"email"`
	PasswordHash     string        `db:"password_hash" json:"-"`
	Role             Role          `db:"role" json:"role"`
	BranchID         sql.NullInt64 `db:"branch_id" json:"branch_id"`
	LineOfBusinessID sql.NullInt64 `db:"line_of_business_id" json:"line_of_business_id"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
}

// CanReceiveAssignments reports whether the user is a valid candidate for
// automatic assignment: agents only, with both branch and line of business set.
func (u *User) CanReceiveAssignments() bool {
	return u.Role == RoleAgent && u.BranchID.Valid && u.LineOfBusinessID.Valid
}

// Branch represents a branch office
type Branch struct {
	BranchID    int64          `db:"branch_id" json:"branch_id"`
	Name        string         `db:"name" json:"name"`
	Description sql.NullString `db:"description" json:"description"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// LineOfBusiness represents a line of business (Claims, IT, HR, ...)
type LineOfBusiness struct {
	LineOfBusinessID int64          `db:"line_of_business_id" json:"line_of_business_id"`
	Name             string         `db:"name" json:"name"`
	Description      sql.NullString `db:"description" json:"description"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// Complaint represents a customer complaint
type Complaint struct {
	ComplaintID      int64         `db:"complaint_id" json:"complaint_id"`
	ComplaintNumber  string        `db:"complaint_number" json:"complaint_number"`
	CustomerName     string        `db:"customer_name" json:"customer_name"`
	CustomerID       string        `db:"customer_id" json:"customer_id"`
	PolicyNumber     string        `db:"policy_number" json:"policy_number"`
	PolicyType       string        `db:"policy_type" json:"policy_type"`
	Description      string        `db:"description" json:"description"`
	Channel          string        `db:"channel" json:"channel"`
	Status           Status        `db:"status" json:"status"`
	BranchID         int64         `db:"branch_id" json:"branch_id"`
	LineOfBusinessID int64         `db:"line_of_business_id" json:"line_of_business_id"`
	AssignedToID     sql.NullInt64 `db:"assigned_to_id" json:"assigned_to_id"`
	CreatedByID      int64         `db:"created_by_id" json:"created_by_id"`
	DueDate          time.Time     `db:"due_date" json:"due_date"`
	ResolvedAt       sql.NullTime  `db:"resolved_at" json:"resolved_at"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        sql.NullTime  `db:"updated_at" json:"updated_at"`
}

// Ref returns the complaint id as a nullable foreign key value
func (c *Complaint) Ref() sql.NullInt64 {
	return sql.NullInt64{Int64: c.ComplaintID, Valid: true}
}

// ComplaintAction represents an append-only audit trail entry for a complaint
type ComplaintAction struct {
	ActionID    int64     `db:"action_id" json:"action_id"`
	ComplaintID int64     `db:"complaint_id" json:"complaint_id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ComplaintAttachment represents a file attached to a complaint
type ComplaintAttachment struct {
	AttachmentID int64     `db:"attachment_id" json:"attachment_id"`
	ComplaintID  int64     `db:"complaint_id" json:"complaint_id"`
	FileName     string    `db:"file_name" json:"file_name"`
	FilePath     string    `db:"file_path" json:"file_path"`
	FileType     string    `db:"file_type" json:"file_type"`
	FileSize     int64     `db:"file_size" json:"file_size"`
	UploadedByID int64     `db:"uploaded_by_id" json:"uploaded_by_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CandidateLoad pairs an assignment candidate with their current active
// complaint count (PENDING or IN_PROGRESS assignments).
type CandidateLoad struct {
	User        User
	ActiveCount int
}
