package service

import (
	"time"

	"complaintdesk/models"
)

// Store contracts consumed by the services. The repository package provides
// the MySQL implementations; tests substitute in-memory fakes.

// ComplaintStore is the persistence contract for complaints
type ComplaintStore interface {
	CreateComplaint(c *models.Complaint) error
	GetComplaintByID(complaintID int64) (*models.Complaint, error)
	ListComplaints() ([]models.Complaint, error)
	ListComplaintsForUser(userID int64) ([]models.Complaint, error)
	CountCreatedInYear(year int) (int, error)
	UpdateComplaintFields(c *models.Complaint) error
	UpdateAssignment(complaintID, userID int64) error
	UpdateStatus(complaintID int64, status models.Status, now time.Time) error
	FindReminderCandidates(createdFrom, createdTo time.Time, notifType models.NotificationType, notifiedSince time.Time) ([]models.Complaint, error)
	FindBreachCandidates(dueBefore time.Time, notifType models.NotificationType, notifiedSince time.Time) ([]models.Complaint, error)
	CountBreaching(now time.Time) (int, error)
}

// UserStore is the persistence contract for users
type UserStore interface {
	GetUserByID(userID int64) (*models.User, error)
	GetAdmins() ([]models.User, error)
	GetUsersByBranch(branchID int64) ([]models.User, error)
	GetAssignmentCandidates(branchID, lineOfBusinessID int64) ([]models.CandidateLoad, error)
}

// NotificationStore is the persistence contract for in-app notifications
type NotificationStore interface {
	CreateNotification(n *models.Notification) error
	HasUserNotificationSince(userID int64, notifType models.NotificationType, since time.Time) (bool, error)
}

// ActionStore is the persistence contract for the complaint audit trail
type ActionStore interface {
	CreateAction(a *models.ComplaintAction) error
}

// BranchStore resolves branch references
type BranchStore interface {
	GetBranchByID(branchID int64) (*models.Branch, error)
}

// LineOfBusinessStore resolves line-of-business references
type LineOfBusinessStore interface {
	GetLineOfBusinessByID(lobID int64) (*models.LineOfBusiness, error)
}

// Outbox is the email queue contract. Enqueueing is a database write in the
// same flow as the triggering state change; delivery happens later.
type Outbox interface {
	Enqueue(e *models.OutboxEmail) error
}
