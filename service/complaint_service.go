package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"complaintdesk/models"
	"complaintdesk/notification"
)

// slaWindow is the resolution deadline applied to every new complaint.
const slaWindow = 48 * time.Hour

// ComplaintService implements the complaint lifecycle: intake, listing,
// updates, status transitions and the audit trail.
type ComplaintService struct {
	complaints    ComplaintStore
	users         UserStore
	notifications NotificationStore
	actions       ActionStore
	branches      BranchStore
	lobs          LineOfBusinessStore
	outbox        Outbox
	dispatcher    *AssignmentService
	log           *zap.SugaredLogger
	now           func() time.Time
}

// NewComplaintService creates a new complaint service
func NewComplaintService(
	complaints ComplaintStore,
	users UserStore,
	notifications NotificationStore,
	actions ActionStore,
	branches BranchStore,
	lobs LineOfBusinessStore,
	outbox Outbox,
	dispatcher *AssignmentService,
	log *zap.SugaredLogger,
) *ComplaintService {
	return &ComplaintService{
		complaints:    complaints,
		users:         users,
		notifications: notifications,
		actions:       actions,
		branches:      branches,
		lobs:          lobs,
		outbox:        outbox,
		dispatcher:    dispatcher,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new complaint, records the initial audit action and
// creator notification, emails the admins and branch staff, and then hands
// the complaint to the dispatcher for automatic assignment. A complaint the
// dispatcher cannot assign is still created; admins are notified instead.
func (s *ComplaintService) Create(ctx context.Context, req *models.CreateComplaintRequest, actor Actor) (*models.Complaint, error) {
	if req.CustomerName == "" || req.CustomerID == "" || req.PolicyNumber == "" || req.Description == "" {
		return nil, fmt.Errorf("missing required fields: %w", models.ErrValidation)
	}
	if req.BranchID == 0 || req.LineOfBusinessID == 0 {
		return nil, fmt.Errorf("branch and line of business are required: %w", models.ErrValidation)
	}

	creator, err := s.users.GetUserByID(actor.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.branches.GetBranchByID(req.BranchID); err != nil {
		return nil, err
	}
	if _, err := s.lobs.GetLineOfBusinessByID(req.LineOfBusinessID); err != nil {
		return nil, err
	}

	now := s.now()
	number, err := s.nextComplaintNumber(now)
	if err != nil {
		return nil, err
	}

	policyType := req.PolicyType
	if policyType == "" {
		policyType = "General"
	}
	channel := req.Channel
	if channel == "" {
		channel = "WEB"
	}

	complaint := &models.Complaint{
		ComplaintNumber:  number,
		CustomerName:     req.CustomerName,
		CustomerID:       req.CustomerID,
		PolicyNumber:     req.PolicyNumber,
		PolicyType:       policyType,
		Description:      req.Description,
		Channel:          channel,
		Status:           models.StatusPending,
		BranchID:         req.BranchID,
		LineOfBusinessID: req.LineOfBusinessID,
		CreatedByID:      creator.UserID,
		DueDate:          now.Add(slaWindow),
		CreatedAt:        now,
	}
	if err := s.complaints.CreateComplaint(complaint); err != nil {
		return nil, err
	}

	err = s.actions.CreateAction(&models.ComplaintAction{
		ComplaintID: complaint.ComplaintID,
		UserID:      creator.UserID,
		Description: "Complaint created",
	})
	if err != nil {
		s.log.Errorw("failed to record creation action", "complaint", number, "error", err)
	}

	err = s.notifications.CreateNotification(&models.Notification{
		UserID:      creator.UserID,
		ComplaintID: complaint.Ref(),
		Type:        models.NotificationComplaintCreated,
		Title:       "Complaint Created Successfully",
		Message:     fmt.Sprintf("Complaint %s has been created and is being processed", number),
	})
	if err != nil {
		s.log.Errorw("failed to create creation notification", "complaint", number, "error", err)
	}

	s.enqueueCreationEmail(complaint, creator)

	_, err = s.dispatcher.Assign(ctx, complaint.ComplaintID, actor, nil)
	if err != nil {
		if errors.Is(err, models.ErrNoEligibleAgent) {
			s.dispatcher.NotifyAssignmentNeeded(complaint)
		} else {
			s.log.Errorw("automatic assignment failed", "complaint", number, "error", err)
		}
	}

	return s.complaints.GetComplaintByID(complaint.ComplaintID)
}

// nextComplaintNumber derives the next sequential complaint number for the
// current year, COMP<year><5-digit sequence>.
func (s *ComplaintService) nextComplaintNumber(now time.Time) (string, error) {
	count, err := s.complaints.CountCreatedInYear(now.Year())
	if err != nil {
		return "", fmt.Errorf("count complaints for numbering: %w", err)
	}
	return fmt.Sprintf("COMP%d%05d", now.Year(), count+1), nil
}

// enqueueCreationEmail emails admins and the branch staff about the new
// complaint, excluding the creator. Best-effort.
func (s *ComplaintService) enqueueCreationEmail(complaint *models.Complaint, creator *models.User) {
	seen := map[string]bool{creator.Email: true}
	var recipients []string
	add := func(email string) {
		if email != "" && !seen[email] {
			seen[email] = true
			recipients = append(recipients, email)
		}
	}

	admins, err := s.users.GetAdmins()
	if err != nil {
		s.log.Errorw("failed to load admins for creation email", "complaint", complaint.ComplaintNumber, "error", err)
		return
	}
	for i := range admins {
		add(admins[i].Email)
	}

	branchUsers, err := s.users.GetUsersByBranch(complaint.BranchID)
	if err != nil {
		s.log.Errorw("failed to load branch users for creation email", "complaint", complaint.ComplaintNumber, "error", err)
	} else {
		for i := range branchUsers {
			add(branchUsers[i].Email)
		}
	}

	if len(recipients) == 0 {
		return
	}

	subject, body := notification.ComplaintCreatedEmail(complaint, "")
	err = s.outbox.Enqueue(&models.OutboxEmail{
		ComplaintID: complaint.Ref(),
		Recipients:  strings.Join(recipients, ","),
		Subject:     subject,
		Body:        body,
	})
	if err != nil {
		s.log.Errorw("failed to enqueue creation email", "complaint", complaint.ComplaintNumber, "error", err)
	}
}

// List returns the complaints visible to the actor: everything for admins,
// otherwise only complaints the actor created or is assigned to.
func (s *ComplaintService) List(actor Actor) ([]models.Complaint, error) {
	if actor.IsAdmin() {
		return s.complaints.ListComplaints()
	}
	return s.complaints.ListComplaintsForUser(actor.UserID)
}

// Get returns a single complaint, enforcing the same visibility rule as List.
func (s *ComplaintService) Get(complaintID int64, actor Actor) (*models.Complaint, error) {
	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(complaint, actor) {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, models.ErrForbidden)
	}
	return complaint, nil
}

// Update applies partial field updates to a complaint
func (s *ComplaintService) Update(complaintID int64, actor Actor, req *models.UpdateComplaintRequest) (*models.Complaint, error) {
	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(complaint, actor) {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, models.ErrForbidden)
	}

	if req.CustomerName != nil {
		complaint.CustomerName = *req.CustomerName
	}
	if req.CustomerID != nil {
		complaint.CustomerID = *req.CustomerID
	}
	if req.PolicyNumber != nil {
		complaint.PolicyNumber = *req.PolicyNumber
	}
	if req.PolicyType != nil {
		complaint.PolicyType = *req.PolicyType
	}
	if req.Description != nil {
		complaint.Description = *req.Description
	}
	if req.Channel != nil {
		complaint.Channel = *req.Channel
	}

	if err := s.complaints.UpdateComplaintFields(complaint); err != nil {
		return nil, err
	}
	return s.complaints.GetComplaintByID(complaintID)
}

// SetStatus transitions a complaint to a new status. Moving to RESOLVED
// stamps resolvedAt, once; later transitions never clear or overwrite it.
func (s *ComplaintService) SetStatus(complaintID int64, actor Actor, statusName string) (*models.Complaint, error) {
	status, ok := models.ParseStatus(statusName)
	if !ok {
		return nil, fmt.Errorf("unknown status %q: %w", statusName, models.ErrValidation)
	}

	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(complaint, actor) {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, models.ErrForbidden)
	}

	if err := s.complaints.UpdateStatus(complaintID, status, s.now()); err != nil {
		return nil, err
	}

	err = s.actions.CreateAction(&models.ComplaintAction{
		ComplaintID: complaintID,
		UserID:      actor.UserID,
		Description: fmt.Sprintf("Status changed to %s", status),
	})
	if err != nil {
		s.log.Errorw("failed to record status action", "complaint", complaintID, "error", err)
	}

	return s.complaints.GetComplaintByID(complaintID)
}

// AddAction appends an audit trail entry to a complaint
func (s *ComplaintService) AddAction(complaintID int64, actor Actor, description string) (*models.ComplaintAction, error) {
	if description == "" {
		return nil, fmt.Errorf("description is required: %w", models.ErrValidation)
	}
	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(complaint, actor) {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, models.ErrForbidden)
	}

	action := &models.ComplaintAction{
		ComplaintID: complaint.ComplaintID,
		UserID:      actor.UserID,
		Description: description,
	}
	if err := s.actions.CreateAction(action); err != nil {
		return nil, err
	}
	return action, nil
}

func (s *ComplaintService) canAccess(complaint *models.Complaint, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	if complaint.CreatedByID == actor.UserID {
		return true
	}
	return complaint.AssignedToID.Valid && complaint.AssignedToID.Int64 == actor.UserID
}
