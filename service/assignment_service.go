package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"complaintdesk/metrics"
	"complaintdesk/models"
	"complaintdesk/notification"
)

// Actor identifies the authenticated caller of an operation, used for
// privilege checks and audit attribution.
type Actor struct {
	UserID int64
	Name   string
	Role   models.Role
}

// IsAdmin reports whether the actor holds elevated privilege
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// AssignmentService is the complaint assignment dispatcher: it picks exactly
// one eligible agent for a complaint and records the decision durably, or
// reports that none exists.
type AssignmentService struct {
	complaints    ComplaintStore
	users         UserStore
	notifications NotificationStore
	actions       ActionStore
	branches      BranchStore
	lobs          LineOfBusinessStore
	outbox        Outbox
	log           *zap.SugaredLogger

	// Candidate selection and the assignment write are serialized per
	// (branch, line of business) key so two concurrent automatic
	// assignments against the same thin candidate pool cannot both pick
	// the same least-loaded agent. This is in-process serialization; the
	// deployment assumption is a single writer per request.
	poolMu sync.Mutex
	pools  map[string]*sync.Mutex
}

// NewAssignmentService creates a new assignment dispatcher
func NewAssignmentService(
	complaints ComplaintStore,
	users UserStore,
	notifications NotificationStore,
	actions ActionStore,
	branches BranchStore,
	lobs LineOfBusinessStore,
	outbox Outbox,
	log *zap.SugaredLogger,
) *AssignmentService {
	return &AssignmentService{
		complaints:    complaints,
		users:         users,
		notifications: notifications,
		actions:       actions,
		branches:      branches,
		lobs:          lobs,
		outbox:        outbox,
		log:           log,
		pools:         make(map[string]*sync.Mutex),
	}
}

// Assign assigns a complaint to an agent. With manualAssigneeID set, the
// actor must be an admin and the target user is assigned unconditionally —
// no eligibility re-check, mirroring the explicit override path. Without it,
// the least-loaded eligible agent is selected (ties broken by lowest user id).
//
// Side-effect order: assignment update, then notification, then audit action.
// The assignment email goes through the outbox and never rolls back the
// assignment on delivery failure.
func (s *AssignmentService) Assign(ctx context.Context, complaintID int64, actor Actor, manualAssigneeID *int64) (*models.AssignmentResult, error) {
	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}

	if manualAssigneeID != nil {
		return s.assignManually(complaint, actor, *manualAssigneeID)
	}
	return s.assignAutomatically(complaint)
}

func (s *AssignmentService) assignManually(complaint *models.Complaint, actor Actor, assigneeID int64) (*models.AssignmentResult, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("manual assignment requires admin: %w", models.ErrForbidden)
	}

	assignee, err := s.users.GetUserByID(assigneeID)
	if err != nil {
		return nil, err
	}

	if err := s.complaints.UpdateAssignment(complaint.ComplaintID, assignee.UserID); err != nil {
		return nil, err
	}
	complaint.AssignedToID.Int64 = assignee.UserID
	complaint.AssignedToID.Valid = true

	if err := s.recordAssignment(
		complaint, assignee,
		fmt.Sprintf("Manually assigned to %s by %s", assignee.Name, actor.Name),
		actor.UserID,
	); err != nil {
		return nil, err
	}

	metrics.RecordAssignment(string(models.AssignmentManual))
	s.log.Infow("complaint assigned",
		"complaint", complaint.ComplaintNumber, "assignee", assignee.Name, "mode", "manual", "by", actor.Name)

	return &models.AssignmentResult{
		ComplaintID: complaint.ComplaintID,
		AssigneeID:  assignee.UserID,
		Assignee:    assignee.Name,
		Mode:        models.AssignmentManual,
	}, nil
}

func (s *AssignmentService) assignAutomatically(complaint *models.Complaint) (*models.AssignmentResult, error) {
	if _, err := s.branches.GetBranchByID(complaint.BranchID); err != nil {
		return nil, err
	}
	if _, err := s.lobs.GetLineOfBusinessByID(complaint.LineOfBusinessID); err != nil {
		return nil, err
	}

	unlock := s.lockPool(complaint.BranchID, complaint.LineOfBusinessID)
	defer unlock()

	candidates, err := s.users.GetAssignmentCandidates(complaint.BranchID, complaint.LineOfBusinessID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		metrics.RecordUnassigned()
		s.log.Infow("no eligible agent",
			"complaint", complaint.ComplaintNumber, "branch", complaint.BranchID, "lob", complaint.LineOfBusinessID)
		return nil, fmt.Errorf("complaint %s: %w", complaint.ComplaintNumber, models.ErrNoEligibleAgent)
	}

	// The store already orders candidates, but the ordering is re-applied
	// here so the tie-break (lowest active count, then lowest user id)
	// holds for any store implementation.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ActiveCount != candidates[j].ActiveCount {
			return candidates[i].ActiveCount < candidates[j].ActiveCount
		}
		return candidates[i].User.UserID < candidates[j].User.UserID
	})
	selected := candidates[0]

	if err := s.complaints.UpdateAssignment(complaint.ComplaintID, selected.User.UserID); err != nil {
		return nil, err
	}
	complaint.AssignedToID.Int64 = selected.User.UserID
	complaint.AssignedToID.Valid = true

	if err := s.recordAssignment(
		complaint, &selected.User,
		fmt.Sprintf("Automatically assigned to %s", selected.User.Name),
		selected.User.UserID,
	); err != nil {
		return nil, err
	}

	metrics.RecordAssignment(string(models.AssignmentAutomatic))
	s.log.Infow("complaint assigned",
		"complaint", complaint.ComplaintNumber, "assignee", selected.User.Name,
		"mode", "automatic", "active_load", selected.ActiveCount)

	return &models.AssignmentResult{
		ComplaintID: complaint.ComplaintID,
		AssigneeID:  selected.User.UserID,
		Assignee:    selected.User.Name,
		Mode:        models.AssignmentAutomatic,
		ActiveLoad:  selected.ActiveCount,
	}, nil
}

// recordAssignment writes the notification, the audit action and the outbox
// email for a committed assignment, in that order. The outbox write is
// best-effort: a failure is logged, not propagated.
func (s *AssignmentService) recordAssignment(complaint *models.Complaint, assignee *models.User, actionText string, actionUserID int64) error {
	err := s.notifications.CreateNotification(&models.Notification{
		UserID:      assignee.UserID,
		ComplaintID: complaint.Ref(),
		Type:        models.NotificationAssignment,
		Title:       "Complaint Assigned",
		Message:     fmt.Sprintf("Complaint %s has been assigned to you", complaint.ComplaintNumber),
	})
	if err != nil {
		return err
	}

	err = s.actions.CreateAction(&models.ComplaintAction{
		ComplaintID: complaint.ComplaintID,
		UserID:      actionUserID,
		Description: actionText,
	})
	if err != nil {
		return err
	}

	subject, body := notification.AssignmentEmail(complaint, assignee.Name)
	enqueueErr := s.outbox.Enqueue(&models.OutboxEmail{
		ComplaintID: complaint.Ref(),
		Recipients:  assignee.Email,
		Subject:     subject,
		Body:        body,
	})
	if enqueueErr != nil {
		s.log.Errorw("failed to enqueue assignment email",
			"complaint", complaint.ComplaintNumber, "error", enqueueErr)
	}
	return nil
}

// NotifyAssignmentNeeded notifies every admin that a complaint could not be
// assigned automatically and needs manual attention. Callers invoke this when
// Assign returns ErrNoEligibleAgent; the unassigned complaint remains a valid
// end state.
func (s *AssignmentService) NotifyAssignmentNeeded(complaint *models.Complaint) {
	admins, err := s.users.GetAdmins()
	if err != nil {
		s.log.Errorw("failed to load admins for assignment-needed notification",
			"complaint", complaint.ComplaintNumber, "error", err)
		return
	}

	message := fmt.Sprintf("Complaint %s requires manual assignment", complaint.ComplaintNumber)
	branch, berr := s.branches.GetBranchByID(complaint.BranchID)
	lob, lerr := s.lobs.GetLineOfBusinessByID(complaint.LineOfBusinessID)
	if berr == nil && lerr == nil {
		message = fmt.Sprintf(
			"Complaint %s requires manual assignment. No suitable agent found for %s branch and %s line of business.",
			complaint.ComplaintNumber, branch.Name, lob.Name)
	}

	for _, admin := range admins {
		err := s.notifications.CreateNotification(&models.Notification{
			UserID:      admin.UserID,
			ComplaintID: complaint.Ref(),
			Type:        models.NotificationAssignmentNeeded,
			Title:       "Complaint Requires Assignment",
			Message:     message,
		})
		if err != nil {
			s.log.Errorw("failed to notify admin of unassigned complaint",
				"complaint", complaint.ComplaintNumber, "admin", admin.UserID, "error", err)
		}
	}
}

// lockPool acquires the mutex serializing assignment for one candidate pool
func (s *AssignmentService) lockPool(branchID, lobID int64) func() {
	key := fmt.Sprintf("%d/%d", branchID, lobID)

	s.poolMu.Lock()
	mu, ok := s.pools[key]
	if !ok {
		mu = &sync.Mutex{}
		s.pools[key] = mu
	}
	s.poolMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
