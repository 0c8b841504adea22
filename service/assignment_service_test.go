package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"complaintdesk/models"
)

var testClock = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newDispatcher(f *fakeStore) *AssignmentService {
	return NewAssignmentService(f, f, f, f, f, f, f, zap.NewNop().Sugar())
}

// seedPool creates a branch, a line of business and three agents in them.
func seedPool(f *fakeStore) {
	f.addBranch(1, "Head Office")
	f.addLOB(1, "Claims")
	f.addUser(10, "agent-a", models.RoleAgent, 1, 1)
	f.addUser(11, "agent-b", models.RoleAgent, 1, 1)
	f.addUser(12, "agent-c", models.RoleAgent, 1, 1)
}

func seedComplaint(f *fakeStore, assignedTo int64, status models.Status) *models.Complaint {
	c := &models.Complaint{
		CustomerName:     "Jane Roe",
		Status:           status,
		BranchID:         1,
		LineOfBusinessID: 1,
		CreatedByID:      10,
		CreatedAt:        testClock.Add(-time.Hour),
		DueDate:          testClock.Add(47 * time.Hour),
	}
	if assignedTo != 0 {
		c.AssignedToID = sql.NullInt64{Int64: assignedTo, Valid: true}
	}
	return f.addComplaint(c)
}

func TestAssignPicksLeastLoadedAgent(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	// agent-a carries two active complaints, agent-b one, agent-c one resolved
	seedComplaint(f, 10, models.StatusPending)
	seedComplaint(f, 10, models.StatusInProgress)
	seedComplaint(f, 11, models.StatusPending)
	seedComplaint(f, 12, models.StatusResolved)

	target := seedComplaint(f, 0, models.StatusPending)
	svc := newDispatcher(f)

	result, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: 1, Role: models.RoleAgent}, nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if result.AssigneeID != 12 {
		t.Errorf("expected agent-c (12, zero active), got %d", result.AssigneeID)
	}
	if result.Mode != models.AssignmentAutomatic {
		t.Errorf("expected automatic mode, got %s", result.Mode)
	}

	stored := f.complaints[target.ComplaintID]
	if !stored.AssignedToID.Valid || stored.AssignedToID.Int64 != 12 {
		t.Errorf("assignment not persisted, got %+v", stored.AssignedToID)
	}
}

func TestAssignTieBreaksOnLowestUserID(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	// all three agents idle; lowest id must win
	target := seedComplaint(f, 0, models.StatusPending)
	svc := newDispatcher(f)

	result, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: 1, Role: models.RoleAgent}, nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if result.AssigneeID != 10 {
		t.Errorf("expected lowest-id agent 10, got %d", result.AssigneeID)
	}
}

func TestAssignRepeatedRunsConverge(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	svc := newDispatcher(f)

	counts := map[int64]int{}
	for i := 0; i < 6; i++ {
		target := seedComplaint(f, 0, models.StatusPending)
		result, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: 1, Role: models.RoleAgent}, nil)
		if err != nil {
			t.Fatalf("Assign #%d: %v", i, err)
		}
		counts[result.AssigneeID]++
	}
	for _, id := range []int64{10, 11, 12} {
		if counts[id] != 2 {
			t.Errorf("agent %d got %d complaints, expected 2 (counts: %v)", id, counts[id], counts)
		}
	}
}

func TestAssignNoEligibleAgent(t *testing.T) {
	f := newFakeStore(testClock)
	f.addBranch(1, "Head Office")
	f.addLOB(1, "Claims")
	// only an admin and an out-of-pool agent exist
	f.addUser(1, "admin", models.RoleAdmin, 0, 0)
	f.addBranch(2, "North Branch")
	f.addUser(20, "far-agent", models.RoleAgent, 2, 1)

	target := seedComplaint(f, 0, models.StatusPending)
	svc := newDispatcher(f)

	_, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: 1, Role: models.RoleAdmin}, nil)
	if !errors.Is(err, models.ErrNoEligibleAgent) {
		t.Fatalf("expected ErrNoEligibleAgent, got %v", err)
	}

	stored := f.complaints[target.ComplaintID]
	if stored.AssignedToID.Valid {
		t.Errorf("complaint must stay unassigned, got assignee %d", stored.AssignedToID.Int64)
	}
	if len(f.notifications) != 0 {
		t.Errorf("no notifications expected from Assign itself, got %d", len(f.notifications))
	}
}

func TestNotifyAssignmentNeededReachesAllAdmins(t *testing.T) {
	f := newFakeStore(testClock)
	f.addBranch(1, "Head Office")
	f.addLOB(1, "Claims")
	f.addUser(1, "admin-a", models.RoleAdmin, 0, 0)
	f.addUser(2, "admin-b", models.RoleAdmin, 0, 0)
	f.addUser(10, "agent", models.RoleAgent, 1, 1)

	target := seedComplaint(f, 0, models.StatusPending)
	svc := newDispatcher(f)

	svc.NotifyAssignmentNeeded(target)

	var got []models.Notification
	for _, n := range f.notifications {
		if n.Type == models.NotificationAssignmentNeeded {
			got = append(got, n)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 admin notifications, got %d", len(got))
	}
	for _, n := range got {
		if !strings.Contains(n.Message, "Head Office branch") || !strings.Contains(n.Message, "Claims line of business") {
			t.Errorf("message missing branch/lob context: %q", n.Message)
		}
	}
}

func TestManualAssignRequiresAdmin(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	target := seedComplaint(f, 0, models.StatusPending)
	svc := newDispatcher(f)

	assignee := int64(11)
	_, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: 10, Role: models.RoleAgent}, &assignee)
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin manual assign, got %v", err)
	}
	if f.complaints[target.ComplaintID].AssignedToID.Valid {
		t.Error("complaint must not be assigned after rejected manual attempt")
	}
}

func TestManualAssignBypassesEligibility(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	f.addUser(1, "admin", models.RoleAdmin, 0, 0)
	// target user is in a different branch and carries the heaviest load
	f.addBranch(2, "North Branch")
	other := f.addUser(30, "outside-agent", models.RoleAgent, 2, 1)
	seedComplaint(f, 30, models.StatusPending)
	seedComplaint(f, 30, models.StatusPending)

	target := seedComplaint(f, 0, models.StatusPending)
	svc := newDispatcher(f)

	assignee := other.UserID
	result, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: 1, Name: "admin", Role: models.RoleAdmin}, &assignee)
	if err != nil {
		t.Fatalf("manual Assign: %v", err)
	}
	if result.AssigneeID != 30 || result.Mode != models.AssignmentManual {
		t.Errorf("expected manual assignment to 30, got %+v", result)
	}
}

func TestAssignSideEffects(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	target := seedComplaint(f, 0, models.StatusPending)
	svc := newDispatcher(f)

	result, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: 1, Role: models.RoleAgent}, nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	notifs := f.notificationsFor(result.AssigneeID, models.NotificationAssignment)
	if len(notifs) != 1 {
		t.Fatalf("expected 1 assignment notification, got %d", len(notifs))
	}
	if notifs[0].Title != "Complaint Assigned" {
		t.Errorf("unexpected notification title %q", notifs[0].Title)
	}
	wantMsg := "Complaint " + target.ComplaintNumber + " has been assigned to you"
	if notifs[0].Message != wantMsg {
		t.Errorf("notification message %q, want %q", notifs[0].Message, wantMsg)
	}

	if len(f.actions) != 1 {
		t.Fatalf("expected 1 audit action, got %d", len(f.actions))
	}
	if f.actions[0].Description != "Automatically assigned to agent-a" {
		t.Errorf("unexpected action description %q", f.actions[0].Description)
	}
	if f.actions[0].UserID != result.AssigneeID {
		t.Errorf("automatic assignment action attributed to %d, want assignee %d", f.actions[0].UserID, result.AssigneeID)
	}

	if len(f.outbox) != 1 {
		t.Fatalf("expected 1 outbox email, got %d", len(f.outbox))
	}
	if !strings.Contains(f.outbox[0].Subject, target.ComplaintNumber) {
		t.Errorf("email subject %q missing complaint number", f.outbox[0].Subject)
	}
}

func TestManualAssignAuditAttribution(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	admin := f.addUser(1, "admin", models.RoleAdmin, 0, 0)
	target := seedComplaint(f, 0, models.StatusPending)
	svc := newDispatcher(f)

	assignee := int64(11)
	_, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: admin.UserID, Name: "admin", Role: models.RoleAdmin}, &assignee)
	if err != nil {
		t.Fatalf("manual Assign: %v", err)
	}

	if len(f.actions) != 1 {
		t.Fatalf("expected 1 audit action, got %d", len(f.actions))
	}
	if f.actions[0].Description != "Manually assigned to agent-b by admin" {
		t.Errorf("unexpected action description %q", f.actions[0].Description)
	}
	if f.actions[0].UserID != admin.UserID {
		t.Errorf("manual assignment action attributed to %d, want actor %d", f.actions[0].UserID, admin.UserID)
	}
}

func TestAssignEmailFailureDoesNotFailAssignment(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	target := seedComplaint(f, 0, models.StatusPending)
	f.failEnqueueFor[target.ComplaintID] = true
	svc := newDispatcher(f)

	result, err := svc.Assign(context.Background(), target.ComplaintID, Actor{UserID: 1, Role: models.RoleAgent}, nil)
	if err != nil {
		t.Fatalf("Assign must survive an email enqueue failure, got %v", err)
	}
	stored := f.complaints[target.ComplaintID]
	if !stored.AssignedToID.Valid || stored.AssignedToID.Int64 != result.AssigneeID {
		t.Error("assignment must persist even when the email cannot be queued")
	}
}
