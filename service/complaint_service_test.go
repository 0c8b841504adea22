package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"complaintdesk/models"
)

func newComplaintFixture(f *fakeStore, now time.Time) *ComplaintService {
	dispatcher := newDispatcher(f)
	svc := NewComplaintService(f, f, f, f, f, f, f, dispatcher, zap.NewNop().Sugar())
	svc.now = func() time.Time { return now }
	return svc
}

func validCreateRequest() *models.CreateComplaintRequest {
	return &models.CreateComplaintRequest{
		CustomerName:     "Jane Roe",
		CustomerID:       "CUST-1",
		PolicyNumber:     "POL-42",
		Description:      "Billing dispute",
		BranchID:         1,
		LineOfBusinessID: 1,
	}
}

func TestCreateComplaintNumberAndDueDate(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	creator := f.addUser(20, "creator", models.RoleAgent, 1, 1)
	svc := newComplaintFixture(f, testClock)

	c, err := svc.Create(context.Background(), validCreateRequest(), Actor{UserID: creator.UserID, Role: creator.Role})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	wantNumber := fmt.Sprintf("COMP%d%05d", testClock.Year(), 1)
	if c.ComplaintNumber != wantNumber {
		t.Errorf("complaint number %q, want %q", c.ComplaintNumber, wantNumber)
	}
	wantDue := testClock.Add(48 * time.Hour)
	if !c.DueDate.Equal(wantDue) {
		t.Errorf("due date %v, want creation time + 48h = %v", c.DueDate, wantDue)
	}
	if c.PolicyType != "General" || c.Channel != "WEB" {
		t.Errorf("defaults not applied: policyType=%q channel=%q", c.PolicyType, c.Channel)
	}
}

func TestCreateComplaintSequencePerYear(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	f.addUser(20, "creator", models.RoleAgent, 1, 1)
	// a complaint from last year must not advance this year's sequence
	old := &models.Complaint{
		Status: models.StatusResolved, BranchID: 1, LineOfBusinessID: 1, CreatedByID: 20,
		CreatedAt: testClock.AddDate(-1, 0, 0), DueDate: testClock.AddDate(-1, 0, 2),
	}
	f.addComplaint(old)

	svc := newComplaintFixture(f, testClock)
	c, err := svc.Create(context.Background(), validCreateRequest(), Actor{UserID: 20, Role: models.RoleAgent})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	wantNumber := fmt.Sprintf("COMP%d%05d", testClock.Year(), 1)
	if c.ComplaintNumber != wantNumber {
		t.Errorf("complaint number %q, want %q", c.ComplaintNumber, wantNumber)
	}
}

func TestCreateComplaintAssignsAutomatically(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	creator := f.addUser(20, "creator", models.RoleAgent, 1, 2)
	f.addLOB(2, "IT")
	svc := newComplaintFixture(f, testClock)

	c, err := svc.Create(context.Background(), validCreateRequest(), Actor{UserID: creator.UserID, Role: creator.Role})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !c.AssignedToID.Valid {
		t.Fatal("complaint should be auto-assigned")
	}
	if c.AssignedToID.Int64 != 10 {
		t.Errorf("expected least-loaded lowest-id agent 10, got %d", c.AssignedToID.Int64)
	}
}

func TestCreateComplaintDegradesWhenNoAgent(t *testing.T) {
	f := newFakeStore(testClock)
	f.addBranch(1, "Head Office")
	f.addLOB(1, "Claims")
	f.addUser(1, "admin", models.RoleAdmin, 0, 0)
	creator := f.addUser(20, "creator", models.RoleAgent, 0, 0)
	svc := newComplaintFixture(f, testClock)

	c, err := svc.Create(context.Background(), validCreateRequest(), Actor{UserID: creator.UserID, Role: creator.Role})
	if err != nil {
		t.Fatalf("Create must succeed without an eligible agent, got %v", err)
	}
	if c.AssignedToID.Valid {
		t.Error("complaint must stay unassigned")
	}
	needed := f.notificationsFor(1, models.NotificationAssignmentNeeded)
	if len(needed) != 1 {
		t.Fatalf("admin assignment-needed notifications = %d, want 1", len(needed))
	}
	if !strings.Contains(needed[0].Message, "Head Office branch") {
		t.Errorf("notification missing branch context: %q", needed[0].Message)
	}
}

func TestCreateComplaintSideEffects(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	creator := f.addUser(20, "creator", models.RoleAgent, 1, 1)
	f.addUser(1, "admin", models.RoleAdmin, 0, 0)
	svc := newComplaintFixture(f, testClock)

	c, err := svc.Create(context.Background(), validCreateRequest(), Actor{UserID: creator.UserID, Role: creator.Role})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created := f.notificationsFor(creator.UserID, models.NotificationComplaintCreated)
	if len(created) != 1 {
		t.Fatalf("creator notifications = %d, want 1", len(created))
	}
	if created[0].Title != "Complaint Created Successfully" {
		t.Errorf("unexpected notification title %q", created[0].Title)
	}

	if len(f.actions) == 0 || f.actions[0].Description != "Complaint created" {
		t.Errorf("first audit action must be the creation record, got %+v", f.actions)
	}

	// creation email excludes the creator
	if len(f.outbox) == 0 {
		t.Fatal("expected a creation email in the outbox")
	}
	if strings.Contains(f.outbox[0].Recipients, creator.Email) {
		t.Errorf("creation email must not go to the creator: %q", f.outbox[0].Recipients)
	}
	if !strings.Contains(f.outbox[0].Subject, c.ComplaintNumber) {
		t.Errorf("creation email subject %q missing complaint number", f.outbox[0].Subject)
	}
}

func TestCreateComplaintValidation(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	f.addUser(20, "creator", models.RoleAgent, 1, 1)
	svc := newComplaintFixture(f, testClock)

	req := validCreateRequest()
	req.CustomerName = ""
	_, err := svc.Create(context.Background(), req, Actor{UserID: 20, Role: models.RoleAgent})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestVisibilityForAgents(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	own := seedComplaint(f, 0, models.StatusPending)
	own.CreatedByID = 10
	assigned := seedComplaint(f, 11, models.StatusPending)
	assigned.CreatedByID = 99
	unrelated := seedComplaint(f, 12, models.StatusPending)
	unrelated.CreatedByID = 99

	svc := newComplaintFixture(f, testClock)

	list, err := svc.List(Actor{UserID: 10, Role: models.RoleAgent})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ComplaintID != own.ComplaintID {
		t.Errorf("agent 10 should see only the complaint they created, got %d", len(list))
	}

	if _, err := svc.Get(assigned.ComplaintID, Actor{UserID: 11, Role: models.RoleAgent}); err != nil {
		t.Errorf("assignee must see the complaint: %v", err)
	}
	if _, err := svc.Get(unrelated.ComplaintID, Actor{UserID: 10, Role: models.RoleAgent}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("unrelated agent should get ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(unrelated.ComplaintID, Actor{UserID: 1, Role: models.RoleAdmin}); err != nil {
		t.Errorf("admin must see everything: %v", err)
	}
}

func TestSetStatusStampsResolvedAtOnce(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	c := seedComplaint(f, 10, models.StatusInProgress)
	svc := newComplaintFixture(f, testClock)

	updated, err := svc.SetStatus(c.ComplaintID, Actor{UserID: 10, Role: models.RoleAgent}, "RESOLVED")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if !updated.ResolvedAt.Valid || !updated.ResolvedAt.Time.Equal(testClock) {
		t.Fatalf("resolvedAt not stamped: %+v", updated.ResolvedAt)
	}
	firstResolved := updated.ResolvedAt.Time

	// reopen and resolve again later; the original stamp survives
	if _, err := svc.SetStatus(c.ComplaintID, Actor{UserID: 10, Role: models.RoleAgent}, "IN_PROGRESS"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	svc.now = func() time.Time { return testClock.Add(2 * time.Hour) }
	again, err := svc.SetStatus(c.ComplaintID, Actor{UserID: 10, Role: models.RoleAgent}, "RESOLVED")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !again.ResolvedAt.Time.Equal(firstResolved) {
		t.Errorf("resolvedAt overwritten: %v, want %v", again.ResolvedAt.Time, firstResolved)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	c := seedComplaint(f, 10, models.StatusPending)
	svc := newComplaintFixture(f, testClock)

	_, err := svc.SetStatus(c.ComplaintID, Actor{UserID: 10, Role: models.RoleAgent}, "ESCALATED")
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestUpdateComplaintPartialFields(t *testing.T) {
	f := newFakeStore(testClock)
	seedPool(f)
	c := seedComplaint(f, 10, models.StatusPending)
	c.CustomerName = "Original"
	c.Description = "Original description"
	svc := newComplaintFixture(f, testClock)

	desc := "Updated description"
	updated, err := svc.Update(c.ComplaintID, Actor{UserID: 10, Role: models.RoleAgent},
		&models.UpdateComplaintRequest{Description: &desc})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Description != desc {
		t.Errorf("description not updated: %q", updated.Description)
	}
	if updated.CustomerName != "Original" {
		t.Errorf("omitted field must be untouched, got %q", updated.CustomerName)
	}
}
