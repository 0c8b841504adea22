package service

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"complaintdesk/models"
)

// fakeStore is an in-memory implementation of every store contract. A single
// instance backs all of them so dedup queries see the notifications the
// services write, matching the shared database in production.
type fakeStore struct {
	clock time.Time

	complaints    map[int64]*models.Complaint
	users         map[int64]*models.User
	notifications []models.Notification
	actions       []models.ComplaintAction
	branches      map[int64]*models.Branch
	lobs          map[int64]*models.LineOfBusiness
	outbox        []models.OutboxEmail

	nextComplaintID    int64
	nextNotificationID int64

	enqueueErr      error
	failEnqueueFor  map[int64]bool // complaint id -> fail Enqueue once
	notificationErr error
}

func sqlNullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

func newFakeStore(clock time.Time) *fakeStore {
	return &fakeStore{
		clock:          clock,
		complaints:     make(map[int64]*models.Complaint),
		users:          make(map[int64]*models.User),
		branches:       make(map[int64]*models.Branch),
		lobs:           make(map[int64]*models.LineOfBusiness),
		failEnqueueFor: make(map[int64]bool),
	}
}

func (f *fakeStore) addUser(id int64, name string, role models.Role, branchID, lobID int64) *models.User {
	u := &models.User{
		UserID: id,
		Name:   name,
		Email:  fmt.Sprintf("%s@example.com", name),
		Role:   role,
	}
	if branchID != 0 {
		u.BranchID = sql.NullInt64{Int64: branchID, Valid: true}
	}
	if lobID != 0 {
		u.LineOfBusinessID = sql.NullInt64{Int64: lobID, Valid: true}
	}
	f.users[id] = u
	return u
}

func (f *fakeStore) addBranch(id int64, name string) *models.Branch {
	b := &models.Branch{BranchID: id, Name: name}
	f.branches[id] = b
	return b
}

func (f *fakeStore) addLOB(id int64, name string) *models.LineOfBusiness {
	l := &models.LineOfBusiness{LineOfBusinessID: id, Name: name}
	f.lobs[id] = l
	return l
}

func (f *fakeStore) addComplaint(c *models.Complaint) *models.Complaint {
	f.nextComplaintID++
	c.ComplaintID = f.nextComplaintID
	if c.ComplaintNumber == "" {
		c.ComplaintNumber = fmt.Sprintf("COMP2026%05d", c.ComplaintID)
	}
	f.complaints[c.ComplaintID] = c
	return c
}

func (f *fakeStore) notificationsFor(userID int64, notifType models.NotificationType) []models.Notification {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && n.Type == notifType {
			out = append(out, n)
		}
	}
	return out
}

// ComplaintStore

func (f *fakeStore) CreateComplaint(c *models.Complaint) error {
	f.addComplaint(c)
	return nil
}

func (f *fakeStore) GetComplaintByID(complaintID int64) (*models.Complaint, error) {
	c, ok := f.complaints[complaintID]
	if !ok {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, models.ErrNotFound)
	}
	clone := *c
	return &clone, nil
}

func (f *fakeStore) ListComplaints() ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range f.complaints {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) ListComplaintsForUser(userID int64) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range f.complaints {
		if c.CreatedByID == userID || (c.AssignedToID.Valid && c.AssignedToID.Int64 == userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) CountCreatedInYear(year int) (int, error) {
	count := 0
	for _, c := range f.complaints {
		if c.CreatedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) UpdateComplaintFields(c *models.Complaint) error {
	stored, ok := f.complaints[c.ComplaintID]
	if !ok {
		return fmt.Errorf("complaint %d: %w", c.ComplaintID, models.ErrNotFound)
	}
	clone := *c
	clone.Status = stored.Status
	clone.AssignedToID = stored.AssignedToID
	clone.ResolvedAt = stored.ResolvedAt
	f.complaints[c.ComplaintID] = &clone
	return nil
}

func (f *fakeStore) UpdateAssignment(complaintID, userID int64) error {
	c, ok := f.complaints[complaintID]
	if !ok {
		return fmt.Errorf("complaint %d: %w", complaintID, models.ErrNotFound)
	}
	c.AssignedToID = sql.NullInt64{Int64: userID, Valid: true}
	return nil
}

func (f *fakeStore) UpdateStatus(complaintID int64, status models.Status, now time.Time) error {
	c, ok := f.complaints[complaintID]
	if !ok {
		return fmt.Errorf("complaint %d: %w", complaintID, models.ErrNotFound)
	}
	c.Status = status
	if status == models.StatusResolved && !c.ResolvedAt.Valid {
		c.ResolvedAt = sql.NullTime{Time: now, Valid: true}
	}
	return nil
}

func (f *fakeStore) hasNotificationSince(complaintID int64, notifType models.NotificationType, since time.Time) bool {
	for _, n := range f.notifications {
		if n.ComplaintID.Valid && n.ComplaintID.Int64 == complaintID &&
			n.Type == notifType && !n.CreatedAt.Before(since) {
			return true
		}
	}
	return false
}

func (f *fakeStore) FindReminderCandidates(createdFrom, createdTo time.Time, notifType models.NotificationType, notifiedSince time.Time) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range f.complaints {
		if c.Status == models.StatusResolved {
			continue
		}
		if c.CreatedAt.Before(createdFrom) || !c.CreatedAt.Before(createdTo) {
			continue
		}
		if f.hasNotificationSince(c.ComplaintID, notifType, notifiedSince) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) FindBreachCandidates(dueBefore time.Time, notifType models.NotificationType, notifiedSince time.Time) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range f.complaints {
		if c.Status == models.StatusResolved {
			continue
		}
		if !c.DueDate.Before(dueBefore) {
			continue
		}
		if f.hasNotificationSince(c.ComplaintID, notifType, notifiedSince) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) CountBreaching(now time.Time) (int, error) {
	count := 0
	for _, c := range f.complaints {
		if c.Status != models.StatusResolved && c.DueDate.Before(now) {
			count++
		}
	}
	return count, nil
}

// UserStore

func (f *fakeStore) GetUserByID(userID int64) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	clone := *u
	return &clone, nil
}

func (f *fakeStore) sortedUserIDs() []int64 {
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeStore) GetAdmins() ([]models.User, error) {
	var out []models.User
	for _, id := range f.sortedUserIDs() {
		if u := f.users[id]; u.Role == models.RoleAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) GetUsersByBranch(branchID int64) ([]models.User, error) {
	var out []models.User
	for _, id := range f.sortedUserIDs() {
		if u := f.users[id]; u.BranchID.Valid && u.BranchID.Int64 == branchID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAssignmentCandidates(branchID, lineOfBusinessID int64) ([]models.CandidateLoad, error) {
	var out []models.CandidateLoad
	for _, id := range f.sortedUserIDs() {
		u := f.users[id]
		if u.Role != models.RoleAgent {
			continue
		}
		if !u.BranchID.Valid || u.BranchID.Int64 != branchID {
			continue
		}
		if !u.LineOfBusinessID.Valid || u.LineOfBusinessID.Int64 != lineOfBusinessID {
			continue
		}
		active := 0
		for _, c := range f.complaints {
			if c.AssignedToID.Valid && c.AssignedToID.Int64 == u.UserID && c.Status.IsActive() {
				active++
			}
		}
		out = append(out, models.CandidateLoad{User: *u, ActiveCount: active})
	}
	return out, nil
}

// UserDirectory mutations

func (f *fakeStore) CreateUser(u *models.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user %s: %w", u.Email, models.ErrDuplicateEmail)
		}
	}
	var max int64
	for id := range f.users {
		if id > max {
			max = id
		}
	}
	u.UserID = max + 1
	clone := *u
	f.users[u.UserID] = &clone
	return nil
}

func (f *fakeStore) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
}

func (f *fakeStore) ListUsers() ([]models.User, error) {
	var out []models.User
	for _, id := range f.sortedUserIDs() {
		out = append(out, *f.users[id])
	}
	return out, nil
}

func (f *fakeStore) UpdateUser(u *models.User) error {
	if _, ok := f.users[u.UserID]; !ok {
		return fmt.Errorf("user %d: %w", u.UserID, models.ErrNotFound)
	}
	clone := *u
	f.users[u.UserID] = &clone
	return nil
}

func (f *fakeStore) DeleteUser(userID int64) error {
	if _, ok := f.users[userID]; !ok {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	delete(f.users, userID)
	return nil
}

// NotificationStore

func (f *fakeStore) CreateNotification(n *models.Notification) error {
	if f.notificationErr != nil {
		return f.notificationErr
	}
	f.nextNotificationID++
	n.NotificationID = f.nextNotificationID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = f.clock
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeStore) HasUserNotificationSince(userID int64, notifType models.NotificationType, since time.Time) (bool, error) {
	for _, n := range f.notifications {
		if n.UserID == userID && n.Type == notifType && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// ActionStore

func (f *fakeStore) CreateAction(a *models.ComplaintAction) error {
	a.ActionID = int64(len(f.actions) + 1)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = f.clock
	}
	f.actions = append(f.actions, *a)
	return nil
}

// BranchStore / LineOfBusinessStore

func (f *fakeStore) GetBranchByID(branchID int64) (*models.Branch, error) {
	b, ok := f.branches[branchID]
	if !ok {
		return nil, fmt.Errorf("branch %d: %w", branchID, models.ErrNotFound)
	}
	return b, nil
}

func (f *fakeStore) GetLineOfBusinessByID(lobID int64) (*models.LineOfBusiness, error) {
	l, ok := f.lobs[lobID]
	if !ok {
		return nil, fmt.Errorf("line of business %d: %w", lobID, models.ErrNotFound)
	}
	return l, nil
}

// Outbox

func (f *fakeStore) Enqueue(e *models.OutboxEmail) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	if e.ComplaintID.Valid && f.failEnqueueFor[e.ComplaintID.Int64] {
		delete(f.failEnqueueFor, e.ComplaintID.Int64)
		return errors.New("enqueue failed")
	}
	e.EmailID = int64(len(f.outbox) + 1)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = f.clock
	}
	f.outbox = append(f.outbox, *e)
	return nil
}
