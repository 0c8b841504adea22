package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"complaintdesk/metrics"
	"complaintdesk/models"
	"complaintdesk/notification"
)

// SLAService runs the three escalation sweeps: a reminder for complaints
// unresolved past one hour, a second reminder past two hours, and a breach
// alert for complaints past their due date. Sweeps are idempotent within
// their dedup windows; running one twice in a row produces no duplicate
// notifications.
type SLAService struct {
	complaints    ComplaintStore
	users         UserStore
	notifications NotificationStore
	outbox        Outbox
	log           *zap.SugaredLogger
	now           func() time.Time
}

// NewSLAService creates a new SLA escalation service
func NewSLAService(
	complaints ComplaintStore,
	users UserStore,
	notifications NotificationStore,
	outbox Outbox,
	log *zap.SugaredLogger,
) *SLAService {
	return &SLAService{
		complaints:    complaints,
		users:         users,
		notifications: notifications,
		outbox:        outbox,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RunAll executes every sweep in order. A sweep whose query fails is
// reported with zero counts; the remaining sweeps still run.
func (s *SLAService) RunAll(ctx context.Context) []models.SweepReport {
	reports := make([]models.SweepReport, 0, len(models.AllSweepKinds))
	for _, kind := range models.AllSweepKinds {
		report, err := s.RunSweep(ctx, kind)
		if err != nil {
			s.log.Errorw("sweep failed", "kind", kind, "error", err)
			report = &models.SweepReport{Kind: kind, RanAt: s.now()}
		}
		reports = append(reports, *report)
	}
	return reports
}

// RunSweep executes one sweep. Candidacy, dedup look-back and window bounds
// are all computed from a single "now" captured at entry. A failure while
// processing one complaint is logged and does not stop the rest of the batch.
func (s *SLAService) RunSweep(ctx context.Context, kind models.SweepKind) (*models.SweepReport, error) {
	now := s.now()
	notifiedSince := now.Add(-kind.DedupWindow())

	var candidates []models.Complaint
	var err error
	switch kind {
	case models.SweepReminder1H:
		// Created more than 1 hour ago but less than 2 hours ago
		candidates, err = s.complaints.FindReminderCandidates(
			now.Add(-2*time.Hour), now.Add(-1*time.Hour), kind.NotificationType(), notifiedSince)
	case models.SweepReminder2H:
		// Created more than 2 hours ago but less than 4 hours ago
		candidates, err = s.complaints.FindReminderCandidates(
			now.Add(-4*time.Hour), now.Add(-2*time.Hour), kind.NotificationType(), notifiedSince)
	case models.SweepBreach:
		candidates, err = s.complaints.FindBreachCandidates(now, kind.NotificationType(), notifiedSince)
	default:
		return nil, fmt.Errorf("unknown sweep kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("sweep %s: %w", kind, err)
	}

	processed := 0
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		ok, perr := s.processComplaint(kind, &candidates[i], now)
		if perr != nil {
			s.log.Errorw("failed to process complaint",
				"sweep", kind, "complaint", candidates[i].ComplaintNumber, "error", perr)
			continue
		}
		if ok {
			processed++
		}
	}

	if kind == models.SweepBreach {
		s.notifyAdminsOfBreaches(now)
	}

	metrics.RecordSweep(string(kind), len(candidates), processed)
	s.log.Infow("sweep complete", "kind", kind, "matched", len(candidates), "processed", processed)

	return &models.SweepReport{
		Kind:      kind,
		Matched:   len(candidates),
		Processed: processed,
		RanAt:     now,
	}, nil
}

// processComplaint escalates one complaint: a batched email to the assignee,
// the creator and every admin, then in-app notifications for the assignee and
// the creator when they differ. Returns false when nothing was sent.
func (s *SLAService) processComplaint(kind models.SweepKind, complaint *models.Complaint, now time.Time) (bool, error) {
	var assignee *models.User
	if complaint.AssignedToID.Valid {
		u, err := s.users.GetUserByID(complaint.AssignedToID.Int64)
		if err != nil {
			return false, fmt.Errorf("resolve assignee: %w", err)
		}
		assignee = u
	}

	creator, err := s.users.GetUserByID(complaint.CreatedByID)
	if err != nil {
		return false, fmt.Errorf("resolve creator: %w", err)
	}

	recipients := make([]string, 0, 4)
	seen := make(map[string]bool)
	add := func(email string) {
		if email != "" && !seen[email] {
			seen[email] = true
			recipients = append(recipients, email)
		}
	}
	if assignee != nil {
		add(assignee.Email)
	}
	if assignee == nil || creator.UserID != assignee.UserID {
		add(creator.Email)
	}
	admins, err := s.users.GetAdmins()
	if err != nil {
		return false, fmt.Errorf("resolve admins: %w", err)
	}
	for i := range admins {
		add(admins[i].Email)
	}
	if len(recipients) == 0 {
		return false, nil
	}

	hours := int(now.Sub(complaint.CreatedAt).Hours())

	var subject, body string
	if kind == models.SweepBreach {
		subject, body = notification.SLABreachEmail(complaint)
	} else {
		subject, body = notification.SLAReminderEmail(complaint, hours)
	}
	err = s.outbox.Enqueue(&models.OutboxEmail{
		ComplaintID: complaint.Ref(),
		Recipients:  strings.Join(recipients, ","),
		Subject:     subject,
		Body:        body,
	})
	if err != nil {
		return false, fmt.Errorf("enqueue email: %w", err)
	}

	title, assigneeMsg, creatorMsg := sweepMessages(kind, complaint, hours)

	if assignee != nil {
		err = s.notifications.CreateNotification(&models.Notification{
			UserID:      assignee.UserID,
			ComplaintID: complaint.Ref(),
			Type:        kind.NotificationType(),
			Title:       title,
			Message:     assigneeMsg,
		})
		if err != nil {
			return false, fmt.Errorf("notify assignee: %w", err)
		}
	}
	if assignee == nil || creator.UserID != assignee.UserID {
		err = s.notifications.CreateNotification(&models.Notification{
			UserID:      creator.UserID,
			ComplaintID: complaint.Ref(),
			Type:        kind.NotificationType(),
			Title:       title,
			Message:     creatorMsg,
		})
		if err != nil {
			return false, fmt.Errorf("notify creator: %w", err)
		}
	}
	return true, nil
}

func sweepMessages(kind models.SweepKind, complaint *models.Complaint, hours int) (title, assigneeMsg, creatorMsg string) {
	switch kind {
	case models.SweepReminder1H:
		title = "SLA Reminder - 1 Hour"
	case models.SweepReminder2H:
		title = "SLA Reminder - 2 Hours"
	default:
		title = "SLA Breach Alert"
	}

	if kind == models.SweepBreach {
		assigneeMsg = fmt.Sprintf("Complaint %s - %s has breached its SLA deadline",
			complaint.ComplaintNumber, complaint.CustomerName)
		creatorMsg = fmt.Sprintf("Complaint %s you created has breached its SLA deadline",
			complaint.ComplaintNumber)
		return
	}

	assigneeMsg = fmt.Sprintf("Complaint %s is still unresolved after %d %s",
		complaint.ComplaintNumber, hours, pluralHour(hours))
	creatorMsg = fmt.Sprintf("Complaint %s you created is still unresolved after %d %s",
		complaint.ComplaintNumber, hours, pluralHour(hours))
	return
}

func pluralHour(hours int) string {
	if hours == 1 {
		return "hour"
	}
	return "hours"
}

// notifyAdminsOfBreaches posts one SLA_BREACH_SUMMARY per admin per 24 hours
// with the count of all complaints currently past due. It is independent of
// the per-complaint breach notifications and is best-effort.
func (s *SLAService) notifyAdminsOfBreaches(now time.Time) {
	count, err := s.complaints.CountBreaching(now)
	if err != nil {
		s.log.Errorw("failed to count breaching complaints", "error", err)
		return
	}
	if count == 0 {
		return
	}

	admins, err := s.users.GetAdmins()
	if err != nil {
		s.log.Errorw("failed to load admins for breach summary", "error", err)
		return
	}

	since := now.Add(-24 * time.Hour)
	for _, admin := range admins {
		recent, err := s.notifications.HasUserNotificationSince(admin.UserID, models.NotificationSLABreachSummary, since)
		if err != nil {
			s.log.Errorw("failed to check breach summary dedup", "admin", admin.UserID, "error", err)
			continue
		}
		if recent {
			continue
		}
		err = s.notifications.CreateNotification(&models.Notification{
			UserID:  admin.UserID,
			Type:    models.NotificationSLABreachSummary,
			Title:   "SLA Breach Alert",
			Message: fmt.Sprintf("%d complaints have breached their SLA deadline", count),
		})
		if err != nil {
			s.log.Errorw("failed to create breach summary", "admin", admin.UserID, "error", err)
		}
	}
}
