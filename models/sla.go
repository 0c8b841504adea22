package models

import "time"

// SweepKind identifies one of the three SLA escalation sweeps.
type SweepKind string

const (
	SweepReminder1H SweepKind = "reminder_1h"
	SweepReminder2H SweepKind = "reminder_2h"
	SweepBreach     SweepKind = "breach"
)

// AllSweepKinds lists every sweep in the order the cron trigger runs them.
var AllSweepKinds = []SweepKind{SweepReminder1H, SweepReminder2H, SweepBreach}

// NotificationType returns the notification tag a sweep emits; the same tag
// drives its dedup predicate.
func (k SweepKind) NotificationType() NotificationType {
	switch k {
	case SweepReminder1H:
		return NotificationSLAReminder1H
	case SweepReminder2H:
		return NotificationSLAReminder2H
	default:
		return NotificationSLABreach
	}
}

// DedupWindow returns the look-back window during which a repeat notification
// of the sweep's type is suppressed for a complaint. Windows are computed
// relative to "now" at call time, never to complaint creation time.
func (k SweepKind) DedupWindow() time.Duration {
	switch k {
	case SweepReminder1H:
		return 23 * time.Hour
	case SweepReminder2H:
		return 6 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// SweepReport summarizes one sweep run
type SweepReport struct {
	Kind      SweepKind `json:"kind"`
	Matched   int       `json:"matched"`
	Processed int       `json:"processed"`
	RanAt     time.Time `json:"ran_at"`
}

// AssignmentMode records how a complaint was assigned
type AssignmentMode string

const (
	AssignmentAutomatic AssignmentMode = "automatic"
	AssignmentManual    AssignmentMode = "manual"
)

// AssignmentResult is the outcome of a dispatcher run
type AssignmentResult struct {
	ComplaintID int64          `json:"complaint_id"`
	AssigneeID  int64          `json:"assignee_id"`
	Assignee    string         `json:"assignee"`
	Mode        AssignmentMode `json:"mode"`
	ActiveLoad  int            `json:"active_load"` // assignee's active count before this assignment
}
