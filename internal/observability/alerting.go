package observability

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert conditions raised by the schedule alert engine.
const (
	ConditionBehindPlan = "critical_behind_plan"
	ConditionOverdue    = "task_overdue"
	ConditionStartMiss  = "start_missed"
	ConditionDataIssue  = "schedule_data_issue"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	TaskID      string        `json:"task_id,omitempty"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	BehindPlanPercent int `yaml:"behind_plan_percent" json:"behind_plan_percent"`
	OverdueGraceDays  int `yaml:"overdue_grace_days" json:"overdue_grace_days"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		BehindPlanPercent: 10,
		OverdueGraceDays:  0,
	}
}

// ThresholdsFromConfig builds thresholds from configuration.
func ThresholdsFromConfig(cfg models.AlertConfig) AlertThresholds {
	return AlertThresholds{
		BehindPlanPercent: cfg.BehindPlanPercent,
		OverdueGraceDays:  cfg.OverdueGraceDays,
	}
}

// ScheduleSource is the part of the schedule service the alert engine reads.
type ScheduleSource interface {
	Tasks() ([]models.ScheduleTask, error)
	Validate() ([]models.ScheduleIssue, error)
}

// AlertEngine evaluates alert conditions against the project schedule.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

type alertEngine struct {
	schedule   ScheduleSource
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine over schedule with the given thresholds.
func NewAlertEngine(schedule ScheduleSource, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		schedule:   schedule,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Evaluate checks every task against the alert conditions. Alerts are ordered
// by severity, then by ID.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now().UTC()
	tasks, err := ae.schedule.Tasks()
	if err != nil {
		return nil, fmt.Errorf("evaluating alerts: %w", err)
	}

	var alerts []Alert
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			continue
		}
		if a, ok := ae.checkOverdue(t, now); ok {
			alerts = append(alerts, a)
			continue
		}
		if a, ok := ae.checkBehindPlan(t, now); ok {
			alerts = append(alerts, a)
		}
		if a, ok := ae.checkStartMissed(t, now); ok {
			alerts = append(alerts, a)
		}
	}

	issues, err := ae.schedule.Validate()
	if err != nil {
		return nil, fmt.Errorf("evaluating alerts: %w", err)
	}
	for _, issue := range issues {
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("issue-%s-%s", issue.Kind, issue.TaskID),
			TaskID:      issue.TaskID,
			Condition:   ConditionDataIssue,
			Severity:    SeverityLow,
			Message:     issue.Message,
			TriggeredAt: now,
		})
	}

	slices.SortFunc(alerts, func(a, b Alert) int {
		if c := cmp.Compare(severityRank(a.Severity), severityRank(b.Severity)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return alerts, nil
}

// checkOverdue fires when an unfinished task is past its end date plus grace.
func (ae *alertEngine) checkOverdue(t models.ScheduleTask, now time.Time) (Alert, bool) {
	late := core.DaysBetween(t.End, now) - ae.thresholds.OverdueGraceDays
	if late <= 0 {
		return Alert{}, false
	}
	severity := SeverityMedium
	if t.Critical {
		severity = SeverityHigh
	}
	return Alert{
		ID:          "overdue-" + t.ID,
		TaskID:      t.ID,
		Condition:   ConditionOverdue,
		Severity:    severity,
		Message:     fmt.Sprintf("%s was due %s and is %g%% complete", t.Name, t.End.Format("2006-01-02"), t.Progress),
		TriggeredAt: now,
	}, true
}

// checkBehindPlan fires when a critical task in its window trails the
// progress expected from elapsed time by more than the threshold.
func (ae *alertEngine) checkBehindPlan(t models.ScheduleTask, now time.Time) (Alert, bool) {
	if !t.Critical {
		return Alert{}, false
	}
	span := core.DaysBetween(t.Start, t.End)
	elapsed := core.DaysBetween(t.Start, now)
	if span <= 0 || elapsed < 0 {
		return Alert{}, false
	}
	expected := math.Min(100, float64(elapsed)/float64(span)*100)
	if expected-t.Progress <= float64(ae.thresholds.BehindPlanPercent) {
		return Alert{}, false
	}
	return Alert{
		ID:          "behind-" + t.ID,
		TaskID:      t.ID,
		Condition:   ConditionBehindPlan,
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("critical task %s is %g%% complete, %.0f%% expected by now", t.Name, t.Progress, expected),
		TriggeredAt: now,
	}, true
}

// checkStartMissed fires when a pending task should have started.
func (ae *alertEngine) checkStartMissed(t models.ScheduleTask, now time.Time) (Alert, bool) {
	if t.Status != models.StatusPending {
		return Alert{}, false
	}
	late := core.DaysBetween(t.Start, now) - ae.thresholds.OverdueGraceDays
	if late <= 0 {
		return Alert{}, false
	}
	return Alert{
		ID:          "start-" + t.ID,
		TaskID:      t.ID,
		Condition:   ConditionStartMiss,
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("%s was due to start %s and is still pending", t.Name, t.Start.Format("2006-01-02")),
		TriggeredAt: now,
	}, true
}

func severityRank(s AlertSeverity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}
