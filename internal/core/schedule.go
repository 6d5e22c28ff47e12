package core

import (
	"fmt"
	"math"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// ScheduleManager exposes the project schedule: its tasks, headline counts,
// Gantt layout, and data-quality findings.
type ScheduleManager interface {
	Tasks() ([]models.ScheduleTask, error)
	Summary() (*models.ScheduleSummary, error)
	Timeline(zoom float64) (*models.TimelineLayout, error)
	Validate() ([]models.ScheduleIssue, error)
}

type scheduleManager struct {
	source TaskSource
	engine TimelineEngine
	events EventLogger
}

// NewScheduleManager creates a ScheduleManager over source. events may be nil.
func NewScheduleManager(source TaskSource, engine TimelineEngine, events EventLogger) ScheduleManager {
	return &scheduleManager{source: source, engine: engine, events: events}
}

func (sm *scheduleManager) Tasks() ([]models.ScheduleTask, error) {
	tasks, err := sm.source.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("listing schedule tasks: %w", err)
	}
	return tasks, nil
}

// Summary counts tasks by status and averages their progress.
func (sm *scheduleManager) Summary() (*models.ScheduleSummary, error) {
	tasks, err := sm.Tasks()
	if err != nil {
		return nil, err
	}
	return summarize(tasks), nil
}

func summarize(tasks []models.ScheduleTask) *models.ScheduleSummary {
	s := &models.ScheduleSummary{Total: len(tasks)}
	var progress float64
	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusActive:
			s.Active++
		case models.StatusPending:
			s.Pending++
		}
		if t.Critical {
			s.Critical++
		}
		progress += t.Progress
	}
	if len(tasks) > 0 {
		s.OverallProgress = int(math.Round(progress / float64(len(tasks))))
	}
	return s
}

func (sm *scheduleManager) Timeline(zoom float64) (*models.TimelineLayout, error) {
	tasks, err := sm.Tasks()
	if err != nil {
		return nil, err
	}
	layout, err := sm.engine.Layout(tasks, zoom)
	if err != nil {
		return nil, fmt.Errorf("laying out timeline: %w", err)
	}
	if sm.events != nil {
		_ = sm.events.LogEvent(EventTimelineRendered, map[string]any{
			"tasks":     len(tasks),
			"zoom":      zoom,
			"day_width": layout.DayWidth,
			"bands":     len(layout.Bands),
		})
	}
	return layout, nil
}

func (sm *scheduleManager) Validate() ([]models.ScheduleIssue, error) {
	tasks, err := sm.Tasks()
	if err != nil {
		return nil, err
	}
	return ValidateTasks(tasks), nil
}

// ValidateTasks reports inconsistencies in task data without altering it.
func ValidateTasks(tasks []models.ScheduleTask) []models.ScheduleIssue {
	var issues []models.ScheduleIssue
	for _, t := range tasks {
		span := DaysBetween(t.Start, t.End)
		if span < 0 {
			issues = append(issues, models.ScheduleIssue{
				TaskID:  t.ID,
				Kind:    models.IssueInvertedRange,
				Message: fmt.Sprintf("%s starts %s after it ends %s", t.Name, t.Start.Format(dateLayout), t.End.Format(dateLayout)),
			})
		} else if math.IsNaN(t.Duration) || t.Duration != float64(span) {
			issues = append(issues, models.ScheduleIssue{
				TaskID:  t.ID,
				Kind:    models.IssueDurationMismatch,
				Message: fmt.Sprintf("%s has duration %g days but spans %d days; the bar follows duration", t.Name, t.Duration, span),
			})
		}
		if t.Progress < 0 || t.Progress > 100 {
			issues = append(issues, models.ScheduleIssue{
				TaskID:  t.ID,
				Kind:    models.IssueProgressRange,
				Message: fmt.Sprintf("%s has progress %g%%, outside 0-100", t.Name, t.Progress),
			})
		}
		switch t.Status {
		case models.StatusPending, models.StatusActive, models.StatusCompleted:
		default:
			issues = append(issues, models.ScheduleIssue{
				TaskID:  t.ID,
				Kind:    models.IssueUnknownStatus,
				Message: fmt.Sprintf("%s has unknown status %q", t.Name, t.Status),
			})
		}
	}
	return issues
}

const dateLayout = "2006-01-02"
