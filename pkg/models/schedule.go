package models

import "time"

// TaskStatus represents the lifecycle state of a schedule task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
)

// ScheduleTask is one schedulable unit of work rendered as a Gantt bar.
// Duration is supplied by the caller and is not derived from Start and End;
// the two may disagree.
type ScheduleTask struct {
	ID           string     `yaml:"id" json:"id"`
	Name         string     `yaml:"name" json:"name"`
	Start        time.Time  `yaml:"start" json:"start"`
	End          time.Time  `yaml:"end" json:"end"`
	Duration     float64    `yaml:"duration" json:"duration"`
	Progress     float64    `yaml:"progress" json:"progress"`
	Status       TaskStatus `yaml:"status" json:"status"`
	Critical     bool       `yaml:"critical" json:"critical"`
	Color        string     `yaml:"color,omitempty" json:"color,omitempty"`
	Dependencies []string   `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// ScheduleSummary holds the headline counts shown above the Gantt chart.
type ScheduleSummary struct {
	Total           int `json:"total"`
	Completed       int `json:"completed"`
	Active          int `json:"active"`
	Pending         int `json:"pending"`
	Critical        int `json:"critical"`
	OverallProgress int `json:"overall_progress"`
}

// IssueKind classifies a schedule validation finding.
type IssueKind string

const (
	IssueDurationMismatch IssueKind = "duration_mismatch"
	IssueInvertedRange    IssueKind = "inverted_range"
	IssueProgressRange    IssueKind = "progress_out_of_range"
	IssueUnknownStatus    IssueKind = "unknown_status"
)

// ScheduleIssue is a problem found in caller-supplied task data. Issues are
// reported only; the layout engine renders the task as given.
type ScheduleIssue struct {
	TaskID  string    `json:"task_id"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// MilestoneStatus is the state of a project milestone.
type MilestoneStatus string

const (
	MilestoneCompleted MilestoneStatus = "completed"
	MilestoneActive    MilestoneStatus = "active"
	MilestoneUpcoming  MilestoneStatus = "upcoming"
)

// Milestone is a dated event on the project timeline.
type Milestone struct {
	ID          string          `yaml:"id" json:"id"`
	Title       string          `yaml:"title" json:"title"`
	Date        time.Time       `yaml:"date" json:"date"`
	Status      MilestoneStatus `yaml:"status" json:"status"`
	Type        string          `yaml:"type" json:"type"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
}

// PhaseProgress tracks a project phase against its target.
type PhaseProgress struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Progress int    `yaml:"progress" json:"progress"`
	Target   int    `yaml:"target" json:"target"`
	Status   string `yaml:"status" json:"status"`
	Trend    string `yaml:"trend" json:"trend"`
	Category string `yaml:"category" json:"category"`
}
