package models

import "time"

// TimeRange is the visible date range of a timeline: the earliest task start
// and the latest task end. It is the coordinate origin for a render pass.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MonthBand is one calendar-month header segment on the timeline axis.
// Offset is measured in days from the range start. Span is the full length
// of the calendar month and is not clipped to the visible range.
type MonthBand struct {
	Label  string    `json:"label"`
	Month  time.Time `json:"month"`
	Offset int       `json:"offset"`
	Span   int       `json:"span"`
}

// TaskRect is the horizontal extent of a task bar in layout units.
type TaskRect struct {
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}

// ProgressSplit divides a task bar into its filled and remaining portions.
type ProgressSplit struct {
	Filled    float64 `json:"filled"`
	Remaining float64 `json:"remaining"`
}

// TaskLayout is the computed geometry and colour for one task.
type TaskLayout struct {
	TaskID string        `json:"task_id"`
	Rect   TaskRect      `json:"rect"`
	Split  ProgressSplit `json:"split"`
	Color  string        `json:"color"`
}

// TimelineLayout is the full output of a layout pass. Tasks keep the input
// (display) order.
type TimelineLayout struct {
	Range      TimeRange    `json:"range"`
	Zoom       float64      `json:"zoom"`
	DayWidth   float64      `json:"day_width"`
	TotalDays  int          `json:"total_days"`
	ChartWidth float64      `json:"chart_width"`
	Bands      []MonthBand  `json:"bands"`
	Tasks      []TaskLayout `json:"tasks"`
}

// TaskByID returns the layout entry for the given task, if present.
func (l *TimelineLayout) TaskByID(id string) (TaskLayout, bool) {
	for _, t := range l.Tasks {
		if t.TaskID == id {
			return t, true
		}
	}
	return TaskLayout{}, false
}
