package observability

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Metrics holds usage metrics derived from the event log.
type Metrics struct {
	TimelinesRendered int            `json:"timelines_rendered"`
	ZoomChanges       int            `json:"zoom_changes"`
	RendersByZoom     map[string]int `json:"renders_by_zoom"`
	Exports           int            `json:"exports"`
	ExportsByFormat   map[string]int `json:"exports_by_format"`
	Logins            int            `json:"logins"`
	TasksAdded        int            `json:"tasks_added"`
	TasksRemoved      int            `json:"tasks_removed"`
	AlertsSent        int            `json:"alerts_sent"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		RendersByZoom:   make(map[string]int),
		ExportsByFormat: make(map[string]int),
		EventCount:      len(events),
	}

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case EventTimelineRendered:
			m.TimelinesRendered++
			if zoom, ok := event.Data["zoom"].(float64); ok {
				m.RendersByZoom[zoomLabel(zoom)]++
			}
		case EventZoomChanged:
			m.ZoomChanges++
		case EventTimelineExported:
			m.Exports++
			if format, ok := event.Data["format"].(string); ok {
				m.ExportsByFormat[format]++
			}
		case EventCalendarExported:
			m.Exports++
			m.ExportsByFormat["calendar"]++
		case EventSessionLogin:
			m.Logins++
		case EventTaskAdded:
			m.TasksAdded++
		case EventTaskRemoved:
			m.TasksRemoved++
		case EventAlertsNotified:
			if n, ok := event.Data["count"].(float64); ok {
				m.AlertsSent += int(n)
			}
		}
	}

	return m, nil
}

// zoomLabel formats a zoom factor as a percentage key, e.g. "125%".
func zoomLabel(zoom float64) string {
	return strconv.Itoa(int(math.Round(zoom*100))) + "%"
}
