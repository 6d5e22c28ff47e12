package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/procurement-dashboard/internal/core"
)

// Event types written by pdb.
const (
	EventTimelineRendered = core.EventTimelineRendered
	EventZoomChanged      = "timeline.zoom_changed"
	EventTimelineExported = "timeline.exported"
	EventSessionLogin     = core.EventSessionLogin
	EventSessionLogout    = core.EventSessionLogout
	EventTaskAdded        = "schedule.task_added"
	EventTaskRemoved      = "schedule.task_removed"
	EventCalendarExported = "calendar.exported"
	EventAlertsNotified   = "alerts.notified"
)

// Event represents a single observable event in the system.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN, ERROR
	Type    string         `json:"type"`  // e.g. "timeline.rendered", "session.login"
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
}

// EventLog defines the interface for writing and reading events.
type EventLog interface {
	Write(event Event) error
	LogEvent(eventType string, data map[string]any) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog using an append-only JSONL file.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
	now  func() time.Time
}

// NewJSONLEventLog creates a new EventLog backed by a JSONL file at the given path.
func NewJSONLEventLog(path string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{
		path: path,
		file: f,
		now:  time.Now,
	}, nil
}

// Write appends a JSON-encoded event followed by a newline to the log file.
func (l *jsonlEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// LogEvent writes an event of the given type stamped with the current time.
// The level and message are derived from the type.
func (l *jsonlEventLog) LogEvent(eventType string, data map[string]any) error {
	return l.Write(Event{
		Time:    l.now().UTC(),
		Level:   levelFor(eventType),
		Type:    eventType,
		Message: messageFor(eventType),
		Data:    data,
	})
}

func levelFor(eventType string) string {
	switch {
	case strings.HasSuffix(eventType, ".failed"):
		return "ERROR"
	case eventType == EventAlertsNotified:
		return "WARN"
	default:
		return "INFO"
	}
}

func messageFor(eventType string) string {
	switch eventType {
	case EventTimelineRendered:
		return "timeline rendered"
	case EventZoomChanged:
		return "zoom changed"
	case EventTimelineExported:
		return "timeline exported"
	case EventSessionLogin:
		return "user logged in"
	case EventSessionLogout:
		return "user logged out"
	case EventTaskAdded:
		return "schedule task added"
	case EventTaskRemoved:
		return "schedule task removed"
	case EventCalendarExported:
		return "schedule exported to calendar"
	case EventAlertsNotified:
		return "alerts sent"
	default:
		return strings.ReplaceAll(eventType, ".", " ")
	}
}

// Read opens the log file for reading, scans line by line, decodes each event,
// and returns those matching the given filter.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // skip malformed lines
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}

	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && event.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Level != "" && event.Level != filter.Level {
		return false
	}
	return true
}
