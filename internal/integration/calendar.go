package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// TaskIDProperty is the private extended property that links a calendar
// event to its schedule task.
const TaskIDProperty = "pdb_task_id"

// Google Calendar colour IDs used for exported tasks.
const (
	colorCritical  = "11" // Tomato
	colorCompleted = "10" // Basil
	colorActive    = "6"  // Tangerine
	colorPending   = "8"  // Graphite
)

// ExportResult summarizes one calendar export run.
type ExportResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// EventsAPI is the subset of the Calendar events API used by the exporter.
type EventsAPI interface {
	FindByTaskID(ctx context.Context, taskID string) (*calendar.Event, error)
	Insert(ctx context.Context, event *calendar.Event) (*calendar.Event, error)
	Patch(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error)
}

// CalendarExporter writes schedule tasks to a calendar as all-day events.
type CalendarExporter interface {
	Export(ctx context.Context, tasks []models.ScheduleTask) (*ExportResult, error)
}

type calendarExporter struct {
	events EventsAPI
}

// NewCalendarExporter creates a CalendarExporter over events.
func NewCalendarExporter(events EventsAPI) CalendarExporter {
	return &calendarExporter{events: events}
}

// Export inserts an event for every task not yet on the calendar and patches
// events whose task has changed. Re-running an export is idempotent.
func (e *calendarExporter) Export(ctx context.Context, tasks []models.ScheduleTask) (*ExportResult, error) {
	result := &ExportResult{}
	for _, t := range tasks {
		target := BuildCalendarEvent(t)
		existing, err := e.events.FindByTaskID(ctx, t.ID)
		if err != nil {
			return result, fmt.Errorf("looking up event for task %s: %w", t.ID, err)
		}
		if existing == nil {
			if _, err := e.events.Insert(ctx, target); err != nil {
				return result, fmt.Errorf("inserting event for task %s: %w", t.ID, err)
			}
			result.Inserted++
			continue
		}
		if !eventNeedsUpdate(existing, target) {
			result.Unchanged++
			continue
		}
		if _, err := e.events.Patch(ctx, existing.Id, target); err != nil {
			return result, fmt.Errorf("patching event for task %s: %w", t.ID, err)
		}
		result.Updated++
	}
	return result, nil
}

// BuildCalendarEvent converts a task into an all-day event. The calendar end
// date is exclusive, so it is one day after the task's end.
func BuildCalendarEvent(t models.ScheduleTask) *calendar.Event {
	summary := t.Name
	if t.Critical {
		summary = "[critical] " + summary
	}
	desc := fmt.Sprintf("Status: %s\nProgress: %s%%\nDuration: %s days",
		t.Status,
		strconv.FormatFloat(t.Progress, 'f', -1, 64),
		strconv.FormatFloat(t.Duration, 'f', -1, 64))
	if len(t.Dependencies) > 0 {
		desc += fmt.Sprintf("\nDepends on: %v", t.Dependencies)
	}

	return &calendar.Event{
		Summary:     summary,
		Description: desc,
		ColorId:     calendarColor(t),
		Start:       &calendar.EventDateTime{Date: t.Start.Format("2006-01-02")},
		End:         &calendar.EventDateTime{Date: t.End.AddDate(0, 0, 1).Format("2006-01-02")},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{TaskIDProperty: t.ID},
		},
	}
}

func calendarColor(t models.ScheduleTask) string {
	if t.Critical {
		return colorCritical
	}
	switch t.Status {
	case models.StatusCompleted:
		return colorCompleted
	case models.StatusActive:
		return colorActive
	default:
		return colorPending
	}
}

func eventNeedsUpdate(existing, target *calendar.Event) bool {
	if existing.Summary != target.Summary || existing.Description != target.Description || existing.ColorId != target.ColorId {
		return true
	}
	if existing.Start == nil || existing.End == nil {
		return true
	}
	return existing.Start.Date != target.Start.Date || existing.End.Date != target.End.Date
}

// googleEvents implements EventsAPI over the Google Calendar service.
type googleEvents struct {
	srv        *calendar.Service
	calendarID string
}

// NewGoogleEvents wraps a Calendar service for one calendar.
func NewGoogleEvents(srv *calendar.Service, calendarID string) EventsAPI {
	return &googleEvents{srv: srv, calendarID: calendarID}
}

func (g *googleEvents) FindByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := g.srv.Events.List(g.calendarID).
		PrivateExtendedProperty(TaskIDProperty + "=" + taskID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

func (g *googleEvents) Insert(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	return g.srv.Events.Insert(g.calendarID, event).Context(ctx).Do()
}

func (g *googleEvents) Patch(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return g.srv.Events.Patch(g.calendarID, eventID, patch).Context(ctx).Do()
}

// CalendarAuth handles OAuth2 credentials for calendar export. Credentials
// come from a Google client secrets file; the token is cached as JSON.
type CalendarAuth struct {
	CredentialsFile string
	TokenFile       string
}

func (a CalendarAuth) config() (*oauth2.Config, error) {
	b, err := os.ReadFile(a.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secrets %s: %w", a.CredentialsFile, err)
	}
	cfg, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secrets: %w", err)
	}
	return cfg, nil
}

// AuthURL returns the consent page URL the user visits to obtain a code.
func (a CalendarAuth) AuthURL() (string, error) {
	cfg, err := a.config()
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL("pdb-state", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Exchange trades an authorization code for a token and caches it.
func (a CalendarAuth) Exchange(ctx context.Context, code string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	return saveToken(a.TokenFile, tok)
}

// Service returns a Calendar service authorized with the cached token.
func (a CalendarAuth) Service(ctx context.Context) (*calendar.Service, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	tok, err := tokenFromFile(a.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("no calendar token (run 'pdb export calendar --auth'): %w", err)
	}
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return srv, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}
