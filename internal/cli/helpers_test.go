package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/internal/storage"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// setupTestServices wires the package-level services over the built-in
// datasets and a temporary home directory. A non-empty role logs in.
func setupTestServices(t *testing.T, role models.Role) string {
	t.Helper()

	origSchedule, origProcurement, origSessions := ScheduleMgr, Procurement, Sessions
	origCatalog, origStore, origBase := Catalog, ScheduleStore, BasePath
	origEventLog, origAlerts, origMetrics := EventLog, AlertEngine, MetricsCalc
	origNotifier, origOutbox, origCalendar := Notifier, Outbox, CalendarCfg
	t.Cleanup(func() {
		ScheduleMgr, Procurement, Sessions = origSchedule, origProcurement, origSessions
		Catalog, ScheduleStore, BasePath = origCatalog, origStore, origBase
		EventLog, AlertEngine, MetricsCalc = origEventLog, origAlerts, origMetrics
		Notifier, Outbox, CalendarCfg = origNotifier, origOutbox, origCalendar
	})

	dir := t.TempDir()
	catalog := storage.NewFixtureCatalog()
	ScheduleMgr = core.NewScheduleManager(catalog, core.NewTimelineEngine(core.DefaultPalette()), nil)
	Procurement = core.NewProcurementService(catalog)
	Sessions = core.NewSessionManager(storage.NewSessionStore(dir), nil)
	Catalog = catalog
	ScheduleStore = storage.NewScheduleStore(filepath.Join(dir, "schedule.yaml"))
	BasePath = dir
	EventLog, AlertEngine, MetricsCalc, Notifier, Outbox = nil, nil, nil, nil, nil
	CalendarCfg = models.CalendarConfig{CalendarID: "primary", CredentialsFile: "credentials.json", TokenFile: "token.json"}

	if role != "" {
		if _, err := Sessions.Login("buyer@example.com", "secret", role); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	return dir
}

// runCmd invokes cmd's RunE with output captured.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	err := cmd.RunE(cmd, args)
	return buf.String(), err
}

// recordingEventLog keeps logged events in memory.
type recordingEventLog struct {
	events []observability.Event
}

func (r *recordingEventLog) Write(e observability.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEventLog) LogEvent(eventType string, data map[string]any) error {
	return r.Write(observability.Event{Type: eventType, Data: data})
}

func (r *recordingEventLog) Read(observability.EventFilter) ([]observability.Event, error) {
	return r.events, nil
}

func (r *recordingEventLog) Close() error { return nil }

func (r *recordingEventLog) types() []string {
	var types []string
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
