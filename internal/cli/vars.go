package cli

import (
	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/internal/integration"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/internal/storage"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// Package-level service references, set by the app wiring in internal/app.go.
var (
	ScheduleMgr   core.ScheduleManager
	Procurement   core.ProcurementService
	Sessions      core.SessionManager
	Catalog       storage.Catalog
	ScheduleStore storage.ScheduleStore
	Zoom          = core.DefaultZoomController()
	Palette       = core.DefaultPalette()
	BasePath      string
)

// Observability and integration references. Any of these may be nil when
// the corresponding feature is unavailable.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
	Outbox      integration.Outbox
	CalendarCfg models.CalendarConfig
)

// logEvent records an event when the event log is available. Logging
// failures never fail a command.
func logEvent(eventType string, data map[string]any) {
	if EventLog == nil {
		return
	}
	_ = EventLog.LogEvent(eventType, data)
}
