// Package internal provides the App struct that wires all components of the
// procurement dashboard together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/procurement-dashboard/internal/cli"
	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/internal/integration"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/internal/storage"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// ConfigFileName marks a pdb home directory.
const ConfigFileName = ".pdbconfig"

// EventLogFileName is the JSONL event log in the base path.
const EventLogFileName = ".pdb_events.jsonl"

// App holds all service dependencies for the procurement dashboard.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Catalog       storage.Catalog
	ScheduleStore storage.ScheduleStore
	SessionStore  storage.SessionStore

	// Core services
	Zoom        core.ZoomController
	Palette     core.Palette
	Engine      core.TimelineEngine
	ScheduleMgr core.ScheduleManager
	Procurement core.ProcurementService
	Sessions    core.SessionManager

	// Integration services
	Outbox integration.Outbox

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the procurement dashboard.
// basePath is the root directory where all data is stored (typically the
// directory containing .pdbconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(globalCfg); err != nil {
		return nil, err
	}
	app.Config = globalCfg
	app.Zoom = core.ZoomControllerFromConfig(globalCfg.Timeline)
	app.Palette = core.PaletteFromConfig(globalCfg.Palette)

	// --- Storage layer ---
	app.Catalog = storage.NewFixtureCatalog()
	schedulePath := globalCfg.ScheduleFile
	if !filepath.IsAbs(schedulePath) {
		schedulePath = filepath.Join(basePath, schedulePath)
	}
	app.ScheduleStore = storage.NewScheduleStore(schedulePath)
	if err := app.ScheduleStore.Load(); err != nil {
		return nil, fmt.Errorf("loading schedule %s: %w", schedulePath, err)
	}
	app.SessionStore = storage.NewSessionStore(basePath)

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.EventLog = nil
	}
	var events core.EventLogger
	if app.EventLog != nil {
		events = app.EventLog
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if globalCfg.Notifications.Enabled && globalCfg.Notifications.SlackWebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(globalCfg.Notifications.SlackWebhookURL)
	}

	// --- Core services ---
	app.Engine = core.NewTimelineEngine(app.Palette)
	source := &scheduleSource{store: app.ScheduleStore, catalog: app.Catalog}
	app.ScheduleMgr = core.NewScheduleManager(source, app.Engine, events)
	app.Procurement = core.NewProcurementService(app.Catalog)
	app.Sessions = core.NewSessionManager(app.SessionStore, events)

	app.AlertEngine = observability.NewAlertEngine(app.ScheduleMgr, observability.ThresholdsFromConfig(globalCfg.Alerts))

	// --- Integration services ---
	app.Outbox = integration.NewOutbox(basePath)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.ScheduleMgr = app.ScheduleMgr
	cli.Procurement = app.Procurement
	cli.Sessions = app.Sessions
	cli.Catalog = app.Catalog
	cli.ScheduleStore = app.ScheduleStore
	cli.Zoom = app.Zoom
	cli.Palette = app.Palette

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier
	cli.Outbox = app.Outbox
	cli.CalendarCfg = globalCfg.Calendar

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the pdb home directory. It checks the PDB_HOME
// env var, then the nearest ancestor of the working directory containing
// .pdbconfig, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("PDB_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// scheduleSource adapts the schedule store and the built-in catalog to
// core.TaskSource. The editable schedule wins once its file exists.
type scheduleSource struct {
	store   storage.ScheduleStore
	catalog storage.Catalog
}

func (s *scheduleSource) ListTasks() ([]models.ScheduleTask, error) {
	if s.store.Exists() {
		return s.store.ListTasks()
	}
	return s.catalog.ListTasks()
}
