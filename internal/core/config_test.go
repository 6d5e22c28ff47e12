package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadGlobalConfig tests ---

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cm := NewConfigurationManager(dir)

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeline.DefaultZoom != 1 {
		t.Errorf("DefaultZoom = %v, want 1", cfg.Timeline.DefaultZoom)
	}
	if cfg.Timeline.MinZoom != 0.5 || cfg.Timeline.MaxZoom != 2 {
		t.Errorf("zoom range = [%v, %v], want [0.5, 2]", cfg.Timeline.MinZoom, cfg.Timeline.MaxZoom)
	}
	if cfg.Timeline.ZoomStep != 0.25 {
		t.Errorf("ZoomStep = %v, want 0.25", cfg.Timeline.ZoomStep)
	}
	if cfg.Palette.Critical != "#ef4444" {
		t.Errorf("Palette.Critical = %q, want %q", cfg.Palette.Critical, "#ef4444")
	}
	if cfg.ScheduleFile != "schedule.yaml" {
		t.Errorf("ScheduleFile = %q, want %q", cfg.ScheduleFile, "schedule.yaml")
	}
	if cfg.Alerts.BehindPlanPercent != 10 {
		t.Errorf("BehindPlanPercent = %d, want 10", cfg.Alerts.BehindPlanPercent)
	}
	if cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled = true, want false")
	}
	if cfg.Calendar.CalendarID != "primary" {
		t.Errorf("CalendarID = %q, want %q", cfg.Calendar.CalendarID, "primary")
	}
}

func TestLoadGlobalConfig_ReadsPdbconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pdbconfig.yaml", `
timeline:
  default_zoom: 1.5
  min_zoom: 0.25
  max_zoom: 3
  zoom_step: 0.5
palette:
  critical: "#dc2626"
  completed: "#059669"
schedule_file: plans/site-b.yaml
alerts:
  behind_plan_percent: 20
  overdue_grace_days: 3
notifications:
  enabled: true
  slack_webhook_url: https://hooks.slack.com/services/T000/B000/XXX
calendar:
  calendar_id: procurement@example.com
`)

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeline.DefaultZoom != 1.5 {
		t.Errorf("DefaultZoom = %v, want 1.5", cfg.Timeline.DefaultZoom)
	}
	if cfg.Timeline.MinZoom != 0.25 || cfg.Timeline.MaxZoom != 3 || cfg.Timeline.ZoomStep != 0.5 {
		t.Errorf("timeline = %+v", cfg.Timeline)
	}
	if cfg.Palette.Critical != "#dc2626" || cfg.Palette.Completed != "#059669" {
		t.Errorf("palette = %+v", cfg.Palette)
	}
	if cfg.Palette.Active != "#f59e0b" {
		t.Errorf("Palette.Active = %q, want default %q", cfg.Palette.Active, "#f59e0b")
	}
	if cfg.ScheduleFile != "plans/site-b.yaml" {
		t.Errorf("ScheduleFile = %q", cfg.ScheduleFile)
	}
	if cfg.Alerts.BehindPlanPercent != 20 || cfg.Alerts.OverdueGraceDays != 3 {
		t.Errorf("alerts = %+v", cfg.Alerts)
	}
	if !cfg.Notifications.Enabled || !strings.HasPrefix(cfg.Notifications.SlackWebhookURL, "https://hooks.slack.com/") {
		t.Errorf("notifications = %+v", cfg.Notifications)
	}
	if cfg.Calendar.CalendarID != "procurement@example.com" {
		t.Errorf("CalendarID = %q", cfg.Calendar.CalendarID)
	}
	if cfg.Calendar.TokenFile != "token.json" {
		t.Errorf("TokenFile = %q, want default token.json", cfg.Calendar.TokenFile)
	}
}

func TestLoadGlobalConfig_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pdbconfig.yaml", "timeline: [unclosed\n")

	cm := NewConfigurationManager(dir)
	if _, err := cm.LoadGlobalConfig(); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig_Defaults(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(DefaultGlobalConfig()); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidateConfig_NilConfig_ReturnsError(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *models.GlobalConfig)
		wantMsg string
	}{
		{"zero zoom", func(c *models.GlobalConfig) { c.Timeline.DefaultZoom = 0 }, "timeline.default_zoom must be a positive number"},
		{"negative step", func(c *models.GlobalConfig) { c.Timeline.ZoomStep = -0.25 }, "timeline.zoom_step must be a positive number"},
		{"min above max", func(c *models.GlobalConfig) { c.Timeline.MinZoom = 3 }, "must not exceed timeline.max_zoom"},
		{"default outside range", func(c *models.GlobalConfig) { c.Timeline.DefaultZoom = 2.5 }, "must lie within"},
		{"bad colour", func(c *models.GlobalConfig) { c.Palette.Active = "orange" }, "palette.active"},
		{"empty schedule file", func(c *models.GlobalConfig) { c.ScheduleFile = "" }, "schedule_file must not be empty"},
		{"threshold too high", func(c *models.GlobalConfig) { c.Alerts.BehindPlanPercent = 150 }, "behind_plan_percent"},
		{"negative grace", func(c *models.GlobalConfig) { c.Alerts.OverdueGraceDays = -1 }, "overdue_grace_days"},
		{"http webhook", func(c *models.GlobalConfig) {
			c.Notifications.Enabled = true
			c.Notifications.SlackWebhookURL = "http://hooks.slack.com/x"
		}, "slack_webhook_url must be an https URL"},
	}

	cm := NewConfigurationManager(t.TempDir())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGlobalConfig()
			tt.mutate(cfg)
			err := cm.ValidateConfig(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateConfig_ReportsAllProblems(t *testing.T) {
	cfg := DefaultGlobalConfig()
	cfg.ScheduleFile = ""
	cfg.Palette.Critical = "red"
	cfg.Alerts.OverdueGraceDays = -2

	err := NewConfigurationManager(t.TempDir()).ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if n := strings.Count(err.Error(), "\n  - "); n != 3 {
		t.Errorf("expected 3 problems listed, got %d in %q", n, err.Error())
	}
}
