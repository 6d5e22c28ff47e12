// Package core contains the business logic of the procurement dashboard:
// the Gantt timeline layout engine, zoom control, the schedule and
// procurement services, the login gate, and configuration.
package core

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// hexColorPattern matches #rgb and #rrggbb colours.
var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ConfigurationManager loads and validates the .pdbconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(config *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .pdbconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	zoom := DefaultZoomController()
	palette := DefaultPalette()
	return &models.GlobalConfig{
		Timeline: models.TimelineConfig{
			DefaultZoom: zoom.Default,
			MinZoom:     zoom.Min,
			MaxZoom:     zoom.Max,
			ZoomStep:    zoom.Step,
		},
		Palette: models.PaletteConfig{
			Critical:  palette.Critical,
			Completed: palette.Completed,
			Active:    palette.Active,
			Pending:   palette.Pending,
			Default:   palette.Default,
		},
		ScheduleFile: "schedule.yaml",
		Alerts: models.AlertConfig{
			BehindPlanPercent: 10,
			OverdueGraceDays:  0,
		},
		Calendar: models.CalendarConfig{
			CalendarID:      "primary",
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
		},
	}
}

// LoadGlobalConfig reads .pdbconfig from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".pdbconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("timeline.default_zoom", cfg.Timeline.DefaultZoom)
	v.SetDefault("timeline.min_zoom", cfg.Timeline.MinZoom)
	v.SetDefault("timeline.max_zoom", cfg.Timeline.MaxZoom)
	v.SetDefault("timeline.zoom_step", cfg.Timeline.ZoomStep)
	v.SetDefault("palette.critical", cfg.Palette.Critical)
	v.SetDefault("palette.completed", cfg.Palette.Completed)
	v.SetDefault("palette.active", cfg.Palette.Active)
	v.SetDefault("palette.pending", cfg.Palette.Pending)
	v.SetDefault("palette.default", cfg.Palette.Default)
	v.SetDefault("schedule_file", cfg.ScheduleFile)
	v.SetDefault("alerts.behind_plan_percent", cfg.Alerts.BehindPlanPercent)
	v.SetDefault("alerts.overdue_grace_days", cfg.Alerts.OverdueGraceDays)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.slack_webhook_url", "")
	v.SetDefault("calendar.calendar_id", cfg.Calendar.CalendarID)
	v.SetDefault("calendar.credentials_file", cfg.Calendar.CredentialsFile)
	v.SetDefault("calendar.token_file", cfg.Calendar.TokenFile)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .pdbconfig: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding .pdbconfig: %w", err)
	}
	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// single error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string
	tl := cfg.Timeline
	for _, f := range []struct {
		key string
		val float64
	}{
		{"timeline.default_zoom", tl.DefaultZoom},
		{"timeline.min_zoom", tl.MinZoom},
		{"timeline.max_zoom", tl.MaxZoom},
		{"timeline.zoom_step", tl.ZoomStep},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) || f.val <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be a positive number, got %v", f.key, f.val))
		}
	}
	if tl.MinZoom > tl.MaxZoom {
		errs = append(errs, fmt.Sprintf("timeline.min_zoom %v must not exceed timeline.max_zoom %v", tl.MinZoom, tl.MaxZoom))
	} else if tl.DefaultZoom < tl.MinZoom || tl.DefaultZoom > tl.MaxZoom {
		errs = append(errs, fmt.Sprintf("timeline.default_zoom %v must lie within [%v, %v]", tl.DefaultZoom, tl.MinZoom, tl.MaxZoom))
	}

	for _, f := range []struct {
		key string
		val string
	}{
		{"palette.critical", cfg.Palette.Critical},
		{"palette.completed", cfg.Palette.Completed},
		{"palette.active", cfg.Palette.Active},
		{"palette.pending", cfg.Palette.Pending},
		{"palette.default", cfg.Palette.Default},
	} {
		if !hexColorPattern.MatchString(f.val) {
			errs = append(errs, fmt.Sprintf("%s %q is invalid, must be a hex colour like #ef4444", f.key, f.val))
		}
	}

	if cfg.ScheduleFile == "" {
		errs = append(errs, "schedule_file must not be empty")
	}
	if cfg.Alerts.BehindPlanPercent < 0 || cfg.Alerts.BehindPlanPercent > 100 {
		errs = append(errs, fmt.Sprintf("alerts.behind_plan_percent %d must be between 0 and 100", cfg.Alerts.BehindPlanPercent))
	}
	if cfg.Alerts.OverdueGraceDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.overdue_grace_days must be non-negative, got %d", cfg.Alerts.OverdueGraceDays))
	}
	if cfg.Notifications.Enabled && !strings.HasPrefix(cfg.Notifications.SlackWebhookURL, "https://") {
		errs = append(errs, "notifications.slack_webhook_url must be an https URL when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
