package models

// TimelineConfig controls zoom behaviour of the Gantt views.
type TimelineConfig struct {
	DefaultZoom float64 `yaml:"default_zoom" mapstructure:"default_zoom"`
	MinZoom     float64 `yaml:"min_zoom" mapstructure:"min_zoom"`
	MaxZoom     float64 `yaml:"max_zoom" mapstructure:"max_zoom"`
	ZoomStep    float64 `yaml:"zoom_step" mapstructure:"zoom_step"`
}

// PaletteConfig holds the bar colours used by every renderer.
type PaletteConfig struct {
	Critical  string `yaml:"critical" mapstructure:"critical"`
	Completed string `yaml:"completed" mapstructure:"completed"`
	Active    string `yaml:"active" mapstructure:"active"`
	Pending   string `yaml:"pending" mapstructure:"pending"`
	Default   string `yaml:"default" mapstructure:"default"`
}

// AlertConfig overrides alert thresholds.
type AlertConfig struct {
	BehindPlanPercent int `yaml:"behind_plan_percent" mapstructure:"behind_plan_percent"`
	OverdueGraceDays  int `yaml:"overdue_grace_days" mapstructure:"overdue_grace_days"`
}

// NotificationConfig configures outbound alert delivery.
type NotificationConfig struct {
	Enabled         bool   `yaml:"enabled" mapstructure:"enabled"`
	SlackWebhookURL string `yaml:"slack_webhook_url" mapstructure:"slack_webhook_url"`
}

// CalendarConfig configures Google Calendar export.
type CalendarConfig struct {
	CalendarID      string `yaml:"calendar_id" mapstructure:"calendar_id"`
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	TokenFile       string `yaml:"token_file" mapstructure:"token_file"`
}

// GlobalConfig holds system-wide settings read from .pdbconfig via Viper.
type GlobalConfig struct {
	Timeline      TimelineConfig     `yaml:"timeline" mapstructure:"timeline"`
	Palette       PaletteConfig      `yaml:"palette" mapstructure:"palette"`
	ScheduleFile  string             `yaml:"schedule_file" mapstructure:"schedule_file"`
	Alerts        AlertConfig        `yaml:"alerts" mapstructure:"alerts"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
	Calendar      CalendarConfig     `yaml:"calendar" mapstructure:"calendar"`
}
