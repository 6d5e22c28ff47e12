package core

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"time"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// Day width bounds, in layout units per day.
const (
	MinDayWidth  = 20.0
	BaseDayWidth = 30.0
)

var (
	// ErrNoTasks is returned when a layout is requested for an empty task list.
	ErrNoTasks = errors.New("timeline: no tasks")
	// ErrInvalidZoom is returned for a zoom factor that is not a positive finite number.
	ErrInvalidZoom = errors.New("timeline: zoom must be a positive finite number")
)

// Palette maps task state to a bar colour.
type Palette struct {
	Critical  string
	Completed string
	Active    string
	Pending   string
	Default   string
}

// DefaultPalette returns the colours used by the procurement dashboard.
func DefaultPalette() Palette {
	return Palette{
		Critical:  "#ef4444",
		Completed: "#10b981",
		Active:    "#f59e0b",
		Pending:   "#6b7280",
		Default:   "#6b7280",
	}
}

// PaletteFromConfig builds a Palette from configuration, falling back to the
// default colour for any empty entry.
func PaletteFromConfig(cfg models.PaletteConfig) Palette {
	p := DefaultPalette()
	if cfg.Critical != "" {
		p.Critical = cfg.Critical
	}
	if cfg.Completed != "" {
		p.Completed = cfg.Completed
	}
	if cfg.Active != "" {
		p.Active = cfg.Active
	}
	if cfg.Pending != "" {
		p.Pending = cfg.Pending
	}
	if cfg.Default != "" {
		p.Default = cfg.Default
	}
	return p
}

// ColorFor returns the bar colour for a task. The critical-path colour always
// wins over the status colour.
func (p Palette) ColorFor(task models.ScheduleTask) string {
	if task.Critical {
		return p.Critical
	}
	switch task.Status {
	case models.StatusCompleted:
		return p.Completed
	case models.StatusActive:
		return p.Active
	case models.StatusPending:
		return p.Pending
	default:
		return p.Default
	}
}

// civilDate drops the clock and location from t, keeping its calendar date.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(t time.Time) int {
	return monthStart(t).AddDate(0, 1, -1).Day()
}

// DaysBetween returns the number of whole calendar days from a to b. It is
// negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(civilDate(b).Sub(civilDate(a)).Hours() / 24)
}

// ComputeRange returns the earliest start and latest end across tasks.
func ComputeRange(tasks []models.ScheduleTask) (models.TimeRange, error) {
	if len(tasks) == 0 {
		return models.TimeRange{}, ErrNoTasks
	}
	r := models.TimeRange{Start: civilDate(tasks[0].Start), End: civilDate(tasks[0].End)}
	for _, t := range tasks[1:] {
		if s := civilDate(t.Start); s.Before(r.Start) {
			r.Start = s
		}
		if e := civilDate(t.End); e.After(r.End) {
			r.End = e
		}
	}
	return r, nil
}

// MonthBands yields one band per calendar month from the month containing
// r.Start through the month containing r.End. The sequence can be ranged
// over any number of times.
func MonthBands(r models.TimeRange) iter.Seq[models.MonthBand] {
	return func(yield func(models.MonthBand) bool) {
		origin := civilDate(r.Start)
		last := monthStart(r.End)
		for m := monthStart(origin); !m.After(last); m = m.AddDate(0, 1, 0) {
			band := models.MonthBand{
				Label:  m.Format("Jan 2006"),
				Month:  m,
				Offset: max(0, DaysBetween(origin, m)),
				Span:   daysInMonth(m),
			}
			if !yield(band) {
				return
			}
		}
	}
}

// DayWidth returns the layout length of one day at the given zoom.
func DayWidth(zoom float64) float64 {
	return math.Max(MinDayWidth, BaseDayWidth*zoom)
}

// TaskRect places a task on the timeline. The width follows task.Duration,
// not the distance between Start and End.
func TaskRect(task models.ScheduleTask, r models.TimeRange, zoom float64) models.TaskRect {
	dw := DayWidth(zoom)
	return models.TaskRect{
		Offset: float64(DaysBetween(r.Start, task.Start)) * dw,
		Width:  task.Duration * dw,
	}
}

// SplitProgress divides rect into the filled and remaining portions for the
// task's progress. Progress outside 0..100 is not clamped.
func SplitProgress(task models.ScheduleTask, rect models.TaskRect) models.ProgressSplit {
	filled := rect.Width * task.Progress / 100
	return models.ProgressSplit{Filled: filled, Remaining: rect.Width - filled}
}

// TimelineEngine computes Gantt geometry for a task set.
type TimelineEngine interface {
	Layout(tasks []models.ScheduleTask, zoom float64) (*models.TimelineLayout, error)
}

type timelineEngine struct {
	palette Palette
}

// NewTimelineEngine creates a TimelineEngine that colours bars with palette.
func NewTimelineEngine(palette Palette) TimelineEngine {
	return &timelineEngine{palette: palette}
}

// Layout runs one render pass over tasks at the given zoom.
func (e *timelineEngine) Layout(tasks []models.ScheduleTask, zoom float64) (*models.TimelineLayout, error) {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidZoom, zoom)
	}
	r, err := ComputeRange(tasks)
	if err != nil {
		return nil, err
	}

	dw := DayWidth(zoom)
	total := DaysBetween(r.Start, r.End)
	layout := &models.TimelineLayout{
		Range:      r,
		Zoom:       zoom,
		DayWidth:   dw,
		TotalDays:  total,
		ChartWidth: float64(total) * dw,
		Bands:      slices.Collect(MonthBands(r)),
		Tasks:      make([]models.TaskLayout, len(tasks)),
	}
	for i, t := range tasks {
		rect := TaskRect(t, r, zoom)
		layout.Tasks[i] = models.TaskLayout{
			TaskID: t.ID,
			Rect:   rect,
			Split:  SplitProgress(t, rect),
			Color:  e.palette.ColorFor(t),
		}
	}
	return layout, nil
}

// VisibleBandDays returns how many days of band i fall inside the chart:
// the band span cut at the next band's offset and at the chart end.
func VisibleBandDays(layout *models.TimelineLayout, i int) int {
	b := layout.Bands[i]
	days := b.Span
	if i+1 < len(layout.Bands) {
		days = min(days, layout.Bands[i+1].Offset-b.Offset)
	}
	return max(0, min(days, layout.TotalDays-b.Offset))
}
