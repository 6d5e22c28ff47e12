package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
	"gopkg.in/yaml.v3"
)

// DateLayout is the on-disk format of schedule dates.
const DateLayout = "2006-01-02"

// ScheduleEntry represents a single task in schedule.yaml. Dates are kept as
// YYYY-MM-DD strings so the file stays hand-editable.
type ScheduleEntry struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Start        string            `yaml:"start"`
	End          string            `yaml:"end"`
	Duration     float64           `yaml:"duration"`
	Progress     float64           `yaml:"progress"`
	Status       models.TaskStatus `yaml:"status"`
	Critical     bool              `yaml:"critical"`
	Color        string            `yaml:"color,omitempty"`
	Dependencies []string          `yaml:"dependencies,omitempty"`
}

// ToTask converts the entry into a ScheduleTask, parsing its dates.
func (e ScheduleEntry) ToTask() (models.ScheduleTask, error) {
	start, err := time.Parse(DateLayout, e.Start)
	if err != nil {
		return models.ScheduleTask{}, fmt.Errorf("task %s: invalid start date %q", e.ID, e.Start)
	}
	end, err := time.Parse(DateLayout, e.End)
	if err != nil {
		return models.ScheduleTask{}, fmt.Errorf("task %s: invalid end date %q", e.ID, e.End)
	}
	return models.ScheduleTask{
		ID:           e.ID,
		Name:         e.Name,
		Start:        start,
		End:          end,
		Duration:     e.Duration,
		Progress:     e.Progress,
		Status:       e.Status,
		Critical:     e.Critical,
		Color:        e.Color,
		Dependencies: e.Dependencies,
	}, nil
}

// EntryFromTask converts a ScheduleTask into its on-disk form.
func EntryFromTask(t models.ScheduleTask) ScheduleEntry {
	return ScheduleEntry{
		ID:           t.ID,
		Name:         t.Name,
		Start:        t.Start.Format(DateLayout),
		End:          t.End.Format(DateLayout),
		Duration:     t.Duration,
		Progress:     t.Progress,
		Status:       t.Status,
		Critical:     t.Critical,
		Color:        t.Color,
		Dependencies: t.Dependencies,
	}
}

func entriesToTasks(entries []ScheduleEntry) ([]models.ScheduleTask, error) {
	tasks := make([]models.ScheduleTask, 0, len(entries))
	for _, e := range entries {
		t, err := e.ToTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// ScheduleFilter specifies criteria for filtering schedule entries.
// All specified fields use AND logic.
type ScheduleFilter struct {
	Status   []models.TaskStatus
	Critical *bool
}

// TaskUpdate lists the fields to change on a stored task. A nil field is
// left as it is.
type TaskUpdate struct {
	Name         *string
	Start        *string
	End          *string
	Duration     *float64
	Progress     *float64
	Status       *models.TaskStatus
	Critical     *bool
	Color        *string
	Dependencies []string
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ScheduleFile represents the top-level structure of schedule.yaml. Task
// order is display order.
type ScheduleFile struct {
	Version string          `yaml:"version"`
	Tasks   []ScheduleEntry `yaml:"tasks"`
}

// ScheduleStore manages the editable project schedule.
type ScheduleStore interface {
	AddTask(entry ScheduleEntry) error
	UpdateTask(taskID string, update TaskUpdate) error
	RemoveTask(taskID string) error
	GetTask(taskID string) (*ScheduleEntry, error)
	GetAllTasks() ([]ScheduleEntry, error)
	FilterTasks(filter ScheduleFilter) ([]ScheduleEntry, error)
	ListTasks() ([]models.ScheduleTask, error)
	Exists() bool
	Load() error
	Save() error
}

type fileScheduleStore struct {
	path string
	data ScheduleFile
}

// NewScheduleStore creates a ScheduleStore backed by the YAML file at path.
func NewScheduleStore(path string) ScheduleStore {
	return &fileScheduleStore{
		path: path,
		data: ScheduleFile{Version: "1.0"},
	}
}

func (s *fileScheduleStore) indexOf(taskID string) int {
	return slices.IndexFunc(s.data.Tasks, func(e ScheduleEntry) bool { return e.ID == taskID })
}

func validateEntry(e ScheduleEntry) error {
	var errs []string
	start, err := time.Parse(DateLayout, e.Start)
	if err != nil {
		errs = append(errs, fmt.Sprintf("start %q is not a YYYY-MM-DD date", e.Start))
	}
	end, err2 := time.Parse(DateLayout, e.End)
	if err2 != nil {
		errs = append(errs, fmt.Sprintf("end %q is not a YYYY-MM-DD date", e.End))
	}
	if err == nil && err2 == nil && start.After(end) {
		errs = append(errs, fmt.Sprintf("start %s is after end %s", e.Start, e.End))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (s *fileScheduleStore) AddTask(entry ScheduleEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("adding task: ID must not be empty")
	}
	if s.indexOf(entry.ID) >= 0 {
		return fmt.Errorf("adding task: task %s already exists", entry.ID)
	}
	if err := validateEntry(entry); err != nil {
		return fmt.Errorf("adding task %s: %w", entry.ID, err)
	}
	if entry.Status == "" {
		entry.Status = models.StatusPending
	}
	s.data.Tasks = append(s.data.Tasks, entry)
	return nil
}

// UpdateTask applies update to the stored task. Nil fields are left
// unchanged, so progress can be reset to 0 and the critical flag cleared.
func (s *fileScheduleStore) UpdateTask(taskID string, update TaskUpdate) error {
	i := s.indexOf(taskID)
	if i < 0 {
		return fmt.Errorf("updating task: task %s not found", taskID)
	}
	existing := s.data.Tasks[i]

	setIf(&existing.Name, update.Name)
	setIf(&existing.Start, update.Start)
	setIf(&existing.End, update.End)
	setIf(&existing.Duration, update.Duration)
	setIf(&existing.Progress, update.Progress)
	setIf(&existing.Status, update.Status)
	setIf(&existing.Critical, update.Critical)
	setIf(&existing.Color, update.Color)
	if update.Dependencies != nil {
		existing.Dependencies = update.Dependencies
	}

	if err := validateEntry(existing); err != nil {
		return fmt.Errorf("updating task %s: %w", taskID, err)
	}
	s.data.Tasks[i] = existing
	return nil
}

func (s *fileScheduleStore) RemoveTask(taskID string) error {
	i := s.indexOf(taskID)
	if i < 0 {
		return fmt.Errorf("removing task: task %s not found", taskID)
	}
	s.data.Tasks = slices.Delete(s.data.Tasks, i, i+1)
	return nil
}

func (s *fileScheduleStore) GetTask(taskID string) (*ScheduleEntry, error) {
	i := s.indexOf(taskID)
	if i < 0 {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	entry := s.data.Tasks[i]
	return &entry, nil
}

func (s *fileScheduleStore) GetAllTasks() ([]ScheduleEntry, error) {
	return slices.Clone(s.data.Tasks), nil
}

func (s *fileScheduleStore) FilterTasks(filter ScheduleFilter) ([]ScheduleEntry, error) {
	var result []ScheduleEntry
	for _, e := range s.data.Tasks {
		if len(filter.Status) > 0 && !slices.Contains(filter.Status, e.Status) {
			continue
		}
		if filter.Critical != nil && e.Critical != *filter.Critical {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// ListTasks returns the stored tasks in display order.
func (s *fileScheduleStore) ListTasks() ([]models.ScheduleTask, error) {
	return entriesToTasks(s.data.Tasks)
}

// Exists reports whether the schedule file is present on disk.
func (s *fileScheduleStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *fileScheduleStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = ScheduleFile{Version: "1.0"}
			return nil
		}
		return fmt.Errorf("loading schedule: %w", err)
	}

	var sf ScheduleFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("loading schedule: parsing YAML: %w", err)
	}
	if sf.Version == "" {
		sf.Version = "1.0"
	}
	s.data = sf
	return nil
}

func (s *fileScheduleStore) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("saving schedule: creating directory: %w", err)
	}
	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	defer func() { _ = unlock() }()

	data, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("saving schedule: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("saving schedule: writing file: %w", err)
	}
	return nil
}
