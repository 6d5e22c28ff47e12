package cli

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

func resetScheduleFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		scheduleStatusFilter, scheduleCritical, scheduleJSON = "", false, false
		taskID, taskName, taskStart, taskEnd = "", "", "", ""
		taskDuration, taskProgress = 0, 0
		taskStatus, taskCritical, taskColor, taskDepends = "", false, "", nil
		for _, c := range []*cobra.Command{scheduleListCmd, scheduleAddCmd, scheduleUpdateCmd} {
			for _, name := range []string{"critical", "name", "start", "end", "duration", "progress", "status", "color", "depends"} {
				if f := c.Flags().Lookup(name); f != nil {
					f.Changed = false
				}
			}
		}
	}
	reset()
	t.Cleanup(reset)
}

func TestScheduleList(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetScheduleFlags(t)

	out, err := runCmd(t, scheduleListCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"Procurement Planning", "Tender Process", "Order Placement", "Material Delivery", "Installation & Testing"} {
		if !strings.Contains(out, name) {
			t.Errorf("list output missing %q", name)
		}
	}
}

func TestScheduleList_Filters(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetScheduleFlags(t)
	scheduleJSON = true

	tests := []struct {
		name     string
		status   string
		critical string
		wantIDs  []string
	}{
		{"pending", "pending", "", []string{"3", "4", "5"}},
		{"active or completed", "active, completed", "", []string{"1", "2"}},
		{"critical only", "", "true", []string{"2", "3", "4"}},
		{"pending non-critical", "pending", "false", []string{"5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetScheduleFlags(t)
			scheduleJSON = true
			scheduleStatusFilter = tt.status
			if tt.critical != "" {
				if err := scheduleListCmd.Flags().Set("critical", tt.critical); err != nil {
					t.Fatal(err)
				}
			}

			out, err := runCmd(t, scheduleListCmd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var tasks []models.ScheduleTask
			if err := json.Unmarshal([]byte(out), &tasks); err != nil {
				t.Fatalf("decoding: %v\n%s", err, out)
			}
			var ids []string
			for _, task := range tasks {
				ids = append(ids, task.ID)
			}
			if !slices.Equal(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestScheduleSummary(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetScheduleFlags(t)
	scheduleJSON = true

	out, err := runCmd(t, scheduleSummaryCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s models.ScheduleSummary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatal(err)
	}
	want := models.ScheduleSummary{Total: 5, Completed: 1, Active: 1, Pending: 3, Critical: 3, OverallProgress: 37}
	if s != want {
		t.Errorf("summary = %+v, want %+v", s, want)
	}
}

func TestScheduleValidate_NoIssues(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetScheduleFlags(t)

	out, err := runCmd(t, scheduleValidateCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No issues found.") {
		t.Errorf("output = %q", out)
	}
}

func TestScheduleAdd_RequiresAdmin(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetScheduleFlags(t)
	taskID, taskName, taskStart, taskEnd = "6", "Handover", "2025-01-01", "2025-01-31"

	if _, err := runCmd(t, scheduleAddCmd); err == nil || !strings.Contains(err.Error(), "log in as admin") {
		t.Errorf("expected admin error, got %v", err)
	}
	if ScheduleStore.Exists() {
		t.Error("schedule file should not be written for a refused edit")
	}
}

func TestScheduleAdd_SeedsFromBuiltInSchedule(t *testing.T) {
	setupTestServices(t, models.RoleAdmin)
	resetScheduleFlags(t)
	events := &recordingEventLog{}
	EventLog = events
	taskID, taskName, taskStart, taskEnd = "6", "Handover", "2025-01-01", "2025-01-31"

	out, err := runCmd(t, scheduleAddCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Added task 6 (Handover)") {
		t.Errorf("output = %q", out)
	}
	if !ScheduleStore.Exists() {
		t.Fatal("schedule file not written")
	}

	entries, err := ScheduleStore.GetAllTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 6 || entries[0].Name != "Procurement Planning" || entries[5].ID != "6" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[5].Duration != 30 {
		t.Errorf("inferred duration = %v, want 30", entries[5].Duration)
	}
	if entries[5].Status != models.StatusPending {
		t.Errorf("default status = %q, want pending", entries[5].Status)
	}
	if !slices.Contains(events.types(), observability.EventTaskAdded) {
		t.Errorf("events = %v", events.types())
	}
}

func TestScheduleAdd_RejectsInvertedRange(t *testing.T) {
	setupTestServices(t, models.RoleAdmin)
	resetScheduleFlags(t)
	taskID, taskName, taskStart, taskEnd = "6", "Backwards", "2025-02-01", "2025-01-01"

	if _, err := runCmd(t, scheduleAddCmd); err == nil || !strings.Contains(err.Error(), "is after end") {
		t.Errorf("expected inverted range error, got %v", err)
	}
}

func TestScheduleUpdateAndRemove(t *testing.T) {
	setupTestServices(t, models.RoleAdmin)
	resetScheduleFlags(t)
	events := &recordingEventLog{}
	EventLog = events

	if err := scheduleUpdateCmd.Flags().Set("progress", "90"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, scheduleUpdateCmd, "2"); err != nil {
		t.Fatalf("update: %v", err)
	}
	entry, err := ScheduleStore.GetTask("2")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Progress != 90 || entry.Name != "Tender Process" {
		t.Errorf("updated entry = %+v", entry)
	}

	resetScheduleFlags(t)
	if _, err := runCmd(t, scheduleRemoveCmd, "5"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	entries, _ := ScheduleStore.GetAllTasks()
	if len(entries) != 4 {
		t.Errorf("len(entries) = %d, want 4", len(entries))
	}
	if _, err := runCmd(t, scheduleRemoveCmd, "99"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found, got %v", err)
	}
	if !slices.Contains(events.types(), observability.EventTaskRemoved) {
		t.Errorf("events = %v", events.types())
	}
}

func TestScheduleUpdate_ClearsCriticalAndProgress(t *testing.T) {
	setupTestServices(t, models.RoleAdmin)
	resetScheduleFlags(t)

	for name, value := range map[string]string{"critical": "false", "progress": "0"} {
		if err := scheduleUpdateCmd.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := runCmd(t, scheduleUpdateCmd, "2"); err != nil {
		t.Fatalf("update: %v", err)
	}

	entry, err := ScheduleStore.GetTask("2")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Critical {
		t.Error("task 2 should no longer be critical")
	}
	if entry.Progress != 0 {
		t.Errorf("progress = %v, want 0", entry.Progress)
	}
	if entry.Name != "Tender Process" || entry.Status != models.StatusActive {
		t.Errorf("unset fields changed: %+v", entry)
	}

	entries, _ := ScheduleStore.GetAllTasks()
	critical := 0
	for _, e := range entries {
		if e.Critical {
			critical++
		}
	}
	if critical != 2 {
		t.Errorf("critical count = %d, want 2", critical)
	}
}

func TestTaskUpdateFromFlags_OnlyChanged(t *testing.T) {
	resetScheduleFlags(t)
	taskName = "ignored"

	u := taskUpdateFromFlags(scheduleUpdateCmd)
	if u.Name != nil || u.Progress != nil || u.Critical != nil || u.Dependencies != nil {
		t.Errorf("unset flags should leave the update empty: %+v", u)
	}
}

func TestScheduleMilestones(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetScheduleFlags(t)

	out, err := runCmd(t, scheduleMilestonesCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Milestones") || !strings.Contains(out, "Phases") {
		t.Errorf("output = %q", out)
	}
}

func TestFormatNumber(t *testing.T) {
	for in, want := range map[float64]string{44: "44", 0: "0", 12.5: "12.5"} {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
