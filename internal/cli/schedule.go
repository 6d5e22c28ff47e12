package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/internal/storage"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

var (
	scheduleStatusFilter string
	scheduleCritical     bool
	scheduleJSON         bool

	taskID       string
	taskName     string
	taskStart    string
	taskEnd      string
	taskDuration float64
	taskProgress float64
	taskStatus   string
	taskCritical bool
	taskColor    string
	taskDepends  []string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect and edit the project schedule",
	Long: `Inspect and edit the project schedule.

The schedule is read from the schedule file in the pdb home directory
(schedule.yaml unless configured otherwise). Until that file exists the
built-in project schedule is shown; the first add, update, or remove
copies it to disk.`,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedule tasks in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := requireSchedule(); err != nil {
			return err
		}
		tasks, err := ScheduleMgr.Tasks()
		if err != nil {
			return err
		}

		var statuses []models.TaskStatus
		for s := range strings.SplitSeq(scheduleStatusFilter, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, models.TaskStatus(s))
			}
		}
		criticalSet := cmd.Flags().Changed("critical")
		tasks = slices.DeleteFunc(tasks, func(t models.ScheduleTask) bool {
			if len(statuses) > 0 && !slices.Contains(statuses, t.Status) {
				return true
			}
			return criticalSet && t.Critical != scheduleCritical
		})

		out := cmd.OutOrStdout()
		if scheduleJSON {
			return printJSON(out, tasks)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}
		fmt.Fprintf(out, "%-4s %-24s %-10s %-10s %8s %8s  %-9s %s\n", "ID", "NAME", "START", "END", "DAYS", "PROGRESS", "STATUS", "")
		for _, t := range tasks {
			flag := ""
			if t.Critical {
				flag = "critical"
			}
			fmt.Fprintf(out, "%-4s %-24s %-10s %-10s %8s %7s%%  %-9s %s\n",
				t.ID, t.Name, t.Start.Format(storage.DateLayout), t.End.Format(storage.DateLayout),
				formatNumber(t.Duration), formatNumber(t.Progress), t.Status, flag)
		}
		return nil
	},
}

var scheduleSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show headline schedule counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := requireSchedule(); err != nil {
			return err
		}
		s, err := ScheduleMgr.Summary()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if scheduleJSON {
			return printJSON(out, s)
		}
		fmt.Fprintln(out, "Schedule summary")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %-20s %d\n", "Total tasks:", s.Total)
		fmt.Fprintf(out, "  %-20s %d\n", "Completed:", s.Completed)
		fmt.Fprintf(out, "  %-20s %d\n", "Active:", s.Active)
		fmt.Fprintf(out, "  %-20s %d\n", "Pending:", s.Pending)
		fmt.Fprintf(out, "  %-20s %d\n", "Critical path:", s.Critical)
		fmt.Fprintf(out, "  %-20s %d%%\n", "Overall progress:", s.OverallProgress)
		return nil
	},
}

var scheduleValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report inconsistencies in the schedule data",
	Long: `Report inconsistencies in the schedule data: durations that disagree with
the start and end dates, inverted date ranges, progress outside 0-100, and
unknown statuses. Findings never change how the chart is drawn.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSchedule(); err != nil {
			return err
		}
		issues, err := ScheduleMgr.Validate()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if scheduleJSON {
			return printJSON(out, issues)
		}
		if len(issues) == 0 {
			fmt.Fprintln(out, "No issues found.")
			return nil
		}
		for _, issue := range issues {
			fmt.Fprintf(out, "task %s: [%s] %s\n", issue.TaskID, issue.Kind, issue.Message)
		}
		fmt.Fprintf(out, "\n%d issue(s)\n", len(issues))
		return nil
	},
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task to the end of the schedule",
	Long: `Add a task to the end of the schedule. Dates use YYYY-MM-DD.

When --duration is omitted it is taken from the day count between --start
and --end.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		if err := seedScheduleStore(); err != nil {
			return err
		}

		entry := storage.ScheduleEntry{
			ID:           taskID,
			Name:         taskName,
			Start:        taskStart,
			End:          taskEnd,
			Duration:     taskDuration,
			Progress:     taskProgress,
			Status:       models.TaskStatus(taskStatus),
			Critical:     taskCritical,
			Color:        taskColor,
			Dependencies: taskDepends,
		}
		if entry.Duration == 0 {
			entry.Duration = inferDuration(entry.Start, entry.End)
		}
		if err := ScheduleStore.AddTask(entry); err != nil {
			return err
		}
		if err := ScheduleStore.Save(); err != nil {
			return err
		}
		logEvent(observability.EventTaskAdded, map[string]any{"task_id": entry.ID, "critical": entry.Critical})
		fmt.Fprintf(cmd.OutOrStdout(), "Added task %s (%s)\n", entry.ID, entry.Name)
		return nil
	},
}

var scheduleUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update fields of a schedule task",
	Long: `Update fields of a schedule task. Only the flags given are changed, so
--progress 0 resets progress and --critical=false takes a task off the
critical path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		if err := seedScheduleStore(); err != nil {
			return err
		}

		updates := taskUpdateFromFlags(cmd)
		if err := ScheduleStore.UpdateTask(args[0], updates); err != nil {
			return err
		}
		if err := ScheduleStore.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", args[0])
		return nil
	},
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <task-id>",
	Short: "Remove a task from the schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		if err := seedScheduleStore(); err != nil {
			return err
		}
		if err := ScheduleStore.RemoveTask(args[0]); err != nil {
			return err
		}
		if err := ScheduleStore.Save(); err != nil {
			return err
		}
		logEvent(observability.EventTaskRemoved, map[string]any{"task_id": args[0]})
		fmt.Fprintf(cmd.OutOrStdout(), "Removed task %s\n", args[0])
		return nil
	},
}

var scheduleMilestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List project milestones and phase progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}
		milestones, err := Catalog.ListMilestones()
		if err != nil {
			return err
		}
		phases, err := Catalog.ListPhaseProgress()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if scheduleJSON {
			return printJSON(out, map[string]any{"milestones": milestones, "phases": phases})
		}
		fmt.Fprintln(out, "Milestones")
		for _, m := range milestones {
			fmt.Fprintf(out, "  %s  %-10s %-32s %s\n", m.Date.Format(storage.DateLayout), m.Status, m.Title, m.Type)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Phases")
		for _, p := range phases {
			fmt.Fprintf(out, "  %-28s %3d%% of %3d%%  %-10s %s\n", p.Name, p.Progress, p.Target, p.Status, p.Trend)
		}
		return nil
	},
}

// seedScheduleStore makes sure the editable schedule exists on disk. The
// first edit copies the built-in schedule so it can be changed.
func seedScheduleStore() error {
	if ScheduleStore == nil {
		return fmt.Errorf("schedule store not initialized")
	}
	if ScheduleStore.Exists() {
		return nil
	}
	if Catalog == nil {
		return nil
	}
	tasks, err := Catalog.ListTasks()
	if err != nil {
		return fmt.Errorf("seeding schedule: %w", err)
	}
	for _, t := range tasks {
		if err := ScheduleStore.AddTask(storage.EntryFromTask(t)); err != nil {
			return fmt.Errorf("seeding schedule: %w", err)
		}
	}
	return nil
}

// taskUpdateFromFlags collects the task flags set on cmd.
func taskUpdateFromFlags(cmd *cobra.Command) storage.TaskUpdate {
	var u storage.TaskUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		u.Name = &taskName
	}
	if flags.Changed("start") {
		u.Start = &taskStart
	}
	if flags.Changed("end") {
		u.End = &taskEnd
	}
	if flags.Changed("duration") {
		u.Duration = &taskDuration
	}
	if flags.Changed("progress") {
		u.Progress = &taskProgress
	}
	if flags.Changed("status") {
		status := models.TaskStatus(taskStatus)
		u.Status = &status
	}
	if flags.Changed("critical") {
		u.Critical = &taskCritical
	}
	if flags.Changed("color") {
		u.Color = &taskColor
	}
	if flags.Changed("depends") {
		u.Dependencies = taskDepends
		if u.Dependencies == nil {
			u.Dependencies = []string{}
		}
	}
	return u
}

func inferDuration(start, end string) float64 {
	s, err := time.Parse(storage.DateLayout, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(storage.DateLayout, end)
	if err != nil {
		return 0
	}
	return float64(core.DaysBetween(s, e))
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting as JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// formatNumber prints whole numbers without a decimal point.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&taskName, "name", "", "Task name")
	cmd.Flags().StringVar(&taskStart, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&taskEnd, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&taskDuration, "duration", 0, "Duration in days")
	cmd.Flags().Float64Var(&taskProgress, "progress", 0, "Progress percentage (0-100)")
	cmd.Flags().StringVar(&taskStatus, "status", "", "Status: pending, active, or completed")
	cmd.Flags().StringVar(&taskColor, "color", "", "Bar colour override, e.g. #3b82f6")
	cmd.Flags().StringSliceVar(&taskDepends, "depends", nil, "IDs of tasks this task depends on")
}

func init() {
	scheduleListCmd.Flags().StringVar(&scheduleStatusFilter, "status", "", "Filter by status (comma-separated)")
	scheduleListCmd.Flags().BoolVar(&scheduleCritical, "critical", false, "Filter by critical-path flag")
	for _, c := range []*cobra.Command{scheduleListCmd, scheduleSummaryCmd, scheduleValidateCmd, scheduleMilestonesCmd} {
		c.Flags().BoolVar(&scheduleJSON, "json", false, "Output as JSON")
	}

	scheduleAddCmd.Flags().StringVar(&taskID, "id", "", "Task ID")
	scheduleAddCmd.Flags().BoolVar(&taskCritical, "critical", false, "Task is on the critical path")
	addTaskFlags(scheduleAddCmd)
	_ = scheduleAddCmd.MarkFlagRequired("id")
	_ = scheduleAddCmd.MarkFlagRequired("name")
	_ = scheduleAddCmd.MarkFlagRequired("start")
	_ = scheduleAddCmd.MarkFlagRequired("end")

	scheduleUpdateCmd.Flags().BoolVar(&taskCritical, "critical", false, "Task is on the critical path")
	addTaskFlags(scheduleUpdateCmd)

	scheduleCmd.AddCommand(scheduleListCmd, scheduleSummaryCmd, scheduleValidateCmd,
		scheduleAddCmd, scheduleUpdateCmd, scheduleRemoveCmd, scheduleMilestonesCmd)
	rootCmd.AddCommand(scheduleCmd)
}
