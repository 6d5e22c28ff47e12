package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "pdb",
	Short: "Procurement Dashboard - project schedule and procurement tracking",
	Long: `Procurement Dashboard (pdb) tracks a construction project's schedule and
procurement pipeline from the terminal.

It lays the project schedule out as a zoomable Gantt chart, exports it as
SVG, JSON, or calendar events, and reports on materials, vendors, the
procurement plan, and the approval workflow.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pdb %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// requireSession returns the logged-in session. Dashboard views refuse to
// run without one.
func requireSession() (*models.Session, error) {
	if Sessions == nil {
		return nil, fmt.Errorf("session manager not initialized")
	}
	return Sessions.Current()
}

// requireAdmin allows the command only for admin sessions.
func requireAdmin() error {
	session, err := requireSession()
	if err != nil {
		return err
	}
	if session.Role != models.RoleAdmin {
		return fmt.Errorf("%s role cannot edit the schedule: log in as admin", session.Role)
	}
	return nil
}

// requireSchedule checks that the schedule service is wired.
func requireSchedule() error {
	if ScheduleMgr == nil {
		return fmt.Errorf("schedule manager not initialized")
	}
	return nil
}

// requireProcurement checks that the procurement service is wired.
func requireProcurement() error {
	if Procurement == nil {
		return fmt.Errorf("procurement service not initialized")
	}
	return nil
}

// zoomFromFlag resolves a --zoom value: zero means the configured default,
// negative is rejected, anything else is clamped to the allowed range.
func zoomFromFlag(zoom float64) (float64, error) {
	switch {
	case zoom == 0:
		return Zoom.Default, nil
	case zoom < 0:
		return 0, fmt.Errorf("zoom must be positive, got %v", zoom)
	default:
		return Zoom.Clamp(zoom), nil
	}
}
