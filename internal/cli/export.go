package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/internal/integration"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
)

var (
	exportAuth bool
	exportCode string
)

// calendarEvents opens the calendar events API. Tests replace it.
var calendarEvents = func(ctx context.Context) (integration.EventsAPI, error) {
	srv, err := calendarAuth().Service(ctx)
	if err != nil {
		return nil, err
	}
	return integration.NewGoogleEvents(srv, CalendarCfg.CalendarID), nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the schedule to external tools",
}

var exportCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export schedule tasks to Google Calendar",
	Long: `Export schedule tasks to Google Calendar as all-day events.

Each event is tagged with its task ID, so running the export again updates
the existing events instead of creating duplicates.

First-time setup:
  1. Download OAuth client credentials from the Google Cloud console and
     save them as calendar.credentials_file (default credentials.json).
  2. Run 'pdb export calendar --auth' and open the printed URL.
  3. Run 'pdb export calendar --code <code>' with the code you receive.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		switch {
		case exportAuth:
			url, err := calendarAuth().AuthURL()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Open this URL to authorize calendar access:\n\n  %s\n\n", url)
			fmt.Fprintln(out, "Then run: pdb export calendar --code <code>")
			return nil
		case exportCode != "":
			if err := calendarAuth().Exchange(ctx, exportCode); err != nil {
				return err
			}
			fmt.Fprintln(out, "Calendar access authorized")
			return nil
		}

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
		events, err := calendarEvents(ctx)
		if err != nil {
			return err
		}
		result, err := integration.NewCalendarExporter(events).Export(ctx, tasks)
		if err != nil {
			logEvent("calendar.export.failed", map[string]any{"error": err.Error()})
			return err
		}
		logEvent(observability.EventCalendarExported, map[string]any{
			"calendar_id": CalendarCfg.CalendarID,
			"inserted":    result.Inserted,
			"updated":     result.Updated,
			"unchanged":   result.Unchanged,
		})
		fmt.Fprintf(out, "Exported %d task(s): %d inserted, %d updated, %d unchanged\n",
			len(tasks), result.Inserted, result.Updated, result.Unchanged)
		return nil
	},
}

func calendarAuth() integration.CalendarAuth {
	return integration.CalendarAuth{
		CredentialsFile: resolvePath(CalendarCfg.CredentialsFile),
		TokenFile:       resolvePath(CalendarCfg.TokenFile),
	}
}

// resolvePath makes a configured path relative to the pdb home directory.
func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || BasePath == "" {
		return p
	}
	return filepath.Join(BasePath, p)
}

func init() {
	exportCalendarCmd.Flags().BoolVar(&exportAuth, "auth", false, "Print the authorization URL")
	exportCalendarCmd.Flags().StringVar(&exportCode, "code", "", "Exchange an authorization code for a token")
	exportCalendarCmd.MarkFlagsMutuallyExclusive("auth", "code")
	exportCmd.AddCommand(exportCalendarCmd)
	rootCmd.AddCommand(exportCmd)
}
