package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/internal/render"
)

var (
	ganttZoom  float64
	ganttSVG   string
	ganttJSON  bool
	ganttWidth int
	ganttTitle string
)

var ganttCmd = &cobra.Command{
	Use:   "gantt",
	Short: "Render the project schedule as a Gantt chart",
	Long: `Render the project schedule as a Gantt chart.

By default the chart is drawn in the terminal. Use --svg to write a
standalone SVG document (use "-" for stdout) or --json to print the raw
layout: month bands, bar offsets and widths, progress splits, and colours.

--zoom scales the day width. It is clamped to the configured range
(50% to 200% unless overridden in .pdbconfig).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := requireSchedule(); err != nil {
			return err
		}
		zoom, err := zoomFromFlag(ganttZoom)
		if err != nil {
			return err
		}

		tasks, err := ScheduleMgr.Tasks()
		if err != nil {
			return err
		}
		layout, err := ScheduleMgr.Timeline(zoom)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case ganttJSON:
			data, err := json.MarshalIndent(layout, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting layout as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			logEvent(observability.EventTimelineExported, map[string]any{"format": "json", "zoom": zoom})

		case ganttSVG != "":
			doc := render.SVG(layout, tasks, render.SVGOptions{Title: ganttTitle, Palette: Palette})
			if ganttSVG == "-" {
				fmt.Fprint(out, doc)
			} else {
				if err := os.WriteFile(ganttSVG, []byte(doc), 0o644); err != nil {
					return fmt.Errorf("writing SVG: %w", err)
				}
				fmt.Fprintf(out, "Wrote %s (%d tasks, zoom %s)\n", ganttSVG, len(tasks), Zoom.Percent(zoom))
			}
			logEvent(observability.EventTimelineExported, map[string]any{"format": "svg", "zoom": zoom})

		default:
			fmt.Fprintf(out, "Project Schedule  zoom %s  %s to %s\n\n",
				Zoom.Percent(zoom), layout.Range.Start.Format("2006-01-02"), layout.Range.End.Format("2006-01-02"))
			for _, line := range render.Terminal(layout, tasks, render.TerminalOptions{Width: ganttWidth, Hovered: -1}) {
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}

func init() {
	ganttCmd.Flags().Float64Var(&ganttZoom, "zoom", 0, "Zoom factor, e.g. 1.5 (default from config)")
	ganttCmd.Flags().StringVar(&ganttSVG, "svg", "", `Write an SVG chart to this file ("-" for stdout)`)
	ganttCmd.Flags().BoolVar(&ganttJSON, "json", false, "Print the computed layout as JSON")
	ganttCmd.Flags().IntVar(&ganttWidth, "width", 80, "Chart width in terminal cells")
	ganttCmd.Flags().StringVar(&ganttTitle, "title", "Project Schedule", "SVG chart title")
	ganttCmd.MarkFlagsMutuallyExclusive("svg", "json")
	rootCmd.AddCommand(ganttCmd)
}
