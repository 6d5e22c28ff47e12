package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/internal/render"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// Dashboard panel indices.
const (
	panelSummary = iota
	panelGantt
	panelAlerts
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// View state. Each dashboard owns its zoom and hover.
	zoom    float64
	hovered int
	session *models.Session

	// Data.
	summary *models.ScheduleSummary
	tasks   []models.ScheduleTask
	layout  *models.TimelineLayout
	alerts  []alertSnapshot

	// State.
	loading bool
	err     error
}

type alertSnapshot struct {
	severity string
	message  string
	time     string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	summary *models.ScheduleSummary
	tasks   []models.ScheduleTask
	layout  *models.TimelineLayout
	alerts  []alertSnapshot
	err     error
}

// layoutMsg carries a layout recomputed after a zoom change.
type layoutMsg struct {
	zoom   float64
	layout *models.TimelineLayout
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	tooltipStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	statusActive    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	statusCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusPending   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusCritical  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(session *models.Session) dashboardModel {
	return dashboardModel{
		activePanel: panelGantt,
		zoom:        Zoom.Default,
		hovered:     -1,
		session:     session,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadDashboard(m.zoom)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.hovered >= 0 {
				m.hovered = -1
				return m, nil
			}
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "+", "=":
			return m.setZoom(Zoom.In(m.zoom))
		case "-", "_":
			return m.setZoom(Zoom.Out(m.zoom))
		case "0":
			return m.setZoom(Zoom.Default)
		case "up", "k":
			if len(m.tasks) > 0 {
				m.hovered = max(0, m.hovered-1)
			}
			return m, nil
		case "down", "j":
			if len(m.tasks) > 0 {
				m.hovered = min(len(m.tasks)-1, m.hovered+1)
			}
			return m, nil
		case "r":
			m.loading = true
			return m, loadDashboard(m.zoom)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.summary = msg.summary
		m.tasks = msg.tasks
		m.layout = msg.layout
		m.alerts = msg.alerts
		if m.hovered >= len(m.tasks) {
			m.hovered = len(m.tasks) - 1
		}
		m.err = nil
		return m, nil

	case layoutMsg:
		if msg.zoom != m.zoom {
			// A newer zoom is already pending.
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.layout = msg.layout
		return m, nil
	}

	return m, nil
}

// setZoom moves to zoom and requests a new layout. Steps that would leave
// the allowed range are ignored.
func (m dashboardModel) setZoom(zoom float64) (tea.Model, tea.Cmd) {
	if zoom == m.zoom {
		return m, nil
	}
	logEvent(observability.EventZoomChanged, map[string]any{"from": m.zoom, "to": zoom})
	m.zoom = zoom
	return m, relayout(zoom)
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" PDB Dashboard ")
	if m.session != nil {
		title += helpStyle.Render(fmt.Sprintf("  %s (%s)", m.session.Email, m.session.Role))
	}
	help := helpStyle.Render("tab: switch panel | +/-: zoom | up/down: inspect task | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	availableWidth := max(m.width-2, 40)

	summaryPanel := m.renderSummaryPanel()
	alertsPanel := m.renderAlertsPanel()
	var top string
	if availableWidth > 120 {
		colWidth := availableWidth / 2
		top = lipgloss.JoinHorizontal(lipgloss.Top,
			m.applyPanelStyle(panelSummary, summaryPanel, colWidth-4),
			m.applyPanelStyle(panelAlerts, alertsPanel, colWidth-4))
	} else {
		top = lipgloss.JoinVertical(lipgloss.Left,
			m.applyPanelStyle(panelSummary, summaryPanel, availableWidth-4),
			m.applyPanelStyle(panelAlerts, alertsPanel, availableWidth-4))
	}
	gantt := m.applyPanelStyle(panelGantt, m.renderGanttPanel(availableWidth-6), availableWidth-4)

	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, gantt, top, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderSummaryPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Schedule"))
	b.WriteString("\n")

	if m.summary == nil || m.summary.Total == 0 {
		b.WriteString("  No tasks found.")
		return b.String()
	}

	s := m.summary
	lines := []struct {
		label string
		value int
		style lipgloss.Style
	}{
		{"Completed", s.Completed, statusCompleted},
		{"Active", s.Active, statusActive},
		{"Pending", s.Pending, statusPending},
		{"Critical path", s.Critical, statusCritical},
	}
	for _, l := range lines {
		b.WriteString(l.style.Render(fmt.Sprintf("  %-14s %d", l.label, l.value)))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n  Total: %d  Overall progress: %d%%", s.Total, s.OverallProgress))

	return b.String()
}

func (m dashboardModel) renderGanttPanel(width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Project Schedule  zoom %s", Zoom.Percent(m.zoom))))
	b.WriteString("\n")

	if m.layout == nil || len(m.tasks) == 0 {
		b.WriteString("  No tasks to chart.")
		return b.String()
	}

	chartWidth := max(width-render.TerminalLabelWidth, 20)
	lines := render.Terminal(m.layout, m.tasks, render.TerminalOptions{Width: chartWidth, Hovered: m.hovered})
	b.WriteString(strings.Join(lines, "\n"))

	if m.hovered >= 0 && m.hovered < len(m.tasks) {
		b.WriteString("\n\n")
		b.WriteString(tooltipStyle.Render(render.Tooltip(m.tasks[m.hovered])))
	}
	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func loadDashboard(zoom float64) tea.Cmd {
	return func() tea.Msg {
		if ScheduleMgr == nil {
			return dataLoadedMsg{err: fmt.Errorf("schedule manager not initialized")}
		}

		var result dataLoadedMsg
		var err error
		if result.tasks, err = ScheduleMgr.Tasks(); err != nil {
			return dataLoadedMsg{err: err}
		}
		if result.summary, err = ScheduleMgr.Summary(); err != nil {
			return dataLoadedMsg{err: err}
		}
		if len(result.tasks) > 0 {
			if result.layout, err = ScheduleMgr.Timeline(zoom); err != nil {
				return dataLoadedMsg{err: err}
			}
		}

		// Alerts arrive sorted by severity.
		if AlertEngine != nil {
			alerts, err := AlertEngine.Evaluate()
			if err != nil {
				return dataLoadedMsg{err: fmt.Errorf("loading alerts: %w", err)}
			}
			result.alerts = make([]alertSnapshot, 0, len(alerts))
			for _, a := range alerts {
				result.alerts = append(result.alerts, alertSnapshot{
					severity: string(a.Severity),
					message:  a.Message,
					time:     a.TriggeredAt.Format("2006-01-02 15:04 UTC"),
				})
			}
		}

		return result
	}
}

func relayout(zoom float64) tea.Cmd {
	return func() tea.Msg {
		layout, err := ScheduleMgr.Timeline(zoom)
		return layoutMsg{zoom: zoom, layout: layout, err: err}
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard with the Gantt chart and alerts",
	Long: `Launch an interactive terminal dashboard showing schedule counts, the
project Gantt chart, and active alerts.

Zoom the chart with + and -, step through tasks with the arrow keys to see
their details, switch panels with Tab, refresh with r, and quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := requireSession()
		if err != nil {
			return err
		}
		if err := requireSchedule(); err != nil {
			return err
		}
		p := tea.NewProgram(newDashboardModel(session), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
