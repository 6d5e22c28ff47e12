// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the project schedule, timeline layout, and procurement data as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// Server wraps pdb services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	schedule    core.ScheduleManager
	procurement core.ProcurementService
	zoom        core.ZoomController
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over the given services. metricsCalc and
// alertEngine may be nil.
func NewServer(schedule core.ScheduleManager, procurement core.ProcurementService, zoom core.ZoomController, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		schedule:    schedule,
		procurement: procurement,
		zoom:        zoom,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "pdb", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getTimelineInput struct {
	Zoom float64 `json:"zoom,omitempty" jsonschema:"zoom factor, 0.5 to 2.0 in 0.25 steps. Defaults to 1.0."`
}

type bandOutput struct {
	Label  string `json:"label"`
	Offset int    `json:"offset"`
	Span   int    `json:"span"`
}

type taskLayoutOutput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Offset    float64 `json:"offset"`
	Width     float64 `json:"width"`
	Filled    float64 `json:"filled"`
	Remaining float64 `json:"remaining"`
	Color     string  `json:"color"`
}

type timelineOutput struct {
	Start      string             `json:"start"`
	End        string             `json:"end"`
	Zoom       float64            `json:"zoom"`
	ZoomLabel  string             `json:"zoom_label"`
	DayWidth   float64            `json:"day_width"`
	TotalDays  int                `json:"total_days"`
	ChartWidth float64            `json:"chart_width"`
	Bands      []bandOutput       `json:"bands"`
	Tasks      []taskLayoutOutput `json:"tasks"`
}

type listScheduleTasksInput struct {
	Status   string `json:"status,omitempty" jsonschema:"filter tasks by status (pending, active, completed)"`
	Critical bool   `json:"critical,omitempty" jsonschema:"only return critical-path tasks"`
}

type scheduleTaskOutput struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Duration     float64  `json:"duration"`
	Progress     float64  `json:"progress"`
	Status       string   `json:"status"`
	Critical     bool     `json:"critical"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type listScheduleTasksOutput struct {
	Tasks []scheduleTaskOutput `json:"tasks"`
	Count int                  `json:"count"`
}

type getScheduleSummaryInput struct{}

type scheduleSummaryOutput struct {
	Summary models.ScheduleSummary `json:"summary"`
	Issues  []models.ScheduleIssue `json:"issues"`
}

type listVendorsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"case-insensitive match on vendor name, location, or specialization"`
	Category string `json:"category,omitempty" jsonschema:"exact vendor category, e.g. Electrical"`
}

type listVendorsOutput struct {
	Vendors []models.Vendor `json:"vendors"`
	Count   int             `json:"count"`
}

type listMaterialsInput struct{}

type listMaterialsOutput struct {
	Materials      []models.Material     `json:"materials"`
	CostByCategory []models.CategoryCost `json:"cost_by_category"`
	TotalCost      float64               `json:"total_cost"`
	HighUrgency    int                   `json:"high_urgency"`
}

type getWorkflowProgressInput struct {
	RequestID string `json:"request_id" jsonschema:"procurement request ID, e.g. PR-2024-156"`
}

type workflowProgressOutput struct {
	RequestID    string  `json:"request_id"`
	Title        string  `json:"title"`
	Department   string  `json:"department"`
	Submitted    string  `json:"submitted"`
	CurrentStage int     `json:"current_stage"`
	StageName    string  `json:"stage_name"`
	Percent      float64 `json:"percent"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TimelinesRendered int            `json:"timelines_rendered"`
	ZoomChanges       int            `json:"zoom_changes"`
	RendersByZoom     map[string]int `json:"renders_by_zoom"`
	Exports           int            `json:"exports"`
	ExportsByFormat   map[string]int `json:"exports_by_format"`
	Logins            int            `json:"logins"`
	TasksAdded        int            `json:"tasks_added"`
	TasksRemoved      int            `json:"tasks_removed"`
	AlertsSent        int            `json:"alerts_sent"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id,omitempty"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_timeline",
		Description: "Compute the Gantt timeline layout at a zoom factor: date range, day width, month bands, and per-task bar offset, width, progress split, and colour.",
	}, s.handleGetTimeline)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_schedule_tasks",
		Description: "List project schedule tasks in display order, optionally filtered by status or critical path.",
	}, s.handleListScheduleTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_schedule_summary",
		Description: "Get schedule headline counts (total, completed, active, pending, critical, overall progress) and data-quality issues.",
	}, s.handleGetScheduleSummary)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_vendors",
		Description: "Search the vendor directory by free text and category.",
	}, s.handleListVendors)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_materials",
		Description: "List the material forecast with cost per category, total estimated cost, and high-urgency count.",
	}, s.handleListMaterials)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_workflow_progress",
		Description: "Get the current approval stage of a procurement request.",
	}, s.handleGetWorkflowProgress)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get usage metrics from the event log: timelines rendered, zoom changes, exports, logins.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return schedule alerts (overdue tasks, critical tasks behind plan, missed starts, data issues).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleGetTimeline(_ context.Context, _ *gomcp.CallToolRequest, input getTimelineInput) (*gomcp.CallToolResult, timelineOutput, error) {
	zoom := input.Zoom
	if zoom < 0 {
		return errorResult(fmt.Sprintf("zoom must be positive, got %v", zoom)), timelineOutput{}, nil
	}
	if zoom == 0 {
		zoom = s.zoom.Default
	}
	zoom = s.zoom.Clamp(zoom)

	tasks, err := s.schedule.Tasks()
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), timelineOutput{}, nil
	}
	layout, err := s.schedule.Timeline(zoom)
	if err != nil {
		return errorResult(fmt.Sprintf("computing timeline: %s", err)), timelineOutput{}, nil
	}

	names := make(map[string]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = t.Name
	}

	out := timelineOutput{
		Start:      layout.Range.Start.Format(time.DateOnly),
		End:        layout.Range.End.Format(time.DateOnly),
		Zoom:       layout.Zoom,
		ZoomLabel:  s.zoom.Percent(layout.Zoom),
		DayWidth:   layout.DayWidth,
		TotalDays:  layout.TotalDays,
		ChartWidth: layout.ChartWidth,
		Bands:      make([]bandOutput, len(layout.Bands)),
		Tasks:      make([]taskLayoutOutput, len(layout.Tasks)),
	}
	for i, b := range layout.Bands {
		out.Bands[i] = bandOutput{Label: b.Label, Offset: b.Offset, Span: b.Span}
	}
	for i, tl := range layout.Tasks {
		out.Tasks[i] = taskLayoutOutput{
			ID:        tl.TaskID,
			Name:      names[tl.TaskID],
			Offset:    tl.Rect.Offset,
			Width:     tl.Rect.Width,
			Filled:    tl.Split.Filled,
			Remaining: tl.Split.Remaining,
			Color:     tl.Color,
		}
	}
	return nil, out, nil
}

func (s *Server) handleListScheduleTasks(_ context.Context, _ *gomcp.CallToolRequest, input listScheduleTasksInput) (*gomcp.CallToolResult, listScheduleTasksOutput, error) {
	switch models.TaskStatus(input.Status) {
	case "", models.StatusPending, models.StatusActive, models.StatusCompleted:
	default:
		return errorResult(fmt.Sprintf("invalid status %q: must be one of pending, active, completed", input.Status)), listScheduleTasksOutput{}, nil
	}

	tasks, err := s.schedule.Tasks()
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listScheduleTasksOutput{}, nil
	}

	out := listScheduleTasksOutput{Tasks: []scheduleTaskOutput{}}
	for _, t := range tasks {
		if input.Status != "" && string(t.Status) != input.Status {
			continue
		}
		if input.Critical && !t.Critical {
			continue
		}
		out.Tasks = append(out.Tasks, scheduleTaskToOutput(t))
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

func (s *Server) handleGetScheduleSummary(_ context.Context, _ *gomcp.CallToolRequest, _ getScheduleSummaryInput) (*gomcp.CallToolResult, scheduleSummaryOutput, error) {
	summary, err := s.schedule.Summary()
	if err != nil {
		return errorResult(fmt.Sprintf("summarizing schedule: %s", err)), scheduleSummaryOutput{}, nil
	}
	issues, err := s.schedule.Validate()
	if err != nil {
		return errorResult(fmt.Sprintf("validating schedule: %s", err)), scheduleSummaryOutput{}, nil
	}
	if issues == nil {
		issues = []models.ScheduleIssue{}
	}
	return nil, scheduleSummaryOutput{Summary: *summary, Issues: issues}, nil
}

func (s *Server) handleListVendors(_ context.Context, _ *gomcp.CallToolRequest, input listVendorsInput) (*gomcp.CallToolResult, listVendorsOutput, error) {
	vendors, err := s.procurement.SearchVendors(input.Query, input.Category)
	if err != nil {
		return errorResult(fmt.Sprintf("searching vendors: %s", err)), listVendorsOutput{}, nil
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}
	return nil, listVendorsOutput{Vendors: vendors, Count: len(vendors)}, nil
}

func (s *Server) handleListMaterials(_ context.Context, _ *gomcp.CallToolRequest, _ listMaterialsInput) (*gomcp.CallToolResult, listMaterialsOutput, error) {
	materials, err := s.procurement.Materials()
	if err != nil {
		return errorResult(fmt.Sprintf("listing materials: %s", err)), listMaterialsOutput{}, nil
	}
	costs, err := s.procurement.CostByCategory()
	if err != nil {
		return errorResult(fmt.Sprintf("costing materials: %s", err)), listMaterialsOutput{}, nil
	}
	total, high, err := s.procurement.ForecastTotals()
	if err != nil {
		return errorResult(fmt.Sprintf("totalling forecast: %s", err)), listMaterialsOutput{}, nil
	}
	return nil, listMaterialsOutput{
		Materials:      materials,
		CostByCategory: costs,
		TotalCost:      total,
		HighUrgency:    high,
	}, nil
}

func (s *Server) handleGetWorkflowProgress(_ context.Context, _ *gomcp.CallToolRequest, input getWorkflowProgressInput) (*gomcp.CallToolResult, workflowProgressOutput, error) {
	if input.RequestID == "" {
		return errorResult("request_id is required"), workflowProgressOutput{}, nil
	}
	wp, err := s.procurement.WorkflowProgress(input.RequestID)
	if err != nil {
		return errorResult(err.Error()), workflowProgressOutput{}, nil
	}
	return nil, workflowProgressOutput{
		RequestID:    wp.Request.ID,
		Title:        wp.Request.Title,
		Department:   wp.Request.Department,
		Submitted:    wp.Request.SubmissionDate.Format(time.DateOnly),
		CurrentStage: wp.Request.CurrentStage,
		StageName:    wp.StageName,
		Percent:      wp.Percent,
	}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	sinceTime, err := ParseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TimelinesRendered: metrics.TimelinesRendered,
		ZoomChanges:       metrics.ZoomChanges,
		RendersByZoom:     metrics.RendersByZoom,
		Exports:           metrics.Exports,
		ExportsByFormat:   metrics.ExportsByFormat,
		Logins:            metrics.Logins,
		TasksAdded:        metrics.TasksAdded,
		TasksRemoved:      metrics.TasksRemoved,
		AlertsSent:        metrics.AlertsSent,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			TaskID:      a.TaskID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}
	return nil, out, nil
}

// --- Helpers ---

func scheduleTaskToOutput(t models.ScheduleTask) scheduleTaskOutput {
	return scheduleTaskOutput{
		ID:           t.ID,
		Name:         t.Name,
		Start:        t.Start.Format(time.DateOnly),
		End:          t.End.Format(time.DateOnly),
		Duration:     t.Duration,
		Progress:     t.Progress,
		Status:       string(t.Status),
		Critical:     t.Critical,
		Dependencies: t.Dependencies,
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		RendersByZoom:   make(map[string]int),
		ExportsByFormat: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// ParseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
