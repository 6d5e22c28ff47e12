package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
	"github.com/valter-silva-au/procurement-dashboard/internal/storage"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// --- Fake implementations ---

type fakeMetricsCalculator struct {
	metrics *observability.Metrics
}

func (f *fakeMetricsCalculator) Calculate(_ time.Time) (*observability.Metrics, error) {
	return f.metrics, nil
}

type fakeAlertEngine struct {
	alerts []observability.Alert
	err    error
}

func (f *fakeAlertEngine) Evaluate() ([]observability.Alert, error) {
	return f.alerts, f.err
}

type failingTaskSource struct{}

func (failingTaskSource) ListTasks() ([]models.ScheduleTask, error) {
	return nil, errors.New("schedule file unreadable")
}

// --- Test helpers ---

func newTestServer(metrics observability.MetricsCalculator, alerts observability.AlertEngine) *Server {
	catalog := storage.NewFixtureCatalog()
	schedule := core.NewScheduleManager(catalog, core.NewTimelineEngine(core.DefaultPalette()), nil)
	return NewServer(schedule, core.NewProcurementService(catalog), core.DefaultZoomController(), metrics, alerts, "test")
}

// callTool is a helper that connects a client to the server and calls a tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	// Connect server (non-blocking).
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

// decodeResult unmarshals the tool output from the text content, falling
// back to the structured content.
func decodeResult(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}
	text := extractText(result)
	if err := json.Unmarshal([]byte(text), out); err == nil {
		return
	}
	if result.StructuredContent == nil {
		t.Fatalf("no decodable output (text was: %s)", text)
	}
	data, _ := json.Marshal(result.StructuredContent)
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshalling structured output: %v", err)
	}
}

// --- Tests ---

func TestGetTimeline(t *testing.T) {
	result := callTool(t, newTestServer(nil, nil), "get_timeline", map[string]any{})

	var out timelineOutput
	decodeResult(t, result, &out)

	if out.Start != "2024-01-15" || out.End != "2024-12-15" {
		t.Errorf("range = %s..%s", out.Start, out.End)
	}
	if out.Zoom != 1 || out.ZoomLabel != "100%" || out.DayWidth != 30 {
		t.Errorf("zoom = %v (%s), day width = %v", out.Zoom, out.ZoomLabel, out.DayWidth)
	}
	if out.TotalDays != 335 || out.ChartWidth != 10050 {
		t.Errorf("total days = %d, chart width = %v", out.TotalDays, out.ChartWidth)
	}
	if len(out.Bands) != 12 || out.Bands[0].Label != "Jan 2024" || out.Bands[0].Offset != 0 || out.Bands[1].Offset != 17 {
		t.Errorf("bands = %+v", out.Bands)
	}
	if len(out.Tasks) != 5 {
		t.Fatalf("expected 5 task layouts, got %d", len(out.Tasks))
	}
	tender := out.Tasks[1]
	if tender.Name != "Tender Process" || tender.Offset != 1350 || tender.Width != 1350 || tender.Filled != 1147.5 || tender.Color != "#ef4444" {
		t.Errorf("tender layout = %+v", tender)
	}
}

func TestGetTimeline_ClampsZoom(t *testing.T) {
	result := callTool(t, newTestServer(nil, nil), "get_timeline", map[string]any{"zoom": 5})

	var out timelineOutput
	decodeResult(t, result, &out)
	if out.Zoom != 2 || out.DayWidth != 60 {
		t.Errorf("zoom = %v, day width = %v, want clamped to 2 / 60", out.Zoom, out.DayWidth)
	}
}

func TestGetTimeline_NegativeZoom(t *testing.T) {
	result := callTool(t, newTestServer(nil, nil), "get_timeline", map[string]any{"zoom": -1})
	if !result.IsError {
		t.Fatal("expected error result for negative zoom")
	}
}

func TestGetTimeline_SourceError(t *testing.T) {
	schedule := core.NewScheduleManager(failingTaskSource{}, core.NewTimelineEngine(core.DefaultPalette()), nil)
	srv := NewServer(schedule, core.NewProcurementService(storage.NewFixtureCatalog()), core.DefaultZoomController(), nil, nil, "")

	result := callTool(t, srv, "get_timeline", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error result when the schedule cannot be read")
	}
}

func TestListScheduleTasks(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantIDs []string
	}{
		{"all", map[string]any{}, []string{"1", "2", "3", "4", "5"}},
		{"pending", map[string]any{"status": "pending"}, []string{"3", "4", "5"}},
		{"critical", map[string]any{"critical": true}, []string{"2", "3", "4"}},
		{"pending and critical", map[string]any{"status": "pending", "critical": true}, []string{"3", "4"}},
	}
	srv := newTestServer(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out listScheduleTasksOutput
			decodeResult(t, callTool(t, srv, "list_schedule_tasks", tt.args), &out)
			if out.Count != len(tt.wantIDs) {
				t.Fatalf("count = %d, want %d", out.Count, len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if out.Tasks[i].ID != id {
					t.Errorf("task[%d] = %s, want %s", i, out.Tasks[i].ID, id)
				}
			}
		})
	}
}

func TestListScheduleTasks_InvalidStatus(t *testing.T) {
	result := callTool(t, newTestServer(nil, nil), "list_schedule_tasks", map[string]any{"status": "blocked"})
	if !result.IsError {
		t.Fatal("expected error result for invalid status")
	}
}

func TestGetScheduleSummary(t *testing.T) {
	var out scheduleSummaryOutput
	decodeResult(t, callTool(t, newTestServer(nil, nil), "get_schedule_summary", map[string]any{}), &out)

	want := models.ScheduleSummary{Total: 5, Completed: 1, Active: 1, Pending: 3, Critical: 3, OverallProgress: 37}
	if out.Summary != want {
		t.Errorf("summary = %+v, want %+v", out.Summary, want)
	}
	if len(out.Issues) != 0 {
		t.Errorf("expected no issues in fixture schedule, got %+v", out.Issues)
	}
}

func TestListVendors(t *testing.T) {
	srv := newTestServer(nil, nil)

	var byQuery listVendorsOutput
	decodeResult(t, callTool(t, srv, "list_vendors", map[string]any{"query": "maharashtra"}), &byQuery)
	if byQuery.Count != 2 {
		t.Errorf("query count = %d, want 2", byQuery.Count)
	}

	var byCategory listVendorsOutput
	decodeResult(t, callTool(t, srv, "list_vendors", map[string]any{"category": "Electrical"}), &byCategory)
	if byCategory.Count != 3 {
		t.Errorf("category count = %d, want 3", byCategory.Count)
	}

	var none listVendorsOutput
	decodeResult(t, callTool(t, srv, "list_vendors", map[string]any{"query": "no such vendor"}), &none)
	if none.Count != 0 || none.Vendors == nil {
		t.Errorf("expected an empty vendor list, got %+v", none)
	}
}

func TestListMaterials(t *testing.T) {
	var out listMaterialsOutput
	decodeResult(t, callTool(t, newTestServer(nil, nil), "list_materials", map[string]any{}), &out)

	if len(out.Materials) == 0 {
		t.Fatal("expected materials")
	}
	var sum float64
	for _, c := range out.CostByCategory {
		sum += c.Cost
	}
	if sum != out.TotalCost {
		t.Errorf("category costs sum to %v, total is %v", sum, out.TotalCost)
	}
	for i := 1; i < len(out.CostByCategory); i++ {
		if out.CostByCategory[i].Cost > out.CostByCategory[i-1].Cost {
			t.Errorf("categories not sorted by cost: %+v", out.CostByCategory)
		}
	}
}

func TestGetWorkflowProgress(t *testing.T) {
	srv := newTestServer(nil, nil)

	var out workflowProgressOutput
	decodeResult(t, callTool(t, srv, "get_workflow_progress", map[string]any{"request_id": "PR-2024-156"}), &out)
	if out.StageName != "Budget Approval" || out.Percent != 50 {
		t.Errorf("progress = %+v", out)
	}

	result := callTool(t, srv, "get_workflow_progress", map[string]any{"request_id": "PR-0000"})
	if !result.IsError {
		t.Fatal("expected error result for unknown request")
	}
}

func TestGetMetrics(t *testing.T) {
	oldest := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	mc := &fakeMetricsCalculator{metrics: &observability.Metrics{
		TimelinesRendered: 4,
		RendersByZoom:     map[string]int{"100%": 3, "150%": 1},
		ExportsByFormat:   map[string]int{},
		EventCount:        9,
		OldestEvent:       &oldest,
	}}

	var out metricsOutput
	decodeResult(t, callTool(t, newTestServer(mc, nil), "get_metrics", map[string]any{"since": "30d"}), &out)
	if out.TimelinesRendered != 4 || out.RendersByZoom["100%"] != 3 || out.EventCount != 9 {
		t.Errorf("metrics = %+v", out)
	}
	if out.OldestEvent != "2024-06-01T09:00:00Z" {
		t.Errorf("oldest = %q", out.OldestEvent)
	}
}

func TestGetMetrics_Disabled(t *testing.T) {
	result := callTool(t, newTestServer(nil, nil), "get_metrics", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error when metrics calculator is nil")
	}
}

func TestGetAlerts(t *testing.T) {
	ae := &fakeAlertEngine{alerts: []observability.Alert{{
		ID:          "overdue-2",
		TaskID:      "2",
		Condition:   observability.ConditionOverdue,
		Severity:    observability.SeverityHigh,
		Message:     "Tender Process was due 2024-04-15 and is 85% complete",
		TriggeredAt: time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
	}}}

	var out getAlertsOutput
	decodeResult(t, callTool(t, newTestServer(nil, ae), "get_alerts", map[string]any{}), &out)
	if out.Count != 1 || out.Alerts[0].Severity != "high" || out.Alerts[0].TaskID != "2" {
		t.Errorf("alerts = %+v", out)
	}
}

func TestGetAlerts_Errors(t *testing.T) {
	if result := callTool(t, newTestServer(nil, nil), "get_alerts", map[string]any{}); !result.IsError {
		t.Error("expected error when alert engine is nil")
	}
	ae := &fakeAlertEngine{err: errors.New("boom")}
	if result := callTool(t, newTestServer(nil, ae), "get_alerts", map[string]any{}); !result.IsError {
		t.Error("expected error when evaluation fails")
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"7d", now.AddDate(0, 0, -7), false},
		{"30d", now.AddDate(0, 0, -30), false},
		{"24h", now.Add(-24 * time.Hour), false},
		{"", time.Time{}, true},
		{"x", time.Time{}, true},
		{"7x", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSince(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSince(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseSince(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// extractText extracts the text from the first TextContent in a CallToolResult.
func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
