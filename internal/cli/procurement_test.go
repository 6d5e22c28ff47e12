package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

func resetProcurementFlags(t *testing.T) {
	t.Helper()
	reset := func() { procurementJSON, vendorCategory = false, "" }
	reset()
	t.Cleanup(reset)
}

func TestVendorsCmd(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)

	tests := []struct {
		name     string
		args     []string
		category string
		want     int
	}{
		{"location query", []string{"maharashtra"}, "", 2},
		{"category", nil, "Electrical", 3},
		{"no match", []string{"zzz"}, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetProcurementFlags(t)
			procurementJSON = true
			vendorCategory = tt.category

			out, err := runCmd(t, vendorsCmd, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var vendors []models.Vendor
			if err := json.Unmarshal([]byte(out), &vendors); err != nil {
				t.Fatalf("decoding: %v\n%s", err, out)
			}
			if len(vendors) != tt.want {
				t.Errorf("got %d vendors, want %d", len(vendors), tt.want)
			}
		})
	}
}

func TestVendorsCmd_TextOutput(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetProcurementFlags(t)

	out, err := runCmd(t, vendorsCmd, "zzz")
	if err != nil || !strings.Contains(out, "No vendors found.") {
		t.Errorf("output = %q, err = %v", out, err)
	}
}

func TestWorkflowCmd_Request(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetProcurementFlags(t)

	out, err := runCmd(t, workflowCmd, "PR-2024-156")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"High Voltage Switchgear Procurement", "[x] 2. Technical Review", "[>] 3. Budget Approval", "[ ] 4. Vendor Selection", "Budget Approval, 50% complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCmd(t, workflowCmd, "PR-0000"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestWorkflowCmd_List(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetProcurementFlags(t)

	out, err := runCmd(t, workflowCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"PR-2024-156", "PR-2024-157", "PR-2024-158"} {
		if !strings.Contains(out, id) {
			t.Errorf("output missing %s", id)
		}
	}
}

func TestMaterialsAndPlanCmds(t *testing.T) {
	setupTestServices(t, models.RoleOfficer)
	resetProcurementFlags(t)

	out, err := runCmd(t, materialsCmd)
	if err != nil {
		t.Fatalf("materials: %v", err)
	}
	if !strings.Contains(out, "Cost by category") || !strings.Contains(out, "Total forecast:") {
		t.Errorf("materials output = %q", out)
	}

	out, err = runCmd(t, planCmd)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "Electrical Equipment  $34,000,000 / $85,000,000 (40% used)") {
		t.Errorf("plan output = %q", out)
	}
}

func TestProcurementCmds_RequireSession(t *testing.T) {
	setupTestServices(t, "")
	resetProcurementFlags(t)

	for _, cmd := range []struct {
		name string
		run  func() error
	}{
		{"materials", func() error { _, err := runCmd(t, materialsCmd); return err }},
		{"vendors", func() error { _, err := runCmd(t, vendorsCmd); return err }},
		{"plan", func() error { _, err := runCmd(t, planCmd); return err }},
		{"workflow", func() error { _, err := runCmd(t, workflowCmd); return err }},
	} {
		if err := cmd.run(); err == nil || !strings.Contains(err.Error(), "not logged in") {
			t.Errorf("%s: expected not logged in error, got %v", cmd.name, err)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999, "$999"},
		{1000, "$1,000"},
		{1250000, "$1,250,000"},
		{-4500, "-$4,500"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
