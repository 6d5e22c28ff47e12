package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	procurementJSON bool
	vendorCategory  string
)

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "Show the material forecast",
	Long: `Show the material forecast: every material line with its quantity,
estimated cost and urgency, followed by cost totals per category.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := requireProcurement(); err != nil {
			return err
		}
		materials, err := Procurement.Materials()
		if err != nil {
			return err
		}
		byCategory, err := Procurement.CostByCategory()
		if err != nil {
			return err
		}
		total, highUrgency, err := Procurement.ForecastTotals()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if procurementJSON {
			return printJSON(out, map[string]any{
				"materials":    materials,
				"by_category":  byCategory,
				"total_cost":   total,
				"high_urgency": highUrgency,
			})
		}

		fmt.Fprintf(out, "%-24s %12s %-8s %14s  %-7s %s\n", "MATERIAL", "QUANTITY", "UNIT", "EST. COST", "URGENCY", "SUPPLIER")
		for _, m := range materials {
			fmt.Fprintf(out, "%-24s %12s %-8s %14s  %-7s %s\n",
				m.Name, formatNumber(m.Quantity), m.Unit, formatMoney(m.EstimatedCost), m.Urgency, m.Supplier)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Cost by category")
		for _, c := range byCategory {
			fmt.Fprintf(out, "  %-20s %14s\n", c.Category, formatMoney(c.Cost))
		}
		fmt.Fprintf(out, "\n  %-20s %14s\n", "Total forecast:", formatMoney(total))
		fmt.Fprintf(out, "  %-20s %14d\n", "High urgency:", highUrgency)
		return nil
	},
}

var vendorsCmd = &cobra.Command{
	Use:   "vendors [query]",
	Short: "Search the vendor directory",
	Long: `Search the vendor directory. The query matches vendor name, location,
and specialisations, case-insensitively. --category restricts results to
one vendor category.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := requireProcurement(); err != nil {
			return err
		}
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		vendors, err := Procurement.SearchVendors(query, vendorCategory)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if procurementJSON {
			return printJSON(out, vendors)
		}
		if len(vendors) == 0 {
			fmt.Fprintln(out, "No vendors found.")
			return nil
		}
		for _, v := range vendors {
			fmt.Fprintf(out, "%s  %s (%s)\n", v.ID, v.Name, v.Category)
			fmt.Fprintf(out, "    %s  rating %.1f  on-time %d%%  %s\n", v.Location, v.Rating, v.OnTimeDelivery, v.Experience)
			if len(v.Specialization) > 0 {
				fmt.Fprintf(out, "    %s\n", strings.Join(v.Specialization, ", "))
			}
		}
		fmt.Fprintf(out, "\n%d vendor(s)\n", len(vendors))
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the procurement plan and budget utilisation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := requireProcurement(); err != nil {
			return err
		}
		categories, err := Procurement.PlanCategories()
		if err != nil {
			return err
		}
		utilization, err := Procurement.BudgetUtilization()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if procurementJSON {
			return printJSON(out, map[string]any{"categories": categories, "utilization": utilization})
		}
		for i, c := range categories {
			fmt.Fprintf(out, "%s  %s / %s (%.0f%% used)\n",
				c.Category, formatMoney(c.SpentBudget), formatMoney(c.TotalBudget), utilization[i].Percent)
			for _, item := range c.Items {
				fmt.Fprintf(out, "    %-26s %-22s %14s  %-9s risk %-6s %s\n",
					item.Name, item.Vendor, formatMoney(item.TotalCost), item.Status, item.RiskLevel,
					item.DeliveryDate.Format("2006-01-02"))
			}
		}
		return nil
	},
}

var workflowCmd = &cobra.Command{
	Use:   "workflow [request-id]",
	Short: "Show procurement requests and their approval progress",
	Long: `Show procurement requests and their approval progress. With a request
ID, show where that request stands in the approval workflow.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := requireProcurement(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			wp, err := Procurement.WorkflowProgress(args[0])
			if err != nil {
				return err
			}
			if procurementJSON {
				return printJSON(out, wp)
			}
			stages, err := Procurement.WorkflowStages()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s  %s\n", wp.Request.ID, wp.Request.Title)
			fmt.Fprintf(out, "  Requester: %s (%s)\n", wp.Request.Requester, wp.Request.Department)
			fmt.Fprintf(out, "  Estimated cost: %s\n\n", formatMoney(wp.Request.EstimatedCost))
			for _, st := range stages {
				mark := "[ ]"
				switch {
				case st.ID < wp.Request.CurrentStage:
					mark = "[x]"
				case st.ID == wp.Request.CurrentStage:
					mark = "[>]"
				}
				fmt.Fprintf(out, "  %s %d. %s\n", mark, st.ID, st.Name)
			}
			fmt.Fprintf(out, "\n  %s, %.0f%% complete\n", wp.StageName, wp.Percent)
			return nil
		}

		requests, err := Procurement.Requests()
		if err != nil {
			return err
		}
		if procurementJSON {
			return printJSON(out, requests)
		}
		fmt.Fprintf(out, "%-12s %-32s %-7s %14s  %s\n", "REQUEST", "TITLE", "URGENCY", "EST. COST", "STAGE")
		for _, r := range requests {
			stage := fmt.Sprintf("%d", r.CurrentStage)
			if wp, err := Procurement.WorkflowProgress(r.ID); err == nil {
				stage = fmt.Sprintf("%s (%.0f%%)", wp.StageName, wp.Percent)
			}
			fmt.Fprintf(out, "%-12s %-32s %-7s %14s  %s\n", r.ID, r.Title, r.Urgency, formatMoney(r.EstimatedCost), stage)
		}
		return nil
	},
}

// formatMoney formats an amount with thousands separators, e.g. $1,250,000.
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

func init() {
	for _, c := range []*cobra.Command{materialsCmd, vendorsCmd, planCmd, workflowCmd} {
		c.Flags().BoolVar(&procurementJSON, "json", false, "Output as JSON")
		rootCmd.AddCommand(c)
	}
	vendorsCmd.Flags().StringVar(&vendorCategory, "category", "", "Restrict to a vendor category")
}
