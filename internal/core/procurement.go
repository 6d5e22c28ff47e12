package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// ProcurementService answers questions over the material forecast, vendor
// directory, procurement plan, and approval workflow.
type ProcurementService interface {
	Materials() ([]models.Material, error)
	CostByCategory() ([]models.CategoryCost, error)
	ForecastTotals() (total float64, highUrgency int, err error)
	SearchVendors(query, category string) ([]models.Vendor, error)
	PlanCategories() ([]models.PlanCategory, error)
	BudgetUtilization() ([]models.BudgetUtilization, error)
	Requests() ([]models.ProcurementRequest, error)
	WorkflowStages() ([]models.WorkflowStage, error)
	WorkflowProgress(requestID string) (*models.WorkflowProgress, error)
}

type procurementService struct {
	source ProcurementSource
}

// NewProcurementService creates a ProcurementService backed by source.
func NewProcurementService(source ProcurementSource) ProcurementService {
	return &procurementService{source: source}
}

func (ps *procurementService) Materials() ([]models.Material, error) {
	materials, err := ps.source.ListMaterials()
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	return materials, nil
}

// CostByCategory sums estimated material cost per category, highest first.
func (ps *procurementService) CostByCategory() ([]models.CategoryCost, error) {
	materials, err := ps.Materials()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64)
	for _, m := range materials {
		totals[m.Category] += m.EstimatedCost
	}
	result := make([]models.CategoryCost, 0, len(totals))
	for cat, cost := range totals {
		result = append(result, models.CategoryCost{Category: cat, Cost: cost})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Cost != result[j].Cost {
			return result[i].Cost > result[j].Cost
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

func (ps *procurementService) ForecastTotals() (float64, int, error) {
	materials, err := ps.Materials()
	if err != nil {
		return 0, 0, err
	}
	var total float64
	high := 0
	for _, m := range materials {
		total += m.EstimatedCost
		if m.Urgency == models.UrgencyHigh {
			high++
		}
	}
	return total, high, nil
}

// SearchVendors matches query case-insensitively against vendor name,
// location, and specializations. An empty query matches every vendor.
// category, when set, must match exactly (case-insensitive).
func (ps *procurementService) SearchVendors(query, category string) ([]models.Vendor, error) {
	vendors, err := ps.source.ListVendors()
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var result []models.Vendor
	for _, v := range vendors {
		if category != "" && !strings.EqualFold(v.Category, category) {
			continue
		}
		if q != "" && !vendorMatches(v, q) {
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

func vendorMatches(v models.Vendor, q string) bool {
	if strings.Contains(strings.ToLower(v.Name), q) || strings.Contains(strings.ToLower(v.Location), q) {
		return true
	}
	for _, s := range v.Specialization {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func (ps *procurementService) PlanCategories() ([]models.PlanCategory, error) {
	cats, err := ps.source.ListPlanCategories()
	if err != nil {
		return nil, fmt.Errorf("listing plan categories: %w", err)
	}
	return cats, nil
}

func (ps *procurementService) BudgetUtilization() ([]models.BudgetUtilization, error) {
	cats, err := ps.PlanCategories()
	if err != nil {
		return nil, err
	}
	result := make([]models.BudgetUtilization, len(cats))
	for i, c := range cats {
		u := models.BudgetUtilization{Category: c.Category, Total: c.TotalBudget, Spent: c.SpentBudget}
		if c.TotalBudget > 0 {
			u.Percent = c.SpentBudget / c.TotalBudget * 100
		}
		result[i] = u
	}
	return result, nil
}

func (ps *procurementService) Requests() ([]models.ProcurementRequest, error) {
	reqs, err := ps.source.ListRequests()
	if err != nil {
		return nil, fmt.Errorf("listing procurement requests: %w", err)
	}
	return reqs, nil
}

func (ps *procurementService) WorkflowStages() ([]models.WorkflowStage, error) {
	stages, err := ps.source.ListWorkflowStages()
	if err != nil {
		return nil, fmt.Errorf("listing workflow stages: %w", err)
	}
	return stages, nil
}

// WorkflowProgress reports the named stage a request sits in and the share
// of stages reached so far.
func (ps *procurementService) WorkflowProgress(requestID string) (*models.WorkflowProgress, error) {
	reqs, err := ps.Requests()
	if err != nil {
		return nil, err
	}
	stages, err := ps.WorkflowStages()
	if err != nil {
		return nil, err
	}
	for _, r := range reqs {
		if r.ID != requestID {
			continue
		}
		wp := &models.WorkflowProgress{Request: r}
		for i, s := range stages {
			if s.ID == r.CurrentStage {
				wp.StageName = s.Name
				wp.Percent = float64(i+1) / float64(len(stages)) * 100
				break
			}
		}
		if wp.StageName == "" {
			return nil, fmt.Errorf("request %s is at unknown stage %d", requestID, r.CurrentStage)
		}
		return wp, nil
	}
	return nil, fmt.Errorf("request %s not found", requestID)
}
