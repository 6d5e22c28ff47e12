package models

import "time"

// Urgency ranks how soon a material is needed.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// Material is a forecast line item in the material plan.
type Material struct {
	ID            string  `yaml:"id" json:"id"`
	Name          string  `yaml:"name" json:"name"`
	Quantity      float64 `yaml:"quantity" json:"quantity"`
	Unit          string  `yaml:"unit" json:"unit"`
	EstimatedCost float64 `yaml:"estimated_cost" json:"estimated_cost"`
	Urgency       Urgency `yaml:"urgency" json:"urgency"`
	Category      string  `yaml:"category" json:"category"`
	Supplier      string  `yaml:"supplier" json:"supplier"`
}

// Vendor is an entry in the vendor directory.
type Vendor struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Category       string   `yaml:"category" json:"category"`
	Location       string   `yaml:"location" json:"location"`
	Rating         float64  `yaml:"rating" json:"rating"`
	Experience     string   `yaml:"experience" json:"experience"`
	Specialization []string `yaml:"specialization" json:"specialization"`
	Email          string   `yaml:"email" json:"email"`
	Phone          string   `yaml:"phone" json:"phone"`
	Certifications []string `yaml:"certifications" json:"certifications"`
	RecentProjects int      `yaml:"recent_projects" json:"recent_projects"`
	OnTimeDelivery int      `yaml:"on_time_delivery" json:"on_time_delivery"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// PlanItem is a single procurement line within a plan category.
type PlanItem struct {
	ID             string    `yaml:"id" json:"id"`
	Name           string    `yaml:"name" json:"name"`
	Vendor         string    `yaml:"vendor" json:"vendor"`
	Quantity       string    `yaml:"quantity" json:"quantity"`
	UnitCost       float64   `yaml:"unit_cost" json:"unit_cost"`
	TotalCost      float64   `yaml:"total_cost" json:"total_cost"`
	LeadTime       string    `yaml:"lead_time" json:"lead_time"`
	RiskLevel      string    `yaml:"risk_level" json:"risk_level"`
	Status         string    `yaml:"status" json:"status"`
	DeliveryDate   time.Time `yaml:"delivery_date" json:"delivery_date"`
	RiskMitigation string    `yaml:"risk_mitigation,omitempty" json:"risk_mitigation,omitempty"`
}

// PlanCategory groups plan items under a budget.
type PlanCategory struct {
	ID          string     `yaml:"id" json:"id"`
	Category    string     `yaml:"category" json:"category"`
	TotalBudget float64    `yaml:"total_budget" json:"total_budget"`
	SpentBudget float64    `yaml:"spent_budget" json:"spent_budget"`
	Items       []PlanItem `yaml:"items" json:"items"`
}

// WorkflowStage is one step of the procurement approval workflow.
type WorkflowStage struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status" json:"status"`
}

// ProcurementRequest is a purchase request moving through the workflow.
// CurrentStage refers to WorkflowStage.ID.
type ProcurementRequest struct {
	ID             string    `yaml:"id" json:"id"`
	Title          string    `yaml:"title" json:"title"`
	Requester      string    `yaml:"requester" json:"requester"`
	Department     string    `yaml:"department" json:"department"`
	SubmissionDate time.Time `yaml:"submission_date" json:"submission_date"`
	Urgency        Urgency   `yaml:"urgency" json:"urgency"`
	EstimatedCost  float64   `yaml:"estimated_cost" json:"estimated_cost"`
	CurrentStage   int       `yaml:"current_stage" json:"current_stage"`
	Approver       string    `yaml:"approver" json:"approver"`
	Description    string    `yaml:"description,omitempty" json:"description,omitempty"`
	Vendor         string    `yaml:"vendor" json:"vendor"`
	Status         string    `yaml:"status" json:"status"`
}

// CategoryCost is an aggregated cost for one material category.
type CategoryCost struct {
	Category string  `json:"category"`
	Cost     float64 `json:"cost"`
}

// BudgetUtilization reports spend against budget for a plan category.
type BudgetUtilization struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Spent    float64 `json:"spent"`
	Percent  float64 `json:"percent"`
}

// WorkflowProgress reports how far a request has moved through the workflow.
type WorkflowProgress struct {
	Request   ProcurementRequest `json:"request"`
	StageName string             `json:"stage_name"`
	Percent   float64            `json:"percent"`
}
