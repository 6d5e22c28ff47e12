package storage

import (
	"embed"
	"fmt"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFS embed.FS

// Catalog is the read-only data-access layer for the dashboard datasets.
type Catalog interface {
	ListTasks() ([]models.ScheduleTask, error)
	ListMilestones() ([]models.Milestone, error)
	ListPhaseProgress() ([]models.PhaseProgress, error)
	ListMaterials() ([]models.Material, error)
	ListVendors() ([]models.Vendor, error)
	ListPlanCategories() ([]models.PlanCategory, error)
	ListRequests() ([]models.ProcurementRequest, error)
	ListWorkflowStages() ([]models.WorkflowStage, error)
}

type fixtureCatalog struct{}

// NewFixtureCatalog creates a Catalog over the built-in project datasets.
// Every call decodes a fresh copy, so callers may modify what they get.
func NewFixtureCatalog() Catalog {
	return fixtureCatalog{}
}

func decodeFixture(name string, out any) error {
	data, err := fixtureFS.ReadFile("fixtures/" + name)
	if err != nil {
		return fmt.Errorf("reading fixture %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing fixture %s: %w", name, err)
	}
	return nil
}

func (fixtureCatalog) ListTasks() ([]models.ScheduleTask, error) {
	var sf ScheduleFile
	if err := decodeFixture("schedule.yaml", &sf); err != nil {
		return nil, err
	}
	return entriesToTasks(sf.Tasks)
}

func (fixtureCatalog) ListMilestones() ([]models.Milestone, error) {
	var f struct {
		Milestones []models.Milestone `yaml:"milestones"`
	}
	if err := decodeFixture("milestones.yaml", &f); err != nil {
		return nil, err
	}
	return f.Milestones, nil
}

func (fixtureCatalog) ListPhaseProgress() ([]models.PhaseProgress, error) {
	var f struct {
		Phases []models.PhaseProgress `yaml:"phases"`
	}
	if err := decodeFixture("phases.yaml", &f); err != nil {
		return nil, err
	}
	return f.Phases, nil
}

func (fixtureCatalog) ListMaterials() ([]models.Material, error) {
	var f struct {
		Materials []models.Material `yaml:"materials"`
	}
	if err := decodeFixture("materials.yaml", &f); err != nil {
		return nil, err
	}
	return f.Materials, nil
}

func (fixtureCatalog) ListVendors() ([]models.Vendor, error) {
	var f struct {
		Vendors []models.Vendor `yaml:"vendors"`
	}
	if err := decodeFixture("vendors.yaml", &f); err != nil {
		return nil, err
	}
	return f.Vendors, nil
}

func (fixtureCatalog) ListPlanCategories() ([]models.PlanCategory, error) {
	var f struct {
		Categories []models.PlanCategory `yaml:"categories"`
	}
	if err := decodeFixture("plan.yaml", &f); err != nil {
		return nil, err
	}
	return f.Categories, nil
}

type workflowFixture struct {
	Stages   []models.WorkflowStage      `yaml:"stages"`
	Requests []models.ProcurementRequest `yaml:"requests"`
}

func (fixtureCatalog) ListRequests() ([]models.ProcurementRequest, error) {
	var f workflowFixture
	if err := decodeFixture("workflow.yaml", &f); err != nil {
		return nil, err
	}
	return f.Requests, nil
}

func (fixtureCatalog) ListWorkflowStages() ([]models.WorkflowStage, error) {
	var f workflowFixture
	if err := decodeFixture("workflow.yaml", &f); err != nil {
		return nil, err
	}
	return f.Stages, nil
}
