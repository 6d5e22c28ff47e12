package core

import "github.com/valter-silva-au/procurement-dashboard/pkg/models"

// TaskSource provides schedule tasks in display order.
// This interface is defined locally in core to avoid importing storage.
type TaskSource interface {
	ListTasks() ([]models.ScheduleTask, error)
}

// ProcurementSource provides the procurement datasets.
// This interface is defined locally in core to avoid importing storage.
type ProcurementSource interface {
	ListMaterials() ([]models.Material, error)
	ListVendors() ([]models.Vendor, error)
	ListPlanCategories() ([]models.PlanCategory, error)
	ListRequests() ([]models.ProcurementRequest, error)
	ListWorkflowStages() ([]models.WorkflowStage, error)
}

// SessionPersister saves and restores the login session.
type SessionPersister interface {
	LoadSession() (*models.Session, error)
	SaveSession(session *models.Session) error
	ClearSession() error
}

// Event types logged by core services.
const (
	EventTimelineRendered = "timeline.rendered"
	EventSessionLogin     = "session.login"
	EventSessionLogout    = "session.logout"
)

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}
