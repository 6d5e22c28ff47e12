package core

import (
	"fmt"
	"math"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// ZoomController bounds and steps the zoom factor of a timeline view.
// It holds no zoom value itself; each view owns its current zoom.
type ZoomController struct {
	Default float64
	Min     float64
	Max     float64
	Step    float64
}

// DefaultZoomController returns the dashboard's zoom settings: 50% to 200%
// in 25% steps, starting at 100%.
func DefaultZoomController() ZoomController {
	return ZoomController{Default: 1, Min: 0.5, Max: 2, Step: 0.25}
}

// ZoomControllerFromConfig builds a ZoomController from configuration.
// Zero values fall back to the defaults.
func ZoomControllerFromConfig(cfg models.TimelineConfig) ZoomController {
	z := DefaultZoomController()
	if cfg.DefaultZoom > 0 {
		z.Default = cfg.DefaultZoom
	}
	if cfg.MinZoom > 0 {
		z.Min = cfg.MinZoom
	}
	if cfg.MaxZoom > 0 {
		z.Max = cfg.MaxZoom
	}
	if cfg.ZoomStep > 0 {
		z.Step = cfg.ZoomStep
	}
	return z
}

// Clamp limits zoom to [Min, Max]. Non-finite input yields Default.
func (z ZoomController) Clamp(zoom float64) float64 {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return z.Default
	}
	return math.Min(z.Max, math.Max(z.Min, zoom))
}

// In returns zoom increased by one step.
func (z ZoomController) In(zoom float64) float64 {
	return z.Clamp(zoom + z.Step)
}

// Out returns zoom decreased by one step.
func (z ZoomController) Out(zoom float64) float64 {
	return z.Clamp(zoom - z.Step)
}

// CanZoomIn reports whether zoom is below the maximum.
func (z ZoomController) CanZoomIn(zoom float64) bool {
	return zoom < z.Max
}

// CanZoomOut reports whether zoom is above the minimum.
func (z ZoomController) CanZoomOut(zoom float64) bool {
	return zoom > z.Min
}

// Percent formats zoom as a whole percentage, e.g. "125%".
func (z ZoomController) Percent(zoom float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(zoom*100)))
}
