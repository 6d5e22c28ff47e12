package core

import (
	"math"
	"testing"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

func TestZoomController_StepsAndClamps(t *testing.T) {
	z := DefaultZoomController()

	zoom := z.Default
	for range 10 {
		zoom = z.In(zoom)
	}
	if zoom != 2 {
		t.Errorf("zooming in repeatedly = %v, want max 2", zoom)
	}
	if z.CanZoomIn(zoom) {
		t.Error("CanZoomIn at max = true, want false")
	}

	for range 10 {
		zoom = z.Out(zoom)
	}
	if zoom != 0.5 {
		t.Errorf("zooming out repeatedly = %v, want min 0.5", zoom)
	}
	if z.CanZoomOut(zoom) {
		t.Error("CanZoomOut at min = true, want false")
	}
	if !z.CanZoomIn(zoom) {
		t.Error("CanZoomIn at min = false, want true")
	}
}

func TestZoomController_Clamp(t *testing.T) {
	z := DefaultZoomController()
	tests := []struct {
		in, want float64
	}{
		{1.25, 1.25},
		{0.1, 0.5},
		{5, 2},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		if got := z.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestZoomController_Percent(t *testing.T) {
	z := DefaultZoomController()
	tests := map[float64]string{0.5: "50%", 1: "100%", 1.25: "125%", 2: "200%"}
	for zoom, want := range tests {
		if got := z.Percent(zoom); got != want {
			t.Errorf("Percent(%v) = %q, want %q", zoom, got, want)
		}
	}
}

func TestZoomControllerFromConfig_ZeroValuesUseDefaults(t *testing.T) {
	z := ZoomControllerFromConfig(models.TimelineConfig{MaxZoom: 4})
	if z.Max != 4 {
		t.Errorf("Max = %v, want 4", z.Max)
	}
	if z.Min != 0.5 || z.Default != 1 || z.Step != 0.25 {
		t.Errorf("unset fields should default, got %+v", z)
	}
}
