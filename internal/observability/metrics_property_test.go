package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// For any mix of render and export events, the calculator's counters match
// the number of events of each type, and per-zoom counts sum to the total.
func TestMetricsMatchEvents(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		baseTime := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		zooms := []float64{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}
		formats := []string{"svg", "json"}

		numEvents := rapid.IntRange(1, 30).Draw(rt, "numEvents")
		wantRenders, wantExports := 0, 0
		for i := 0; i < numEvents; i++ {
			e := Event{
				Time:  baseTime.Add(time.Duration(i) * time.Minute),
				Level: "INFO",
			}
			if rapid.Bool().Draw(rt, fmt.Sprintf("isRender_%d", i)) {
				e.Type = EventTimelineRendered
				e.Data = map[string]any{"zoom": rapid.SampledFrom(zooms).Draw(rt, fmt.Sprintf("zoom_%d", i))}
				wantRenders++
			} else {
				e.Type = EventTimelineExported
				e.Data = map[string]any{"format": rapid.SampledFrom(formats).Draw(rt, fmt.Sprintf("format_%d", i))}
				wantExports++
			}
			if err := el.Write(e); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(el).Calculate(baseTime)
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}
		if m.TimelinesRendered != wantRenders {
			rt.Errorf("TimelinesRendered = %d, want %d", m.TimelinesRendered, wantRenders)
		}
		if m.Exports != wantExports {
			rt.Errorf("Exports = %d, want %d", m.Exports, wantExports)
		}
		sum := 0
		for _, n := range m.RendersByZoom {
			sum += n
		}
		if sum != wantRenders {
			rt.Errorf("RendersByZoom sums to %d, want %d", sum, wantRenders)
		}
	})
}
