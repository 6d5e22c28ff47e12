// Package render draws a computed timeline layout. It never recomputes
// geometry: every position and length comes from models.TimelineLayout.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// SVG geometry, in pixels.
const (
	LabelWidth   = 200.0
	titleHeight  = 40.0
	headerHeight = 32.0
	rowHeight    = 48.0
	barHeight    = 28.0
	legendHeight = 40.0
	rightPadding = 20.0
)

// SVGOptions controls the chart chrome around the layout.
type SVGOptions struct {
	Title   string
	Palette core.Palette
	// HideLegend drops the colour legend under the chart.
	HideLegend bool
}

// SVG renders layout as a standalone SVG document. tasks supplies the
// names, status and critical flags that the layout does not carry; rows
// follow the order of tasks.
func SVG(layout *models.TimelineLayout, tasks []models.ScheduleTask, opts SVGOptions) string {
	if opts.Title == "" {
		opts.Title = "Project Schedule"
	}
	width := LabelWidth + layout.ChartWidth + rightPadding
	chartTop := titleHeight + headerHeight
	height := chartTop + float64(len(tasks))*rowHeight
	if !opts.HideLegend {
		height += legendHeight
	}

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%s" height="%s" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<defs>
<style>
.title { font-family: sans-serif; font-size: 16px; font-weight: bold; fill: #111827; }
.month { font-family: sans-serif; font-size: 12px; fill: #6b7280; }
.label { font-family: sans-serif; font-size: 13px; fill: #111827; }
.status { font-family: sans-serif; font-size: 10px; fill: #6b7280; }
.bar-text { font-family: sans-serif; font-size: 11px; fill: #ffffff; }
.badge { font-family: sans-serif; font-size: 9px; fill: #ffffff; }
</style>
</defs>
`, px(width), px(height)))

	svg.WriteString(fmt.Sprintf(`<text x="10" y="26" class="title">%s (%d%%)</text>
`, escapeXML(opts.Title), int(math.Round(layout.Zoom*100))))

	writeMonthHeaders(&svg, layout, height-chartTop)

	for i, t := range tasks {
		tl, ok := layout.TaskByID(t.ID)
		if !ok {
			continue
		}
		writeTaskRow(&svg, t, tl, chartTop+float64(i)*rowHeight, opts.Palette)
	}

	if !opts.HideLegend {
		writeLegend(&svg, height-legendHeight+14, opts.Palette)
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

// writeMonthHeaders draws the month labels, clipped to the chart width, and
// one vertical grid line per band.
func writeMonthHeaders(svg *strings.Builder, layout *models.TimelineLayout, gridHeight float64) {
	top := titleHeight
	for i, band := range layout.Bands {
		x := LabelWidth + float64(band.Offset)*layout.DayWidth
		visible := float64(core.VisibleBandDays(layout, i)) * layout.DayWidth
		if visible <= 0 {
			continue
		}
		svg.WriteString(fmt.Sprintf(`<svg x="%s" y="%s" width="%s" height="%s"><text x="4" y="20" class="month">%s</text></svg>
`, px(x), px(top), px(visible), px(headerHeight), escapeXML(band.Label)))
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#e5e7eb" stroke-width="1"/>
`, px(x), px(top+headerHeight), px(x), px(top+headerHeight+gridHeight)))
	}
	svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#d1d5db" stroke-width="1"/>
`, px(LabelWidth), px(top+headerHeight), px(LabelWidth+layout.ChartWidth), px(top+headerHeight)))
}

func writeTaskRow(svg *strings.Builder, t models.ScheduleTask, tl models.TaskLayout, y float64, palette core.Palette) {
	svg.WriteString(fmt.Sprintf(`<g id="task-%s">
`, escapeXML(t.ID)))
	svg.WriteString(fmt.Sprintf(`<text x="10" y="%s" class="label">%s</text>
`, px(y+20), escapeXML(truncate(t.Name, 24))))
	svg.WriteString(fmt.Sprintf(`<text x="10" y="%s" class="status">%s</text>
`, px(y+36), escapeXML(string(t.Status))))
	if t.Critical {
		svg.WriteString(fmt.Sprintf(`<rect x="70" y="%s" width="44" height="14" rx="3" fill="%s"/><text x="76" y="%s" class="badge">Critical</text>
`, px(y+26), palette.Critical, px(y+36)))
	}

	barX := LabelWidth + tl.Rect.Offset
	barY := y + (rowHeight-barHeight)/2
	barW := math.Max(0, tl.Rect.Width)
	// The split is drawn within the bar; progress outside 0-100 saturates.
	filled := math.Min(barW, math.Max(0, tl.Split.Filled))

	svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s" fill-opacity="0.3"/>
`, px(barX), px(barY), px(barW), px(barHeight), tl.Color))
	svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s"/>
`, px(barX), px(barY), px(filled), px(barHeight), tl.Color))
	svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" class="bar-text">%s</text>
`, px(barX+8), px(barY+18), escapeXML(truncate(t.Name, int(math.Min(barW/7, 64))))))
	svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" class="status">%s%%</text>
`, px(barX), px(barY-2), strconv.FormatFloat(t.Progress, 'f', -1, 64)))
	svg.WriteString("<title>")
	svg.WriteString(escapeXML(Tooltip(t)))
	svg.WriteString("</title>\n</g>\n")
}

func writeLegend(svg *strings.Builder, y float64, palette core.Palette) {
	entries := []struct {
		label string
		color string
	}{
		{"Completed", palette.Completed},
		{"In Progress", palette.Active},
		{"Pending", palette.Pending},
		{"Critical Path", palette.Critical},
	}
	x := 10.0
	for _, e := range entries {
		svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="14" height="14" rx="3" fill="%s"/><text x="%s" y="%s" class="label">%s</text>
`, px(x), px(y), e.color, px(x+20), px(y+12), e.label))
		x += 120
	}
}

// Tooltip returns the hover text for a task: duration, start, end and
// progress.
func Tooltip(t models.ScheduleTask) string {
	return fmt.Sprintf("%s\nDuration: %s days\nStart: %s\nEnd: %s\nProgress: %s%%",
		t.Name,
		strconv.FormatFloat(t.Duration, 'f', -1, 64),
		t.Start.Format("2006-01-02"),
		t.End.Format("2006-01-02"),
		strconv.FormatFloat(t.Progress, 'f', -1, 64))
}

// px formats a length with at most two decimals.
func px(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// escapeXML escapes special XML characters in text content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
