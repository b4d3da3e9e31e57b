// Package trend turns raw observations into per-day totals and a small
// text chart for terminal display.
package trend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcliao/habit-agent/internal/model"
)

// Point is one day's total for a single observation kind.
type Point struct {
	Date  string
	Total float64
}

// Aggregate sums observation values per date for the given kind and
// returns points in ascending date order. Dates with no observations of
// the kind are absent, not zero.
func Aggregate(obs []model.Observation, kind model.ObservationKind) []Point {
	totals := make(map[string]float64)
	for _, o := range obs {
		if o.Kind != kind {
			continue
		}
		totals[o.Date] += o.Value
	}

	points := make([]Point, 0, len(totals))
	for date, total := range totals {
		points = append(points, Point{Date: date, Total: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// RenderBars renders points as a horizontal bar chart, one row per day,
// scaled so the largest total fills the width.
func RenderBars(points []Point, unit string, width int) string {
	if len(points) == 0 {
		return "no data\n"
	}
	if width <= 0 {
		width = 40
	}

	var max float64
	for _, p := range points {
		if p.Total > max {
			max = p.Total
		}
	}

	var b strings.Builder
	for _, p := range points {
		n := 0
		if max > 0 {
			n = int(p.Total / max * float64(width))
		}
		if n == 0 && p.Total > 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%s  %s %s %s\n", p.Date, strings.Repeat("█", n), formatValue(p.Total), unit)
	}
	return b.String()
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
