package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/sentinel/internal/mapper"
	"github.com/san-kum/sentinel/internal/metrics"
)

// Series is one line of a chart, with values on a 0-100 scale.
type Series struct {
	Name   string
	Stroke string
	Values []float64
}

// MetricSeries splits samples into cpu and memory lines.
func MetricSeries(samples []metrics.Sample) []Series {
	cpu := make([]float64, len(samples))
	mem := make([]float64, len(samples))
	for i, s := range samples {
		cpu[i], mem[i] = s.CPU, s.Memory
	}
	return []Series{
		{Name: "cpu", Stroke: mapper.Red.Hex(), Values: cpu},
		{Name: "memory", Stroke: "#4488ff", Values: mem},
	}
}

// SeriesToSVG charts the series over a fixed 0-100 range, with guide lines
// at the stress and critical cpu thresholds. It returns "" when no series has
// at least two points.
func SeriesToSVG(series []Series, width, height int) string {
	n := 0
	for _, s := range series {
		n = max(n, len(s.Values))
	}
	if n < 2 {
		return ""
	}

	xAt := func(i int) float64 { return float64(i) / float64(n-1) * float64(width) }
	yAt := func(v float64) float64 {
		v = min(max(v, 0), 100)
		return float64(height) - v/100*float64(height)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#050505"/>
`, width, height, width, height))

	for _, g := range []struct {
		v     float64
		color mapper.RGB
	}{
		{mapper.StressCPU, mapper.Orange},
		{mapper.CriticalCPU, mapper.Red},
	} {
		y := yAt(g.v)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-opacity="0.4" stroke-dasharray="4 4"/>
`, y, width, y, g.color.Hex()))
	}

	for _, s := range series {
		if len(s.Values) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Stroke))
		for i, v := range s.Values {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", xAt(i), yAt(v)))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", xAt(i), yAt(v)))
			}
		}
		sb.WriteString(fmt.Sprintf(`"><title>%s</title></path>
`, s.Name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
