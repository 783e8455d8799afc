// Package chart renders sample history as color-coded sparklines relative to
// the driver's alert threshold.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/simtemp/internal/history"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Palette.
var (
	ColorOk    = lipgloss.Color("78")  // soft green
	ColorWarm  = lipgloss.Color("220") // yellow
	ColorHigh  = lipgloss.Color("208") // orange
	ColorAlert = lipgloss.Color("196") // red
	colorDim   = lipgloss.Color("236")
	colorTick  = lipgloss.Color("239")
)

// TempColor returns the color for a temperature given the alert threshold
// in degrees Celsius. Without a threshold everything is ok-colored.
func TempColor(v, threshold float64, hasThreshold bool) lipgloss.Color {
	switch {
	case hasThreshold && v > threshold:
		return ColorAlert
	case hasThreshold && v >= threshold*0.95:
		return ColorHigh
	case hasThreshold && v >= threshold*0.85:
		return ColorWarm
	default:
		return ColorOk
	}
}

// RenderSparkline renders a sparkline of the given points. Points carrying
// the alert flag are drawn bold red; a pipe marks each minute boundary.
func RenderSparkline(r *lipgloss.Renderer, points []history.Point, width int, rangeMin, rangeMax, threshold float64, hasThreshold bool) string {
	if width <= 0 {
		return ""
	}
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	if len(points) == 0 {
		return r.NewStyle().Foreground(colorDim).Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder

	dim := r.NewStyle().Foreground(colorDim)
	for i := 0; i < padLen; i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := r.NewStyle().Foreground(colorTick)

	for i, p := range points {
		norm := (p.Temp - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		if isMinuteTick(points, i) && !p.Alert {
			sb.WriteString(tickStyle.Render("│"))
			continue
		}

		style := r.NewStyle().Foreground(TempColor(p.Temp, threshold, hasThreshold))
		if p.Alert {
			style = r.NewStyle().Foreground(ColorAlert).Bold(true)
		}
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

func isMinuteTick(points []history.Point, i int) bool {
	p := points[i]
	if p.Time.IsZero() || i == 0 {
		return false
	}
	prev := points[i-1].Time
	if prev.IsZero() {
		return false
	}
	return !p.Time.Truncate(60e9).Equal(prev.Truncate(60e9))
}

// RenderThresholdScale renders a scale bar showing the current value
// against the threshold.
func RenderThresholdScale(r *lipgloss.Renderer, current, rangeMin, rangeMax, threshold float64, hasThreshold bool, width int) string {
	if width <= 0 {
		return ""
	}
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}
	pos := func(v float64) int {
		p := int(float64(width-1) * (v - rangeMin) / span)
		if p < 0 {
			return 0
		}
		if p >= width {
			return width - 1
		}
		return p
	}

	thPos := -1
	if hasThreshold && threshold >= rangeMin && threshold <= rangeMax {
		thPos = pos(threshold)
	}
	curPos := pos(current)

	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == curPos:
			color := TempColor(current, threshold, hasThreshold)
			sb.WriteString(r.NewStyle().Foreground(color).Bold(true).Render("◆"))
		case i == thPos:
			sb.WriteString(r.NewStyle().Foreground(ColorAlert).Render("▪"))
		default:
			sb.WriteString(r.NewStyle().Foreground(colorDim).Render("·"))
		}
	}
	return sb.String()
}

// RenderTempValue renders the temperature value with color coding.
func RenderTempValue(r *lipgloss.Renderer, temp, threshold float64, hasThreshold bool) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	style := r.NewStyle().Foreground(TempColor(temp, threshold, hasThreshold))
	if hasThreshold && temp > threshold {
		style = style.Bold(true)
	}
	return style.Render(fmt.Sprintf("%.1fC", temp))
}
