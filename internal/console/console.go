// Package console narrates the ingestion run for the operator: samples,
// alerts, timeouts and the test verdict, one line each.
package console

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/simtemp/internal/alert"
	"github.com/luki/simtemp/internal/chart"
	"github.com/luki/simtemp/internal/history"
	"github.com/luki/simtemp/internal/loop"
	"github.com/luki/simtemp/internal/sysfs"
)

// Narrator writes styled lines to out. Styling degrades to plain text when
// out is not a terminal or NO_COLOR is set.
type Narrator struct {
	out          io.Writer
	r            *lipgloss.Renderer
	threshold    float64
	hasThreshold bool

	alertStyle lipgloss.Style
	passStyle  lipgloss.Style
	failStyle  lipgloss.Style
	dimStyle   lipgloss.Style
	headStyle  lipgloss.Style
}

// New returns a Narrator writing to out.
func New(out io.Writer) *Narrator {
	r := lipgloss.NewRenderer(out)
	return &Narrator{
		out:        out,
		r:          r,
		alertStyle: r.NewStyle().Foreground(chart.ColorAlert).Bold(true),
		passStyle:  r.NewStyle().Foreground(chart.ColorOk).Bold(true),
		failStyle:  r.NewStyle().Foreground(chart.ColorAlert).Bold(true),
		dimStyle:   r.NewStyle().Foreground(lipgloss.Color("243")),
		headStyle:  r.NewStyle().Foreground(lipgloss.Color("147")).Bold(true),
	}
}

// SetThreshold sets the value temperatures are colored against.
func (n *Narrator) SetThreshold(milliC int) {
	n.threshold = float64(milliC) / 1000.0
	n.hasThreshold = true
}

// Renderer exposes the renderer bound to the output.
func (n *Narrator) Renderer() *lipgloss.Renderer { return n.r }

func (n *Narrator) println(s string) {
	fmt.Fprintln(n.out, s)
}

// Heading prints a section title.
func (n *Narrator) Heading(s string) {
	n.println(n.headStyle.Render(s) + "\n")
}

// Timeout announces the poll timeout in effect.
func (n *Narrator) Timeout(d time.Duration) {
	ms := d.Milliseconds()
	if d == loop.DefaultTimeout {
		n.println(fmt.Sprintf("Default wait time (poll timeout): %d ms\n", ms))
		return
	}
	n.println(fmt.Sprintf("Wait time (poll timeout) modified: %d ms\n", ms))
}

// Stats echoes the driver stats verbatim.
func (n *Narrator) Stats(raw string) {
	n.println("Current stats:")
	n.println(raw)
	n.println("")
}

// StatsTable prints parsed driver stats as aligned rows.
func (n *Narrator) StatsTable(st sysfs.DriverStats) {
	rows := [][2]string{
		{"sampling", fmt.Sprintf("%d ms", st.SamplingMs)},
		{"threshold", fmt.Sprintf("%d mC", st.ThresholdMC)},
		{"samples", fmt.Sprintf("%d", st.SamplesTaken)},
		{"mode", st.Mode},
		{"alerts", fmt.Sprintf("%d", st.AlertCount)},
	}
	label := n.r.NewStyle().Width(10)
	for _, row := range rows {
		n.println(label.Render(row[0]) + " " + row[1])
	}
}

// Waiting announces the start of the loop.
func (n *Narrator) Waiting(testMode bool, budget time.Duration) {
	n.println("Waiting for temperature samples...")
	if testMode {
		n.println(n.dimStyle.Render(fmt.Sprintf("(test mode: waiting up to %s for an alert)", budget)))
		return
	}
	n.println("(CTRL+C to exit)")
}

// Observe narrates one loop event.
func (n *Narrator) Observe(ev loop.Event) {
	switch ev.Kind {
	case loop.EventTimeout:
		n.println("No data (timeout).")
	case loop.EventAlert:
		n.println(n.alertStyle.Render(">>> ALERT: Threshold exceeded <<<"))
	case loop.EventSample:
		s := ev.Sample
		temp := n.r.NewStyle().
			Foreground(chart.TempColor(s.Celsius(), n.threshold, n.hasThreshold)).
			Render(fmt.Sprintf("temp=%.1fC", s.Celsius()))
		n.println(fmt.Sprintf("%s %s alert=%d", s.FormatTime(), temp, s.AlertBit()))
	case loop.EventTruncated:
		n.println("Incomplete data received")
	case loop.EventVerdict:
		switch ev.Verdict {
		case alert.Pass:
			n.println(n.passStyle.Render("TEST: PASS (alert detected)"))
		case alert.Fail:
			n.println(n.failStyle.Render("TEST: FAIL (no alert detected)"))
		}
	case loop.EventStopped:
		n.println("\nExiting program.")
	}
}

// Summary prints the end-of-run statistics and a sparkline of the history.
func (n *Narrator) Summary(h *history.Buffer, res loop.Result, width int) {
	counts := fmt.Sprintf("samples=%d alerts=%d truncated=%d timeouts=%d",
		res.Samples, res.Alerts, res.Truncated, res.Timeouts)
	n.println(n.dimStyle.Render(counts))
	if h == nil || h.Empty() {
		return
	}
	n.HistoryLine(h, width)
}

// HistoryLine prints min/avg/peak and a sparkline for h.
func (n *Narrator) HistoryLine(h *history.Buffer, width int) {
	if width < 10 {
		width = 10
	}
	rangeMin := math.Floor(h.Min) - 1
	rangeMax := math.Ceil(h.Peak) + 1
	if n.hasThreshold && n.threshold+1 > rangeMax {
		rangeMax = n.threshold + 1
	}

	pts := h.LastNPoints(width)
	spark := chart.RenderSparkline(n.r, pts, width, rangeMin, rangeMax, n.threshold, n.hasThreshold)
	scale := chart.RenderThresholdScale(n.r, h.Last(), rangeMin, rangeMax, n.threshold, n.hasThreshold, width)

	stats := strings.Join([]string{
		"last " + chart.RenderTempValue(n.r, h.Last(), n.threshold, n.hasThreshold),
		fmt.Sprintf("min %.1fC", h.Min),
		fmt.Sprintf("avg %.1fC", h.Avg()),
		fmt.Sprintf("peak %.1fC", h.Peak),
		fmt.Sprintf("flagged %d/%d", h.Alerts, h.Total),
	}, "  ")
	n.println(spark)
	n.println(scale)
	n.println(stats)
}
