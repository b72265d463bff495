// Package viz renders simulation results in the terminal: asciigraph line
// plots for recorded trajectories and a live ANSI view of the closed loop
// with the planner's predicted rollout overlaid.
package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mppi/internal/dynamo"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	metricStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// PlotStates renders one graph per state component.
func PlotStates(states []dynamo.State, width, height int) string {
	if len(states) == 0 {
		return ""
	}

	var b strings.Builder
	for i := range states[0] {
		series := make([]float64, len(states))
		for j := range states {
			series[j] = states[j][i]
		}

		b.WriteString(titleStyle.Render(fmt.Sprintf("x%d", i)))
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(series,
			asciigraph.Width(width),
			asciigraph.Height(height),
		))
		b.WriteString("\n\n")
	}
	return b.String()
}

// PlotControls renders the applied control signal.
func PlotControls(controls []dynamo.Control, width, height int) string {
	if len(controls) == 0 {
		return ""
	}

	var b strings.Builder
	for i := range controls[0] {
		series := make([]float64, len(controls))
		for j := range controls {
			series[j] = controls[j][i]
		}

		b.WriteString(titleStyle.Render(fmt.Sprintf("u%d", i)))
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(series,
			asciigraph.Width(width),
			asciigraph.Height(height),
		))
		b.WriteString("\n\n")
	}
	return b.String()
}

// MetricsSummary renders a metric table.
func MetricsSummary(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", name)))
		b.WriteString(metricStyle.Render(fmt.Sprintf("%.6f", metrics[name])))
		b.WriteString("\n")
	}
	return b.String()
}
