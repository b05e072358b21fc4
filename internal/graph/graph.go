// Package graph models a plot view bound live to a worksheet. A graph
// subscribes to its source sheet and rebuilds its series snapshot on every
// change notification by re-reading current state; it never relies on a
// diff. Rendering is left to front-ends; the observable output here is the
// series data, axis configuration, and legend labels.
package graph

import (
	"github.com/plotloom/plotloom-cli/internal/sheet"
)

// Series is one plotted trace: paired X/Y values and a legend label.
type Series struct {
	Label string    `json:"label,omitempty"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

// Axes carries the per-graph display configuration.
type Axes struct {
	Title  string `json:"title,omitempty"`
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`
	LogX   bool   `json:"log_x,omitempty"`
	LogY   bool   `json:"log_y,omitempty"`
	Legend bool   `json:"legend"`
}

// Graph is a live view over one sheet's role-tagged columns.
type Graph struct {
	src      *sheet.Sheet
	axes     Axes
	series   []Series
	overlays []Series
}

// New binds a graph to its source sheet and takes the initial snapshot.
// Every subsequent sheet mutation refreshes the snapshot synchronously.
func New(src *sheet.Sheet) *Graph {
	g := &Graph{src: src, axes: Axes{Legend: true}}
	src.Subscribe(g.refresh)
	g.refresh()
	return g
}

// refresh rebuilds the series from the sheet's current roles. When no roles
// are set, column 0 serves as X and column 1 (if present) as Y.
func (g *Graph) refresh() {
	x, ok := g.src.RoleX()
	if !ok {
		x = 0
	}
	ys := g.src.RoleYs()
	if len(ys) == 0 && g.src.Cols() >= 2 {
		ys = []int{1}
	}

	xv, err := g.src.Column(x)
	if err != nil {
		g.series = nil
		return
	}
	series := make([]Series, 0, len(ys))
	for _, j := range ys {
		yv, err := g.src.Column(j)
		if err != nil {
			continue
		}
		series = append(series, Series{
			Label: g.src.DisplayName(j),
			X:     xv,
			Y:     yv,
		})
	}
	g.series = series
}

// Series returns the current data traces.
func (g *Graph) Series() []Series { return g.series }

// Overlays returns the fitted curves attached to this graph.
func (g *Graph) Overlays() []Series { return g.overlays }

// AddOverlay attaches a fitted curve; overlays survive sheet refreshes until
// cleared.
func (g *Graph) AddOverlay(label string, x, y []float64) {
	g.overlays = append(g.overlays, Series{Label: label, X: x, Y: y})
}

// ClearOverlays drops all fitted curves.
func (g *Graph) ClearOverlays() { g.overlays = nil }

// Axes returns the display configuration.
func (g *Graph) Axes() Axes { return g.axes }

// SetAxes replaces the display configuration.
func (g *Graph) SetAxes(a Axes) { g.axes = a }
