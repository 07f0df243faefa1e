// Package plot renders chart artifacts (PNG) for the built-in analyses and
// for scripts produced by the LLM.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

// Histogram renders a histogram of the given values.
func Histogram(title string, vals []float64, bins int) ([]byte, error) {
	if len(vals) == 0 {
		return nil, errors.New("no numeric values to plot")
	}
	if bins <= 0 {
		bins = 30
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"
	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)
	return render(p)
}

// Scatter renders an x/y scatter plot.
func Scatter(title, xLabel, yLabel string, xs, ys []float64) ([]byte, error) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n == 0 {
		return nil, errors.New("no paired values to plot")
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	p.Add(s)
	return render(p)
}

// Line renders a time series as a line plot with month-formatted ticks.
func Line(title, yLabel string, times []time.Time, vals []float64) ([]byte, error) {
	n := len(times)
	if len(vals) < n {
		n = len(vals)
	}
	if n == 0 {
		return nil, errors.New("no points to plot")
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = float64(times[i].Unix())
		pts[i].Y = vals[i]
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("line: %w", err)
	}
	p.Add(l)
	return render(p)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ.
type corrGrid struct {
	names []string
	mat   [][]float64
}

func (g corrGrid) Dims() (int, int)   { return len(g.names), len(g.names) }
func (g corrGrid) Z(c, r int) float64 { return g.mat[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// Heatmap renders a correlation matrix as a heatmap with labeled axes.
func Heatmap(title string, names []string, mat [][]float64) ([]byte, error) {
	if len(names) < 2 {
		return nil, errors.New("need at least two numeric columns")
	}
	p := plot.New()
	p.Title.Text = title
	hm := plotter.NewHeatMap(corrGrid{names: names, mat: mat}, palette.Heat(12, 1))
	p.Add(hm)
	ticks := make([]plot.Tick, len(names))
	for i, name := range names {
		ticks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = 1.2
	return render(p)
}

func render(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
