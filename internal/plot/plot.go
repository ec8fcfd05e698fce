// Package plot renders training curves to image or HTML files.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type Point struct {
	X float64
	Y float64
}

type Range struct {
	Min float64
	Max float64
}

// Bounds returns the smallest ranges covering every point.
func Bounds(points []Point) (Range, Range) {
	if len(points) == 0 {
		return Range{}, Range{}
	}
	x := Range{Min: points[0].X, Max: points[0].X}
	y := Range{Min: points[0].Y, Max: points[0].Y}
	for _, p := range points[1:] {
		x.Min, x.Max = min(x.Min, p.X), max(x.Max, p.X)
		y.Min, y.Max = min(y.Min, p.Y), max(y.Max, p.Y)
	}
	return x, y
}

// widen gives a degenerate range a unit span so axes can be scaled.
func widen(r Range) Range {
	if r.Max > r.Min {
		return r
	}
	return Range{Min: r.Min - 0.5, Max: r.Min + 0.5}
}

var pointColor = color.RGBA{R: 0xDD, G: 0x33, B: 0x55, A: 0xFF}

// Scatter writes a scatter plot of points to path. Files ending in .html get
// an interactive chart; any other extension gonum/plot can encode (svg, png,
// pdf, ...) gets a static image.
func Scatter(path string, points []Point, x, y Range, xLabel, yLabel string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create plot directory: %w", err)
		}
	}
	x, y = widen(x), widen(y)
	if strings.EqualFold(filepath.Ext(path), ".html") {
		return scatterHTML(path, points, x, y, xLabel, yLabel)
	}
	return scatterImage(path, points, x, y, xLabel, yLabel)
}

func scatterImage(path string, points []Point, x, y Range, xLabel, yLabel string) error {
	p := gonumplot.New()
	p.Title.Text = yLabel + " by " + xLabel
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("build scatter: %w", err)
	}
	s.GlyphStyle.Color = pointColor
	s.GlyphStyle.Radius = vg.Points(1)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)

	p.X.Min, p.X.Max = x.Min, x.Max
	p.Y.Min, p.Y.Max = y.Min, y.Max
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

func scatterHTML(path string, points []Point, x, y Range, xLabel, yLabel string) error {
	chart := charts.NewScatter()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: yLabel + " by " + xLabel}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xLabel, Type: "value", Min: x.Min, Max: x.Max}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel, Type: "value", Min: y.Min, Max: y.Max}),
	)
	items := make([]opts.ScatterData, len(points))
	for i, pt := range points {
		items[i] = opts.ScatterData{Value: []float64{pt.X, pt.Y}, SymbolSize: 3}
	}
	chart.AddSeries(yLabel, items)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := chart.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render chart %s: %w", path, err)
	}
	return f.Close()
}
