// Package render draws root-section histograms and pie charts.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/KaramelBytes/afmtool-cli/internal/compile"
	"github.com/KaramelBytes/afmtool-cli/internal/group"
	"github.com/KaramelBytes/afmtool-cli/internal/utils"
)

// ErrNoBins is returned when the axis range holds fewer than one bin.
var ErrNoBins = errors.New("histogram range must hold at least one bin")

// Mode selects the bar height of a histogram.
type Mode int

const (
	// Count bars hold the number of values in each bin.
	Count Mode = iota
	// Frequency bars hold the fraction of all values in each bin.
	Frequency
)

func (m Mode) String() string {
	if m == Frequency {
		return "Frequency"
	}
	return "Count"
}

// Edges returns 0, width, 2*width, ... stopping before xmax.
func Edges(width, xmax float64) ([]float64, error) {
	if width <= 0 || math.IsNaN(width) {
		return nil, fmt.Errorf("%w: bin width %g", ErrNoBins, width)
	}
	var edges []float64
	for i := 0; ; i++ {
		e := float64(i) * width
		if e >= xmax {
			break
		}
		edges = append(edges, e)
	}
	if len(edges) < 2 {
		return nil, fmt.Errorf("%w: width %g, upper bound %g", ErrNoBins, width, xmax)
	}
	return edges, nil
}

// Bins groups values into bins over Edges(width, xmax). Bins are half-open
// except the last, which also holds values equal to the last edge. Values
// outside the edges and NaN are ignored. In Frequency mode each value weighs
// 1/len(values).
func Bins(values []float64, width, xmax float64, mode Mode) ([]plotter.HistogramBin, error) {
	edges, err := Edges(width, xmax)
	if err != nil {
		return nil, err
	}
	lo, hi := edges[0], edges[len(edges)-1]
	x := make([]float64, 0, len(values))
	atEdge := 0
	for _, v := range values {
		switch {
		case v == hi:
			atEdge++
		case v >= lo && v < hi:
			x = append(x, v)
		}
	}
	sort.Float64s(x)
	w := 1.0
	var weights []float64
	if mode == Frequency {
		w = 1 / float64(len(values))
		if len(x) > 0 {
			weights = make([]float64, len(x))
			for i := range weights {
				weights[i] = w
			}
		}
	}
	counts := stat.Histogram(nil, edges, x, weights)
	counts[len(counts)-1] += float64(atEdge) * w
	bins := make([]plotter.HistogramBin, len(counts))
	for i, c := range counts {
		bins[i] = plotter.HistogramBin{Min: edges[i], Max: edges[i+1], Weight: c}
	}
	return bins, nil
}

// HistogramOptions describe one stacked histogram figure.
type HistogramOptions struct {
	XLabel   string
	BinWidth float64
	XMax     float64
}

var stepColors = map[compile.Step]color.Color{
	compile.Maturation:   color.RGBA{R: 0xff, G: 0xff, A: 0xff},
	compile.Elongation:   color.RGBA{G: 0xff, B: 0xff, A: 0xff},
	compile.CellDivision: color.RGBA{R: 0xff, A: 0xff},
}

// HistogramSet draws one panel per section of g, stacked vertically and
// sharing the y range, and returns the SVG document.
func HistogramSet(title string, g group.DateGroup, mode Mode, o HistogramOptions) ([]byte, error) {
	plots := make([][]*plot.Plot, len(g.Steps))
	ymax := 0.0
	for i, sv := range g.Steps {
		bins, err := Bins(sv.Values, o.BinWidth, o.XMax, mode)
		if err != nil {
			return nil, err
		}
		weights := make([]float64, len(bins))
		for j, b := range bins {
			weights[j] = b.Weight
		}
		ymax = math.Max(ymax, floats.Max(weights))

		h := &plotter.Histogram{Bins: bins, Width: o.BinWidth, FillColor: stepColors[sv.Step]}
		h.LineStyle = plotter.DefaultLineStyle

		p := plot.New()
		if i == 0 {
			p.Title.Text = title
		}
		p.X.Label.Text = o.XLabel
		p.Y.Label.Text = mode.String()
		p.Add(h)
		p.Legend.Add(sv.Step.Label(), h)
		p.Legend.Top = true
		p.Legend.Left = false
		p.X.Min, p.X.Max = 0, o.XMax
		plots[i] = []*plot.Plot{p}
	}
	if ymax == 0 {
		ymax = 1
	}
	for _, row := range plots {
		row[0].Y.Min, row[0].Y.Max = 0, ymax*1.05
	}

	c := vgsvg.New(8*vg.Inch, 8*vg.Inch)
	dc := draw.New(c)
	tiles := draw.Tiles{Rows: len(plots), Cols: 1, PadX: vg.Millimeter, PadY: 2 * vg.Millimeter}
	canvases := plot.Align(plots, tiles, dc)
	for i, row := range plots {
		row[0].Draw(canvases[i][0])
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode svg: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHistogramSet renders a histogram set to path.
func WriteHistogramSet(path, title string, g group.DateGroup, mode Mode, o HistogramOptions) error {
	b, err := HistogramSet(title, g, mode, o)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}
