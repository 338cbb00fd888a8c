// Package histogram summarizes enhanced images and draws the intensity
// histogram panel.
package histogram

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"sort"

	"mri-enhancer/internal/opencv/conversion"
	"mri-enhancer/internal/opencv/safe"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the bin count used by the display.
const DefaultBins = 64

// Histogram holds pixel counts over equal width bins spanning [0,1].
type Histogram struct {
	Counts []float64
	Mean   float64
	StdDev float64
}

// Centers returns the midpoint of each bin.
func (h *Histogram) Centers() []float64 {
	n := len(h.Counts)
	centers := make([]float64, n)
	for i := range centers {
		centers[i] = (float64(i) + 0.5) / float64(n)
	}
	return centers
}

// Compute bins the pixels of a single channel float image in [0,1].
func Compute(src *safe.Mat, bins int) (*Histogram, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("bin count must be positive, got %d", bins)
	}

	values, err := conversion.Float64s(src)
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		values[i] = math.Min(1, math.Max(0, v))
	}
	sort.Float64s(values)

	dividers := floats.Span(make([]float64, bins+1), 0, 1)
	// the top divider is exclusive; keep 1.0 in the last bin
	dividers[bins] = math.Nextafter(1, 2)

	mean, std := stat.MeanStdDev(values, nil)

	return &Histogram{
		Counts: stat.Histogram(nil, dividers, values, nil),
		Mean:   mean,
		StdDev: std,
	}, nil
}

// Series is one named histogram line.
type Series struct {
	Name      string
	Histogram *Histogram
}

var palette = []drawing.Color{chart.ColorBlue, chart.ColorOrange, chart.ColorAlternateGreen}

// Render draws the histograms with a vertical marker at cutoff.
func Render(series []Series, cutoff float64, width, height int) (image.Image, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no histogram series to render")
	}

	maxCount := 1.0
	var lines []chart.Series
	for i, s := range series {
		if s.Histogram == nil || len(s.Histogram.Counts) < 2 {
			return nil, fmt.Errorf("series %q needs at least two bins", s.Name)
		}
		maxCount = math.Max(maxCount, floats.Max(s.Histogram.Counts))
		lines = append(lines, chart.ContinuousSeries{
			Name: s.Name,
			Style: chart.Style{
				StrokeColor: palette[i%len(palette)],
				StrokeWidth: 2,
			},
			XValues: s.Histogram.Centers(),
			YValues: s.Histogram.Counts,
		})
	}

	marker := math.Min(1, math.Max(0, cutoff))
	lines = append(lines, chart.ContinuousSeries{
		Name: fmt.Sprintf("Threshold %.2f", cutoff),
		Style: chart.Style{
			StrokeColor:     chart.ColorRed,
			StrokeDashArray: []float64{5.0, 5.0},
		},
		XValues: []float64{marker, marker},
		YValues: []float64{0, maxCount},
	})

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  "Intensity",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		YAxis: chart.YAxis{
			Name:  "Pixels",
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount},
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("histogram render failed: %w", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("histogram decode failed: %w", err)
	}
	return img, nil
}
