package browser

import (
	"fmt"

	"mri-enhancer/internal/opencv/safe"
	"mri-enhancer/internal/processing/enhance"
)

// PanelKind identifies a cell of the 2x3 grid.
type PanelKind int

const (
	PanelOriginal PanelKind = iota
	PanelEnhancedBilateral
	PanelEnhancedNLMeans
	PanelHistogram
	PanelSegmentedBilateral
	PanelSegmentedNLMeans
)

// GridRows and GridCols give the fixed panel layout; panels fill it row by row.
const (
	GridRows = 2
	GridCols = 3
)

// Panel is one titled cell. Mat is nil for the histogram panel, which the
// display draws from View.Enhanced.
type Panel struct {
	Kind  PanelKind
	Title string
	Mat   *safe.Mat
}

// View is the render instruction produced after every state change. The Mats
// are owned by the Session and stay valid until the next change.
type View struct {
	Index    int
	Count    int
	Name     string
	Cutoff   float64
	Panels   [GridRows * GridCols]Panel
	Enhanced map[enhance.Method]*safe.Mat
}

// Status is the one-line description of the current selection.
func (v View) Status() string {
	return fmt.Sprintf("%s (%d/%d)", v.Name, v.Index+1, v.Count)
}

func segmentedTitle(method string, cutoff float64) string {
	return fmt.Sprintf("Segmented Image - %s (Threshold: %.2f)", method, cutoff)
}

// Renderer is the display surface.
type Renderer interface {
	Render(View) error
}

// NopRenderer discards views.
type NopRenderer struct{}

func (NopRenderer) Render(View) error { return nil }
