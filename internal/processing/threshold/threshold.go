// Package threshold binarizes enhanced images against a manual cutoff.
package threshold

import (
	"fmt"
	"math"

	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Mask is a binary image: 255 where the source exceeded Cutoff, 0 elsewhere.
type Mask struct {
	Cutoff float64
	Mat    *safe.Mat
}

func (m *Mask) Rows() int { return m.Mat.Rows() }
func (m *Mask) Cols() int { return m.Mat.Cols() }

// TrueCount is the number of pixels above the cutoff.
func (m *Mask) TrueCount() int {
	return gocv.CountNonZero(m.Mat.GetMat())
}

func (m *Mask) Close() {
	if m != nil && m.Mat != nil {
		m.Mat.Close()
	}
}

// Apply computes src > cutoff for a single channel float image. Any cutoff
// is accepted; values outside the data range give an all-true or all-false
// mask.
func Apply(src *safe.Mat, cutoff float64) (*Mask, error) {
	if err := safe.ValidateMatType(src, gocv.MatTypeCV32FC1, "threshold"); err != nil {
		return nil, err
	}

	thresholded := gocv.NewMat()
	defer thresholded.Close()
	gocv.Threshold(src.GetMat(), &thresholded, floatCutoff(cutoff), 255, gocv.ThresholdBinary)

	binary := gocv.NewMat()
	thresholded.ConvertTo(&binary, gocv.MatTypeCV8UC1)

	mat, err := safe.Wrap(binary, src.Tracker(), "mask")
	if err != nil {
		return nil, fmt.Errorf("threshold at %.2f failed: %w", cutoff, err)
	}

	return &Mask{Cutoff: cutoff, Mat: mat}, nil
}

// floatCutoff returns the largest float32 not above cutoff, so that px > c in
// float32 agrees with px > cutoff in float64 for every float32 pixel.
func floatCutoff(cutoff float64) float32 {
	c := float32(cutoff)
	if float64(c) > cutoff {
		c = math.Nextafter32(c, float32(math.Inf(-1)))
	}
	return c
}
