package filters

import (
	"context"
	"fmt"

	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Normalizer maps an 8-bit gray image onto 32-bit floats in [0,1].
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Name() string {
	return "normalizer"
}

func (n *Normalizer) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatType(input, gocv.MatTypeCV8UC1, n.Name()); err != nil {
		return nil, err
	}

	srcMat := input.GetMat()
	scaled := gocv.NewMat()
	defer scaled.Close()
	srcMat.ConvertToWithParams(&scaled, gocv.MatTypeCV32FC1, 1.0/255.0, 0)

	// float rounding of 1/255 must not push white above 1
	dstMat := gocv.NewMat()
	gocv.Threshold(scaled, &dstMat, 1, 1, gocv.ThresholdTrunc)

	dst, err := safe.Wrap(dstMat, input.Tracker(), "normalized")
	if err != nil {
		return nil, fmt.Errorf("normalization failed: %w", err)
	}
	return dst, nil
}
