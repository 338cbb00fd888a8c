package filters

import (
	"context"
	"fmt"
	"math"

	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// BilateralFilter applies edge-preserving smoothing to an 8-bit gray image.
// SigmaColor is expressed on the [0,1] intensity scale.
type BilateralFilter struct {
	SigmaColor   float64
	SigmaSpatial float64
	logger       logger.Logger
}

func NewBilateralFilter(sigmaColor, sigmaSpatial float64, log logger.Logger) *BilateralFilter {
	return &BilateralFilter{
		SigmaColor:   sigmaColor,
		SigmaSpatial: sigmaSpatial,
		logger:       log,
	}
}

func (b *BilateralFilter) Name() string {
	return "bilateral_filter"
}

// Diameter covers three spatial sigmas on either side of the centre pixel.
func (b *BilateralFilter) Diameter() int {
	return 2*int(math.Ceil(3*b.SigmaSpatial)) + 1
}

func (b *BilateralFilter) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatType(input, gocv.MatTypeCV8UC1, b.Name()); err != nil {
		return nil, err
	}

	sigmaColor := b.SigmaColor * 255
	diameter := b.Diameter()

	b.logger.Info("Filters", "applying bilateral filter", map[string]interface{}{
		"sigma_color":   b.SigmaColor,
		"sigma_spatial": b.SigmaSpatial,
		"diameter":      diameter,
	})

	dstMat := gocv.NewMat()
	gocv.BilateralFilter(input.GetMat(), &dstMat, diameter, sigmaColor, b.SigmaSpatial)

	dst, err := safe.Wrap(dstMat, input.Tracker(), "bilateral")
	if err != nil {
		return nil, fmt.Errorf("bilateral filter failed: %w", err)
	}
	return dst, nil
}
