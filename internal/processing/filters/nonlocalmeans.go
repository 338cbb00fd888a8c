package filters

import (
	"context"
	"fmt"

	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// minStrength is the smallest h worth denoising with; flatter images are
// copied through.
const minStrength = 1e-3

// NonLocalMeansFilter applies patch based denoising to an 8-bit gray image.
// The filtering strength is StrengthFactor times the image standard
// deviation.
type NonLocalMeansFilter struct {
	PatchSize      int
	PatchDistance  int
	StrengthFactor float64
	logger         logger.Logger
}

func NewNonLocalMeansFilter(patchSize, patchDistance int, strengthFactor float64, log logger.Logger) *NonLocalMeansFilter {
	return &NonLocalMeansFilter{
		PatchSize:      patchSize,
		PatchDistance:  patchDistance,
		StrengthFactor: strengthFactor,
		logger:         log,
	}
}

func (n *NonLocalMeansFilter) Name() string {
	return "non_local_means_filter"
}

func (n *NonLocalMeansFilter) SearchWindow() int {
	return 2*n.PatchDistance + 1
}

// Strength returns h for the given image.
func (n *NonLocalMeansFilter) Strength(input *safe.Mat) float64 {
	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()

	gocv.MeanStdDev(input.GetMat(), &mean, &stddev)
	if stddev.Empty() {
		return 0
	}
	return n.StrengthFactor * stddev.GetDoubleAt(0, 0)
}

func (n *NonLocalMeansFilter) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatType(input, gocv.MatTypeCV8UC1, n.Name()); err != nil {
		return nil, err
	}

	h := n.Strength(input)

	n.logger.Info("Filters", "applying non-local means filter", map[string]interface{}{
		"h":             h,
		"patch_size":    n.PatchSize,
		"search_window": n.SearchWindow(),
	})

	if h < minStrength {
		return input.Clone()
	}

	dstMat := gocv.NewMat()
	gocv.FastNlMeansDenoisingWithParams(input.GetMat(), &dstMat, float32(h), n.PatchSize, n.SearchWindow())

	dst, err := safe.Wrap(dstMat, input.Tracker(), "nl_means")
	if err != nil {
		return nil, fmt.Errorf("non-local means filter failed: %w", err)
	}
	return dst, nil
}
