package filters

import (
	"context"
	"fmt"
	"image"

	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// CLAHEFilter applies Contrast Limited Adaptive Histogram Equalization
type CLAHEFilter struct {
	ClipLimit float64
	TileGrid  int
	logger    logger.Logger
}

func NewCLAHEFilter(clipLimit float64, tileGrid int, log logger.Logger) *CLAHEFilter {
	return &CLAHEFilter{
		ClipLimit: clipLimit,
		TileGrid:  tileGrid,
		logger:    log,
	}
}

func (c *CLAHEFilter) Name() string {
	return "clahe_filter"
}

func (c *CLAHEFilter) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatType(input, gocv.MatTypeCV8UC1, c.Name()); err != nil {
		return nil, err
	}

	c.logger.Debug("Filters", "equalizing histogram", map[string]interface{}{
		"clip_limit": c.ClipLimit,
		"tile_grid":  c.TileGrid,
	})

	clahe := gocv.NewCLAHEWithParams(c.ClipLimit, image.Point{X: c.TileGrid, Y: c.TileGrid})
	defer clahe.Close()

	dstMat := gocv.NewMat()
	clahe.Apply(input.GetMat(), &dstMat)

	dst, err := safe.Wrap(dstMat, input.Tracker(), "clahe")
	if err != nil {
		return nil, fmt.Errorf("histogram equalization failed: %w", err)
	}
	return dst, nil
}
