package filters

import (
	"context"
	"fmt"

	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// GrayscaleConverter converts BGR, BGRA and gray images to 8-bit gray.
type GrayscaleConverter struct {
	logger logger.Logger
}

func NewGrayscaleConverter(log logger.Logger) *GrayscaleConverter {
	return &GrayscaleConverter{logger: log}
}

func (g *GrayscaleConverter) Name() string {
	return "grayscale_converter"
}

func (g *GrayscaleConverter) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateChannels(input, g.Name(), 1, 3, 4); err != nil {
		return nil, err
	}

	g.logger.Debug("Filters", "converting to grayscale", map[string]interface{}{
		"channels": input.Channels(),
	})

	if input.Channels() == 1 {
		return input.Clone()
	}

	srcMat := input.GetMat()
	dstMat := gocv.NewMat()

	switch input.Channels() {
	case 3:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRAToGray)
	}

	dst, err := safe.Wrap(dstMat, input.Tracker(), "grayscale")
	if err != nil {
		return nil, fmt.Errorf("grayscale conversion failed: %w", err)
	}
	return dst, nil
}
