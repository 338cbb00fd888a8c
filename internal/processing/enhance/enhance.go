// Package enhance turns a loaded image into a denoised, contrast equalized
// intensity image with values in [0,1].
package enhance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"
	"mri-enhancer/internal/processing/chain"
	"mri-enhancer/internal/processing/filters"
)

// ErrInvalidMethod reports an enhancement method other than Bilateral or
// NLMeans.
var ErrInvalidMethod = errors.New("invalid enhancement method")

type Method string

const (
	Bilateral Method = "bilateral"
	NLMeans   Method = "nl_means"
)

// Methods lists the supported methods in display order.
var Methods = []Method{Bilateral, NLMeans}

func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q (choose %q or %q)", ErrInvalidMethod, s, Bilateral, NLMeans)
	}
	return m, nil
}

func (m Method) Valid() bool {
	return m == Bilateral || m == NLMeans
}

// Label is the human readable method name.
func (m Method) Label() string {
	switch m {
	case Bilateral:
		return "Bilateral Filter"
	case NLMeans:
		return "Non-Local Means"
	default:
		return string(m)
	}
}

// Params holds the fixed filter settings.
type Params struct {
	SigmaColor     float64
	SigmaSpatial   float64
	PatchSize      int
	PatchDistance  int
	StrengthFactor float64
	ClipLimit      float64
	TileGrid       int
}

// DefaultParams matches the configuration defaults.
func DefaultParams() Params {
	return Params{
		SigmaColor:     0.1,
		SigmaSpatial:   5,
		PatchSize:      5,
		PatchDistance:  3,
		StrengthFactor: 0.1,
		ClipLimit:      2.0,
		TileGrid:       8,
	}
}

// Result is an enhanced image. Mat is single channel float in [0,1] and is
// owned by the caller.
type Result struct {
	Method   Method
	Label    string
	Mat      *safe.Mat
	Duration time.Duration
}

func (r *Result) Close() {
	if r != nil && r.Mat != nil {
		r.Mat.Close()
	}
}

type Pipeline struct {
	chains map[Method]*chain.ProcessingChain
	logger logger.Logger
}

func NewPipeline(params Params, log logger.Logger) *Pipeline {
	gray := filters.NewGrayscaleConverter(log)
	clahe := filters.NewCLAHEFilter(params.ClipLimit, params.TileGrid, log)
	normalize := filters.NewNormalizer()

	return &Pipeline{
		chains: map[Method]*chain.ProcessingChain{
			Bilateral: chain.NewProcessingChain(
				gray,
				filters.NewBilateralFilter(params.SigmaColor, params.SigmaSpatial, log),
				clahe,
				normalize,
			),
			NLMeans: chain.NewProcessingChain(
				gray,
				filters.NewNonLocalMeansFilter(params.PatchSize, params.PatchDistance, params.StrengthFactor, log),
				clahe,
				normalize,
			),
		},
		logger: log,
	}
}

// Enhance converts src to gray, denoises it with method and equalizes the
// contrast. src is left untouched.
func (p *Pipeline) Enhance(ctx context.Context, src *safe.Mat, method Method) (*Result, error) {
	c, ok := p.chains[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q (choose %q or %q)", ErrInvalidMethod, method, Bilateral, NLMeans)
	}

	if err := safe.ValidateMatForOperation(src, "enhance"); err != nil {
		return nil, err
	}

	p.logger.Info("Enhance", "enhancing image", map[string]interface{}{
		"method": string(method),
		"steps":  c.GetStepNames(),
	})

	start := time.Now()
	out, err := c.Execute(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("enhance with %s: %w", method, err)
	}

	result := &Result{
		Method:   method,
		Label:    method.Label(),
		Mat:      out,
		Duration: time.Since(start),
	}

	p.logger.Debug("Enhance", "enhancement finished", map[string]interface{}{
		"method":      string(method),
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}
