// Package browser holds the image browsing state: which image is selected,
// its cached enhancements and the current threshold masks.
package browser

import (
	"context"
	"fmt"

	"mri-enhancer/internal/imageset"
	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"
	"mri-enhancer/internal/processing/enhance"
	"mri-enhancer/internal/processing/threshold"
)

// DefaultThreshold is the initial slider position.
const DefaultThreshold = 0.5

// Enhancer produces the enhanced image for one method.
type Enhancer interface {
	Enhance(ctx context.Context, src *safe.Mat, method enhance.Method) (*enhance.Result, error)
}

// Session is the view-model behind the display. Enhanced and segmented
// images always belong to the image at index.
type Session struct {
	images   *imageset.Collection
	enhancer Enhancer
	renderer Renderer
	logger   logger.Logger

	index     int
	cutoff    float64
	enhanced  map[enhance.Method]*enhance.Result
	segmented map[enhance.Method]*threshold.Mask
	started   bool

	handlers map[EventKind]handlerFunc
}

// NewSession fails with imageset.ErrEmptyCollection before anything touches
// index 0.
func NewSession(images *imageset.Collection, enhancer Enhancer, renderer Renderer, log logger.Logger, cutoff float64) (*Session, error) {
	if images == nil {
		return nil, imageset.ErrEmptyCollection
	}
	if err := images.Validate(); err != nil {
		return nil, err
	}
	if renderer == nil {
		renderer = NopRenderer{}
	}

	s := &Session{
		images:    images,
		enhancer:  enhancer,
		renderer:  renderer,
		logger:    log,
		cutoff:    cutoff,
		enhanced:  make(map[enhance.Method]*enhance.Result),
		segmented: make(map[enhance.Method]*threshold.Mask),
	}
	s.handlers = map[EventKind]handlerFunc{
		EventNext:      (*Session).handleNext,
		EventPrevious:  (*Session).handlePrevious,
		EventThreshold: (*Session).handleThreshold,
	}
	return s, nil
}

// Start enhances the first image and renders the initial view.
func (s *Session) Start(ctx context.Context) error {
	if s.started {
		return fmt.Errorf("session already started")
	}
	if err := s.selectIndex(ctx, 0); err != nil {
		return err
	}
	s.started = true
	return nil
}

func (s *Session) Index() int        { return s.index }
func (s *Session) Count() int        { return s.images.Len() }
func (s *Session) Cutoff() float64   { return s.cutoff }
func (s *Session) Started() bool     { return s.started }
func (s *Session) HasNext() bool     { return s.index < s.images.Len()-1 }
func (s *Session) HasPrevious() bool { return s.index > 0 }

// Enhanced returns the cached enhancement for method, nil before Start.
func (s *Session) Enhanced(method enhance.Method) *enhance.Result {
	return s.enhanced[method]
}

// Segmented returns the current mask for method, nil before Start.
func (s *Session) Segmented(method enhance.Method) *threshold.Mask {
	return s.segmented[method]
}

// Next moves forward one image. It reports false, doing nothing, at the
// last image.
func (s *Session) Next(ctx context.Context) (bool, error) {
	if !s.HasNext() {
		return false, nil
	}
	return true, s.selectIndex(ctx, s.index+1)
}

// Previous moves back one image. It reports false, doing nothing, at the
// first image.
func (s *Session) Previous(ctx context.Context) (bool, error) {
	if !s.HasPrevious() {
		return false, nil
	}
	return true, s.selectIndex(ctx, s.index-1)
}

// SetThreshold resegments the cached enhancements with cutoff. No
// enhancement is recomputed.
func (s *Session) SetThreshold(cutoff float64) error {
	if !s.started {
		return fmt.Errorf("session not started")
	}

	masks, err := s.segment(s.enhanced, cutoff)
	if err != nil {
		return err
	}

	s.cutoff = cutoff
	s.replaceMasks(masks)
	return s.render()
}

// selectIndex enhances the image at index with every method and only then
// commits, so a failure leaves the previous selection intact.
func (s *Session) selectIndex(ctx context.Context, index int) error {
	img, err := s.images.At(index)
	if err != nil {
		return err
	}

	enhanced := make(map[enhance.Method]*enhance.Result, len(enhance.Methods))
	discard := func() {
		for _, r := range enhanced {
			r.Close()
		}
	}

	for _, method := range enhance.Methods {
		result, err := s.enhancer.Enhance(ctx, img.Mat, method)
		if err != nil {
			discard()
			return fmt.Errorf("enhance %s with %s: %w", img.Name, method, err)
		}
		enhanced[method] = result
	}

	masks, err := s.segment(enhanced, s.cutoff)
	if err != nil {
		discard()
		return err
	}

	for _, r := range s.enhanced {
		r.Close()
	}
	s.enhanced = enhanced
	s.replaceMasks(masks)
	s.index = index

	s.logger.Info("Session", "image selected", map[string]interface{}{
		"index": index,
		"name":  img.Name,
		"count": s.images.Len(),
	})

	return s.render()
}

func (s *Session) segment(enhanced map[enhance.Method]*enhance.Result, cutoff float64) (map[enhance.Method]*threshold.Mask, error) {
	s.logger.Info("Session", "applying manual threshold", map[string]interface{}{
		"cutoff": cutoff,
	})

	masks := make(map[enhance.Method]*threshold.Mask, len(enhanced))
	for _, method := range enhance.Methods {
		result, ok := enhanced[method]
		if !ok {
			continue
		}
		mask, err := threshold.Apply(result.Mat, cutoff)
		if err != nil {
			for _, m := range masks {
				m.Close()
			}
			return nil, fmt.Errorf("threshold %s: %w", method, err)
		}
		masks[method] = mask
	}
	return masks, nil
}

func (s *Session) replaceMasks(masks map[enhance.Method]*threshold.Mask) {
	for _, m := range s.segmented {
		m.Close()
	}
	s.segmented = masks
}

// View describes the current state.
func (s *Session) View() View {
	img, _ := s.images.At(s.index)

	v := View{
		Index:    s.index,
		Count:    s.images.Len(),
		Name:     img.Name,
		Cutoff:   s.cutoff,
		Enhanced: make(map[enhance.Method]*safe.Mat, len(s.enhanced)),
	}
	for method, r := range s.enhanced {
		v.Enhanced[method] = r.Mat
	}

	v.Panels = [GridRows * GridCols]Panel{
		{Kind: PanelOriginal, Title: "Original Image", Mat: img.Mat},
		{Kind: PanelEnhancedBilateral, Title: "Enhanced Image - Bilateral Filter", Mat: s.enhancedMat(enhance.Bilateral)},
		{Kind: PanelEnhancedNLMeans, Title: "Enhanced Image - NL-Means", Mat: s.enhancedMat(enhance.NLMeans)},
		{Kind: PanelHistogram, Title: "Intensity Histogram"},
		{Kind: PanelSegmentedBilateral, Title: segmentedTitle("Bilateral", s.cutoff), Mat: s.maskMat(enhance.Bilateral)},
		{Kind: PanelSegmentedNLMeans, Title: segmentedTitle("NL-Means", s.cutoff), Mat: s.maskMat(enhance.NLMeans)},
	}
	return v
}

func (s *Session) enhancedMat(method enhance.Method) *safe.Mat {
	if r := s.enhanced[method]; r != nil {
		return r.Mat
	}
	return nil
}

func (s *Session) maskMat(method enhance.Method) *safe.Mat {
	if m := s.segmented[method]; m != nil {
		return m.Mat
	}
	return nil
}

func (s *Session) render() error {
	if err := s.renderer.Render(s.View()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Close releases the cached enhancements and masks. The collection is not
// closed.
func (s *Session) Close() {
	for _, r := range s.enhanced {
		r.Close()
	}
	s.replaceMasks(nil)
	s.enhanced = nil
}

// Shutdown satisfies shutdown.Shutdownable.
func (s *Session) Shutdown() {
	s.Close()
}
