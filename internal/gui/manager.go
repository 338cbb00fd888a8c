// Package gui is the Fyne display surface: a 2x3 grid of titled image panels
// above the threshold slider and the navigation buttons.
package gui

import (
	"fmt"
	"image"

	"mri-enhancer/internal/browser"
	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/conversion"
	"mri-enhancer/internal/opencv/safe"
	"mri-enhancer/internal/processing/enhance"
	"mri-enhancer/internal/processing/histogram"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

const DefaultMaxPanelSize = 512

// Manager renders browser views into the window and turns widget callbacks
// into browser events. Fyne runs every callback on its event goroutine, so
// Render touches widgets directly.
type Manager struct {
	window       fyne.Window
	logger       logger.Logger
	maxPanelSize int
	isShutdown   bool

	panels     [browser.GridRows * browser.GridCols]*ImagePanel
	grid       *fyne.Container
	controls   *Controls
	histograms map[uint64]*histogram.Histogram

	eventHandler func(browser.Event) error
}

func NewManager(window fyne.Window, log logger.Logger, threshold float64, maxPanelSize int) *Manager {
	if maxPanelSize <= 0 {
		maxPanelSize = DefaultMaxPanelSize
	}

	m := &Manager{
		window:       window,
		logger:       log,
		maxPanelSize: maxPanelSize,
		controls:     NewControls(threshold),
		histograms:   make(map[uint64]*histogram.Histogram),
	}

	cells := make([]fyne.CanvasObject, len(m.panels))
	for i := range m.panels {
		m.panels[i] = NewImagePanel("")
		cells[i] = m.panels[i].GetContainer()
	}
	m.grid = container.NewGridWithColumns(browser.GridCols, cells...)

	log.Info("GUIManager", "initialized panel grid", map[string]interface{}{
		"rows":           browser.GridRows,
		"cols":           browser.GridCols,
		"max_panel_size": maxPanelSize,
	})

	return m
}

func (m *Manager) GetMainContainer() *fyne.Container {
	return container.NewBorder(nil, m.controls.GetContainer(), nil, nil, m.grid)
}

// SetEventHandler routes the slider, the buttons and the Left/Right keys to
// handler. Handler errors are logged and shown in a dialog.
func (m *Manager) SetEventHandler(handler func(browser.Event) error) {
	m.eventHandler = handler

	m.controls.SetThresholdHandler(func(value float64) {
		m.dispatch(browser.Threshold(value))
	})
	m.controls.SetPreviousHandler(func() {
		m.dispatch(browser.Previous())
	})
	m.controls.SetNextHandler(func() {
		m.dispatch(browser.Next())
	})

	if m.window != nil {
		m.window.Canvas().SetOnTypedKey(m.handleKey)
	}
}

func (m *Manager) handleKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyLeft:
		m.dispatch(browser.Previous())
	case fyne.KeyRight:
		m.dispatch(browser.Next())
	}
}

func (m *Manager) dispatch(ev browser.Event) {
	if m.eventHandler == nil || m.isShutdown {
		return
	}

	m.logger.Debug("GUIManager", "user event", map[string]interface{}{
		"event": ev.Kind.String(),
		"value": ev.Value,
	})

	if err := m.eventHandler(ev); err != nil {
		if ev.Kind == browser.EventThreshold {
			m.controls.SetCutoff(m.controls.Applied())
		}
		m.ShowError(fmt.Sprintf("%s failed", ev.Kind), err)
	}
}

// Render implements browser.Renderer.
func (m *Manager) Render(view browser.View) error {
	if m.isShutdown {
		return nil
	}

	for _, p := range view.Panels {
		panel := m.panels[p.Kind]
		panel.SetTitle(p.Title)

		var (
			img image.Image
			err error
		)
		if p.Kind == browser.PanelHistogram {
			img, err = m.renderHistogram(view)
		} else {
			img, err = m.displayImage(p.Mat)
		}
		if err != nil {
			return fmt.Errorf("panel %q: %w", p.Title, err)
		}
		panel.SetImage(img)
	}

	m.controls.SetPosition(view.Status(), view.Index > 0, view.Index < view.Count-1)
	m.controls.SetCutoff(view.Cutoff)

	m.logger.Debug("GUIManager", "view rendered", map[string]interface{}{
		"index":  view.Index,
		"name":   view.Name,
		"cutoff": view.Cutoff,
	})
	return nil
}

func (m *Manager) displayImage(mat *safe.Mat) (image.Image, error) {
	if mat == nil {
		return nil, nil
	}
	img, err := conversion.ToImage(mat)
	if err != nil {
		return nil, err
	}
	return conversion.Fit(img, m.maxPanelSize), nil
}

// renderHistogram plots the enhanced images of view. Histograms are kept per
// Mat ID so that threshold changes only redraw the cutoff marker.
func (m *Manager) renderHistogram(view browser.View) (image.Image, error) {
	live := make(map[uint64]bool, len(view.Enhanced))
	var series []histogram.Series

	for _, method := range enhance.Methods {
		mat := view.Enhanced[method]
		if mat == nil {
			continue
		}
		live[mat.ID()] = true

		h, ok := m.histograms[mat.ID()]
		if !ok {
			var err error
			h, err = histogram.Compute(mat, histogram.DefaultBins)
			if err != nil {
				return nil, err
			}
			m.histograms[mat.ID()] = h
		}
		series = append(series, histogram.Series{Name: method.Label(), Histogram: h})
	}

	for id := range m.histograms {
		if !live[id] {
			delete(m.histograms, id)
		}
	}

	if len(series) == 0 {
		return nil, nil
	}
	return histogram.Render(series, view.Cutoff, m.maxPanelSize, m.maxPanelSize*3/4)
}

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})

	if m.window != nil {
		dialog.ShowError(err, m.window)
	}
}

func (m *Manager) Shutdown() {
	if m.isShutdown {
		return
	}

	m.isShutdown = true
	m.histograms = nil
	m.logger.Info("GUIManager", "shutdown initiated", nil)
}

func formatThreshold(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
