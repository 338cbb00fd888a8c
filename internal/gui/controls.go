package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const ThresholdStep = 0.01

// Controls holds the threshold slider, the navigation buttons and the status
// line shown under the panel grid.
type Controls struct {
	container *fyne.Container

	Slider         *widget.Slider
	ThresholdLabel *widget.Label
	PreviousButton *widget.Button
	NextButton     *widget.Button
	StatusLabel    *widget.Label

	applied float64
}

func NewControls(threshold float64) *Controls {
	slider := widget.NewSlider(0, 1)
	slider.Step = ThresholdStep
	slider.Value = threshold

	c := &Controls{
		Slider:         slider,
		ThresholdLabel: widget.NewLabel(formatThreshold(threshold)),
		PreviousButton: widget.NewButton("Previous", nil),
		NextButton:     widget.NewButton("Next", nil),
		StatusLabel:    widget.NewLabel(""),
		applied:        threshold,
	}

	sliderRow := container.NewBorder(nil, nil,
		widget.NewLabel("Threshold Value"),
		c.ThresholdLabel,
		slider,
	)

	buttons := container.NewHBox(c.PreviousButton, c.NextButton)

	c.container = container.NewVBox(
		sliderRow,
		container.NewBorder(nil, nil, c.StatusLabel, buttons),
	)
	return c
}

func (c *Controls) GetContainer() *fyne.Container {
	return c.container
}

func (c *Controls) SetThresholdHandler(handler func(float64)) {
	c.Slider.OnChanged = handler
}

// SetCutoff shows the cutoff the session applied. The slider is moved
// without firing OnChanged.
func (c *Controls) SetCutoff(cutoff float64) {
	c.applied = cutoff
	c.ThresholdLabel.SetText(formatThreshold(cutoff))
	if c.Slider.Value != cutoff {
		c.Slider.Value = cutoff
		c.Slider.Refresh()
	}
}

// Applied is the last cutoff passed to SetCutoff.
func (c *Controls) Applied() float64 {
	return c.applied
}

func (c *Controls) SetPreviousHandler(handler func()) {
	c.PreviousButton.OnTapped = handler
}

func (c *Controls) SetNextHandler(handler func()) {
	c.NextButton.OnTapped = handler
}

// SetPosition updates the status line and enables only the moves that exist.
func (c *Controls) SetPosition(status string, hasPrevious, hasNext bool) {
	c.StatusLabel.SetText(status)
	setEnabled(c.PreviousButton, hasPrevious)
	setEnabled(c.NextButton, hasNext)
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}
