package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	PanelMinWidth  = 320
	PanelMinHeight = 240
)

// ImagePanel is one titled cell of the display grid.
type ImagePanel struct {
	container *fyne.Container
	title     *widget.Label
	image     *canvas.Image
}

func NewImagePanel(title string) *ImagePanel {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(PanelMinWidth, PanelMinHeight))

	label := widget.NewLabelWithStyle(title, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	return &ImagePanel{
		container: container.NewBorder(label, nil, nil, nil, img),
		title:     label,
		image:     img,
	}
}

func (p *ImagePanel) GetContainer() *fyne.Container {
	return p.container
}

func (p *ImagePanel) Title() string {
	return p.title.Text
}

func (p *ImagePanel) Image() image.Image {
	return p.image.Image
}

func (p *ImagePanel) SetTitle(title string) {
	if p.title.Text != title {
		p.title.SetText(title)
	}
}

func (p *ImagePanel) SetImage(img image.Image) {
	p.image.Image = img
	p.image.Refresh()
}
