package main

import (
	"image"
	"os"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/strata-editor/strata/compositor"
)

// viewport shows the compositor's display pixmap and forwards pan/zoom
// gestures to it. The raster callback hands fyne the display's backing
// image directly; the poll loop in main triggers refreshes.
type viewport struct {
	widget.BaseWidget
	comp   *compositor.Compositor
	raster *fynecanvas.Raster
}

func newViewport(comp *compositor.Compositor) *viewport {
	v := &viewport{comp: comp}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

func (v *viewport) draw(w, h int) image.Image {
	// Raster sizes arrive in device pixels; track HiDPI changes.
	if vw, _ := v.comp.ViewportSize(); vw > 0 && w > 0 {
		v.comp.SetDevicePixelRatio(float64(w) / float64(vw))
	}
	return v.comp.Display().NRGBA()
}

func (v *viewport) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

func (v *viewport) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	v.comp.ResizeDisplay(int(size.Width), int(size.Height))
}

// Dragged pans the document with the pointer.
func (v *viewport) Dragged(ev *fyne.DragEvent) {
	v.comp.PanBy(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
}

func (v *viewport) DragEnd() {}

// Scrolled zooms around the cursor.
func (v *viewport) Scrolled(ev *fyne.ScrollEvent) {
	factor := zoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / zoomStep
	}
	v.comp.ZoomAt(float64(ev.Position.X), float64(ev.Position.Y), v.comp.Zoom()*factor)
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
