package appstate

import (
	"image"
	"math"

	"github.com/example/pixmark/internal/colors"
	"github.com/example/pixmark/internal/render"
	"github.com/example/pixmark/internal/scene"
)

// canvasOrigin is where canvas (0,0) lands in window coordinates.
func canvasOrigin() image.Point {
	return image.Pt(toolbarWidth+canvasMargin, canvasMargin)
}

// toCanvas converts a window position to canvas coordinates.
func toCanvas(x, y float32) scene.Point {
	o := canvasOrigin()
	return scene.Point{X: float64(x) - float64(o.X), Y: float64(y) - float64(o.Y)}
}

// inCanvas reports whether p lies on a canvas of the given size.
func inCanvas(p scene.Point, w, h int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < float64(w) && p.Y < float64(h)
}

// windowSize returns the window needed to show a canvas of w×h next to the
// toolbar.
func windowSize(w, h int) (int, int) {
	rects := swatchRects(len(colors.Palette))
	toolbarH := rects[len(rects)-1].Max.Y + buttonSpacing
	width := toolbarWidth + w + 2*canvasMargin
	height := max(h+2*canvasMargin, toolbarH) + bottomHeight
	return width, height
}

// pixelRect converts canvas bounds to the enclosing integer rectangle.
func pixelRect(r scene.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Min.X)), int(math.Floor(r.Min.Y)),
		int(math.Ceil(r.Max.X)), int(math.Ceil(r.Max.Y)),
	)
}

// selectionBounds returns the outline of the selected object in canvas pixels.
func selectionBounds(sc *scene.Scene) image.Rectangle {
	o, ok := sc.Selected()
	if !ok {
		return image.Rectangle{}
	}
	return pixelRect(o.Bounds(render.MeasureText))
}
