package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions controls the drop shadow drawn behind the canvas in the
// editor window.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadow is the editor's canvas shadow.
func DefaultShadow() ShadowOptions {
	return ShadowOptions{Radius: 12, Offset: image.Pt(6, 8), Opacity: 0.45}
}

// Shadowed is a canvas composited over its shadow.
type Shadowed struct {
	Image *image.RGBA
	// Origin is where the canvas's top-left pixel sits inside Image. The
	// editor subtracts it when placing the frame so canvas coordinates stay
	// put on screen.
	Origin image.Point
}

// DropShadow composites canvas over a blurred shadow of its alpha channel.
// The returned image has a zero origin.
func DropShadow(canvas *image.RGBA, opts ShadowOptions) Shadowed {
	if canvas == nil || canvas.Bounds().Empty() || opts.Opacity <= 0 {
		return Shadowed{Image: canvas}
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	src := canvas.Bounds()
	pad := src.Inset(-radius)
	shadow := pad.Add(opts.Offset)
	all := src.Union(shadow)

	mask := image.NewAlpha(pad.Sub(pad.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			mask.SetAlpha(x-pad.Min.X, y-pad.Min.Y, color.Alpha{A: canvas.RGBAAt(x, y).A})
		}
	}
	blurAlpha(mask, radius)

	out := image.NewRGBA(all.Sub(all.Min))
	tint := image.NewUniform(color.NRGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(out, shadow.Sub(all.Min), tint, image.Point{}, mask, image.Point{}, draw.Over)
	draw.Draw(out, src.Sub(all.Min), canvas, src.Min, draw.Over)
	return Shadowed{Image: out, Origin: src.Min.Sub(all.Min)}
}

// blurAlpha applies a separable box blur in place.
func blurAlpha(m *image.Alpha, radius int) {
	if radius <= 0 {
		return
	}
	w, h := m.Rect.Dx(), m.Rect.Dy()
	line := make([]uint8, max(w, h))
	for y := 0; y < h; y++ {
		boxPass(m.Pix[y*m.Stride:], 1, w, radius, line)
	}
	for x := 0; x < w; x++ {
		boxPass(m.Pix[x:], m.Stride, h, radius, line)
	}
}

// boxPass averages n samples spaced step apart over a window of 2*radius+1,
// clamped at the edges.
func boxPass(pix []uint8, step, n, radius int, scratch []uint8) {
	sum := make([]int, n+1)
	for i := 0; i < n; i++ {
		sum[i+1] = sum[i] + int(pix[i*step])
	}
	for i := 0; i < n; i++ {
		lo := max(i-radius, 0)
		hi := min(i+radius, n-1)
		scratch[i] = uint8((sum[hi+1] - sum[lo]) / (hi - lo + 1))
	}
	for i := 0; i < n; i++ {
		pix[i*step] = scratch[i]
	}
}
