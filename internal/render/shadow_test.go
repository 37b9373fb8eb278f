package render

import (
	"image"
	"image/color"
	"testing"
)

func TestDropShadowGrowsFrame(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 10, 10))
	canvas.Set(5, 5, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 1, Offset: image.Pt(8, 6), Opacity: 1}
	out := DropShadow(canvas, opts)
	if out.Image == nil {
		t.Fatal("expected output image")
	}
	want := image.Rect(0, 0, 19, 17)
	if !out.Image.Bounds().Eq(want) {
		t.Fatalf("bounds %v, want %v", out.Image.Bounds(), want)
	}
	if out.Origin != (image.Point{}) {
		t.Errorf("origin = %v", out.Origin)
	}
	p := image.Pt(5, 5).Add(out.Origin).Add(opts.Offset)
	if out.Image.RGBAAt(p.X, p.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", p)
	}
}

func TestDropShadowDisabled(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out := DropShadow(canvas, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10)})
	if out.Image != canvas {
		t.Fatal("zero opacity should return the canvas unchanged")
	}
	if out.Origin != (image.Point{}) {
		t.Errorf("origin = %v", out.Origin)
	}
	if DropShadow(nil, DefaultShadow()).Image != nil {
		t.Error("nil canvas should yield nil image")
	}
}

func TestDropShadowKeepsCanvasPixels(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 3, 3))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			canvas.SetRGBA(x, y, fill)
		}
	}
	out := DropShadow(canvas, ShadowOptions{Radius: 2, Offset: image.Pt(3, 3), Opacity: 1})
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			p := image.Pt(x, y).Add(out.Origin)
			if got := out.Image.RGBAAt(p.X, p.Y); got != fill {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, fill)
			}
		}
	}
}

func TestBoxPassUniform(t *testing.T) {
	pix := []uint8{90, 90, 90, 90}
	boxPass(pix, 1, len(pix), 2, make([]uint8, 4))
	for i, v := range pix {
		if v != 90 {
			t.Fatalf("pix[%d] = %d", i, v)
		}
	}
}
