package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/scene"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: 40, A: 255}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func white(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func TestExportWithoutObjectsMatchesBackground(t *testing.T) {
	bg := ScaleBackground(checker(64, 48), 32, 24)
	art, err := Export(scene.Snapshot{Width: 32, Height: 24, Background: bg})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Name != DefaultFilename {
		t.Errorf("name = %q", art.Name)
	}
	got, err := png.Decode(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Bounds() != bg.Bounds() {
		t.Fatalf("bounds %v, want %v", got.Bounds(), bg.Bounds())
	}
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			r1, g1, b1, a1 := got.At(x, y).RGBA()
			r2, g2, b2, a2 := bg.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) differs", x, y)
			}
		}
	}
}

func TestFlattenDrawsShapesInOrder(t *testing.T) {
	sc := scene.New(gallery.ImageRecord{}, 300, 300)
	sc.SetBackground(white(300, 300))
	sc.AddShape("rectangle")
	sc.AddShape("circle")

	img, err := Flatten(sc.Snapshot())
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	// the circle is on top of the rectangle at its center
	c := img.RGBAAt(150, 150)
	if c.G < 100 || c.A != 255 {
		t.Errorf("center pixel %+v should be green tinted", c)
	}
	// rectangle corner is outside the circle
	r := img.RGBAAt(102, 102)
	if r.B < 200 || r.R > 160 {
		t.Errorf("corner pixel %+v should be blue tinted", r)
	}
	// outside everything
	if o := img.RGBAAt(10, 10); o != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background pixel %+v changed", o)
	}
	if sc.Len() != 2 {
		t.Errorf("flatten mutated scene")
	}
}

func TestFlattenDrawsText(t *testing.T) {
	sc := scene.New(gallery.ImageRecord{}, 300, 200)
	sc.SetBackground(white(300, 200))
	sc.AddText()
	img, err := Flatten(sc.Snapshot())
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	w, h := MeasureText(scene.DefaultText, scene.DefaultFontSize)
	dark := 0
	for y := 100; y < 100+int(h); y++ {
		for x := 100; x < 100+int(w); x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("expected text pixels")
	}
}

func TestFlattenTransparentWithoutBackground(t *testing.T) {
	img, err := Flatten(scene.Snapshot{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if img.RGBAAt(1, 1).A != 0 {
		t.Error("expected transparent canvas")
	}
}

func TestExportErrors(t *testing.T) {
	_, err := Export(scene.Snapshot{})
	var ee *ExportError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExportError, got %v", err)
	}
	if !errors.Is(err, ErrEmptyCanvas) {
		t.Errorf("expected ErrEmptyCanvas, got %v", err)
	}

	_, err = ExportScene(nil)
	if !errors.Is(err, ErrNoScene) {
		t.Errorf("expected ErrNoScene, got %v", err)
	}
}

func TestScaleBackgroundSize(t *testing.T) {
	got := ScaleBackground(checker(100, 50), 40, 30)
	if got.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Errorf("bounds = %v", got.Bounds())
	}
	if ScaleBackground(nil, 2, 2).Bounds().Dx() != 2 {
		t.Error("nil source should still produce a canvas")
	}
}

func TestMeasureText(t *testing.T) {
	w1, h1 := MeasureText("Edit", 20)
	w2, _ := MeasureText("Edit me please", 20)
	if w1 <= 0 || w2 <= w1 {
		t.Errorf("widths %v %v", w1, w2)
	}
	_, h2 := MeasureText("a\nb", 20)
	if h2 <= h1 {
		t.Errorf("two lines should be taller: %v vs %v", h2, h1)
	}
}

func TestArtifactImageIncludesObjects(t *testing.T) {
	sc := scene.New(gallery.ImageRecord{}, 300, 300)
	sc.SetBackground(white(300, 300))
	sc.AddShape("circle")
	art, err := ExportScene(sc)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	img, err := art.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 300, 300) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if c := color.NRGBAModel.Convert(img.At(150, 150)).(color.NRGBA); c.R > 160 || c.G < 200 {
		t.Errorf("circle pixel %+v missing from decoded export", c)
	}

	if _, err := (Artifact{Data: []byte("not a png")}).Image(); err == nil {
		t.Error("decoding garbage should fail")
	}
}
