package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/example/pixmark/internal/logging"
	"github.com/example/pixmark/internal/scene"
)

// DefaultFilename is the name offered for exported images.
const DefaultFilename = "edited-image.png"

var (
	ErrNoScene     = errors.New("no scene")
	ErrEmptyCanvas = errors.New("canvas has no area")
)

// ExportError reports a failure while producing the export artifact.
type ExportError struct {
	Op  string
	Err error
}

func (e *ExportError) Error() string { return fmt.Sprintf("export: %s: %v", e.Op, e.Err) }

func (e *ExportError) Unwrap() error { return e.Err }

// Artifact is an encoded export.
type Artifact struct {
	Name string
	Data []byte
}

// Image decodes the exported PNG.
func (a Artifact) Image() (image.Image, error) {
	return png.Decode(bytes.NewReader(a.Data))
}

// ScaleBackground stretches src to exactly w x h.
func ScaleBackground(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if src == nil {
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Flatten draws the background and every object of snap, bottom first, onto
// a new canvas. Selection state is not drawn.
func Flatten(snap scene.Snapshot) (*image.RGBA, error) {
	if snap.Width <= 0 || snap.Height <= 0 {
		return nil, ErrEmptyCanvas
	}
	canvas := image.NewRGBA(image.Rect(0, 0, snap.Width, snap.Height))
	if snap.Background != nil {
		draw.Draw(canvas, canvas.Bounds(), snap.Background, snap.Background.Bounds().Min, draw.Src)
	}
	if len(snap.Objects) == 0 {
		return canvas, nil
	}
	dc := gg.NewContextForRGBA(canvas)
	for _, o := range snap.Objects {
		if err := drawObject(dc, o); err != nil {
			return nil, fmt.Errorf("draw %s: %w", o.Kind, err)
		}
	}
	return canvas, nil
}

func drawObject(dc *gg.Context, o scene.Object) error {
	dc.SetColor(o.Fill)
	switch o.Kind {
	case scene.KindText:
		return drawText(dc, o)
	case scene.KindTriangle:
		dc.MoveTo(o.X+o.W/2, o.Y)
		dc.LineTo(o.X+o.W, o.Y+o.H)
		dc.LineTo(o.X, o.Y+o.H)
		dc.ClosePath()
	case scene.KindCircle:
		dc.DrawCircle(o.X+o.Radius, o.Y+o.Radius, o.Radius)
	case scene.KindRectangle:
		dc.DrawRectangle(o.X, o.Y, o.W, o.H)
	case scene.KindPolygon:
		if len(o.Points) < 3 {
			return nil
		}
		for i, p := range o.Points {
			if i == 0 {
				dc.MoveTo(o.X+p.X, o.Y+p.Y)
			} else {
				dc.LineTo(o.X+p.X, o.Y+p.Y)
			}
		}
		dc.ClosePath()
	}
	dc.Fill()
	return nil
}

func drawText(dc *gg.Context, o scene.Object) error {
	if o.Text == "" || o.FontSize <= 0 {
		return nil
	}
	face, err := NewFace(o.FontSize)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := face.Close(); cerr != nil {
			logging.Logger().Warn("render: close face", "err", cerr)
		}
	}()
	dc.SetFontFace(face)
	step := LineHeight * o.FontSize
	for i, line := range strings.Split(o.Text, "\n") {
		dc.DrawStringAnchored(line, o.X, o.Y+float64(i)*step, 0, 1)
	}
	return nil
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Export flattens snap and encodes it as a PNG artifact.
func Export(snap scene.Snapshot) (art Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			art = Artifact{}
			err = &ExportError{Op: "rasterize", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	img, err := Flatten(snap)
	if err != nil {
		return Artifact{}, &ExportError{Op: "rasterize", Err: err}
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return Artifact{}, &ExportError{Op: "encode", Err: err}
	}
	logging.Logger().Info("render: exported", "width", snap.Width, "height", snap.Height, "objects", len(snap.Objects), "bytes", buf.Len())
	return Artifact{Name: DefaultFilename, Data: buf.Bytes()}, nil
}

// ExportScene exports the current state of sc without modifying it.
func ExportScene(sc *scene.Scene) (Artifact, error) {
	if sc == nil {
		return Artifact{}, &ExportError{Op: "snapshot", Err: ErrNoScene}
	}
	return Export(sc.Snapshot())
}
