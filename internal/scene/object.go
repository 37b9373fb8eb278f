package scene

import (
	"fmt"
	"image/color"
	"strings"
)

// Kind identifies the shape of an Object.
type Kind int

const (
	KindText Kind = iota
	KindTriangle
	KindCircle
	KindRectangle
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTriangle:
		return "triangle"
	case KindCircle:
		return "circle"
	case KindRectangle:
		return "rectangle"
	case KindPolygon:
		return "polygon"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a shape name to its Kind. Text is not a shape and is not
// accepted here.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "triangle":
		return KindTriangle, true
	case "circle":
		return KindCircle, true
	case "rectangle", "rect":
		return KindRectangle, true
	case "polygon":
		return KindPolygon, true
	default:
		return 0, false
	}
}

// Point is a position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis aligned box in canvas coordinates.
type Rect struct {
	Min, Max Point
}

// Contains reports whether p lies inside r. The max edges are inclusive so a
// click on the outline still hits.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Object is one annotation placed on a scene. Only the fields relevant to its
// Kind are meaningful.
type Object struct {
	Kind Kind
	X, Y float64
	Fill color.NRGBA

	// KindText
	Text     string
	FontSize float64

	// KindTriangle, KindRectangle
	W, H float64

	// KindCircle
	Radius float64

	// KindPolygon, offsets from (X, Y)
	Points []Point

	id uint64
}

// ID returns the scene-local identity of the object. It is stable for the
// lifetime of the object and never reused within a scene.
func (o Object) ID() uint64 { return o.id }

// IsText reports whether the object is a text annotation.
func (o Object) IsText() bool { return o.Kind == KindText }

const (
	DefaultText     = "Edit me"
	DefaultFontSize = 20
	DefaultX        = 100
	DefaultY        = 100
)

// Default fills for new shapes. Alpha 0.5 is stored as 128.
var (
	TriangleFill  = color.NRGBA{R: 255, A: 128}
	CircleFill    = color.NRGBA{G: 255, A: 128}
	RectangleFill = color.NRGBA{B: 255, A: 128}
	PolygonFill   = color.NRGBA{R: 255, G: 255, A: 128}

	// Black is the default text color.
	Black = color.NRGBA{A: 255}
)

func newText(fill color.NRGBA) Object {
	return Object{
		Kind:     KindText,
		X:        DefaultX,
		Y:        DefaultY,
		Fill:     fill,
		Text:     DefaultText,
		FontSize: DefaultFontSize,
	}
}

func newShape(k Kind) (Object, bool) {
	o := Object{Kind: k, X: DefaultX, Y: DefaultY}
	switch k {
	case KindTriangle:
		o.W, o.H = 100, 100
		o.Fill = TriangleFill
	case KindCircle:
		o.Radius = 50
		o.Fill = CircleFill
	case KindRectangle:
		o.W, o.H = 100, 100
		o.Fill = RectangleFill
	case KindPolygon:
		o.Points = []Point{{0, 0}, {100, 0}, {50, 100}}
		o.Fill = PolygonFill
	case KindText:
		// Text is not a shape; it is built by newText.
		return Object{}, false
	default:
		return Object{}, false
	}
	return o, true
}

// TextMeasurer returns the rendered width and height of text at a font size.
type TextMeasurer func(text string, size float64) (w, h float64)

// approxMeasure is used when no font backed measurer is configured.
func approxMeasure(text string, size float64) (float64, float64) {
	return 0.55 * size * float64(len([]rune(text))), 1.2 * size
}

// Bounds returns the bounding box of the object.
func (o Object) Bounds(measure TextMeasurer) Rect {
	switch o.Kind {
	case KindText:
		if measure == nil {
			measure = approxMeasure
		}
		w, h := measure(o.Text, o.FontSize)
		return Rect{Point{o.X, o.Y}, Point{o.X + w, o.Y + h}}
	case KindTriangle, KindRectangle:
		return Rect{Point{o.X, o.Y}, Point{o.X + o.W, o.Y + o.H}}
	case KindCircle:
		d := 2 * o.Radius
		return Rect{Point{o.X, o.Y}, Point{o.X + d, o.Y + d}}
	case KindPolygon:
		if len(o.Points) == 0 {
			return Rect{Point{o.X, o.Y}, Point{o.X, o.Y}}
		}
		r := Rect{o.Points[0], o.Points[0]}
		for _, p := range o.Points[1:] {
			r.Min.X = min(r.Min.X, p.X)
			r.Min.Y = min(r.Min.Y, p.Y)
			r.Max.X = max(r.Max.X, p.X)
			r.Max.Y = max(r.Max.Y, p.Y)
		}
		r.Min.X += o.X
		r.Max.X += o.X
		r.Min.Y += o.Y
		r.Max.Y += o.Y
		return r
	default:
		return Rect{Point{o.X, o.Y}, Point{o.X, o.Y}}
	}
}

// clone returns a deep copy so callers cannot alias the scene's vertex slices.
func (o Object) clone() Object {
	if o.Points != nil {
		pts := make([]Point, len(o.Points))
		copy(pts, o.Points)
		o.Points = pts
	}
	return o
}
