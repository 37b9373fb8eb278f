// Package scene holds the annotation model: one background image plus an
// ordered list of text and shape objects, a single selection and the active
// text color. A Scene is not safe for concurrent use; it is owned by the event
// loop that drives it.
package scene

import (
	"image"
	"image/color"

	"github.com/google/uuid"

	"github.com/example/pixmark/internal/gallery"
)

// Scene is one editing session bound to a single image.
type Scene struct {
	id     string
	record gallery.ImageRecord
	width  int
	height int

	background *image.RGBA
	objects    []Object
	selected   uint64
	textColor  color.NRGBA
	nextID     uint64

	measure  TextMeasurer
	onChange func()
}

// Option configures a Scene during creation.
type Option func(*Scene)

// WithMeasurer sets the function used to size text objects for hit testing.
func WithMeasurer(fn TextMeasurer) Option { return func(s *Scene) { s.measure = fn } }

// WithChangeListener registers a callback invoked after every mutation.
func WithChangeListener(fn func()) Option { return func(s *Scene) { s.onChange = fn } }

// New creates an empty scene for rec with a fixed canvas size.
func New(rec gallery.ImageRecord, width, height int, opts ...Option) *Scene {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s := &Scene{
		id:        uuid.NewString(),
		record:    rec,
		width:     width,
		height:    height,
		textColor: Black,
		nextID:    1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns a unique identifier for log correlation.
func (s *Scene) ID() string { return s.id }

// Record returns the image the scene was opened for.
func (s *Scene) Record() gallery.ImageRecord { return s.record }

// Size returns the canvas dimensions.
func (s *Scene) Size() (width, height int) { return s.width, s.height }

// Resize changes the canvas dimensions. Objects keep their coordinates.
func (s *Scene) Resize(width, height int) {
	s.width = max(width, 1)
	s.height = max(height, 1)
	s.changed()
}

// Background returns the scaled background bitmap, or nil while it is loading
// or after a failed load.
func (s *Scene) Background() *image.RGBA { return s.background }

// SetBackground installs an already scaled background bitmap.
func (s *Scene) SetBackground(img *image.RGBA) {
	s.background = img
	s.changed()
}

// TextColor returns the color used for the next text object.
func (s *Scene) TextColor() color.NRGBA { return s.textColor }

// Len returns the number of objects.
func (s *Scene) Len() int { return len(s.objects) }

// Objects returns a copy of the objects in z-order, bottom first.
func (s *Scene) Objects() []Object {
	out := make([]Object, len(s.objects))
	for i, o := range s.objects {
		out[i] = o.clone()
	}
	return out
}

// Selected returns the selected object, if any.
func (s *Scene) Selected() (Object, bool) {
	idx := s.indexOf(s.selected)
	if idx < 0 {
		return Object{}, false
	}
	return s.objects[idx].clone(), true
}

// AddText inserts a text object using the active text color and selects it.
func (s *Scene) AddText() Object {
	return s.insert(newText(s.textColor))
}

// AddShape inserts a shape by name and selects it. Unknown names leave the
// scene untouched and return false.
func (s *Scene) AddShape(name string) (Object, bool) {
	k, ok := ParseKind(name)
	if !ok {
		return Object{}, false
	}
	return s.AddKind(k)
}

// AddKind inserts a shape of kind k with its default geometry and selects it.
func (s *Scene) AddKind(k Kind) (Object, bool) {
	o, ok := newShape(k)
	if !ok {
		return Object{}, false
	}
	return s.insert(o), true
}

func (s *Scene) insert(o Object) Object {
	o.id = s.nextID
	s.nextID++
	s.objects = append(s.objects, o)
	s.selectIndex(len(s.objects) - 1)
	s.changed()
	return o.clone()
}

// Select makes the object with the given id the selection. Ids that are not
// part of the scene are ignored.
func (s *Scene) Select(id uint64) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.selectIndex(idx)
	s.changed()
	return true
}

// ClearSelection empties the selection and resets the text color to black.
func (s *Scene) ClearSelection() {
	s.selected = 0
	s.textColor = Black
	s.changed()
}

// SelectAt selects the topmost object under p, or clears the selection when
// p hits nothing.
func (s *Scene) SelectAt(p Point) (Object, bool) {
	idx := s.hitIndex(p)
	if idx < 0 {
		s.ClearSelection()
		return Object{}, false
	}
	s.selectIndex(idx)
	s.changed()
	return s.objects[idx].clone(), true
}

// HitTest returns the topmost object whose bounds contain p.
func (s *Scene) HitTest(p Point) (Object, bool) {
	idx := s.hitIndex(p)
	if idx < 0 {
		return Object{}, false
	}
	return s.objects[idx].clone(), true
}

func (s *Scene) hitIndex(p Point) int {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].Bounds(s.measure).Contains(p) {
			return i
		}
	}
	return -1
}

func (s *Scene) selectIndex(idx int) {
	o := s.objects[idx]
	s.selected = o.id
	switch o.Kind {
	case KindText:
		s.textColor = o.Fill
	case KindTriangle, KindCircle, KindRectangle, KindPolygon:
	}
}

// SetTextColor sets the active text color. A selected text object is
// recolored too; a selected shape keeps its fill.
func (s *Scene) SetTextColor(c color.NRGBA) {
	s.textColor = c
	if idx := s.indexOf(s.selected); idx >= 0 {
		switch s.objects[idx].Kind {
		case KindText:
			s.objects[idx].Fill = c
		case KindTriangle, KindCircle, KindRectangle, KindPolygon:
		}
	}
	s.changed()
}

// DeleteSelected removes the selected object and clears the selection. It
// returns false when nothing was selected.
func (s *Scene) DeleteSelected() bool {
	idx := s.indexOf(s.selected)
	if idx < 0 {
		return false
	}
	s.objects = append(s.objects[:idx], s.objects[idx+1:]...)
	s.selected = 0
	s.textColor = Black
	s.changed()
	return true
}

// MoveSelected translates the selected object by (dx, dy).
func (s *Scene) MoveSelected(dx, dy float64) bool {
	idx := s.indexOf(s.selected)
	if idx < 0 {
		return false
	}
	s.objects[idx].X += dx
	s.objects[idx].Y += dy
	s.changed()
	return true
}

// SetSelectedText replaces the content of the selected text object.
func (s *Scene) SetSelectedText(text string) bool {
	idx := s.indexOf(s.selected)
	if idx < 0 || s.objects[idx].Kind != KindText {
		return false
	}
	s.objects[idx].Text = text
	s.changed()
	return true
}

func (s *Scene) indexOf(id uint64) int {
	if id == 0 {
		return -1
	}
	for i := range s.objects {
		if s.objects[i].id == id {
			return i
		}
	}
	return -1
}

func (s *Scene) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Snapshot is a read-only copy of the renderable state of a scene.
type Snapshot struct {
	Width      int
	Height     int
	Background *image.RGBA
	Objects    []Object
	Selected   uint64
}

// Snapshot copies the state needed to render the scene. The background bitmap
// is shared and must be treated as read-only.
func (s *Scene) Snapshot() Snapshot {
	return Snapshot{
		Width:      s.width,
		Height:     s.height,
		Background: s.background,
		Objects:    s.Objects(),
		Selected:   s.selected,
	}
}
