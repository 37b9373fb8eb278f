package appstate

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/pixmark/internal/clipboard"
	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/input"
	"github.com/example/pixmark/internal/notify"
	"github.com/example/pixmark/internal/render"
	"github.com/example/pixmark/internal/scene"
	"github.com/example/pixmark/internal/surface"
)

const messageDuration = 4 * time.Second

// Toolbar and shortcut actions.
const (
	ActionText      = "text"
	ActionTriangle  = "triangle"
	ActionCircle    = "circle"
	ActionRectangle = "rectangle"
	ActionPolygon   = "polygon"
	ActionDelete    = "delete"
	ActionDeselect  = "deselect"
	ActionSave      = "save"
	ActionCopy      = "copy"
)

var (
	writeFile    = os.WriteFile
	copyPNG      = clipboard.WritePNG
	notifyExport = (*notify.Notifier).Export
)

// Editor turns window input into scene edits. It owns the surface and must
// only be used from the event loop.
type Editor struct {
	surface  *surface.Surface
	bus      *input.Bus
	output   string
	notifier *notify.Notifier
	now      func() time.Time

	message      string
	messageUntil time.Time

	editing  bool
	editBuf  string
	dragging bool
	dragLast scene.Point
}

// NewEditor builds an editor around a fresh surface. dispatch must run its
// argument on the event loop.
func NewEditor(fetcher surface.Fetcher, dispatch surface.Dispatcher, output string, n *notify.Notifier) *Editor {
	e := &Editor{
		bus:      &input.Bus{},
		output:   output,
		notifier: n,
		now:      time.Now,
	}
	e.surface = surface.New(fetcher, dispatch,
		surface.WithKeyBus(e.bus),
		surface.WithSceneOptions(scene.WithMeasurer(render.MeasureText)),
		surface.OnError(func(_ *scene.Scene, err error) { e.flash(err.Error()) }),
	)
	return e
}

// Open starts editing rec. Any previous scene is discarded.
func (e *Editor) Open(ctx context.Context, rec gallery.ImageRecord, vp surface.Viewport) *scene.Scene {
	e.stopEditing(false)
	e.dragging = false
	return e.surface.Open(ctx, rec, vp)
}

// Close discards the scene.
func (e *Editor) Close() {
	e.stopEditing(false)
	e.surface.Close()
}

// Scene returns the live scene or nil.
func (e *Editor) Scene() *scene.Scene { return e.surface.Scene() }

// Loading reports whether the background is still being fetched.
func (e *Editor) Loading() bool { return e.surface.Loading() }

// Message returns the status message if it has not expired.
func (e *Editor) Message() string {
	if e.message == "" || !e.now().Before(e.messageUntil) {
		return ""
	}
	return e.message
}

// DismissMessage hides the status message.
func (e *Editor) DismissMessage() { e.messageUntil = time.Time{} }

func (e *Editor) flash(msg string) {
	e.message = msg
	e.messageUntil = e.now().Add(messageDuration)
}

// Editing reports whether text entry is active and returns the pending text.
func (e *Editor) Editing() (bool, string) { return e.editing, e.editBuf }

// Do runs a toolbar action.
func (e *Editor) Do(action string) {
	sc := e.Scene()
	if sc == nil {
		return
	}
	e.stopEditing(true)
	switch action {
	case ActionText:
		sc.AddText()
	case ActionTriangle, ActionCircle, ActionRectangle, ActionPolygon:
		sc.AddShape(action)
	case ActionDelete:
		sc.DeleteSelected()
	case ActionDeselect:
		sc.ClearSelection()
	case ActionSave:
		if path, err := e.Save(); err != nil {
			e.flash(err.Error())
		} else {
			e.flash("saved " + path)
		}
	case ActionCopy:
		if err := e.Copy(); err != nil {
			e.flash(err.Error())
		} else {
			e.flash("copied to clipboard")
		}
	default:
		log.Printf("unknown action %q", action)
	}
}

// SetTextColor changes the active text color.
func (e *Editor) SetTextColor(c color.NRGBA) {
	if sc := e.Scene(); sc != nil {
		sc.SetTextColor(c)
	}
}

// Press handles a mouse press at canvas point p.
func (e *Editor) Press(p scene.Point) {
	sc := e.Scene()
	if sc == nil {
		return
	}
	e.stopEditing(true)
	_, hit := sc.SelectAt(p)
	e.dragging = hit
	e.dragLast = p
}

// Drag moves the object grabbed by Press.
func (e *Editor) Drag(p scene.Point) bool {
	sc := e.Scene()
	if sc == nil || !e.dragging {
		return false
	}
	moved := sc.MoveSelected(p.X-e.dragLast.X, p.Y-e.dragLast.Y)
	e.dragLast = p
	return moved
}

// Release ends a drag.
func (e *Editor) Release() { e.dragging = false }

// DoubleClick starts text entry on a text object under p.
func (e *Editor) DoubleClick(p scene.Point) {
	sc := e.Scene()
	if sc == nil {
		return
	}
	if o, ok := sc.SelectAt(p); ok && o.IsText() {
		e.startEditing(o)
	}
}

func (e *Editor) startEditing(o scene.Object) {
	e.editing = true
	e.editBuf = o.Text
}

func (e *Editor) stopEditing(commit bool) {
	if !e.editing {
		return
	}
	e.editing = false
	if commit {
		if sc := e.Scene(); sc != nil {
			sc.SetSelectedText(e.editBuf)
		}
	}
	e.editBuf = ""
}

// Key handles a key event and reports whether it changed anything.
func (e *Editor) Key(ev key.Event) bool {
	sc := e.Scene()
	if sc == nil || ev.Direction == key.DirRelease {
		return false
	}
	if e.editing {
		return e.editKey(ev)
	}
	if e.bus.Dispatch(ev) {
		return true
	}
	ctrl := ev.Modifiers&key.ModControl != 0
	step := 1.0
	if ev.Modifiers&key.ModShift != 0 {
		step = 10
	}
	switch {
	case ctrl && ev.Code == key.CodeS:
		e.Do(ActionSave)
	case ctrl && ev.Code == key.CodeC:
		e.Do(ActionCopy)
	case ev.Code == key.CodeEscape:
		sc.ClearSelection()
	case ev.Code == key.CodeReturnEnter:
		o, ok := sc.Selected()
		if !ok || !o.IsText() {
			return false
		}
		e.startEditing(o)
	case ev.Code == key.CodeLeftArrow:
		return sc.MoveSelected(-step, 0)
	case ev.Code == key.CodeRightArrow:
		return sc.MoveSelected(step, 0)
	case ev.Code == key.CodeUpArrow:
		return sc.MoveSelected(0, -step)
	case ev.Code == key.CodeDownArrow:
		return sc.MoveSelected(0, step)
	case ctrl:
		return false
	case ev.Rune == 't':
		e.Do(ActionText)
	case ev.Rune == '1':
		e.Do(ActionTriangle)
	case ev.Rune == '2':
		e.Do(ActionCircle)
	case ev.Rune == '3':
		e.Do(ActionRectangle)
	case ev.Rune == '4':
		e.Do(ActionPolygon)
	default:
		return false
	}
	return true
}

func (e *Editor) editKey(ev key.Event) bool {
	switch ev.Code {
	case key.CodeEscape:
		e.stopEditing(false)
	case key.CodeReturnEnter:
		if ev.Modifiers&key.ModShift != 0 {
			e.editBuf += "\n"
		} else {
			e.stopEditing(true)
		}
	case key.CodeDeleteBackspace:
		if r := []rune(e.editBuf); len(r) > 0 {
			e.editBuf = string(r[:len(r)-1])
		}
	default:
		if ev.Rune < 0 || !unicode.IsPrint(ev.Rune) {
			return false
		}
		e.editBuf += string(ev.Rune)
	}
	return true
}

// Save exports the scene to the output path and returns the path written.
func (e *Editor) Save() (string, error) {
	art, err := render.ExportScene(e.Scene())
	if err != nil {
		return "", err
	}
	path := e.output
	if path == "" {
		path = art.Name
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, art.Name)
	}
	if err := writeFile(path, art.Data, 0o644); err != nil {
		return "", &render.ExportError{Op: "write", Err: err}
	}
	preview, err := art.Image()
	if err != nil {
		log.Printf("export preview: %v", err)
	}
	notifyExport(e.notifier, path, preview)
	return path, nil
}

// Copy puts the exported PNG on the clipboard.
func (e *Editor) Copy() error {
	art, err := render.ExportScene(e.Scene())
	if err != nil {
		return err
	}
	if err := copyPNG(art.Data); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	e.notifier.Copy(art.Name)
	return nil
}

// LoadErr returns the background load error of the scene, if any.
func (e *Editor) LoadErr() error {
	var le *surface.ImageLoadError
	if err := e.surface.Err(); errors.As(err, &le) {
		return le
	}
	return nil
}
