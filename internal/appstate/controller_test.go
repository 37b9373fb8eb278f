package appstate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"

	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/notify"
	"github.com/example/pixmark/internal/render"
	"github.com/example/pixmark/internal/scene"
	"github.com/example/pixmark/internal/surface"
)

var testViewport = surface.Viewport{Width: 1000, Height: 800}

func newTestEditor(t *testing.T, output string) (*Editor, *scene.Scene) {
	t.Helper()
	q := surface.NewQueue()
	ed := NewEditor(nil, q.Post, output, nil)
	sc := ed.Open(context.Background(), gallery.ImageRecord{ID: 7, Width: 200, Height: 100}, testViewport)
	t.Cleanup(ed.Close)
	return ed, sc
}

func press(code key.Code) key.Event {
	return key.Event{Code: code, Rune: -1, Direction: key.DirPress}
}

func typeRune(r rune) key.Event {
	return key.Event{Rune: r, Direction: key.DirPress}
}

func TestDeleteKeyRemovesSelection(t *testing.T) {
	ed, sc := newTestEditor(t, "")
	ed.Do(ActionCircle)
	ed.Do(ActionText)
	if !ed.Key(press(key.CodeDeleteForward)) {
		t.Fatal("delete key not handled")
	}
	if sc.Len() != 1 {
		t.Fatalf("expected one object left, got %d", sc.Len())
	}
	if ed.Key(press(key.CodeDeleteForward)) {
		t.Error("delete without selection should not report a change")
	}
	if ed.Key(key.Event{Code: key.CodeDeleteForward, Direction: key.DirRelease}) {
		t.Error("release must be ignored")
	}
}

func TestShortcutsAddObjects(t *testing.T) {
	ed, sc := newTestEditor(t, "")
	for _, r := range []rune{'t', '1', '2', '3', '4'} {
		if !ed.Key(typeRune(r)) {
			t.Fatalf("rune %q not handled", r)
		}
	}
	want := []scene.Kind{scene.KindText, scene.KindTriangle, scene.KindCircle, scene.KindRectangle, scene.KindPolygon}
	objs := sc.Objects()
	if len(objs) != len(want) {
		t.Fatalf("got %d objects", len(objs))
	}
	for i, k := range want {
		if objs[i].Kind != k {
			t.Errorf("object %d kind %v, want %v", i, objs[i].Kind, k)
		}
	}
	if ed.Key(typeRune('x')) {
		t.Error("unbound rune should not be handled")
	}
}

func TestTextEditing(t *testing.T) {
	ed, sc := newTestEditor(t, "")
	ed.Do(ActionText)
	if !ed.Key(press(key.CodeReturnEnter)) {
		t.Fatal("enter should start editing")
	}
	if editing, buf := ed.Editing(); !editing || buf != scene.DefaultText {
		t.Fatalf("editing=%v buf=%q", editing, buf)
	}
	for range scene.DefaultText {
		ed.Key(press(key.CodeDeleteBackspace))
	}
	for _, r := range "Hi" {
		ed.Key(typeRune(r))
	}
	ed.Key(key.Event{Code: key.CodeReturnEnter, Modifiers: key.ModShift, Rune: -1, Direction: key.DirPress})
	ed.Key(typeRune('!'))
	// forward delete edits text, it does not remove the object
	ed.Key(press(key.CodeDeleteForward))
	if sc.Len() != 1 {
		t.Fatal("object deleted while editing")
	}
	ed.Key(press(key.CodeReturnEnter))
	if editing, _ := ed.Editing(); editing {
		t.Fatal("enter should commit")
	}
	o, _ := sc.Selected()
	if o.Text != "Hi\n!" {
		t.Errorf("text = %q", o.Text)
	}
}

func TestTextEditingCancel(t *testing.T) {
	ed, sc := newTestEditor(t, "")
	ed.Do(ActionText)
	ed.Key(press(key.CodeReturnEnter))
	ed.Key(typeRune('z'))
	ed.Key(press(key.CodeEscape))
	o, _ := sc.Selected()
	if o.Text != scene.DefaultText {
		t.Errorf("cancel kept %q", o.Text)
	}
}

func TestEnterOnShapeDoesNotEdit(t *testing.T) {
	ed, _ := newTestEditor(t, "")
	ed.Do(ActionRectangle)
	if ed.Key(press(key.CodeReturnEnter)) {
		t.Error("enter on a shape should be ignored")
	}
}

func TestArrowKeysMoveSelection(t *testing.T) {
	ed, sc := newTestEditor(t, "")
	ed.Do(ActionCircle)
	ed.Key(press(key.CodeRightArrow))
	ed.Key(key.Event{Code: key.CodeDownArrow, Modifiers: key.ModShift, Rune: -1, Direction: key.DirPress})
	o, _ := sc.Selected()
	if o.X != scene.DefaultX+1 || o.Y != scene.DefaultY+10 {
		t.Errorf("position (%v,%v)", o.X, o.Y)
	}
	ed.Key(press(key.CodeEscape))
	if _, ok := sc.Selected(); ok {
		t.Error("escape should clear the selection")
	}
}

func TestPressDragRelease(t *testing.T) {
	ed, sc := newTestEditor(t, "")
	ed.Do(ActionRectangle)
	ed.Press(scene.Point{X: 150, Y: 150})
	if !ed.Drag(scene.Point{X: 160, Y: 145}) {
		t.Fatal("drag should move the grabbed object")
	}
	ed.Release()
	if ed.Drag(scene.Point{X: 0, Y: 0}) {
		t.Error("drag after release should do nothing")
	}
	o, _ := sc.Selected()
	if o.X != 110 || o.Y != 95 {
		t.Errorf("position (%v,%v)", o.X, o.Y)
	}
	ed.Press(scene.Point{X: 5, Y: 5})
	if _, ok := sc.Selected(); ok {
		t.Error("press on empty canvas should clear selection")
	}
}

func TestDoubleClickEditsText(t *testing.T) {
	ed, _ := newTestEditor(t, "")
	ed.Do(ActionText)
	ed.DoubleClick(scene.Point{X: 102, Y: 102})
	if editing, _ := ed.Editing(); !editing {
		t.Error("double click on text should start editing")
	}
}

func TestSaveWritesPNG(t *testing.T) {
	dir := t.TempDir()
	ed, _ := newTestEditor(t, dir)
	ed.Do(ActionCircle)

	var gotPath string
	var gotData []byte
	old := writeFile
	writeFile = func(name string, data []byte, perm os.FileMode) error {
		gotPath, gotData = name, data
		return nil
	}
	defer func() { writeFile = old }()

	path, err := ed.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, render.DefaultFilename); path != want || gotPath != want {
		t.Errorf("path %q written %q, want %q", path, gotPath, want)
	}
	img, err := png.Decode(bytes.NewReader(gotData))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Errorf("bounds %v", img.Bounds())
	}
}

func TestSaveNotifiesWithExportedImage(t *testing.T) {
	q := surface.NewQueue()
	ed := NewEditor(nil, q.Post, "out.png", nil)
	ed.Open(context.Background(), gallery.ImageRecord{Width: 400, Height: 300}, testViewport)
	t.Cleanup(ed.Close)
	ed.Do(ActionCircle)

	oldWrite, oldNotify := writeFile, notifyExport
	t.Cleanup(func() { writeFile, notifyExport = oldWrite, oldNotify })
	writeFile = func(string, []byte, os.FileMode) error { return nil }
	var preview image.Image
	var notified string
	notifyExport = func(_ *notify.Notifier, path string, img image.Image) {
		notified, preview = path, img
	}

	if _, err := ed.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if notified != "out.png" {
		t.Errorf("notified %q", notified)
	}
	if preview == nil {
		t.Fatal("notification has no preview")
	}
	if c := color.NRGBAModel.Convert(preview.At(150, 150)).(color.NRGBA); c.A == 0 || c.G < 200 {
		t.Errorf("preview pixel %+v does not show the circle", c)
	}
}

func TestSaveWriteFailureFlashes(t *testing.T) {
	ed, _ := newTestEditor(t, "out.png")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ed.now = func() time.Time { return now }

	old := writeFile
	writeFile = func(string, []byte, os.FileMode) error { return errors.New("disk full") }
	defer func() { writeFile = old }()

	ed.Do(ActionSave)
	msg := ed.Message()
	if msg == "" {
		t.Fatal("expected error message")
	}
	_, err := ed.Save()
	var ee *render.ExportError
	if !errors.As(err, &ee) || ee.Op != "write" {
		t.Errorf("expected write ExportError, got %v", err)
	}

	now = now.Add(messageDuration + time.Second)
	if ed.Message() != "" {
		t.Error("message should expire")
	}
}

func TestCopyUsesClipboard(t *testing.T) {
	ed, _ := newTestEditor(t, "")
	var got []byte
	old := copyPNG
	copyPNG = func(b []byte) error { got = b; return nil }
	defer func() { copyPNG = old }()

	ed.Do(ActionCopy)
	if len(got) == 0 {
		t.Fatal("nothing copied")
	}
	if _, err := png.Decode(bytes.NewReader(got)); err != nil {
		t.Errorf("copied data is not a PNG: %v", err)
	}
	if ed.Message() != "copied to clipboard" {
		t.Errorf("message %q", ed.Message())
	}
}

func TestActionsWithoutScene(t *testing.T) {
	ed, _ := newTestEditor(t, "")
	ed.Close()
	ed.Do(ActionText)
	if ed.Key(typeRune('t')) {
		t.Error("keys without a scene should be ignored")
	}
	if _, err := ed.Save(); !errors.Is(err, render.ErrNoScene) {
		t.Errorf("Save without scene: %v", err)
	}
}

func TestSetTextColorThroughEditor(t *testing.T) {
	ed, sc := newTestEditor(t, "")
	red := color.NRGBA{R: 255, A: 255}
	ed.Do(ActionText)
	ed.SetTextColor(red)
	o, _ := sc.Selected()
	if o.Fill != red {
		t.Errorf("fill %v", o.Fill)
	}
}

func TestLoadErrReported(t *testing.T) {
	q := surface.NewQueue()
	fail := surface.FetcherFunc(func(context.Context, string) (image.Image, error) {
		return nil, errors.New("404")
	})
	ed := NewEditor(fail, q.Post, "", nil)
	ed.Open(context.Background(), gallery.ImageRecord{FullURL: "https://cdn/x.png", Width: 10, Height: 10}, testViewport)
	defer ed.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := q.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	var le *surface.ImageLoadError
	if !errors.As(ed.LoadErr(), &le) {
		t.Fatalf("expected ImageLoadError, got %v", ed.LoadErr())
	}
	if ed.Message() == "" {
		t.Error("load failure should be flashed")
	}
}
