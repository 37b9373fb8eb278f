package surface

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"

	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/input"
	"github.com/example/pixmark/internal/scene"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func waitQueue(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := q.Wait(ctx); err != nil {
		t.Fatalf("waiting for callback: %v", err)
	}
}

var vp = Viewport{Width: 1000, Height: 800}

func TestFitCanvas(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"scaled", 1600, 1200, 747, 560},
		{"fits", 400, 300, 400, 300},
		{"wide", 2000, 100, 800, 40},
		{"unknown", 0, 0, 800, 560},
		{"sliver", 100000, 1, 800, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitCanvas(tt.w, tt.h, vp)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitCanvas(%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestParseViewport(t *testing.T) {
	v, err := ParseViewport(" 1920x1080 ")
	if err != nil {
		t.Fatalf("ParseViewport: %v", err)
	}
	if v != (Viewport{1920, 1080}) {
		t.Errorf("got %v", v)
	}
	if v.String() != "1920x1080" {
		t.Errorf("String() = %q", v.String())
	}
	for _, bad := range []string{"", "1920", "ax3", "0x10", "10x-1"} {
		if _, err := ParseViewport(bad); err == nil {
			t.Errorf("ParseViewport(%q) should fail", bad)
		}
	}
}

func TestOpenLoadsBackground(t *testing.T) {
	q := NewQueue()
	loaded := 0
	fetch := FetcherFunc(func(ctx context.Context, src string) (image.Image, error) {
		if src != "https://cdn/full.jpg" {
			t.Errorf("fetched %q", src)
		}
		return solid(1600, 1200, color.RGBA{R: 255, A: 255}), nil
	})
	s := New(fetch, q.Post, OnLoad(func(*scene.Scene) { loaded++ }))
	sc := s.Open(context.Background(), gallery.ImageRecord{ID: 1, FullURL: "https://cdn/full.jpg", Width: 1600, Height: 1200}, vp)
	if w, h := sc.Size(); w != 747 || h != 560 {
		t.Fatalf("canvas %dx%d", w, h)
	}
	if !s.Loading() {
		t.Error("expected pending load")
	}
	sc.AddText()

	waitQueue(t, q)
	bg := sc.Background()
	if bg == nil {
		t.Fatal("background not installed")
	}
	if bg.Bounds() != image.Rect(0, 0, 747, 560) {
		t.Errorf("background bounds %v", bg.Bounds())
	}
	if loaded != 1 || s.Loading() || s.Err() != nil {
		t.Errorf("loaded=%d loading=%v err=%v", loaded, s.Loading(), s.Err())
	}
	if sc.Len() != 1 {
		t.Error("objects added before load must survive")
	}
}

func TestOpenLoadFailure(t *testing.T) {
	q := NewQueue()
	boom := errors.New("boom")
	var reported error
	fetch := FetcherFunc(func(ctx context.Context, src string) (image.Image, error) { return nil, boom })
	s := New(fetch, q.Post, OnError(func(_ *scene.Scene, err error) { reported = err }))
	sc := s.Open(context.Background(), gallery.ImageRecord{FullURL: "https://cdn/x.jpg", Width: 10, Height: 10}, vp)
	sc.AddShape("circle")
	waitQueue(t, q)

	var le *ImageLoadError
	if !errors.As(s.Err(), &le) {
		t.Fatalf("expected ImageLoadError, got %v", s.Err())
	}
	if le.URL != "https://cdn/x.jpg" || !errors.Is(le, boom) {
		t.Errorf("unexpected error %+v", le)
	}
	if reported != s.Err() {
		t.Errorf("OnError got %v", reported)
	}
	if sc.Background() != nil {
		t.Error("background should stay empty")
	}
	if _, ok := sc.Selected(); !ok || sc.Len() != 1 {
		t.Error("objects and selection must be untouched")
	}
}

func TestOpenUnknownSizeKeepsAspect(t *testing.T) {
	q := NewQueue()
	fetch := FetcherFunc(func(ctx context.Context, src string) (image.Image, error) {
		return solid(400, 400, color.RGBA{R: 10, A: 255}), nil
	})
	s := New(fetch, q.Post)
	sc := s.Open(context.Background(), gallery.ImageRecord{FullURL: "https://cdn/square.jpg"}, vp)
	if w, h := sc.Size(); w != 800 || h != 560 {
		t.Fatalf("provisional canvas %dx%d", w, h)
	}
	waitQueue(t, q)
	if w, h := sc.Size(); w != 400 || h != 400 {
		t.Errorf("canvas %dx%d, want 400x400", w, h)
	}
	if bg := sc.Background(); bg == nil || bg.Bounds() != image.Rect(0, 0, 400, 400) {
		t.Errorf("background %v", sc.Background())
	}

	big := New(FetcherFunc(func(ctx context.Context, src string) (image.Image, error) {
		return solid(1600, 1200, color.RGBA{A: 255}), nil
	}), q.Post)
	sc = big.Open(context.Background(), gallery.ImageRecord{FullURL: "https://cdn/wide.jpg"}, vp)
	waitQueue(t, q)
	if w, h := sc.Size(); w != 747 || h != 560 {
		t.Errorf("canvas %dx%d, want 747x560", w, h)
	}
}

func TestCloseDiscardsPendingLoad(t *testing.T) {
	q := NewQueue()
	release := make(chan struct{})
	fetch := FetcherFunc(func(ctx context.Context, src string) (image.Image, error) {
		<-release
		return solid(4, 4, color.RGBA{G: 255, A: 255}), nil
	})
	loads := 0
	s := New(fetch, q.Post, OnLoad(func(*scene.Scene) { loads++ }))
	first := s.Open(context.Background(), gallery.ImageRecord{FullURL: "https://cdn/a.jpg", Width: 4, Height: 4}, vp)
	s.Close()
	second := s.Open(context.Background(), gallery.ImageRecord{Width: 8, Height: 8}, vp)
	second.AddText()

	close(release)
	waitQueue(t, q)

	if first.Background() != nil || second.Background() != nil {
		t.Error("stale load must not install a background")
	}
	if loads != 0 || s.Err() != nil {
		t.Errorf("loads=%d err=%v", loads, s.Err())
	}
	if s.Scene() != second || second.Len() != 1 {
		t.Error("second scene should be untouched")
	}
}

func TestOpenReplacesScene(t *testing.T) {
	q := NewQueue()
	release := make(chan struct{})
	fetch := FetcherFunc(func(ctx context.Context, src string) (image.Image, error) {
		if src == "slow" {
			<-release
		}
		return solid(2, 2, color.RGBA{B: 255, A: 255}), nil
	})
	s := New(fetch, q.Post)
	s.Open(context.Background(), gallery.ImageRecord{FullURL: "slow", Width: 2, Height: 2}, vp)
	fast := s.Open(context.Background(), gallery.ImageRecord{FullURL: "fast", Width: 2, Height: 2}, vp)
	waitQueue(t, q)
	if fast.Background() == nil {
		t.Fatal("current load should apply")
	}
	close(release)
	waitQueue(t, q)
	if s.Scene() != fast {
		t.Error("stale load replaced the scene")
	}
}

func TestDeleteKeyScopedToScene(t *testing.T) {
	bus := &input.Bus{}
	s := New(nil, NewQueue().Post, WithKeyBus(bus))
	del := key.Event{Code: key.CodeDeleteForward, Direction: key.DirPress}

	first := s.Open(context.Background(), gallery.ImageRecord{Width: 10, Height: 10}, vp)
	first.AddShape("circle")
	first.AddShape("triangle")
	if !bus.Dispatch(del) {
		t.Fatal("delete should be consumed")
	}
	if first.Len() != 1 {
		t.Fatalf("expected one object left, got %d", first.Len())
	}
	if bus.Dispatch(del) {
		t.Error("delete without selection should not be consumed")
	}

	second := s.Open(context.Background(), gallery.ImageRecord{Width: 10, Height: 10}, vp)
	if bus.Len() != 1 {
		t.Fatalf("expected one handler, got %d", bus.Len())
	}
	first.Select(first.Objects()[0].ID())
	second.AddText()
	bus.Dispatch(del)
	if first.Len() != 1 || second.Len() != 0 {
		t.Errorf("delete reached the wrong scene: first=%d second=%d", first.Len(), second.Len())
	}

	s.Close()
	s.Close()
	if bus.Len() != 0 {
		t.Errorf("handler leaked after close")
	}
	if s.Scene() != nil {
		t.Error("scene should be dropped")
	}
}

func TestQueueOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	q.Post(func() { got = append(got, 1) })
	q.Post(func() {
		got = append(got, 2)
		q.Post(func() { got = append(got, 3) })
	})
	if q.Pending() != 2 {
		t.Errorf("pending = %d", q.Pending())
	}
	if n := q.Drain(); n != 3 {
		t.Errorf("drained %d", n)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("order = %v", got)
	}
}

func TestQueueWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewQueue().Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
