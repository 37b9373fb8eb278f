// Package surface manages the lifetime of the scene shown by the editor:
// sizing the canvas, loading the background in the background, and owning the
// scene's keyboard listener.
package surface

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/mobile/event/key"

	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/input"
	"github.com/example/pixmark/internal/logging"
	"github.com/example/pixmark/internal/render"
	"github.com/example/pixmark/internal/scene"
)

// ImageLoadError reports a background image that could not be fetched or
// decoded. The scene stays usable with an empty background.
type ImageLoadError struct {
	URL string
	Err error
}

func (e *ImageLoadError) Error() string { return fmt.Sprintf("load image %s: %v", e.URL, e.Err) }

func (e *ImageLoadError) Unwrap() error { return e.Err }

// Surface holds at most one live scene. Open, Close and the accessors must be
// called from the goroutine that runs the dispatcher's callbacks.
type Surface struct {
	fetcher   Fetcher
	dispatch  Dispatcher
	bus       *input.Bus
	sceneOpts []scene.Option

	onLoad  func(*scene.Scene)
	onError func(*scene.Scene, error)

	scene      *scene.Scene
	gen        uint64
	cancel     context.CancelFunc
	unregister func()
	loading    bool
	lastErr    error
}

// Option configures a Surface.
type Option func(*Surface)

// WithKeyBus registers each scene's delete handler on bus.
func WithKeyBus(bus *input.Bus) Option { return func(s *Surface) { s.bus = bus } }

// WithSceneOptions passes opts to every scene the surface creates.
func WithSceneOptions(opts ...scene.Option) Option {
	return func(s *Surface) { s.sceneOpts = append(s.sceneOpts, opts...) }
}

// OnLoad is called after a background has been installed.
func OnLoad(fn func(*scene.Scene)) Option { return func(s *Surface) { s.onLoad = fn } }

// OnError is called with an *ImageLoadError when a background load fails.
func OnError(fn func(*scene.Scene, error)) Option { return func(s *Surface) { s.onError = fn } }

// New returns a surface that loads images with fetcher and runs completion
// callbacks through dispatch.
func New(fetcher Fetcher, dispatch Dispatcher, opts ...Option) *Surface {
	s := &Surface{fetcher: fetcher, dispatch: dispatch}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scene returns the live scene or nil.
func (s *Surface) Scene() *scene.Scene { return s.scene }

// Loading reports whether a background fetch for the live scene is pending.
func (s *Surface) Loading() bool { return s.loading }

// Err returns the load error of the live scene, if any.
func (s *Surface) Err() error { return s.lastErr }

// Open closes the live scene, if any, and starts a new one for rec. The
// returned scene is usable immediately; its background arrives later. When rec
// carries no dimensions the canvas starts at the permitted area and is refitted
// to the decoded bitmap once it loads.
func (s *Surface) Open(ctx context.Context, rec gallery.ImageRecord, vp Viewport) *scene.Scene {
	s.Close()

	w, h := FitCanvas(rec.Width, rec.Height, vp)
	sc := scene.New(rec, w, h, s.sceneOpts...)
	s.gen++
	gen := s.gen
	s.scene = sc
	s.lastErr = nil
	logging.Logger().Info("surface: open", "scene", sc.ID(), "image", rec.ID, "canvas", fmt.Sprintf("%dx%d", w, h))

	if s.bus != nil {
		s.unregister = s.bus.Register(deleteHandler(sc))
	}

	src := rec.SourceURL()
	if src == "" || s.fetcher == nil {
		return sc
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	sized := rec.Width > 0 && rec.Height > 0
	go func() {
		img, err := s.fetcher.Fetch(loadCtx, src)
		var bg *image.RGBA
		if err == nil {
			bw, bh := w, h
			if !sized {
				b := img.Bounds()
				bw, bh = FitCanvas(b.Dx(), b.Dy(), vp)
			}
			bg = render.ScaleBackground(img, bw, bh)
		}
		s.dispatch(func() { s.finishLoad(gen, sc, src, bg, err) })
	}()
	return sc
}

func (s *Surface) finishLoad(gen uint64, sc *scene.Scene, src string, bg *image.RGBA, err error) {
	if gen != s.gen || s.scene != sc {
		logging.Logger().Debug("surface: stale load discarded", "scene", sc.ID())
		return
	}
	s.loading = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if err != nil {
		lerr := &ImageLoadError{URL: src, Err: err}
		s.lastErr = lerr
		logging.Logger().Warn("surface: background load failed", "scene", sc.ID(), "err", err)
		if s.onError != nil {
			s.onError(sc, lerr)
		}
		return
	}
	if bw, bh := bg.Bounds().Dx(), bg.Bounds().Dy(); !sameSize(sc, bw, bh) {
		sc.Resize(bw, bh)
	}
	sc.SetBackground(bg)
	logging.Logger().Debug("surface: background loaded", "scene", sc.ID())
	if s.onLoad != nil {
		s.onLoad(sc)
	}
}

// Close discards the live scene. Pending loads are cancelled and their results
// ignored. Calling Close without a live scene does nothing.
func (s *Surface) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.unregister != nil {
		s.unregister()
		s.unregister = nil
	}
	if s.scene == nil {
		return
	}
	logging.Logger().Info("surface: close", "scene", s.scene.ID())
	s.gen++
	s.scene = nil
	s.loading = false
	s.lastErr = nil
}

func sameSize(sc *scene.Scene, w, h int) bool {
	cw, ch := sc.Size()
	return cw == w && ch == h
}

func deleteHandler(sc *scene.Scene) input.Handler {
	return func(e key.Event) bool {
		if !input.IsDelete(e) {
			return false
		}
		return sc.DeleteSelected()
	}
}
