package appstate

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/pixmark/internal/colors"
	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/notify"
	"github.com/example/pixmark/internal/surface"
	"github.com/example/pixmark/internal/theme"
)

const doubleClickWindow = 400 * time.Millisecond

// AppState holds what the editor window needs to start.
type AppState struct {
	Record   gallery.ImageRecord
	Viewport surface.Viewport
	Output   string

	fetcher  surface.Fetcher
	theme    *theme.Theme
	notifier *notify.Notifier

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithRecord sets the image to annotate.
func WithRecord(rec gallery.ImageRecord) Option { return func(a *AppState) { a.Record = rec } }

// WithViewport sets the screen area the canvas is fitted to.
func WithViewport(vp surface.Viewport) Option { return func(a *AppState) { a.Viewport = vp } }

// WithOutput sets the file written by save.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithFetcher sets how the background image is retrieved.
func WithFetcher(f surface.Fetcher) Option { return func(a *AppState) { a.fetcher = f } }

// WithTheme sets the window colors.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.theme = t } }

// WithNotifier enables desktop notifications for saves and copies.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{Viewport: surface.DefaultViewport}
	for _, o := range opts {
		o(a)
	}
	if a.fetcher == nil {
		a.fetcher = surface.NewSourceFetcher(gallery.DefaultTimeout)
	}
	if a.theme == nil {
		a.theme = theme.Default()
	}
	return a
}

// callbackEvent carries work posted from other goroutines onto the event loop.
type callbackEvent struct{ fn func() }

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	th := a.theme
	cw, ch := surface.FitCanvas(a.Record.Width, a.Record.Height, a.Viewport)

	var ed *Editor
	buttons := newToolbar(th, func(action string) { ed.Do(action) })
	width, height := windowSize(cw, ch)
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "pixmark"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	ed = NewEditor(a.fetcher, func(fn func()) { w.Send(callbackEvent{fn}) }, a.Output, a.notifier)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ed.Open(ctx, a.Record, a.Viewport)
	defer ed.Close()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			pctx, pcancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = pcancel
			paintMu.Unlock()
			drawFrame(pctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			dropCount = 0
			paintMu.Unlock()
			pcancel()
		}
	}()
	defer close(paintCh)

	hover, pressed := -1, -1
	var lastClick time.Time
	var lastClickAt image.Point
	swatches := swatchRects(len(colors.Palette))
	hint := "T text  1-4 shapes  Del delete  Enter edit  ^S save  ^C copy"

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case callbackEvent:
			e.fn()
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			sc := ed.Scene()
			if sc == nil {
				continue
			}
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDrops {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			editing, text := ed.Editing()
			st := paintState{
				width:     width,
				height:    height,
				theme:     th,
				buttons:   buttons,
				hover:     hover,
				pressed:   pressed,
				snap:      sc.Snapshot(),
				selection: selectionBounds(sc),
				textColor: sc.TextColor(),
				editing:   editing,
				editText:  text,
				loading:   ed.Loading(),
				message:   ed.Message(),
				hint:      hint,
			}
			if o, ok := sc.Selected(); ok && editing {
				st.editAt = image.Pt(int(o.X), int(o.Y))
				st.editSize = o.FontSize
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			if ed.Message() != "" && e.Direction == mouse.DirPress {
				ed.DismissMessage()
				w.Send(paint.Event{})
				continue
			}
			if p.X < toolbarWidth {
				old := hover
				hover = -1
				for i, b := range buttons {
					if p.In(b.Rect()) {
						hover = i
					}
				}
				if e.Button == mouse.ButtonLeft {
					switch e.Direction {
					case mouse.DirPress:
						pressed = hover
						for i, r := range swatches {
							if p.In(r) {
								ed.SetTextColor(colors.Palette[i])
							}
						}
					case mouse.DirRelease:
						if pressed >= 0 && pressed == hover {
							buttons[pressed].Activate()
						}
						pressed = -1
					}
					w.Send(paint.Event{})
				} else if old != hover {
					w.Send(paint.Event{})
				}
				continue
			}
			if hover != -1 {
				hover = -1
				w.Send(paint.Event{})
			}
			sc := ed.Scene()
			if sc == nil || (e.Button != mouse.ButtonLeft && e.Direction != mouse.DirNone) {
				continue
			}
			cp := toCanvas(e.X, e.Y)
			switch e.Direction {
			case mouse.DirPress:
				cwid, chei := sc.Size()
				if !inCanvas(cp, cwid, chei) {
					continue
				}
				now := time.Now()
				if now.Sub(lastClick) < doubleClickWindow && absInt(p.X-lastClickAt.X) <= 4 && absInt(p.Y-lastClickAt.Y) <= 4 {
					ed.DoubleClick(cp)
					lastClick = time.Time{}
				} else {
					ed.Press(cp)
					lastClick, lastClickAt = now, p
				}
				w.Send(paint.Event{})
			case mouse.DirNone:
				if ed.Drag(cp) {
					w.Send(paint.Event{})
				}
			case mouse.DirRelease:
				ed.Release()
			}
		case key.Event:
			if e.Direction == key.DirRelease {
				continue
			}
			if e.Code == key.CodeEscape && ed.Message() != "" {
				ed.DismissMessage()
				w.Send(paint.Event{})
				continue
			}
			if ed.Key(e) {
				w.Send(paint.Event{})
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
