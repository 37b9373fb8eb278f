package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/example/pixmark/internal/appstate"
	"github.com/example/pixmark/internal/clipboard"
	"github.com/example/pixmark/internal/display"
	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/picker"
	"github.com/example/pixmark/internal/surface"
)

var runEditor = func(st *appstate.AppState) { st.Run() }

// annotateCmd opens one image in the editor window.
type annotateCmd struct {
	*root
	fs       *flag.FlagSet
	query    string
	perPage  int
	index    int
	output   string
	url      string
	width    int
	height   int
	viewport string
	monitor  string
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r.subcommand("annotate"), fs: fs}
	fs.Usage = usageFunc(a)
	fs.IntVar(&a.perPage, "n", 0, "number of results to choose from")
	fs.IntVar(&a.index, "index", -1, "open result I without showing the picker")
	fs.StringVar(&a.output, "output", "", "file written on save (default edited-image.png)")
	fs.StringVar(&a.url, "url", "", "open this image URL or file instead of searching")
	fs.IntVar(&a.width, "width", 0, "width of the -url image when known")
	fs.IntVar(&a.height, "height", 0, "height of the -url image when known")
	fs.StringVar(&a.viewport, "viewport", "", "screen size as WxH (default: detected)")
	fs.StringVar(&a.monitor, "monitor", "", "monitor to size the canvas for (index or name)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	a.query = strings.Join(fs.Args(), " ")
	if a.url != "" && a.query != "" {
		return nil, usageErrorf(a, "-url cannot be combined with a query")
	}
	if a.url == "" && strings.TrimSpace(a.query) == "" {
		a.query, a.perPage = r.defaultGallery(a.perPage)
	}
	return a, nil
}

// record resolves the image to open.
func (a *annotateCmd) record() (gallery.ImageRecord, error) {
	if a.url != "" {
		return urlRecord(a.url, a.width, a.height), nil
	}
	hits, err := a.search(a.query, a.perPage)
	if err != nil {
		return gallery.ImageRecord{}, err
	}
	if len(hits) == 0 {
		return gallery.ImageRecord{}, fmt.Errorf("no results for %q", a.query)
	}
	if a.index >= 0 {
		if a.index >= len(hits) {
			return gallery.ImageRecord{}, fmt.Errorf("index %d out of range, %d results", a.index, len(hits))
		}
		return hits[a.index], nil
	}
	return runPicker(hits, a.stderr, picker.WithTitle("annotate: "+a.query), picker.WithCopy(clipboard.WriteText))
}

// urlRecord builds a record for an image given directly. Local files are
// measured when their size was not supplied.
func urlRecord(src string, w, h int) gallery.ImageRecord {
	if (w <= 0 || h <= 0) && !surface.IsRemote(src) {
		if pw, ph, err := surface.LocalSize(src); err == nil {
			w, h = pw, ph
		} else {
			log.Printf("size of %s: %v", src, err)
		}
	}
	return gallery.ImageRecord{FullURL: src, Width: w, Height: h}
}

// resolveViewport picks the screen size used to fit the canvas.
func (r *root) resolveViewport(spec, monitor string) (surface.Viewport, error) {
	if spec != "" {
		return surface.ParseViewport(spec)
	}
	fallback := surface.DefaultViewport
	if r.config != nil {
		fallback = r.config.Editor.Viewport
	}
	vp, err := display.Viewport(monitor, fallback)
	if err != nil {
		log.Printf("display: %v, using %s", err, vp)
	}
	return vp, nil
}

func (r *root) outputPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if r.config != nil {
		return r.config.Editor.Output
	}
	return ""
}

func (a *annotateCmd) Run() error {
	rec, err := a.record()
	if err != nil {
		return err
	}
	vp, err := a.resolveViewport(a.viewport, a.monitor)
	if err != nil {
		return err
	}
	timeout := gallery.DefaultTimeout
	if a.config != nil && a.config.Search.Timeout > 0 {
		timeout = a.config.Search.Timeout
	}
	st := appstate.New(
		appstate.WithRecord(rec),
		appstate.WithViewport(vp),
		appstate.WithOutput(a.outputPath(a.output)),
		appstate.WithFetcher(surface.NewSourceFetcher(timeout)),
		appstate.WithTheme(a.activeTheme),
		appstate.WithNotifier(a.notifier),
	)
	runEditor(st)
	return nil
}
