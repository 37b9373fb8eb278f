package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/pixmark/internal/clipboard"
	"github.com/example/pixmark/internal/colors"
	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/notify"
	"github.com/example/pixmark/internal/render"
	"github.com/example/pixmark/internal/scene"
	"github.com/example/pixmark/internal/surface"
)

var (
	editFetcher  = func(timeout time.Duration) surface.Fetcher { return surface.NewSourceFetcher(timeout) }
	writeFile    = os.WriteFile
	copyPNG      = clipboard.WritePNG
	notifyExport = (*notify.Notifier).Export
)

type opKind int

const (
	opText opKind = iota
	opShape
	opColor
	opSelect
	opDeselect
	opMove
	opSetText
	opDelete
)

type editOp struct {
	kind   opKind
	name   string
	color  color.NRGBA
	index  int
	dx, dy float64
}

// editCmd applies scripted operations to a scene and exports it.
type editCmd struct {
	*root
	fs          *flag.FlagSet
	url         string
	file        string
	width       int
	height      int
	viewport    string
	output      string
	toClipboard bool
	timeout     time.Duration
	ops         []editOp
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.url, "url", "", "background image URL")
	fs.StringVar(&e.file, "file", "", "background image file")
	fs.IntVar(&e.width, "width", 0, "source image width when known")
	fs.IntVar(&e.height, "height", 0, "source image height when known")
	fs.StringVar(&e.viewport, "viewport", surface.DefaultViewport.String(), "viewport the canvas is fitted to, WxH")
	fs.StringVar(&e.output, "output", "", "output file (default edited-image.png)")
	fs.BoolVar(&e.toClipboard, "to-clipboard", false, "copy the result to the clipboard instead of writing a file")
	fs.DurationVar(&e.timeout, "timeout", 30*time.Second, "how long to wait for the background")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if (e.url == "") == (e.file == "") {
		return nil, usageErrorf(e, "exactly one of -url or -file is required")
	}
	if e.toClipboard && e.output != "" {
		return nil, usageErrorf(e, "-output cannot be used with -to-clipboard")
	}
	ops, err := parseOps(fs.Args())
	if err != nil {
		return nil, err
	}
	e.ops = ops
	return e, nil
}

func parseOps(args []string) ([]editOp, error) {
	var ops []editOp
	need := func(i, n int, name string) error {
		if i+n >= len(args) {
			return fmt.Errorf("%s requires %d argument(s)", name, n)
		}
		return nil
	}
	for i := 0; i < len(args); i++ {
		name := strings.ToLower(args[i])
		switch name {
		case "text":
			ops = append(ops, editOp{kind: opText})
		case "shape":
			if err := need(i, 1, name); err != nil {
				return nil, err
			}
			i++
			if _, ok := scene.ParseKind(args[i]); !ok {
				return nil, fmt.Errorf("unknown shape %q", args[i])
			}
			ops = append(ops, editOp{kind: opShape, name: args[i]})
		case "color":
			if err := need(i, 1, name); err != nil {
				return nil, err
			}
			i++
			c, err := colors.Parse(args[i])
			if err != nil {
				return nil, err
			}
			ops = append(ops, editOp{kind: opColor, color: c})
		case "select":
			if err := need(i, 1, name); err != nil {
				return nil, err
			}
			i++
			idx, err := strconv.Atoi(args[i])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("select: invalid index %q", args[i])
			}
			ops = append(ops, editOp{kind: opSelect, index: idx})
		case "deselect":
			ops = append(ops, editOp{kind: opDeselect})
		case "move":
			if err := need(i, 2, name); err != nil {
				return nil, err
			}
			dx, err1 := strconv.ParseFloat(args[i+1], 64)
			dy, err2 := strconv.ParseFloat(args[i+2], 64)
			if err := errors.Join(err1, err2); err != nil {
				return nil, fmt.Errorf("move: %w", err)
			}
			i += 2
			ops = append(ops, editOp{kind: opMove, dx: dx, dy: dy})
		case "settext":
			if err := need(i, 1, name); err != nil {
				return nil, err
			}
			i++
			ops = append(ops, editOp{kind: opSetText, name: strings.ReplaceAll(args[i], `\n`, "\n")})
		case "delete":
			ops = append(ops, editOp{kind: opDelete})
		default:
			return nil, fmt.Errorf("unknown operation %q", args[i])
		}
	}
	return ops, nil
}

// apply runs op against sc. Operations that do not apply, like delete with
// nothing selected, are reported and skipped.
func apply(sc *scene.Scene, op editOp) error {
	switch op.kind {
	case opText:
		sc.AddText()
	case opShape:
		sc.AddShape(op.name)
	case opColor:
		sc.SetTextColor(op.color)
	case opSelect:
		objs := sc.Objects()
		if op.index >= len(objs) {
			return fmt.Errorf("select %d: scene has %d objects", op.index, len(objs))
		}
		sc.Select(objs[op.index].ID())
	case opDeselect:
		sc.ClearSelection()
	case opMove:
		if !sc.MoveSelected(op.dx, op.dy) {
			return errors.New("move: nothing selected")
		}
	case opSetText:
		if !sc.SetSelectedText(op.name) {
			return errors.New("settext: no text object selected")
		}
	case opDelete:
		if !sc.DeleteSelected() {
			return errors.New("delete: nothing selected")
		}
	}
	return nil
}

func (e *editCmd) record() gallery.ImageRecord {
	src := e.url
	if e.file != "" {
		src = e.file
	}
	return urlRecord(src, e.width, e.height)
}

func (e *editCmd) Run() error {
	vp, err := surface.ParseViewport(e.viewport)
	if err != nil {
		return err
	}
	q := surface.NewQueue()
	s := surface.New(editFetcher(e.timeout), q.Post,
		surface.WithSceneOptions(scene.WithMeasurer(render.MeasureText)))
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	sc := s.Open(ctx, e.record(), vp)
	defer s.Close()
	for s.Loading() {
		if _, err := q.Wait(ctx); err != nil {
			fmt.Fprintf(e.stderr, "warning: background: %v\n", err)
			break
		}
	}
	if err := s.Err(); err != nil {
		fmt.Fprintf(e.stderr, "warning: %v\n", err)
	}

	for _, op := range e.ops {
		if err := apply(sc, op); err != nil {
			fmt.Fprintf(e.stderr, "warning: %v\n", err)
		}
	}

	art, err := render.ExportScene(sc)
	if err != nil {
		return err
	}
	if e.toClipboard {
		if err := copyPNG(art.Data); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		e.notifier.Copy(art.Name)
		fmt.Fprintln(e.stderr, "copied to clipboard")
		return nil
	}
	path := e.outputPath(e.output)
	if path == "" {
		path = art.Name
		if e.config != nil && e.config.SaveDir != "" {
			path = filepath.Join(e.config.SaveDir, art.Name)
		}
	}
	if err := writeFile(path, art.Data, 0o644); err != nil {
		return &render.ExportError{Op: "write", Err: err}
	}
	preview, err := art.Image()
	if err != nil {
		fmt.Fprintf(e.stderr, "warning: preview: %v\n", err)
	}
	notifyExport(e.notifier, path, preview)
	fmt.Fprintln(e.stdout, path)
	return nil
}
