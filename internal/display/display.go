// Package display discovers the size of the screen the editor will open on.
package display

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/pixmark/internal/surface"
)

// Monitor describes one connected output.
type Monitor struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

var errNoMonitors = errors.New("no monitors available")

// listMonitors is replaced in tests.
var listMonitors = platformMonitors

// Monitors lists connected outputs.
func Monitors() ([]Monitor, error) {
	mons, err := listMonitors()
	if err != nil {
		return nil, err
	}
	if len(mons) == 0 {
		return nil, errNoMonitors
	}
	return mons, nil
}

// Find resolves a selector: empty or "primary" for the primary output, a
// number (optionally prefixed with #) for an index, or a substring of the
// output name.
func Find(mons []Monitor, selector string) (Monitor, error) {
	if len(mons) == 0 {
		return Monitor{}, errNoMonitors
	}
	sel := strings.ToLower(strings.TrimSpace(selector))
	if sel == "" || sel == "primary" {
		for _, m := range mons {
			if m.Primary {
				return m, nil
			}
		}
		return mons[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(sel, "#")); err == nil {
		if idx < 0 || idx >= len(mons) {
			return Monitor{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return mons[idx], nil
	}
	for _, m := range mons {
		if strings.Contains(strings.ToLower(m.Name), sel) {
			return m, nil
		}
	}
	return Monitor{}, fmt.Errorf("monitor %q not found", selector)
}

// Viewport returns the size of the selected monitor, or fallback when the
// display cannot be queried.
func Viewport(selector string, fallback surface.Viewport) (surface.Viewport, error) {
	mons, err := Monitors()
	if err != nil {
		return fallback, err
	}
	m, err := Find(mons, selector)
	if err != nil {
		return fallback, err
	}
	if m.Rect.Dx() <= 0 || m.Rect.Dy() <= 0 {
		return fallback, fmt.Errorf("monitor %q has no area", m.Name)
	}
	return surface.Viewport{Width: m.Rect.Dx(), Height: m.Rect.Dy()}, nil
}
