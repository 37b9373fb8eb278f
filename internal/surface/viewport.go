package surface

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canvas limits relative to the viewport.
const (
	MaxWidthRatio  = 0.8
	MaxHeightRatio = 0.7
)

// Viewport is the area available to the editor window, in pixels.
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport is used when the display size cannot be discovered.
var DefaultViewport = Viewport{Width: 1280, Height: 800}

func (v Viewport) String() string { return fmt.Sprintf("%dx%d", v.Width, v.Height) }

// ParseViewport parses a "WxH" string.
func ParseViewport(s string) (Viewport, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Viewport{}, fmt.Errorf("viewport %q: want WxH", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return Viewport{}, fmt.Errorf("viewport width: %w", err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return Viewport{}, fmt.Errorf("viewport height: %w", err)
	}
	if w <= 0 || h <= 0 {
		return Viewport{}, fmt.Errorf("viewport %q: dimensions must be positive", s)
	}
	return Viewport{Width: w, Height: h}, nil
}

// FitCanvas returns the canvas size for an image of imgW x imgH shown in vp.
// Images larger than 80% of the viewport width or 70% of its height are
// scaled down uniformly; smaller images keep their native size. An image of
// unknown size gets the whole permitted area.
func FitCanvas(imgW, imgH int, vp Viewport) (w, h int) {
	limitW := MaxWidthRatio * float64(vp.Width)
	limitH := MaxHeightRatio * float64(vp.Height)
	if imgW <= 0 || imgH <= 0 {
		return atLeastOne(math.Floor(limitW)), atLeastOne(math.Floor(limitH))
	}
	fw, fh := float64(imgW), float64(imgH)
	if fw > limitW || fh > limitH {
		scale := math.Min(limitW/fw, limitH/fh)
		fw *= scale
		fh *= scale
	}
	return atLeastOne(math.Round(fw)), atLeastOne(math.Round(fh))
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}
