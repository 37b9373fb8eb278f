package render

import (
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// LineHeight is the line spacing of text objects as a multiple of font size.
const LineHeight = 1.16

var (
	regularOnce sync.Once
	regularFont *truetype.Font
	regularErr  error
)

func regular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = truetype.Parse(goregular.TTF)
	})
	return regularFont, regularErr
}

// NewFace returns a Go Regular face at size points. The face is not safe for
// concurrent use.
func NewFace(size float64) (font.Face, error) {
	f, err := regular()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

var measureCache = struct {
	sync.Mutex
	faces map[float64]font.Face
}{faces: map[float64]font.Face{}}

// MeasureText returns the width and height text occupies when rendered at
// size. Lines are split on '\n'.
func MeasureText(text string, size float64) (w, h float64) {
	measureCache.Lock()
	defer measureCache.Unlock()
	face, ok := measureCache.faces[size]
	if !ok {
		var err error
		face, err = NewFace(size)
		if err != nil {
			return 0.55 * size * float64(len([]rune(text))), LineHeight * size
		}
		measureCache.faces[size] = face
	}
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		adv := font.MeasureString(face, line)
		w = math.Max(w, float64(adv)/64)
	}
	return w, LineHeight * size * float64(len(lines))
}
