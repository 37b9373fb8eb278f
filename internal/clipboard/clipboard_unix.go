//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		initErr = clipboard.Init()
	})
	return initErr
}

// WritePNG publishes already encoded PNG data.
func WritePNG(data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

// WriteImage encodes img as PNG and publishes it.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return WritePNG(buf.Bytes())
}

// ReadImage decodes PNG data from the clipboard.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain an image")
	}
	return png.Decode(bytes.NewReader(data))
}

// WriteText publishes text, typically an image URL.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// ReadText returns the clipboard text.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}
