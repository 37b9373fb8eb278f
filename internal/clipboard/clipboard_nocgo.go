//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"image"
	"os"
	"sync"

	textclip "github.com/atotto/clipboard"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	errNoImages  = errors.New("clipboard images require a cgo build")
)

// ensureInit checks for a display; text goes through xclip, xsel or
// wl-clipboard, whichever is installed.
func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		if textclip.Unsupported {
			initErr = errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")
		}
	})
	return initErr
}

func WritePNG([]byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return errNoImages
}

func WriteImage(image.Image) error {
	return WritePNG(nil)
}

func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return nil, errNoImages
}

func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return textclip.WriteAll(text)
}

func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	return textclip.ReadAll()
}
