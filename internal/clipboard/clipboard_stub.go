//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import (
	"errors"
	"image"

	textclip "github.com/atotto/clipboard"
)

var errNoImages = errors.New("clipboard image operations are not supported on this platform")

func WritePNG([]byte) error { return errNoImages }

func WriteImage(image.Image) error { return errNoImages }

func ReadImage() (image.Image, error) { return nil, errNoImages }

// WriteText uses the platform clipboard command.
func WriteText(text string) error { return textclip.WriteAll(text) }

func ReadText() (string, error) { return textclip.ReadAll() }
