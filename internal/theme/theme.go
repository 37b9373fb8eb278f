package theme

import (
	"image/color"
)

// Theme defines the colors of the editor window.
type Theme struct {
	Name string

	// Window
	Background color.RGBA // behind the canvas
	Foreground color.RGBA // status line text

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA
	SwatchBorder          color.RGBA
	SwatchActive          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
	Selection    color.RGBA

	// Message overlay for load and export errors
	MessageBackground color.RGBA
	MessageText       color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{236, 236, 236, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		SwatchBorder:          color.RGBA{90, 90, 90, 255},
		SwatchActive:          color.RGBA{0, 120, 215, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		Selection:             color.RGBA{0, 120, 215, 255},
		MessageBackground:     color.RGBA{144, 18, 18, 230},
		MessageText:           color.RGBA{255, 255, 255, 255},
	}
}
