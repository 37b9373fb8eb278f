package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/pixmark/internal/colors"
	"github.com/example/pixmark/internal/render"
	"github.com/example/pixmark/internal/scene"
	"github.com/example/pixmark/internal/theme"
)

const (
	bottomHeight  = 24
	buttonHeight  = 24
	buttonSpacing = 4
	swatchSize    = 18
	canvasMargin  = 16
	frameDrops    = 10
)

var toolbarWidth = 96

type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button is a clickable toolbar element.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton caches the rendered states of the wrapped Button.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		img := image.NewRGBA(cb.Button.Rect())
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

// ToolButton triggers one editor action.
type ToolButton struct {
	label  string
	action string
	theme  *theme.Theme
	rect   image.Rectangle
	onTap  func(action string)
}

func (tb *ToolButton) Draw(dst *image.RGBA, state ButtonState) {
	c := tb.theme.ButtonBackground
	switch state {
	case StateHover:
		c = tb.theme.ButtonBackgroundHover
	case StatePressed:
		c = tb.theme.ButtonBackgroundPress
	}
	draw.Draw(dst, tb.rect, &image.Uniform{c}, image.Point{}, draw.Src)
	drawRect(dst, tb.rect, tb.theme.ButtonBorder, 1)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(tb.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(tb.rect.Min.X+4, tb.rect.Min.Y+16)}
	d.DrawString(tb.label)
}

func (tb *ToolButton) Rect() image.Rectangle { return tb.rect }

func (tb *ToolButton) SetRect(r image.Rectangle) { tb.rect = r }

func (tb *ToolButton) Activate() {
	if tb.onTap != nil {
		tb.onTap(tb.action)
	}
}

// toolbarActions lists the toolbar in display order.
var toolbarActions = []struct{ label, action string }{
	{"T:Text", ActionText},
	{"1:Triangle", ActionTriangle},
	{"2:Circle", ActionCircle},
	{"3:Rect", ActionRectangle},
	{"4:Polygon", ActionPolygon},
	{"Del:Delete", ActionDelete},
	{"^S:Save", ActionSave},
	{"^C:Copy", ActionCopy},
}

func newToolbar(th *theme.Theme, onTap func(string)) []*CacheButton {
	d := &font.Drawer{Face: basicfont.Face7x13}
	for _, a := range toolbarActions {
		if w := d.MeasureString(a.label).Ceil() + 8; w > toolbarWidth {
			toolbarWidth = w
		}
	}
	buttons := make([]*CacheButton, len(toolbarActions))
	for i, a := range toolbarActions {
		y := buttonSpacing + i*(buttonHeight+buttonSpacing)
		tb := &ToolButton{label: a.label, action: a.action, theme: th, onTap: onTap}
		tb.SetRect(image.Rect(buttonSpacing, y, toolbarWidth-buttonSpacing, y+buttonHeight))
		buttons[i] = &CacheButton{Button: tb}
	}
	return buttons
}

// swatchRects lays out the text color palette below the toolbar buttons.
func swatchRects(n int) []image.Rectangle {
	top := buttonSpacing + len(toolbarActions)*(buttonHeight+buttonSpacing) + 8
	perRow := max((toolbarWidth-buttonSpacing)/(swatchSize+buttonSpacing), 1)
	rects := make([]image.Rectangle, n)
	for i := range rects {
		x := buttonSpacing + (i%perRow)*(swatchSize+buttonSpacing)
		y := top + (i/perRow)*(swatchSize+buttonSpacing)
		rects[i] = image.Rect(x, y, x+swatchSize, y+swatchSize)
	}
	return rects
}

func drawToolbar(dst *image.RGBA, th *theme.Theme, height int, buttons []*CacheButton, hover, pressed int, textColor color.NRGBA) {
	draw.Draw(dst, image.Rect(0, 0, toolbarWidth, height-bottomHeight), &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	for i, b := range buttons {
		state := StateDefault
		switch i {
		case pressed:
			state = StatePressed
		case hover:
			state = StateHover
		}
		b.Draw(dst, state)
	}
	for i, r := range swatchRects(len(colors.Palette)) {
		c := colors.Palette[i]
		draw.Draw(dst, r, &image.Uniform{colors.RGBA(c)}, image.Point{}, draw.Src)
		border := th.SwatchBorder
		thick := 1
		if c == textColor {
			border, thick = th.SwatchActive, 2
		}
		drawRect(dst, r, border, thick)
	}
}

// drawCheckerboard fills rect of dst with squares of size alternating light
// and dark.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

func drawRect(img *image.RGBA, r image.Rectangle, col color.Color, thick int) {
	u := &image.Uniform{col}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thick), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-thick, r.Max.X, r.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thick, r.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(r.Max.X-thick, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Over)
}

// drawDashedRect outlines r with alternating c1/c2 dashes.
func drawDashedRect(img *image.RGBA, r image.Rectangle, dash int, c1, c2 color.Color) {
	pick := func(i int) color.Color {
		if (i/dash)%2 == 0 {
			return c1
		}
		return c2
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, pick(x-r.Min.X))
		img.Set(x, r.Max.Y-1, pick(x-r.Min.X))
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, pick(y-r.Min.Y))
		img.Set(r.Max.X-1, y, pick(y-r.Min.Y))
	}
}

type paintState struct {
	width, height int
	theme         *theme.Theme
	buttons       []*CacheButton
	hover         int
	pressed       int
	snap          scene.Snapshot
	selection     image.Rectangle
	textColor     color.NRGBA
	editing       bool
	editText      string
	editAt        image.Point
	editSize      float64
	loading       bool
	message       string
	hint          string
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	draw.Draw(dst, dst.Bounds(), &image.Uniform{st.theme.Background}, image.Point{}, draw.Src)
	origin := canvasOrigin()
	canvasRect := image.Rect(0, 0, st.snap.Width, st.snap.Height).Add(origin)
	drawCheckerboard(dst, canvasRect, 8, st.theme.CheckerLight, st.theme.CheckerDark)
	if ctx.Err() != nil {
		return
	}

	flat, err := render.Flatten(st.snap)
	if err != nil {
		log.Printf("render: %v", err)
	} else {
		framed := render.DropShadow(flat, render.DefaultShadow())
		at := origin.Sub(framed.Origin)
		draw.Draw(dst, framed.Image.Bounds().Add(at), framed.Image, image.Point{}, draw.Over)
	}
	if ctx.Err() != nil {
		return
	}

	if !st.selection.Empty() {
		drawDashedRect(dst, st.selection.Add(origin).Inset(-2), 4, st.theme.Selection, color.White)
	}
	if st.editing {
		face, err := render.NewFace(st.editSize)
		if err == nil {
			p := st.editAt.Add(origin)
			r := image.Rect(p.X-2, p.Y-2, p.X+st.snap.Width, p.Y+int(st.editSize*render.LineHeight)+2).Intersect(canvasRect)
			draw.Draw(dst, r, &image.Uniform{color.RGBA{255, 255, 255, 200}}, image.Point{}, draw.Over)
			d := &font.Drawer{Dst: dst, Src: image.NewUniform(colors.RGBA(st.textColor)), Face: face,
				Dot: fixed.P(p.X, p.Y+face.Metrics().Ascent.Ceil())}
			d.DrawString(lastLine(st.editText) + "|")
			_ = face.Close()
		}
	}
	if st.loading {
		drawLabel(dst, canvasRect.Min.Add(image.Pt(8, 18)), "loading…", st.theme.Foreground)
	}
	if ctx.Err() != nil {
		return
	}

	drawToolbar(dst, st.theme, st.height, st.buttons, st.hover, st.pressed, st.textColor)
	bar := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, bar, &image.Uniform{st.theme.ToolbarBackground}, image.Point{}, draw.Src)
	drawLabel(dst, image.Pt(6, st.height-7), st.hint, st.theme.Foreground)

	if st.message != "" {
		drawMessage(dst, st)
	}
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawLabel(dst *image.RGBA, dot image.Point, s string, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(dot.X, dot.Y)}
	d.DrawString(s)
}

func drawMessage(dst *image.RGBA, st paintState) {
	d := &font.Drawer{Face: basicfont.Face7x13}
	wmsg := d.MeasureString(st.message).Ceil()
	x := max((st.width-wmsg)/2, 4)
	y := st.height - bottomHeight - 40
	r := image.Rect(x-8, y-16, x+wmsg+8, y+8)
	draw.Draw(dst, r, &image.Uniform{st.theme.MessageBackground}, image.Point{}, draw.Over)
	drawLabel(dst, image.Pt(x, y), st.message, st.theme.MessageText)
}

func lastLine(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return s[i+1:]
		}
	}
	return s
}
