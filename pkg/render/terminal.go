package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw implements uv.Drawable. Each cell in area shows framebuffer rows 2r
// and 2r+1 as the foreground and background of an upper half block.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	right := min(area.Max.X, fb.Width)
	for row := area.Min.Y; row < area.Max.Y; row++ {
		for col := area.Min.X; col < right; col++ {
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(col, 2*row)),
					Bg: cellColor(fb.GetPixel(col, 2*row+1)),
				},
			})
		}
	}
}

// TerminalRenderer presents framebuffers on a terminal using half blocks, so
// each cell shows two vertically stacked pixels.
type TerminalRenderer struct {
	term          *uv.Terminal
	width, height int
}

// NewTerminalRenderer creates a renderer for a terminal of width x height
// cells.
func NewTerminalRenderer(term *uv.Terminal, width, height int) *TerminalRenderer {
	return &TerminalRenderer{term: term, width: width, height: height}
}

// FramebufferSize returns the framebuffer size that fills the terminal.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.width, t.height * 2
}

// Render queues fb for display.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	t.term.Draw(fb)
}

// Overlay draws a styled line of text over the queued frame at row.
func (t *TerminalRenderer) Overlay(row int, text string) {
	if row < 0 || row >= t.height {
		return
	}
	uv.NewStyledString(text).Draw(t.term, uv.Rect(0, row, t.width, 1))
}

// Flush writes the queued frame to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.term.Display()
}

// cellColor leaves transparent pixels to the terminal's default color.
func cellColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is an 8-bit RGBA pixel.
type Color = color.RGBA

var (
	ColorBlack  = RGB(0, 0, 0)
	ColorWhite  = RGB(255, 255, 255)
	ColorRed    = RGB(255, 0, 0)
	ColorGreen  = RGB(0, 255, 0)
	ColorBlue   = RGB(0, 0, 255)
	ColorYellow = RGB(255, 255, 0)
	ColorCyan   = RGB(0, 255, 255)
	ColorGray   = RGB(128, 128, 128)
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// FromFloat converts a linear 0-1 RGBA quadruple, such as a material base
// color, to an opaque Color.
func FromFloat(c [4]float64) Color {
	conv := func(v float64) uint8 {
		return uint8(max(0, min(1, v))*255 + 0.5)
	}
	return RGB(conv(c[0]), conv(c[1]), conv(c[2]))
}
