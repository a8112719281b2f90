// Package render draws skinned models and skeleton overlays into a software
// framebuffer that can be shown in a terminal, a window or saved to disk.
package render

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Framebuffer is an RGBA pixel grid. On a terminal each cell shows two
// vertically stacked pixels, so a framebuffer for an 80x24 terminal is
// 80x48.
type Framebuffer struct {
	Width, Height int

	img *image.RGBA
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Image returns the pixels backing the framebuffer. It is not a copy: later
// drawing shows through.
func (fb *Framebuffer) Image() *image.RGBA {
	return fb.img
}

func (fb *Framebuffer) Clear(c Color) {
	draw.Draw(fb.img, fb.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// SetPixel ignores points off the framebuffer.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	fb.img.SetRGBA(x, y, c)
}

// GetPixel returns transparent black off the framebuffer.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	return fb.img.RGBAAt(x, y)
}

// DrawLine steps from (x0, y0) to (x1, y1) one pixel at a time along the
// longer axis. Only the part of the walk inside the framebuffer is visited.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		fb.SetPixel(x0, y0, c)
		return
	}
	sx := float64(x1-x0) / float64(steps)
	sy := float64(y1-y0) / float64(steps)

	lo, hi := span(x0, sx, fb.Width, steps)
	ylo, yhi := span(y0, sy, fb.Height, steps)
	lo, hi = max(lo, ylo), min(hi, yhi)
	for i := lo; i <= hi; i++ {
		fb.SetPixel(x0+int(math.Round(sx*float64(i))), y0+int(math.Round(sy*float64(i))), c)
	}
}

// span returns the steps in [0, steps] at which start+step*i may fall in
// [0, size), padded by one on each side for rounding. An empty span has
// lo > hi.
func span(start int, step float64, size, steps int) (lo, hi int) {
	if step == 0 {
		if start < 0 || start >= size {
			return 1, 0
		}
		return 0, steps
	}
	a := -float64(start) / step
	b := float64(size-1-start) / step
	if a > b {
		a, b = b, a
	}
	return max(0, int(math.Floor(a))-1), min(steps, int(math.Ceil(b))+1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
