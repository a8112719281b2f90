package render

import (
	"math"

	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/pose"
)

// Wireframe projects 3D segments through a camera and draws them as
// one-pixel lines, without depth testing.
type Wireframe struct {
	cam *Camera
	fb  *Framebuffer
}

func NewWireframe(cam *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{cam: cam, fb: fb}
}

// DrawLine3D draws the on-screen part of a 3D segment. Segments with an
// endpoint at or behind the eye are skipped.
func (w *Wireframe) DrawLine3D(from, to math3d.Vec3, color Color) {
	ax, ay, _, ok := w.cam.Project(from, w.fb.Width, w.fb.Height)
	if !ok || !pixelRange(ax, ay) {
		return
	}
	bx, by, _, ok := w.cam.Project(to, w.fb.Width, w.fb.Height)
	if !ok || !pixelRange(bx, by) {
		return
	}
	w.fb.DrawLine(int(ax), int(ay), int(bx), int(by), color)
}

// pixelRange reports whether a projected point fits an int pixel coordinate
// without overflow. Points just in front of the eye project arbitrarily far.
func pixelRange(x, y float64) bool {
	const limit = 1 << 30
	return math.Abs(x) < limit && math.Abs(y) < limit
}

// boxEdges are the 12 edges of a box whose corners are numbered by the bits
// of the index: bit 0 picks max X, bit 1 max Y, bit 2 max Z.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along X
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along Z
}

// DrawBox draws the edges of the axis-aligned box from lo to hi, carried
// through transform.
func (w *Wireframe) DrawBox(lo, hi math3d.Vec3, transform math3d.Mat4, color Color) {
	var corners [8]math3d.Vec3
	for i := range corners {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		corners[i] = transform.MulVec3(c)
	}

	for _, e := range boxEdges {
		w.DrawLine3D(corners[e[0]], corners[e[1]], color)
	}
}

// DrawSkeleton draws the bone segments of a skeleton overlay, carried
// through transform, with a marker on every joint.
func (w *Wireframe) DrawSkeleton(segs []pose.Segment, transform math3d.Mat4, bone, joint Color, markerSize float64) {
	for _, s := range segs {
		from := transform.MulVec3(s.From)
		to := transform.MulVec3(s.To)
		w.DrawLine3D(from, to, bone)
		if markerSize > 0 {
			w.DrawPoint(from, markerSize, joint)
		}
	}
}

// DrawAxes draws the world X, Y and Z axes from the origin in red, green
// and blue.
func (w *Wireframe) DrawAxes(length float64) {
	for i, c := range [3]Color{ColorRed, ColorGreen, ColorBlue} {
		var tip [3]float64
		tip[i] = length
		w.DrawLine3D(math3d.Zero3(), math3d.V3(tip[0], tip[1], tip[2]), c)
	}
}

// DrawGrid draws a size x size grid centered on the Y axis in the plane at
// height y, with lines every step.
func (w *Wireframe) DrawGrid(y, size, step float64, color Color) {
	if step <= 0 {
		return
	}
	lines := int(size/step + 1e-9)
	start := -size / 2
	for i := 0; i <= lines; i++ {
		off := start + float64(i)*step
		w.DrawLine3D(math3d.V3(off, y, start), math3d.V3(off, y, -start), color)
		w.DrawLine3D(math3d.V3(start, y, off), math3d.V3(-start, y, off), color)
	}
}

// DrawPoint marks pos with three axis-aligned strokes of length size.
func (w *Wireframe) DrawPoint(pos math3d.Vec3, size float64, color Color) {
	h := size / 2
	for _, d := range [3]math3d.Vec3{{X: h}, {Y: h}, {Z: h}} {
		w.DrawLine3D(pos.Sub(d), pos.Add(d), color)
	}
}
