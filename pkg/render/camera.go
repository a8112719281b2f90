package render

import (
	"math"

	"github.com/taigrr/marionette/pkg/math3d"
)

// lens holds everything the view-projection matrix depends on. Camera keeps
// the last one it built a matrix for and rebuilds when any field differs.
type lens struct {
	Position, Target, Up math3d.Vec3

	FOV         float64 // vertical, radians
	AspectRatio float64
	Near, Far   float64
}

// Camera is a perspective camera aimed at a target point. Fields may be set
// directly; the matrices follow on the next call.
type Camera struct {
	lens

	built    lens
	view     math3d.Mat4
	proj     math3d.Mat4
	viewProj math3d.Mat4
	valid    bool
}

// NewCamera returns a camera 10 units up the Y axis looking down -Z with a
// 60 degree field of view.
func NewCamera() *Camera {
	return &Camera{lens: lens{
		Position:    math3d.V3(0, 10, 0),
		Target:      math3d.V3(0, 10, -1),
		Up:          math3d.Up(),
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
	}}
}

// SetPosition moves the camera, keeping the viewing direction.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Target = c.Target.Add(pos.Sub(c.Position))
	c.Position = pos
}

func (c *Camera) SetFOV(fov float64) { c.FOV = fov }

func (c *Camera) SetAspectRatio(aspect float64) { c.AspectRatio = aspect }

func (c *Camera) SetClipPlanes(near, far float64) { c.Near, c.Far = near, far }

// LookAt aims the camera at target from its current position.
func (c *Camera) LookAt(target math3d.Vec3) { c.Target = target }

// Forward returns the unit viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Orbit places the camera distance away from target at the given yaw and
// pitch (radians) and aims it at target. Pitch stops just short of the
// poles, where the up vector would be parallel to the view direction.
func (c *Camera) Orbit(target math3d.Vec3, yaw, pitch, distance float64) {
	const maxPitch = math.Pi/2 - 0.01
	pitch = max(-maxPitch, min(maxPitch, pitch))

	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	c.Position = target.Add(math3d.V3(sy*cp, sp, cy*cp).Scale(distance))
	c.Target = target
}

func (c *Camera) update() {
	if c.valid && c.built == c.lens {
		return
	}
	c.view = math3d.LookAt(c.Position, c.Target, c.Up)
	c.proj = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
	c.viewProj = c.proj.Mul(c.view)
	c.built, c.valid = c.lens, true
}

func (c *Camera) ViewMatrix() math3d.Mat4 {
	c.update()
	return c.view
}

func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	c.update()
	return c.proj
}

func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	c.update()
	return c.viewProj
}

// GetFrustum returns the planes of the current view volume.
func (c *Camera) GetFrustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// Project maps a world point to pixel coordinates and NDC depth without
// rejecting points outside the viewport. ok is false for points at or
// behind the eye.
func (c *Camera) Project(p math3d.Vec3, width, height int) (x, y, depth float64, ok bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	return (ndc.X + 1) / 2 * float64(width), (1 - ndc.Y) / 2 * float64(height), ndc.Z, true
}

// WorldToScreen is Project restricted to the view volume: visible is false
// for points off screen or outside the depth range.
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	x, y, depth, ok := c.Project(p, width, height)
	if !ok || x < 0 || x > float64(width) || y < 0 || y > float64(height) || depth < -1 || depth > 1 {
		return 0, 0, 0, false
	}
	return x, y, depth, true
}
