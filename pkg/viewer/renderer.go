package viewer

import (
	"math"

	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/models"
	"github.com/taigrr/marionette/pkg/pose"
	"github.com/taigrr/marionette/pkg/render"
)

// Overlay colors.
var (
	MeshColor   = render.RGB(200, 200, 200)
	BoneColor   = render.RGB(255, 220, 0)
	JointColor  = render.RGB(255, 80, 80)
	BoundsColor = render.RGB(0, 255, 128)
	GridColor   = render.RGB(70, 70, 90)
)

// Fit returns the world transform that centers a model with the given
// bind-pose bounds on the origin and scales its largest side to 2.
func Fit(bounds models.BoundingBox) math3d.Mat4 {
	if bounds.Empty() {
		return math3d.Identity()
	}
	size := bounds.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return math3d.Translate(bounds.Center().Negate())
	}
	scale := 2.0 / maxDim
	return math3d.Scale(math3d.V3(scale, scale, scale)).Mul(math3d.Translate(bounds.Center().Negate()))
}

// Renderer draws frames of a model into its own framebuffer.
type Renderer struct {
	Background render.Color

	fb         *render.Framebuffer
	camera     *render.Camera
	rasterizer *render.Rasterizer
	wireframe  *render.Wireframe
}

// NewRenderer creates a renderer with a width x height framebuffer.
func NewRenderer(width, height int) *Renderer {
	camera := render.NewCamera()
	camera.SetFOV(math.Pi / 3)
	camera.SetClipPlanes(0.1, 100)

	r := &Renderer{
		Background: render.RGB(30, 30, 40),
		camera:     camera,
	}
	r.Resize(width, height)
	return r
}

// Resize replaces the framebuffer.
func (r *Renderer) Resize(width, height int) {
	r.fb = render.NewFramebuffer(width, height)
	r.rasterizer = render.NewRasterizer(r.camera, r.fb)
	r.wireframe = render.NewWireframe(r.camera, r.fb)
	if height > 0 {
		r.camera.SetAspectRatio(float64(width) / float64(height))
	}
}

// Framebuffer returns the framebuffer the last frame was drawn into.
func (r *Renderer) Framebuffer() *render.Framebuffer {
	return r.fb
}

// Camera returns the orbit camera.
func (r *Renderer) Camera() *render.Camera {
	return r.camera
}

// Stats returns the culling counters of the last frame.
func (r *Renderer) Stats() render.CullingStats {
	return r.rasterizer.CullingStats
}

// Draw renders m in the given animation frame as seen from view.
func (r *Renderer) Draw(m *models.Model, frame pose.Frame, view *ViewState) {
	r.camera.Orbit(math3d.Zero3(), view.Yaw.Position, view.Pitch.Position, view.Distance)
	r.rasterizer.ResetCullingStats()

	r.fb.Clear(r.Background)
	r.rasterizer.ClearDepth()

	world := Fit(m.Bounds)

	// Headlight slightly above the camera.
	light := r.camera.Position.Normalize().Add(math3d.Up().Scale(0.5)).Normalize()

	if view.ShowMesh {
		r.rasterizer.DrawSkinned(m, frame.Skinning, world, MeshColor, light)
	}

	if m.Bounds.Empty() {
		return
	}

	// Animation can carry the skeleton past the bind-pose box, so overlays
	// are culled against a generous sphere.
	center := world.MulVec3(m.Bounds.Center())
	radius := 2 * world.MulVec3Dir(math3d.V3(m.Bounds.Radius(), 0, 0)).Len()
	if !r.camera.GetFrustum().IntersectsSphere(center, radius) {
		return
	}

	if view.ShowGrid {
		// Floor at the bottom of the bind pose, twice the fitted size across.
		floor := world.MulVec3(m.Bounds.Min()).Y
		r.wireframe.DrawGrid(floor, 4, 0.4, GridColor)
		r.wireframe.DrawAxes(0.5)
	}

	if view.ShowBounds {
		r.wireframe.DrawBox(m.Bounds.Min(), m.Bounds.Max(), world, BoundsColor)
	}

	if view.ShowSkeleton && m.Skeleton != nil && frame.Joints != nil {
		size := m.Bounds.Size()
		tip := 0.05 * math.Max(size.X, math.Max(size.Y, size.Z))
		if tip <= 0 {
			tip = pose.DefaultTipLength
		}
		segs := pose.Lines(m.Skeleton, frame.Joints, tip)
		r.wireframe.DrawSkeleton(segs, world, BoneColor, JointColor, 0.04)
	}
}
