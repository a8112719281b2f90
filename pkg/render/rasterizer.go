package render

import (
	"math"

	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/models"
	"github.com/taigrr/marionette/pkg/pose"
	"github.com/taigrr/marionette/pkg/skin"
)

// Vertex is a world-space vertex ready for shading.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Color    Color
}

type Triangle struct {
	V [3]Vertex
}

// Rasterizer fills triangles into a Framebuffer with a depth test.
type Rasterizer struct {
	camera *Camera
	fb     *Framebuffer
	depth  []float64
	// skinned holds the deformed vertices of the current model between
	// frames.
	skinned []Vertex
	normals []math3d.Mat4

	frustum     Frustum
	frustumFrom math3d.Mat4

	CullingStats CullingStats
	// DisableBackfaceCulling draws triangles of either winding.
	DisableBackfaceCulling bool
}

// CullingStats counts DrawSkinned calls since the last ResetCullingStats.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	return r
}

// Resize reallocates the depth buffer after the framebuffer changed size.
func (r *Rasterizer) Resize() {
	r.depth = make([]float64, r.Width()*r.Height())
	r.ClearDepth()
}

func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets every depth sample to infinitely far.
func (r *Rasterizer) ClearDepth() {
	for i := range r.depth {
		r.depth[i] = math.Inf(1)
	}
}

func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible reports whether a world-space box intersects the camera's view
// volume. The planes are rebuilt only when the camera has moved.
func (r *Rasterizer) IsVisible(box models.BoundingBox) bool {
	if vp := r.camera.ViewProjectionMatrix(); vp != r.frustumFrom {
		r.frustum = NewFrustumFromMatrix(vp)
		r.frustumFrom = vp
	}
	return r.frustum.IntersectBox(box)
}

// depthAt returns the stored depth at (x, y), +Inf outside the buffer.
func (r *Rasterizer) depthAt(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.Inf(1)
	}
	return r.depth[y*r.Width()+x]
}

// shaded is a vertex in pixel space carrying its lit color.
type shaded struct {
	x, y, z float64
	rgb     [3]float64
}

// edge is twice the signed area of (a, b, p). It is positive when p lies to
// the right of a->b on screen, where Y grows downward.
func edge(a, b shaded, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// DrawTriangleGouraud lights each vertex with a fixed ambient term plus
// Lambert diffuse from lightDir and interpolates the result across the
// triangle. Triangles that wind clockwise on screen face the camera; the
// other winding is culled unless DisableBackfaceCulling is set. Triangles
// touching the plane of the eye are dropped whole.
func (r *Rasterizer) DrawTriangleGouraud(tri Triangle, lightDir math3d.Vec3) {
	const ambient = 0.3

	vp := r.camera.ViewProjectionMatrix()
	light := lightDir.Normalize()
	w, h := float64(r.Width()), float64(r.Height())

	var sv [3]shaded
	for i, v := range tri.V {
		clip := vp.MulVec4(math3d.V4FromV3(v.Position, 1))
		if clip.W <= 0 {
			return
		}
		ndc := clip.PerspectiveDivide()
		k := ambient + (1-ambient)*max(0, v.Normal.Dot(light))
		sv[i] = shaded{
			x:   (ndc.X + 1) / 2 * w,
			y:   (1 - ndc.Y) / 2 * h,
			z:   ndc.Z,
			rgb: [3]float64{float64(v.Color.R) * k, float64(v.Color.G) * k, float64(v.Color.B) * k},
		}
	}

	area := edge(sv[0], sv[1], sv[2].x, sv[2].y)
	if area == 0 || (area < 0 && !r.DisableBackfaceCulling) {
		return
	}

	x0 := max(0, int(math.Floor(min(sv[0].x, sv[1].x, sv[2].x))))
	x1 := min(r.Width()-1, int(math.Ceil(max(sv[0].x, sv[1].x, sv[2].x))))
	y0 := max(0, int(math.Floor(min(sv[0].y, sv[1].y, sv[2].y))))
	y1 := min(r.Height()-1, int(math.Ceil(max(sv[0].y, sv[1].y, sv[2].y))))

	inv := 1 / area
	for y := y0; y <= y1; y++ {
		py := float64(y) + 0.5
		for x := x0; x <= x1; x++ {
			px := float64(x) + 0.5
			// Weights for vertices 0, 1 and 2 come from the edge opposite
			// each one.
			b0 := edge(sv[1], sv[2], px, py) * inv
			b1 := edge(sv[2], sv[0], px, py) * inv
			b2 := edge(sv[0], sv[1], px, py) * inv
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			z := b0*sv[0].z + b1*sv[1].z + b2*sv[2].z
			i := y*r.Width() + x
			if z >= r.depth[i] {
				continue
			}
			r.depth[i] = z

			var c [3]uint8
			for ch := range c {
				c[ch] = uint8(min(255, b0*sv[0].rgb[ch]+b1*sv[1].rgb[ch]+b2*sv[2].rgb[ch]))
			}
			r.fb.SetPixel(x, y, RGB(c[0], c[1], c[2]))
		}
	}
}

// DrawSkinned skins m's vertices with the skinning pose on the CPU, places
// them with world and draws every mesh in its material color (fallback when
// it has none). It reports whether anything survived frustum culling.
func (r *Rasterizer) DrawSkinned(m *models.Model, skinning pose.Pose, world math3d.Mat4, fallback Color, lightDir math3d.Vec3) bool {
	if len(m.Vertices) == 0 {
		return false
	}

	if cap(r.skinned) < len(m.Vertices) {
		r.skinned = make([]Vertex, len(m.Vertices))
	}
	verts := r.skinned[:len(m.Vertices)]

	normalMat := world.NormalMatrix()
	r.normals = skin.NormalMatrices(r.normals, skinning)
	var bounds models.BoundingBox
	for i, v := range m.Vertices {
		b := v.Binding()
		p := world.MulVec3(skin.Deform(skinning, b, v.Position))
		verts[i] = Vertex{
			Position: p,
			Normal:   normalMat.MulVec3Dir(skin.DeformNormal(r.normals, b, v.Normal)).Normalize(),
		}
		bounds.Merge(p)
	}

	r.CullingStats.MeshesTested++
	if !r.IsVisible(bounds) {
		r.CullingStats.MeshesCulled++
		return false
	}
	r.CullingStats.MeshesDrawn++

	for _, mesh := range m.Meshes {
		color := fallback
		if mat := m.Material(mesh.Material); mat != nil {
			color = FromFloat(mat.BaseColor)
		}

		idx := m.Indices[mesh.Offset : mesh.Offset+mesh.Count]
		for i := 0; i+2 < len(idx); i += 3 {
			// Counter-clockwise model winding turns clockwise once Y is
			// flipped to screen space, so the second and third vertices swap.
			tri := Triangle{V: [3]Vertex{verts[idx[i]], verts[idx[i+2]], verts[idx[i+1]]}}
			for k := range tri.V {
				tri.V[k].Color = color
			}
			r.DrawTriangleGouraud(tri, lightDir)
		}
	}
	return true
}
