package models

import (
	"math"

	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/pose"
	"github.com/taigrr/marionette/pkg/skeleton"
	"github.com/taigrr/marionette/pkg/skin"
	"gonum.org/v1/gonum/spatial/r3"
)

// BoundingBox is an axis-aligned box that only ever grows. The zero value is
// empty.
type BoundingBox struct {
	box   r3.Box
	valid bool
}

// NewBoundingBox returns the smallest box holding every point.
func NewBoundingBox(points ...math3d.Vec3) BoundingBox {
	var b BoundingBox
	for _, p := range points {
		b.Merge(p)
	}
	return b
}

// Merge grows the box to include p.
func (b *BoundingBox) Merge(p math3d.Vec3) {
	v := toR3(p)
	if !b.valid {
		b.box = r3.Box{Min: v, Max: v}
		b.valid = true
		return
	}
	// r3.Box.Union treats flat boxes as empty, so merge by hand.
	b.box.Min = r3.Vec{X: math.Min(b.box.Min.X, v.X), Y: math.Min(b.box.Min.Y, v.Y), Z: math.Min(b.box.Min.Z, v.Z)}
	b.box.Max = r3.Vec{X: math.Max(b.box.Max.X, v.X), Y: math.Max(b.box.Max.Y, v.Y), Z: math.Max(b.box.Max.Z, v.Z)}
}

// MergeBox grows the box to include o.
func (b *BoundingBox) MergeBox(o BoundingBox) {
	if !o.valid {
		return
	}
	b.Merge(o.Min())
	b.Merge(o.Max())
}

// Empty reports whether nothing has been merged yet.
func (b BoundingBox) Empty() bool {
	return !b.valid
}

func (b BoundingBox) Min() math3d.Vec3 { return fromR3(b.box.Min) }
func (b BoundingBox) Max() math3d.Vec3 { return fromR3(b.box.Max) }

// Center returns the center of the box.
func (b BoundingBox) Center() math3d.Vec3 {
	return fromR3(b.box.Center())
}

// Size returns the dimensions of the box.
func (b BoundingBox) Size() math3d.Vec3 {
	return fromR3(b.box.Size())
}

// Radius returns the radius of the sphere around the box.
func (b BoundingBox) Radius() float64 {
	return b.Size().Len() / 2
}

// Corners returns the eight corners of the box.
func (b BoundingBox) Corners() []math3d.Vec3 {
	if !b.valid {
		return nil
	}
	verts := b.box.Vertices()
	out := make([]math3d.Vec3, len(verts))
	for i, v := range verts {
		out[i] = fromR3(v)
	}
	return out
}

// AccumulateBounds skins every vertex with the bind pose and returns the
// box around the result. With correct bind offsets this is the box of the
// vertex positions themselves.
func AccumulateBounds(skel *skeleton.Skeleton, vertices []SkinnedVertex) BoundingBox {
	bind := pose.Compose(skel, pose.BindLocal(skel), true)

	var b BoundingBox
	for _, v := range vertices {
		b.Merge(skin.Deform(bind, v.Binding(), v.Position))
	}
	return b
}

func toR3(v math3d.Vec3) r3.Vec   { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
func fromR3(v r3.Vec) math3d.Vec3 { return math3d.V3(v.X, v.Y, v.Z) }

// Transform returns the box around the eight corners of b carried through m.
func (b BoundingBox) Transform(m math3d.Mat4) BoundingBox {
	var out BoundingBox
	for _, c := range b.Corners() {
		out.Merge(m.MulVec3(c))
	}
	return out
}
