package render

import (
	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/models"
)

// Plane is the set of points p with Normal·p + D = 0. Points on the side the
// normal faces have positive distance.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane so the normal has unit length, making
// DistanceToPoint a true distance. A zero normal is left alone.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is a view volume bounded by six inward-facing planes.
type Frustum struct {
	Planes [6]Plane
}

// Plane order within Frustum.Planes.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of a view-projection matrix. Each
// pair is the fourth row plus or minus one of the first three: x, y, then z,
// which is the order of the plane constants.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	row := func(i int) [4]float64 { return [4]float64{m[i], m[i+4], m[i+8], m[i+12]} }
	w := row(3)

	var f Frustum
	for axis := range 3 {
		r := row(axis)
		for side, sign := range [2]float64{1, -1} {
			p := Plane{
				Normal: math3d.V3(w[0]+sign*r[0], w[1]+sign*r[1], w[2]+sign*r[2]),
				D:      w[3] + sign*r[3],
			}
			p.Normalize()
			f.Planes[axis*2+side] = p
		}
	}
	return f
}

func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	return f.IntersectsSphere(p, 0)
}

// IntersectsSphere reports whether any part of the sphere may be inside.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for _, p := range f.Planes {
		if p.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

// IntersectBox reports whether any part of box may be inside. For each
// plane only the corner furthest along its normal is tested. Empty boxes are
// never visible.
func (f Frustum) IntersectBox(box models.BoundingBox) bool {
	if box.Empty() {
		return false
	}
	lo, hi := box.Min(), box.Max()
	pick := func(n, lo, hi float64) float64 {
		if n >= 0 {
			return hi
		}
		return lo
	}
	for _, p := range f.Planes {
		corner := math3d.V3(pick(p.Normal.X, lo.X, hi.X), pick(p.Normal.Y, lo.Y, hi.Y), pick(p.Normal.Z, lo.Z, hi.Z))
		if p.DistanceToPoint(corner) < 0 {
			return false
		}
	}
	return true
}
