package math3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat is a rotation quaternion with vector part (X, Y, Z) and scalar part W.
// Interpolation and matrix conversion are delegated to mgl64.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// Q creates a new Quat.
func Q(x, y, z, w float64) Quat {
	return Quat{x, y, z, w}
}

// QuatFromAxisAngle returns the rotation of angle radians around axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	a := axis.Normalize()
	return fromMGL(mgl64.QuatRotate(angle, mgl64.Vec3{a.X, a.Y, a.Z}))
}

// QuatFromMat4 extracts the rotation of a matrix whose upper 3x3 block is
// orthonormal. Use Decompose for matrices that carry scale.
func QuatFromMat4(m Mat4) Quat {
	return fromMGL(mgl64.Mat4ToQuat(mgl64.Mat4(m))).Normalize()
}

func (q Quat) mgl() mgl64.Quat {
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

func fromMGL(q mgl64.Quat) Quat {
	return Quat{q.V[0], q.V[1], q.V[2], q.W}
}

// Dot returns the four-component dot product.
func (q Quat) Dot(r Quat) float64 {
	return q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W
}

// Len returns the quaternion norm.
func (q Quat) Len() float64 {
	return math.Sqrt(q.Dot(q))
}

// Normalize returns q scaled to unit length. A zero quaternion becomes identity.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Negate returns -q, which encodes the same rotation.
func (q Quat) Negate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, -q.W}
}

// Mul returns the Hamilton product q * r (apply r, then q).
func (q Quat) Mul(r Quat) Quat {
	return fromMGL(q.mgl().Mul(r.mgl()))
}

// Rotate rotates v by q.
func (q Quat) Rotate(v Vec3) Vec3 {
	r := q.mgl().Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
	return Vec3{r[0], r[1], r[2]}
}

// Mat4 returns the rotation matrix of the normalized quaternion.
func (q Quat) Mat4() Mat4 {
	return Mat4(q.Normalize().mgl().Mat4())
}

// Slerp interpolates from q to r along the shortest arc and renormalizes.
func (q Quat) Slerp(r Quat, t float64) Quat {
	return fromMGL(mgl64.QuatSlerp(q.mgl(), r.mgl(), t)).Normalize()
}

// Nlerp is the normalized linear interpolation from q to r along the
// shortest arc.
func (q Quat) Nlerp(r Quat, t float64) Quat {
	if q.Dot(r) < 0 {
		r = r.Negate()
	}
	return fromMGL(mgl64.QuatNlerp(q.mgl(), r.mgl(), t))
}

// SameRotation reports whether q and r encode the same rotation within eps,
// treating q and -q as equal.
func (q Quat) SameRotation(r Quat, eps float64) bool {
	return 1-math.Abs(q.Normalize().Dot(r.Normalize())) <= eps
}
