package math3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat4 is a 4x4 matrix stored in column-major order: element (row, col) is
// at index row+col*4 and the translation sits in elements 12..14. The layout
// matches skinning shader uniforms and converts directly to mgl64.Mat4,
// which does the arithmetic.
type Mat4 [16]float64

func (m Mat4) mgl() mgl64.Mat4 { return mgl64.Mat4(m) }

func (v Vec3) mgl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func vec3FromMGL(v mgl64.Vec3) Vec3 { return Vec3{v[0], v[1], v[2]} }

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4(mgl64.Ident4())
}

// Translate returns a translation by v.
func Translate(v Vec3) Mat4 {
	return Mat4(mgl64.Translate3D(v.X, v.Y, v.Z))
}

// Scale returns a per-axis scale by v.
func Scale(v Vec3) Mat4 {
	return Mat4(mgl64.Scale3D(v.X, v.Y, v.Z))
}

// RotateX returns a rotation of angle radians around +X.
func RotateX(angle float64) Mat4 {
	return Mat4(mgl64.HomogRotate3DX(angle))
}

// RotateY returns a rotation of angle radians around +Y.
func RotateY(angle float64) Mat4 {
	return Mat4(mgl64.HomogRotate3DY(angle))
}

// RotateZ returns a rotation of angle radians around +Z.
func RotateZ(angle float64) Mat4 {
	return Mat4(mgl64.HomogRotate3DZ(angle))
}

// Rotate returns a rotation of angle radians around axis.
func Rotate(axis Vec3, angle float64) Mat4 {
	return Mat4(mgl64.HomogRotate3D(angle, axis.Normalize().mgl()))
}

// LookAt returns a right-handed view matrix for a camera at eye facing
// center.
func LookAt(eye, center, up Vec3) Mat4 {
	return Mat4(mgl64.LookAtV(eye.mgl(), center.mgl(), up.mgl()))
}

// Perspective returns an OpenGL-style projection mapping view depth to NDC
// [-1, 1]. fovy is the vertical field of view in radians.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	return Mat4(mgl64.Perspective(fovy, aspect, near, far))
}

// Mul returns a * b, which applies b first.
func (a Mat4) Mul(b Mat4) Mat4 {
	return Mat4(a.mgl().Mul4(b.mgl()))
}

// MulVec3 transforms v as a point (w=1), dividing by the resulting w when it
// is not zero.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	r := m.MulVec4(Vec4{v.X, v.Y, v.Z, 1})
	if r.W == 0 {
		return r.Vec3()
	}
	return r.PerspectiveDivide()
}

// MulVec3Dir transforms v as a direction (w=0), ignoring translation.
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return m.MulVec4(Vec4{v.X, v.Y, v.Z, 0}).Vec3()
}

// MulVec4 transforms v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	r := m.mgl().Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, v.W})
	return Vec4{r[0], r[1], r[2], r[3]}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4(m.mgl().Transpose())
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	return m.mgl().Det()
}

// Inverse returns the inverse of the matrix, or identity when it is
// singular.
func (m Mat4) Inverse() Mat4 {
	if m.Determinant() == 0 {
		return Identity()
	}
	return Mat4(m.mgl().Inv())
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// SetTranslation sets the translation component.
func (m *Mat4) SetTranslation(v Vec3) {
	m[12], m[13], m[14] = v.X, v.Y, v.Z
}

// NormalMatrix returns the inverse transpose used to carry normals through m.
func (m Mat4) NormalMatrix() Mat4 {
	return m.Inverse().Transpose()
}

// ApproxEqual reports whether every element of m and n differs by at most eps.
func (m Mat4) ApproxEqual(n Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-n[i]) > eps {
			return false
		}
	}
	return true
}

// AppendFloat32 appends the 16 elements of m, column-major, to dst.
func (m Mat4) AppendFloat32(dst []float32) []float32 {
	for _, v := range m {
		dst = append(dst, float32(v))
	}
	return dst
}
