package math3d

import "math"

// TRS is an affine transform split into translation, rotation and scale.
type TRS struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// IdentityTRS returns the TRS of the identity matrix.
func IdentityTRS() TRS {
	return TRS{Rotation: QuatIdentity(), Scale: Vec3{1, 1, 1}}
}

// Mat4 composes T * R * S.
func (t TRS) Mat4() Mat4 {
	m := t.Rotation.Mat4()
	for col, s := range [3]float64{t.Scale.X, t.Scale.Y, t.Scale.Z} {
		for row := range 3 {
			m[row+col*4] *= s
		}
	}
	m.SetTranslation(t.Position)
	return m
}

// Decompose splits an affine matrix into translation, rotation and scale.
// Shear is discarded. A mirrored basis is reported as a negative X scale.
func Decompose(m Mat4) TRS {
	cols := [3]Vec3{
		{m[0], m[1], m[2]},
		{m[4], m[5], m[6]},
		{m[8], m[9], m[10]},
	}
	scale := Vec3{cols[0].Len(), cols[1].Len(), cols[2].Len()}
	if cols[0].Cross(cols[1]).Dot(cols[2]) < 0 {
		scale.X = -scale.X
	}

	rot := Identity()
	for col, s := range [3]float64{scale.X, scale.Y, scale.Z} {
		if math.Abs(s) < 1e-12 {
			continue
		}
		c := cols[col].Div(s)
		rot[col*4], rot[col*4+1], rot[col*4+2] = c.X, c.Y, c.Z
	}

	return TRS{
		Position: m.Translation(),
		Rotation: QuatFromMat4(rot),
		Scale:    scale,
	}
}
