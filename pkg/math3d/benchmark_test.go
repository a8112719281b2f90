package math3d

import "testing"

func benchTRS() TRS {
	return TRS{
		Position: V3(1, 2, 3),
		Rotation: QuatFromAxisAngle(V3(0, 1, 0), 0.5),
		Scale:    V3(2, 2, 2),
	}
}

func BenchmarkBoneChain(b *testing.B) {
	// Twenty local transforms composed into a global one, as the pose
	// evaluator does per frame.
	locals := make([]Mat4, 20)
	for i := range locals {
		locals[i] = benchTRS().Mat4()
	}

	for b.Loop() {
		g := Identity()
		for _, l := range locals {
			g = g.Mul(l)
		}
		_ = g
	}
}

func BenchmarkSkinMatrix(b *testing.B) {
	global := benchTRS().Mat4()
	offset := global.Inverse()

	for b.Loop() {
		_ = global.Mul(offset)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := benchTRS().Mat4()
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := benchTRS().Mat4()

	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkQuatSlerp(b *testing.B) {
	q1 := QuatFromAxisAngle(V3(0, 1, 0), 0.2)
	q2 := QuatFromAxisAngle(V3(1, 0, 0), 1.3)

	for b.Loop() {
		_ = q1.Slerp(q2, 0.37)
	}
}

func BenchmarkTRSMat4(b *testing.B) {
	trs := benchTRS()

	for b.Loop() {
		_ = trs.Mat4()
	}
}

func BenchmarkDecompose(b *testing.B) {
	m := benchTRS().Mat4()

	for b.Loop() {
		_ = Decompose(m)
	}
}

func BenchmarkCameraMatrices(b *testing.B) {
	for b.Loop() {
		_ = Perspective(1.0, 4.0/3.0, 0.1, 100).Mul(LookAt(V3(0, 2, 10), Zero3(), Up()))
	}
}
