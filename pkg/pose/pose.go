// Package pose turns bone-local transforms into model-space bone matrices.
//
// A Pose is indexed by bone ID. Because every bone's parent has a smaller ID,
// one forward pass resolves the whole hierarchy.
package pose

import (
	"github.com/taigrr/marionette/pkg/anim"
	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/skeleton"
)

// Pose holds one matrix per bone.
type Pose []math3d.Mat4

// Floats flattens the pose into 16 column-major floats per bone, the layout
// of a shader bone matrix array.
func (p Pose) Floats() []float32 {
	out := make([]float32, 0, len(p)*16)
	for _, m := range p {
		out = m.AppendFloat32(out)
	}
	return out
}

// BindLocal returns the bind-pose local transforms of skel.
func BindLocal(skel *skeleton.Skeleton) Pose {
	local := make(Pose, skel.Len())
	for i, b := range skel.Bones {
		local[i] = b.Local
	}
	return local
}

// Sample evaluates clip at ticks, which should already be wrapped into the
// clip's duration. Bones without a channel keep their bind transform. An
// animated bone takes position and rotation from its keys, falling back to
// the bind value for an empty key list, and always keeps its bind scale.
func Sample(skel *skeleton.Skeleton, clip *anim.Clip, ticks float64) Pose {
	local := BindLocal(skel)
	if clip == nil {
		return local
	}

	for _, ch := range clip.Channels {
		if len(ch.Positions) == 0 && len(ch.Rotations) == 0 {
			continue
		}
		trs := skel.Bones[ch.Bone].LocalTRS
		if len(ch.Positions) > 0 {
			trs.Position = anim.LookupVec3(ch.Positions, ticks)
		}
		if len(ch.Rotations) > 0 {
			trs.Rotation = anim.LookupQuat(ch.Rotations, ticks)
		}
		local[ch.Bone] = trs.Mat4()
	}
	return local
}

// Compose resolves local transforms to model space. With applyBindOffset the
// result is ready for skinning; without it each matrix places the bone's
// joint in model space.
func Compose(skel *skeleton.Skeleton, local Pose, applyBindOffset bool) Pose {
	return ComposeInto(nil, skel, local, applyBindOffset)
}

// ComposeInto is Compose writing into dst, which is grown if needed and
// returned.
func ComposeInto(dst Pose, skel *skeleton.Skeleton, local Pose, applyBindOffset bool) Pose {
	n := skel.Len()
	if cap(dst) < n {
		dst = make(Pose, n)
	}
	dst = dst[:n]

	dst[skeleton.Root] = local[skeleton.Root]
	for i := 1; i < n; i++ {
		dst[i] = dst[skel.Bones[i].Parent].Mul(local[i])
	}

	// Offsets go on only after every parent has been resolved without them.
	if applyBindOffset {
		for i := range dst {
			dst[i] = dst[i].Mul(skel.Bones[i].BindOffset)
		}
	}
	return dst
}

// ApplyBindOffsets returns joints with each bone's bind offset
// post-multiplied, turning joint matrices into skinning matrices.
func ApplyBindOffsets(skel *skeleton.Skeleton, joints Pose) Pose {
	out := make(Pose, len(joints))
	for i, m := range joints {
		out[i] = m.Mul(skel.Bones[i].BindOffset)
	}
	return out
}
