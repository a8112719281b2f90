package pose

import (
	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/skeleton"
)

// DefaultTipLength is the bone-space length of the tip drawn on a leaf bone
// that has no recorded end.
const DefaultTipLength = 1.0

// Segment is one line of a skeleton overlay in model space.
type Segment struct {
	Bone     int
	From, To math3d.Vec3
}

// Lines builds the skeleton overlay for joints (a pose composed without bind
// offsets). Every bone below the top-level bone is linked to its parent. Bone
// ends become tips, and leaf bones without an end get a tip along their local
// +Y axis.
func Lines(skel *skeleton.Skeleton, joints Pose, tipLength float64) []Segment {
	if tipLength <= 0 {
		tipLength = DefaultTipLength
	}

	var segs []Segment
	for _, b := range skel.Bones[1:] {
		if b.Parent == skeleton.Root {
			continue
		}
		segs = append(segs, Segment{
			Bone: b.ID,
			From: joints[b.Parent].Translation(),
			To:   joints[b.ID].Translation(),
		})
	}

	hasEnd := make([]bool, skel.Len())
	for _, e := range skel.Ends {
		hasEnd[e.Bone] = true
		segs = append(segs, Segment{
			Bone: e.Bone,
			From: joints[e.Bone].Translation(),
			To:   joints[e.Bone].MulVec3(e.Offset),
		})
	}

	children := skel.HasChildren()
	for _, b := range skel.Bones[1:] {
		if children[b.ID] || hasEnd[b.ID] {
			continue
		}
		segs = append(segs, Segment{
			Bone: b.ID,
			From: joints[b.ID].Translation(),
			To:   joints[b.ID].MulVec3(math3d.V3(0, tipLength, 0)),
		})
	}
	return segs
}
