// Package skeleton reduces an arbitrary scene hierarchy to the minimal set of
// nodes needed to drive skinning, and assigns them dense IDs so that every
// bone's parent has a smaller ID than the bone itself.
package skeleton

import (
	"errors"

	"github.com/taigrr/marionette/pkg/math3d"
)

// DefaultMaxBones matches the bone matrix array size of common skinning
// shaders.
const DefaultMaxBones = 100

// Root is the ID of the synthetic identity root every skeleton starts with.
const Root = 0

// NoParent is the parent ID of the root bone.
const NoParent = -1

// ErrResourceExceeded is returned when a fixed capacity would be exceeded.
var ErrResourceExceeded = errors.New("resource exceeded")

// Bone is one joint of a reduced skeleton.
type Bone struct {
	ID     int
	Parent int
	Name   string
	Depth  int

	// Local is the bind-pose transform relative to the parent bone, and
	// LocalTRS is its decomposition.
	Local    math3d.Mat4
	LocalTRS math3d.TRS

	// BindOffset takes a bind-pose model-space vertex into this bone's space.
	// It is identity for bones that only exist to connect skinned bones.
	BindOffset math3d.Mat4

	// Skinned is true when some mesh carries weights for this bone.
	Skinned bool
}

// BoneEnd marks the tip of a terminal bone: a scene node hanging off a skinned
// bone that did not itself make it into the skeleton.
type BoneEnd struct {
	Bone   int
	Offset math3d.Vec3
}

// Skeleton is immutable once built and safe to share between goroutines.
type Skeleton struct {
	Bones []Bone
	Ends  []BoneEnd

	// Names maps node names to bone IDs. Unnamed nodes are absent.
	Names map[string]int

	// Duplicates lists names that appeared on more than one bone. The
	// shallowest bone keeps the name.
	Duplicates []string
}

// Len returns the number of bones including the synthetic root.
func (s *Skeleton) Len() int {
	return len(s.Bones)
}

// Lookup returns the ID of the bone named name.
func (s *Skeleton) Lookup(name string) (int, bool) {
	id, ok := s.Names[name]
	return id, ok
}

// HasChildren reports, per bone ID, whether any other bone names it as parent.
func (s *Skeleton) HasChildren() []bool {
	out := make([]bool, len(s.Bones))
	for _, b := range s.Bones[1:] {
		out[b.Parent] = true
	}
	return out
}
