// Package skin resolves per-vertex bone influences into a fixed budget of
// four weighted bones and applies them on the CPU.
package skin

import (
	"errors"
	"fmt"

	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/scene"
)

// MaxInfluences is the number of bones a vertex can follow.
const MaxInfluences = 4

// ErrVertexOutOfRange is returned for weight records that name a vertex the
// mesh does not have.
var ErrVertexOutOfRange = errors.New("skin: vertex out of range")

// Binding holds up to four bone influences on one vertex. The zero value has
// four empty slots.
type Binding struct {
	Bones   [MaxInfluences]int
	Weights [MaxInfluences]float64
}

// Add offers a bone influence. It replaces the weakest slot when weight is
// strictly greater than that slot's weight, so the strongest four survive.
func (b *Binding) Add(bone int, weight float64) {
	slot := 0
	for i := 1; i < MaxInfluences; i++ {
		if b.Weights[i] < b.Weights[slot] {
			slot = i
		}
	}
	if weight > b.Weights[slot] {
		b.Bones[slot] = bone
		b.Weights[slot] = weight
	}
}

// Normalize scales the weights to sum to one. A vertex without influence is
// bound fully to bone 0.
func (b *Binding) Normalize() {
	var sum float64
	for _, w := range b.Weights {
		sum += w
	}
	if sum > 0 {
		for i := range b.Weights {
			b.Weights[i] /= sum
		}
		return
	}
	*b = Binding{}
	b.Weights[0] = 1
}

// Sum returns the total weight.
func (b Binding) Sum() float64 {
	var sum float64
	for _, w := range b.Weights {
		sum += w
	}
	return sum
}

// BindMesh resolves mesh's bone weight records into one normalized Binding
// per vertex. names maps bone names to IDs; records naming unknown bones are
// skipped.
func BindMesh(mesh *scene.Mesh, names map[string]int) ([]Binding, error) {
	bindings := make([]Binding, len(mesh.Positions))
	for _, bone := range mesh.Bones {
		id, ok := names[bone.Name]
		if !ok || bone.Name == "" {
			continue
		}
		for _, vw := range bone.Weights {
			if vw.Vertex < 0 || vw.Vertex >= len(bindings) {
				return nil, fmt.Errorf("%w: bone %q weights vertex %d of %d", ErrVertexOutOfRange, bone.Name, vw.Vertex, len(bindings))
			}
			bindings[vw.Vertex].Add(id, vw.Weight)
		}
	}

	for i := range bindings {
		bindings[i].Normalize()
	}
	return bindings, nil
}

// Deform returns p moved by the weighted sum of its bones' skinning
// transforms. pose must already include the bind offsets.
func Deform(pose []math3d.Mat4, b Binding, p math3d.Vec3) math3d.Vec3 {
	var out math3d.Vec3
	for i, w := range b.Weights {
		if w == 0 {
			continue
		}
		out = out.Add(pose[b.Bones[i]].MulVec3(p).Scale(w))
	}
	return out
}

// NormalMatrices stores the inverse transpose of every pose matrix in dst,
// growing it as needed, and returns it.
func NormalMatrices(dst, pose []math3d.Mat4) []math3d.Mat4 {
	if cap(dst) < len(pose) {
		dst = make([]math3d.Mat4, len(pose))
	}
	dst = dst[:len(pose)]
	for i, m := range pose {
		dst[i] = m.NormalMatrix()
	}
	return dst
}

// DeformNormal is Deform for surface normals. normals holds the per-bone
// matrices from NormalMatrices so that non-uniform bone scale keeps n
// perpendicular to the surface. The result is normalized.
func DeformNormal(normals []math3d.Mat4, b Binding, n math3d.Vec3) math3d.Vec3 {
	var out math3d.Vec3
	for i, w := range b.Weights {
		if w == 0 {
			continue
		}
		out = out.Add(normals[b.Bones[i]].MulVec3Dir(n).Scale(w))
	}
	return out.Normalize()
}
