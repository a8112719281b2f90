// Package scene holds the read-only scene graph produced by an importer:
// a node tree with local transforms, meshes carrying per-bone vertex
// weights, and keyframed animations addressed by node name.
package scene

import (
	"errors"
	"fmt"

	"github.com/taigrr/marionette/pkg/math3d"
)

// ErrNoScene is returned when an importer yields no usable scene.
var ErrNoScene = errors.New("scene: no scene")

// Scene is an imported asset.
type Scene struct {
	Root       *Node
	Meshes     []*Mesh
	Materials  []Material
	Animations []*Animation
}

// Node is a transform in the scene hierarchy. Meshes index Scene.Meshes.
type Node struct {
	Name      string
	Transform math3d.Mat4
	Children  []*Node
	Meshes    []int
}

// Mesh is a triangle list in the space of the node that references it.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	UVs       []math3d.Vec2
	Indices   []uint32
	Material  int
	Bones     []BoneWeights
}

// BoneWeights lists the vertices a named bone influences. Offset maps mesh
// space into the bone's space at bind time.
type BoneWeights struct {
	Name    string
	Offset  math3d.Mat4
	Weights []VertexWeight
}

// VertexWeight is one bone influence on one vertex.
type VertexWeight struct {
	Vertex int
	Weight float64
}

// Material is the subset of surface data the viewers use.
type Material struct {
	Name      string
	BaseColor [4]float64
}

// Animation is a keyframed clip. Times are in ticks; TicksPerSecond is zero
// when the source format does not say.
type Animation struct {
	Name           string
	Duration       float64
	TicksPerSecond float64
	Channels       []NodeChannel
}

// NodeChannel animates the node named NodeName.
type NodeChannel struct {
	NodeName     string
	PositionKeys []VectorKey
	RotationKeys []QuatKey
	ScaleKeys    []VectorKey
}

// VectorKey is a timed vector sample.
type VectorKey struct {
	Time  float64
	Value math3d.Vec3
}

// QuatKey is a timed rotation sample.
type QuatKey struct {
	Time  float64
	Value math3d.Quat
}

// Validate checks that s can be fed to the rig builder: the hierarchy under
// Root must be a tree and every mesh index must resolve. Failures wrap
// ErrNoScene.
func (s *Scene) Validate() error {
	if s == nil || s.Root == nil {
		return ErrNoScene
	}

	seen := map[*Node]bool{s.Root: true}
	stack := []*Node{s.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(s.Meshes) || s.Meshes[mi] == nil {
				return fmt.Errorf("%w: node %q: mesh %d out of range", ErrNoScene, n.Name, mi)
			}
		}
		for _, c := range n.Children {
			if c == nil {
				return fmt.Errorf("%w: node %q has a nil child", ErrNoScene, n.Name)
			}
			if seen[c] {
				return fmt.Errorf("%w: node %q is reached twice", ErrNoScene, c.Name)
			}
			seen[c] = true
			stack = append(stack, c)
		}
	}
	return nil
}
