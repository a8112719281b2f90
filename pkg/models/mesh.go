// Package models loads skinned models: it imports glTF scenes, reduces them
// to a skeleton, binds vertices and measures bind-pose bounds.
package models

import (
	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/skin"
)

// SkinnedVertex holds all vertex attributes in model space, plus the four
// bones that move it.
type SkinnedVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
	Bones    [skin.MaxInfluences]int
	Weights  [skin.MaxInfluences]float64
}

// Binding returns the vertex's bone influences.
func (v SkinnedVertex) Binding() skin.Binding {
	return skin.Binding{Bones: v.Bones, Weights: v.Weights}
}

// Mesh is a range of Model.Indices drawn with one material.
type Mesh struct {
	Name     string
	Material int // Index into Model.Materials (-1 for no material)
	Offset   int // First index in Model.Indices
	Count    int // Number of indices, a multiple of 3
}

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int {
	return m.Count / 3
}

// smoothNormals computes averaged face normals for a mesh that shipped
// without any.
func smoothNormals(positions []math3d.Vec3, indices []uint32) []math3d.Vec3 {
	normals := make([]math3d.Vec3, len(positions))

	// Accumulate unnormalized face normals so larger faces weigh more.
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(max(a, b, c)) >= len(positions) {
			continue
		}
		edge1 := positions[b].Sub(positions[a])
		edge2 := positions[c].Sub(positions[a])
		n := edge1.Cross(edge2)

		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
