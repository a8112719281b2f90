package skeleton

import (
	"errors"
	"testing"

	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/scene"
)

func node(name string, pos math3d.Vec3, children ...*scene.Node) *scene.Node {
	return &scene.Node{Name: name, Transform: math3d.Translate(pos), Children: children}
}

func identityOffsets(names ...string) map[string]math3d.Mat4 {
	m := make(map[string]math3d.Mat4, len(names))
	for _, n := range names {
		m[n] = math3d.Identity()
	}
	return m
}

// rig builds:
//
//	root
//	├── armature
//	│   └── hips (bone)
//	│       ├── spine (bone)
//	│       │   └── head_end
//	│       └── leg (bone)
//	└── props
//	    └── lamp
func rig() *scene.Node {
	return node("root", math3d.V3(0, 0, 0),
		node("armature", math3d.V3(0, 1, 0),
			node("hips", math3d.V3(0, 1, 0),
				node("spine", math3d.V3(0, 1, 0),
					node("head_end", math3d.V3(0, 0.5, 0)),
				),
				node("leg", math3d.V3(0, -1, 0)),
			),
		),
		node("props", math3d.V3(5, 0, 0),
			node("lamp", math3d.V3(0, 2, 0)),
		),
	)
}

func TestReduceMembership(t *testing.T) {
	skel, err := Reduce(rig(), identityOffsets("hips", "spine", "leg"), DefaultMaxBones)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	want := []string{"", "root", "armature", "hips", "spine", "leg"}
	if skel.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", skel.Len(), len(want))
	}
	for id, name := range want {
		if skel.Bones[id].Name != name {
			t.Errorf("bone %d = %q, want %q", id, skel.Bones[id].Name, name)
		}
		if skel.Bones[id].ID != id {
			t.Errorf("bone %d has ID %d", id, skel.Bones[id].ID)
		}
	}

	for _, name := range []string{"props", "lamp", "head_end"} {
		if _, ok := skel.Lookup(name); ok {
			t.Errorf("%s should not be part of the skeleton", name)
		}
	}
}

func TestReduceParentOrdering(t *testing.T) {
	skel, err := Reduce(rig(), identityOffsets("hips", "spine", "leg"), 0)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	if skel.Bones[Root].Parent != NoParent {
		t.Errorf("root parent = %d, want NoParent", skel.Bones[Root].Parent)
	}
	for _, b := range skel.Bones[1:] {
		if b.Parent >= b.ID {
			t.Errorf("bone %q: parent %d >= id %d", b.Name, b.Parent, b.ID)
		}
	}

	parents := map[string]string{"root": "", "armature": "root", "hips": "armature", "spine": "hips", "leg": "hips"}
	for child, parent := range parents {
		id, _ := skel.Lookup(child)
		if got := skel.Bones[skel.Bones[id].Parent].Name; got != parent {
			t.Errorf("parent of %s = %q, want %q", child, got, parent)
		}
	}
}

func TestReduceDepthOrderAcrossBranches(t *testing.T) {
	// A deep bone in the first branch must still come after a shallow bone in
	// the second branch.
	root := node("root", math3d.V3(0, 0, 0),
		node("a", math3d.V3(0, 0, 0),
			node("a1", math3d.V3(0, 0, 0),
				node("a2", math3d.V3(0, 0, 0)),
			),
		),
		node("b", math3d.V3(0, 0, 0)),
	)

	skel, err := Reduce(root, identityOffsets("a2", "b"), 0)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	want := []string{"", "root", "a", "b", "a1", "a2"}
	for id, name := range want {
		if skel.Bones[id].Name != name {
			t.Errorf("bone %d = %q, want %q", id, skel.Bones[id].Name, name)
		}
	}
}

func TestReduceBoneEnds(t *testing.T) {
	skel, err := Reduce(rig(), identityOffsets("hips", "spine", "leg"), 0)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	if len(skel.Ends) != 1 {
		t.Fatalf("Ends = %v, want one end", skel.Ends)
	}
	spine, _ := skel.Lookup("spine")
	end := skel.Ends[0]
	if end.Bone != spine {
		t.Errorf("end bone = %d, want spine (%d)", end.Bone, spine)
	}
	if !end.Offset.ApproxEqual(math3d.V3(0, 0.5, 0), 1e-12) {
		t.Errorf("end offset = %v, want (0, 0.5, 0)", end.Offset)
	}
}

func TestReduceLocalTransforms(t *testing.T) {
	skel, err := Reduce(rig(), identityOffsets("spine"), 0)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	spine, _ := skel.Lookup("spine")
	b := skel.Bones[spine]
	if !b.Local.ApproxEqual(math3d.Translate(math3d.V3(0, 1, 0)), 1e-12) {
		t.Errorf("spine local = %v", b.Local)
	}
	if !b.LocalTRS.Position.ApproxEqual(math3d.V3(0, 1, 0), 1e-12) {
		t.Errorf("spine local position = %v", b.LocalTRS.Position)
	}
	if !b.Skinned {
		t.Error("spine should be marked skinned")
	}
	hips, _ := skel.Lookup("hips")
	if skel.Bones[hips].Skinned {
		t.Error("hips only connects spine and should not be marked skinned")
	}
}

func TestReduceKeepsSceneParents(t *testing.T) {
	root := rig()
	skel, err := Reduce(root, identityOffsets("spine", "leg"), 0)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	scene.Walk(root, func(v scene.Visit) bool {
		id, ok := skel.Lookup(v.Node.Name)
		if !ok {
			return true
		}
		b := skel.Bones[id]
		if b.Local != v.Node.Transform {
			t.Errorf("%s local = %v, want the node transform", b.Name, b.Local)
		}
		switch {
		case v.Parent == nil && b.Parent != Root:
			t.Errorf("%s parent = %d, want the synthetic root", b.Name, b.Parent)
		case v.Parent != nil && skel.Bones[b.Parent].Name != v.Parent.Name:
			t.Errorf("%s parent = %q, want %q", b.Name, skel.Bones[b.Parent].Name, v.Parent.Name)
		}
		return true
	})
}

func TestReduceEmptyNames(t *testing.T) {
	root := node("root", math3d.V3(0, 0, 0),
		node("", math3d.V3(0, 1, 0),
			node("hand", math3d.V3(0, 1, 0)),
		),
	)

	skel, err := Reduce(root, identityOffsets("hand"), 0)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if skel.Len() != 4 {
		t.Fatalf("Len = %d, want 4 (unnamed node still takes a slot)", skel.Len())
	}
	if _, ok := skel.Names[""]; ok {
		t.Error("empty name must not be mapped")
	}
	if len(skel.Names) != 2 {
		t.Errorf("Names = %v, want root and hand", skel.Names)
	}
}

func TestReduceDuplicateNames(t *testing.T) {
	root := node("root", math3d.V3(0, 0, 0),
		node("joint", math3d.V3(0, 1, 0),
			node("joint", math3d.V3(0, 1, 0)),
		),
	)

	skel, err := Reduce(root, identityOffsets("joint"), 0)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if id, _ := skel.Lookup("joint"); id != 2 {
		t.Errorf("joint maps to %d, want the shallowest (2)", id)
	}
	if len(skel.Duplicates) != 1 || skel.Duplicates[0] != "joint" {
		t.Errorf("Duplicates = %v", skel.Duplicates)
	}
}

func TestReduceNoBones(t *testing.T) {
	skel, err := Reduce(rig(), nil, DefaultMaxBones)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if skel.Len() != 1 {
		t.Errorf("Len = %d, want only the synthetic root", skel.Len())
	}
}

func TestReduceCapacity(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		wantErr bool
	}{
		{"unlimited", 0, false},
		{"exact", 6, false},
		{"one short", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(rig(), identityOffsets("hips", "spine", "leg"), tt.max)
			if tt.wantErr && !errors.Is(err, ErrResourceExceeded) {
				t.Errorf("err = %v, want ErrResourceExceeded", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestReduceNilRoot(t *testing.T) {
	if _, err := Reduce(nil, nil, 0); !errors.Is(err, scene.ErrNoScene) {
		t.Errorf("err = %v, want ErrNoScene", err)
	}
}

func TestCollectOffsets(t *testing.T) {
	meshNode := &scene.Node{
		Name:      "body",
		Transform: math3d.Translate(math3d.V3(0, 0, 2)),
		Meshes:    []int{0},
	}
	root := &scene.Node{
		Name:      "root",
		Transform: math3d.Scale(math3d.V3(2, 2, 2)),
		Children:  []*scene.Node{meshNode},
	}
	skinOffset := math3d.Translate(math3d.V3(0, -1, 0))
	s := &scene.Scene{
		Root: root,
		Meshes: []*scene.Mesh{{
			Bones: []scene.BoneWeights{{Name: "bone", Offset: skinOffset}, {Name: ""}},
		}},
	}

	offsets := CollectOffsets(s)
	if len(offsets) != 1 {
		t.Fatalf("offsets = %v, want only the named bone", offsets)
	}

	meshGlobal := root.Transform.Mul(meshNode.Transform)
	want := skinOffset.Mul(meshGlobal.Inverse())
	if !offsets["bone"].ApproxEqual(want, 1e-12) {
		t.Errorf("offset = %v, want %v", offsets["bone"], want)
	}
}

func BenchmarkReduce(b *testing.B) {
	root := rig()
	offsets := identityOffsets("hips", "spine", "leg")

	for b.Loop() {
		_, _ = Reduce(root, offsets, DefaultMaxBones)
	}
}
