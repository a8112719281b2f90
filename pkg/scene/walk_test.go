package scene

import (
	"errors"
	"testing"

	"github.com/taigrr/marionette/pkg/math3d"
)

func chain(names ...string) *Node {
	var root, parent *Node
	for _, name := range names {
		n := &Node{Name: name, Transform: math3d.Translate(math3d.V3(0, 1, 0))}
		if parent == nil {
			root = n
		} else {
			parent.Children = append(parent.Children, n)
		}
		parent = n
	}
	return root
}

func TestWalkOrder(t *testing.T) {
	root := &Node{Name: "root", Transform: math3d.Identity()}
	a := &Node{Name: "a", Transform: math3d.Identity()}
	b := &Node{Name: "b", Transform: math3d.Identity()}
	a1 := &Node{Name: "a1", Transform: math3d.Identity()}
	root.Children = []*Node{a, b}
	a.Children = []*Node{a1}

	var got []string
	var depths []int
	Walk(root, func(v Visit) bool {
		got = append(got, v.Node.Name)
		depths = append(depths, v.Depth)
		return true
	})

	want := []string{"root", "a", "a1", "b"}
	wantDepths := []int{0, 1, 2, 1}
	for i := range want {
		if got[i] != want[i] || depths[i] != wantDepths[i] {
			t.Fatalf("visit %d = (%s, %d), want (%s, %d)", i, got[i], depths[i], want[i], wantDepths[i])
		}
	}
}

func TestWalkGlobal(t *testing.T) {
	root := chain("root", "a", "b")

	var last math3d.Mat4
	Walk(root, func(v Visit) bool {
		last = v.Global
		return true
	})

	if got := last.Translation(); !got.ApproxEqual(math3d.V3(0, 3, 0), 1e-12) {
		t.Errorf("leaf global translation = %v, want (0, 3, 0)", got)
	}
}

func TestWalkDeepHierarchy(t *testing.T) {
	names := make([]string, 100000)
	for i := range names {
		names[i] = "n"
	}
	if got := Count(chain(names...)); got != len(names) {
		t.Errorf("Count = %d, want %d", got, len(names))
	}
}

func TestFind(t *testing.T) {
	root := chain("root", "a", "b")
	if n := Find(root, "b"); n == nil || n.Name != "b" {
		t.Errorf("Find(b) = %v", n)
	}
	if n := Find(root, "missing"); n != nil {
		t.Errorf("Find(missing) = %v, want nil", n)
	}
}

func TestValidate(t *testing.T) {
	var s *Scene
	if err := s.Validate(); !errors.Is(err, ErrNoScene) {
		t.Errorf("nil scene: err = %v, want ErrNoScene", err)
	}
	if err := (&Scene{}).Validate(); !errors.Is(err, ErrNoScene) {
		t.Errorf("no root: err = %v, want ErrNoScene", err)
	}
	if err := (&Scene{Root: chain("root")}).Validate(); err != nil {
		t.Errorf("valid scene: err = %v", err)
	}
}

func TestValidateShape(t *testing.T) {
	cycle := func() *Scene {
		a := &Node{Name: "a", Transform: math3d.Identity()}
		b := &Node{Name: "b", Transform: math3d.Identity(), Children: []*Node{a}}
		a.Children = []*Node{b}
		return &Scene{Root: a}
	}
	shared := func() *Scene {
		leaf := &Node{Name: "leaf", Transform: math3d.Identity()}
		l := &Node{Name: "l", Children: []*Node{leaf}}
		r := &Node{Name: "r", Children: []*Node{leaf}}
		return &Scene{Root: &Node{Name: "root", Children: []*Node{l, r}}}
	}
	self := func() *Scene {
		n := &Node{Name: "n"}
		n.Children = []*Node{n}
		return &Scene{Root: n}
	}

	tests := []struct {
		name  string
		scene *Scene
		ok    bool
	}{
		{"deep chain", &Scene{Root: chain(make([]string, 10000)...)}, true},
		{"mesh in range", &Scene{Root: &Node{Meshes: []int{0}}, Meshes: []*Mesh{{}}}, true},
		{"cycle", cycle(), false},
		{"self parent", self(), false},
		{"shared child", shared(), false},
		{"nil child", &Scene{Root: &Node{Children: []*Node{nil}}}, false},
		{"mesh out of range", &Scene{Root: &Node{Meshes: []int{2}}, Meshes: []*Mesh{{}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scene.Validate()
			if tt.ok && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrNoScene) {
				t.Errorf("err = %v, want ErrNoScene", err)
			}
		})
	}
}
