package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/taigrr/marionette/internal/config"
	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/models"
	"github.com/taigrr/marionette/pkg/scene"
	"github.com/taigrr/marionette/pkg/viewer"
)

// testModel is a single skinned bone with one triangle and a clip that
// lifts it over two seconds.
func testModel(t *testing.T) *models.Model {
	t.Helper()
	bone := &scene.Node{Name: "bone", Transform: math3d.Identity()}
	body := &scene.Node{Name: "body", Transform: math3d.Identity(), Meshes: []int{0}}
	root := &scene.Node{Name: "root", Transform: math3d.Identity(), Children: []*scene.Node{bone, body}}

	mesh := &scene.Mesh{
		Name:      "tri",
		Positions: []math3d.Vec3{math3d.V3(-1, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		Indices:   []uint32{0, 1, 2},
		Material:  -1,
		Bones: []scene.BoneWeights{{
			Name:    "bone",
			Offset:  math3d.Identity(),
			Weights: []scene.VertexWeight{{Vertex: 0, Weight: 1}, {Vertex: 1, Weight: 1}, {Vertex: 2, Weight: 1}},
		}},
	}
	clip := &scene.Animation{
		Name:           "lift",
		Duration:       2,
		TicksPerSecond: 1,
		Channels: []scene.NodeChannel{{
			NodeName:     "bone",
			PositionKeys: []scene.VectorKey{{Time: 0}, {Time: 2, Value: math3d.V3(0, 2, 0)}},
		}},
	}

	m, err := models.NewLoader().Load("tri.glb", &scene.Scene{
		Root:       root,
		Meshes:     []*scene.Mesh{mesh},
		Animations: []*scene.Animation{clip},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestNewGame(t *testing.T) {
	cfg := config.Default()
	cfg.ShowSkeleton = true
	cfg.ShowGrid = true
	cfg.ShowMesh = false
	cfg.Background = "10,20,30"

	g, err := newGame(testModel(t), cfg, 64, 48)
	if err != nil {
		t.Fatalf("newGame: %v", err)
	}
	if g.view.ShowMesh || !g.view.ShowSkeleton || !g.view.ShowGrid {
		t.Errorf("view toggles = mesh %v skeleton %v grid %v", g.view.ShowMesh, g.view.ShowSkeleton, g.view.ShowGrid)
	}
	if fb := g.renderer.Framebuffer(); fb.Width != 64 || fb.Height != 48 {
		t.Errorf("framebuffer %dx%d, want 64x48", fb.Width, fb.Height)
	}
	if g.fps != cfg.FPS {
		t.Errorf("fps = %d, want %d", g.fps, cfg.FPS)
	}

	cfg.Background = "red"
	if _, err := newGame(testModel(t), cfg, 64, 48); err == nil {
		t.Error("bad background: expected error")
	}
}

func TestApplyKeys(t *testing.T) {
	none := func(ebiten.Key) bool { return false }
	only := func(k ebiten.Key) func(ebiten.Key) bool {
		return func(got ebiten.Key) bool { return got == k }
	}

	tests := []struct {
		name    string
		pressed func(ebiten.Key) bool
		held    func(ebiten.Key) bool
		check   func(v *viewer.ViewState) bool
	}{
		{"pause", only(ebiten.KeySpace), none, func(v *viewer.ViewState) bool { return v.Paused }},
		{"mesh", only(ebiten.KeyM), none, func(v *viewer.ViewState) bool { return !v.ShowMesh }},
		{"skeleton", only(ebiten.KeyS), none, func(v *viewer.ViewState) bool { return v.ShowSkeleton }},
		{"bounds", only(ebiten.KeyB), none, func(v *viewer.ViewState) bool { return v.ShowBounds }},
		{"grid", only(ebiten.KeyG), none, func(v *viewer.ViewState) bool { return v.ShowGrid }},
		{"hud", only(ebiten.KeyH), none, func(v *viewer.ViewState) bool { return !v.ShowHUD }},
		{"held left", none, only(ebiten.KeyArrowLeft), func(v *viewer.ViewState) bool { return v.Yaw.Velocity != 0 }},
		{"held down", none, only(ebiten.KeyArrowDown), func(v *viewer.ViewState) bool { return v.Pitch.Velocity != 0 }},
		{"pressed arrow is not held", only(ebiten.KeyArrowLeft), none, func(v *viewer.ViewState) bool {
			return v.Yaw.Velocity == 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viewer.NewViewState(60)
			applyKeys(v, tt.pressed, tt.held)
			if !tt.check(v) {
				t.Errorf("view state not changed as expected: %+v", v)
			}
		})
	}
}

func TestApplyKeysReset(t *testing.T) {
	v := viewer.NewViewState(60)
	v.Zoom(3)
	v.Drag(10, 0)
	applyKeys(v, func(k ebiten.Key) bool { return k == ebiten.KeyR }, func(ebiten.Key) bool { return false })
	if v.Distance != viewer.DefaultDistance || v.Yaw.Velocity != 0 {
		t.Errorf("after reset: distance %g, yaw velocity %g", v.Distance, v.Yaw.Velocity)
	}
}

func TestPointerDrag(t *testing.T) {
	g, err := newGame(testModel(t), config.Default(), 64, 48)
	if err != nil {
		t.Fatal(err)
	}

	g.pointer(10, 10, false)
	g.pointer(40, 10, false)
	if g.view.Yaw.Velocity != 0 {
		t.Fatal("moving without a button should not orbit")
	}

	// The first pressed frame only anchors the drag.
	g.pointer(40, 10, true)
	if g.view.Yaw.Velocity != 0 {
		t.Fatal("press alone should not orbit")
	}
	g.pointer(60, 10, true)
	if g.view.Yaw.Velocity == 0 {
		t.Error("drag did not orbit")
	}

	g.pointer(80, 10, false)
	if g.dragging {
		t.Error("still dragging after release")
	}
}

func TestStepAndLayout(t *testing.T) {
	cfg := config.Default()
	g, err := newGame(testModel(t), cfg, 64, 48)
	if err != nil {
		t.Fatal(err)
	}

	for range cfg.FPS {
		g.step()
	}
	if got := g.view.Seconds(); got < 0.99 || got > 1.01 {
		t.Errorf("seconds after one second of ticks = %g", got)
	}
	if g.frame.Ticks <= 0 {
		t.Errorf("frame ticks = %g, want > 0", g.frame.Ticks)
	}

	g.view.TogglePause()
	before := g.view.Seconds()
	g.step()
	if g.view.Seconds() != before {
		t.Error("paused view advanced")
	}

	if w, h := g.Layout(100, 80); w != 100 || h != 80 {
		t.Errorf("Layout = %dx%d", w, h)
	}
	if fb := g.renderer.Framebuffer(); fb.Width != 100 || fb.Height != 80 {
		t.Errorf("framebuffer %dx%d after Layout, want 100x80", fb.Width, fb.Height)
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "log-level", "rate", "max-bones", "fps", "width", "height"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s", name)
		}
	}
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("no model path: expected argument error")
	}
}
