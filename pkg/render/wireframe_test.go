package render

import (
	"testing"

	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/pose"
)

func testWireframe() (*Wireframe, *Framebuffer) {
	fb := NewFramebuffer(100, 100)
	cam := NewCamera()
	cam.SetAspectRatio(1)
	cam.Orbit(math3d.Zero3(), 0, 0, 10)
	return NewWireframe(cam, fb), fb
}

func TestDrawLine3D(t *testing.T) {
	tests := []struct {
		name     string
		from, to math3d.Vec3
		wantLit  bool
	}{
		{"in view", math3d.V3(-1, 0, 0), math3d.V3(1, 0, 0), true},
		{"end behind camera", math3d.V3(0, 0, 0), math3d.V3(0, 0, 20), false},
		{"leaves the viewport", math3d.V3(0, 0, 0), math3d.V3(5000, 0, 0), true},
		{"entirely off screen", math3d.V3(100, 0, 0), math3d.V3(200, 0, 0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, fb := testWireframe()
			w.DrawLine3D(tc.from, tc.to, ColorWhite)
			if lit := countLit(fb) > 0; lit != tc.wantLit {
				t.Errorf("pixels drawn = %v, want %v", lit, tc.wantLit)
			}
		})
	}
}

func TestDrawBox(t *testing.T) {
	w, fb := testWireframe()
	w.DrawBox(math3d.V3(-2, -2, -2), math3d.V3(2, 2, 2), math3d.Identity(), ColorCyan)

	if countLit(fb) == 0 {
		t.Fatal("box drew nothing")
	}
	// The interior of the front face stays empty.
	if c := fb.GetPixel(50, 50); c != (Color{}) {
		t.Errorf("box center = %v, want untouched", c)
	}

	// Moving the box behind the camera removes it.
	w2, fb2 := testWireframe()
	w2.DrawBox(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1), math3d.Translate(math3d.V3(0, 0, 30)), ColorCyan)
	if countLit(fb2) != 0 {
		t.Error("box behind the camera was drawn")
	}
}

func TestDrawSkeleton(t *testing.T) {
	w, fb := testWireframe()
	segs := []pose.Segment{
		{Bone: 1, From: math3d.V3(0, -3, 0), To: math3d.V3(0, 0, 0)},
		{Bone: 2, From: math3d.V3(0, 0, 0), To: math3d.V3(0, 3, 0)},
	}
	w.DrawSkeleton(segs, math3d.Identity(), ColorYellow, ColorRed, 0)

	// A vertical line through the screen center.
	for _, y := range []int{30, 50, 70} {
		if c := fb.GetPixel(50, y); c != ColorYellow {
			t.Errorf("pixel (50, %d) = %v, want bone color", y, c)
		}
	}
	if c := fb.GetPixel(60, 50); c != (Color{}) {
		t.Errorf("pixel beside the bones = %v, want untouched", c)
	}

	// Markers cross each joint horizontally.
	w.DrawSkeleton(segs, math3d.Identity(), ColorYellow, ColorRed, 1)
	if c := fb.GetPixel(53, 50); c != ColorRed {
		t.Errorf("marker pixel = %v, want joint color", c)
	}
}

func TestDrawGridAndAxes(t *testing.T) {
	w, fb := testWireframe()
	w.DrawGrid(-1, 4, 1, ColorGray)
	w.DrawAxes(1)
	if countLit(fb) == 0 {
		t.Error("grid and axes drew nothing")
	}
}
