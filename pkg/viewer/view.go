// Package viewer holds the interactive state shared by the terminal and
// window programs and draws one frame of a model from it.
package viewer

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Orbit limits.
const (
	DefaultDistance = 5.0
	MinDistance     = 1.0
	MaxDistance     = 20.0
	DefaultPitch    = 0.2
	maxPitch        = math.Pi/2 - 0.05
	zoomStep        = 0.5
	dragScale       = 0.03
)

// Axis tracks position and velocity for one orbit axis with spring decay.
type Axis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewAxis creates an axis whose velocity decays smoothly at the given
// frame rate.
func NewAxis(fps int, position float64) Axis {
	return Axis{
		Position: position,
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *Axis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// ViewState holds everything the user can change while viewing a model.
// It is not safe for concurrent use; programs that feed input from another
// goroutine guard it themselves.
type ViewState struct {
	Yaw, Pitch Axis
	Distance   float64

	ShowMesh     bool
	ShowSkeleton bool
	ShowBounds   bool
	ShowGrid     bool
	ShowHUD      bool
	Paused       bool

	fps     int
	seconds float64
}

// NewViewState creates the default view for a loop running at fps.
func NewViewState(fps int) *ViewState {
	v := &ViewState{
		ShowMesh: true,
		ShowHUD:  true,
		fps:      fps,
	}
	v.Reset()
	return v
}

// Reset puts the camera back where it started. Playback time is kept.
func (v *ViewState) Reset() {
	v.Yaw = NewAxis(v.fps, 0)
	v.Pitch = NewAxis(v.fps, DefaultPitch)
	v.Distance = DefaultDistance
}

// Drag spins the orbit by a pointer movement of dx, dy cells or pixels.
func (v *ViewState) Drag(dx, dy float64) {
	v.Yaw.Velocity -= dx * dragScale
	v.Pitch.Velocity += dy * dragScale
}

// Zoom moves the camera steps notches closer (positive) or further away.
func (v *ViewState) Zoom(steps float64) {
	v.Distance = max(MinDistance, min(MaxDistance, v.Distance-steps*zoomStep))
}

// TogglePause stops or resumes playback.
func (v *ViewState) TogglePause() {
	v.Paused = !v.Paused
}

// Advance moves the view forward one frame of dt seconds: the springs step
// and, unless paused, the playback clock runs.
func (v *ViewState) Advance(dt float64) {
	if !v.Paused {
		v.seconds += dt
	}
	v.Yaw.Update()
	v.Pitch.Update()

	if v.Pitch.Position > maxPitch || v.Pitch.Position < -maxPitch {
		v.Pitch.Position = max(-maxPitch, min(maxPitch, v.Pitch.Position))
		v.Pitch.Velocity = 0
	}
}

// Seconds returns the playback time.
func (v *ViewState) Seconds() float64 {
	return v.seconds
}

// Seek sets the playback time.
func (v *ViewState) Seek(seconds float64) {
	v.seconds = max(0, seconds)
}
