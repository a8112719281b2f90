package anim

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/marionette/pkg/scene"
	"github.com/taigrr/marionette/pkg/skeleton"
)

// DefaultTicksPerSecond is the playback rate for clips that do not state one.
const DefaultTicksPerSecond = 24.0

// ErrDegenerateClip is returned for clips that cannot be looped.
var ErrDegenerateClip = errors.New("anim: degenerate clip")

// Channel animates one bone. Either key list may be empty, in which case the
// bone keeps its bind value for that component.
type Channel struct {
	Bone      int
	Positions []Vec3Key
	Rotations []QuatKey
}

// Clip is a set of bone channels sharing one timeline. It is immutable once
// bound and safe to share between goroutines.
type Clip struct {
	Name           string
	Duration       float64
	TicksPerSecond float64
	Channels       []Channel

	// Skipped lists tracks whose node is not part of the skeleton.
	Skipped []string
}

// Bind resolves a's node channels against skel. Tracks for nodes the
// skeleton dropped are skipped and listed in Clip.Skipped. Scale tracks are
// not carried over.
func Bind(a *scene.Animation, skel *skeleton.Skeleton) (*Clip, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: no animation", ErrDegenerateClip)
	}
	if !(a.Duration > 0) || math.IsInf(a.Duration, 0) {
		return nil, fmt.Errorf("%w: %q has duration %g", ErrDegenerateClip, a.Name, a.Duration)
	}
	if len(a.Channels) == 0 {
		return nil, fmt.Errorf("%w: %q has no channels", ErrDegenerateClip, a.Name)
	}

	clip := &Clip{
		Name:           a.Name,
		Duration:       a.Duration,
		TicksPerSecond: a.TicksPerSecond,
		Channels:       make([]Channel, 0, len(a.Channels)),
	}

	for _, ch := range a.Channels {
		id, ok := skel.Lookup(ch.NodeName)
		if !ok {
			clip.Skipped = append(clip.Skipped, ch.NodeName)
			continue
		}

		c := Channel{
			Bone:      id,
			Positions: make([]Vec3Key, len(ch.PositionKeys)),
			Rotations: make([]QuatKey, len(ch.RotationKeys)),
		}
		for i, k := range ch.PositionKeys {
			c.Positions[i] = Vec3Key{Time: k.Time, Value: k.Value}
		}
		for i, k := range ch.RotationKeys {
			c.Rotations[i] = QuatKey{Time: k.Time, Value: k.Value}
		}
		clip.Channels = append(clip.Channels, c)
	}

	return clip, nil
}

// Rate returns the playback rate in ticks per second: override when positive,
// else the clip's own rate, else DefaultTicksPerSecond.
func (c *Clip) Rate(override float64) float64 {
	switch {
	case override > 0:
		return override
	case c != nil && c.TicksPerSecond > 0:
		return c.TicksPerSecond
	default:
		return DefaultTicksPerSecond
	}
}

// LoopTime wraps t into [0, duration). duration must be positive.
func LoopTime(t, duration float64) float64 {
	return t - math.Floor(t/duration)*duration
}
