package pose

import (
	"github.com/taigrr/marionette/pkg/anim"
	"github.com/taigrr/marionette/pkg/skeleton"
)

// Frame is the output of one Animator update. Both poses are freshly
// allocated and owned by the caller.
type Frame struct {
	// Ticks is the wrapped clip time that was sampled.
	Ticks float64
	// Joints places each bone in model space.
	Joints Pose
	// Skinning is Joints with bind offsets applied.
	Skinning Pose
}

// Animator plays one clip on one skeleton. A nil Clip holds the bind pose.
// Animator has no mutable state, so one value can serve many viewers.
type Animator struct {
	Skeleton *skeleton.Skeleton
	Clip     *anim.Clip
	// Rate is the playback speed in ticks per second.
	Rate float64
}

// NewAnimator creates an Animator. rate overrides the clip's own playback
// rate when positive.
func NewAnimator(skel *skeleton.Skeleton, clip *anim.Clip, rate float64) *Animator {
	return &Animator{
		Skeleton: skel,
		Clip:     clip,
		Rate:     clip.Rate(rate),
	}
}

// Ticks converts seconds since playback started into looped clip time.
func (a *Animator) Ticks(seconds float64) float64 {
	if a.Clip == nil {
		return 0
	}
	return anim.LoopTime(seconds*a.Rate, a.Clip.Duration)
}

// Period returns the loop length in seconds, or zero without a clip.
func (a *Animator) Period() float64 {
	if a.Clip == nil || a.Rate <= 0 {
		return 0
	}
	return a.Clip.Duration / a.Rate
}

// Update samples the clip at seconds and composes the hierarchy.
func (a *Animator) Update(seconds float64) Frame {
	ticks := a.Ticks(seconds)
	joints := Compose(a.Skeleton, Sample(a.Skeleton, a.Clip, ticks), false)
	return Frame{
		Ticks:    ticks,
		Joints:   joints,
		Skinning: ApplyBindOffsets(a.Skeleton, joints),
	}
}
