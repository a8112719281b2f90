// Package anim stores keyframed bone tracks and samples them at arbitrary
// times.
package anim

import (
	"sort"

	"github.com/taigrr/marionette/pkg/math3d"
)

// Key is a timed sample. Time is in clip ticks.
type Key[T any] struct {
	Time  float64
	Value T
}

// Vec3Key is a position sample.
type Vec3Key = Key[math3d.Vec3]

// QuatKey is a rotation sample.
type QuatKey = Key[math3d.Quat]

// lookup samples keys at t, which must be non-empty and ordered by time.
// Times before the first key or at and after the last key clamp to the
// endpoint values.
func lookup[T any](keys []Key[T], t float64, mix func(a, b T, f float64) T) T {
	n := len(keys)
	if n == 1 || t <= keys[0].Time {
		return keys[0].Value
	}
	if t >= keys[n-1].Time {
		return keys[n-1].Value
	}

	// First key strictly after t; its predecessor is at or before t.
	next := sort.Search(n, func(i int) bool { return keys[i].Time > t })
	a, b := keys[next-1], keys[next]
	f := (t - a.Time) / (b.Time - a.Time)
	return mix(a.Value, b.Value, f)
}

// LookupVec3 linearly interpolates position keys at t.
func LookupVec3(keys []Vec3Key, t float64) math3d.Vec3 {
	return lookup(keys, t, math3d.Vec3.Lerp)
}

// LookupQuat spherically interpolates rotation keys at t along the shortest
// arc. The result is unit length.
func LookupQuat(keys []QuatKey, t float64) math3d.Quat {
	return lookup(keys, t, math3d.Quat.Slerp).Normalize()
}
