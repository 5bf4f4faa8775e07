package clipsync

import "math"

// startEpsilon is the real-start difference, in seconds, under which two
// clips are treated as perfectly synchronized. No sub-100 ms correction is
// attempted; source timestamp precision does not support one.
const startEpsilon = 0.1

// ClipTiming describes one clip's timing inputs, all in seconds.
type ClipTiming struct {
	// FirstSeen is the clip-local playback offset of the first detection.
	FirstSeen float64
	// FirstSeenEpoch is the absolute unix time of the first detection.
	FirstSeenEpoch float64
	// Duration is the clip's reported media duration.
	Duration float64
}

// realStart recovers the absolute unix time at which the clip began.
func (c ClipTiming) realStart() float64 {
	return c.FirstSeenEpoch - c.FirstSeen
}

// SyncState holds the computed alignment for a clip pair. At most one of
// DelayA/DelayB is positive: the clip whose recording began later in real
// time is held for its delay so both clips show the same instant.
type SyncState struct {
	DelayA    float64 `json:"delay_a"`
	DelayB    float64 `json:"delay_b"`
	DurationA float64 `json:"duration_a"`
	DurationB float64 `json:"duration_b"`
}

// Total returns the synchronized timeline length in seconds.
func (s SyncState) Total() float64 {
	return math.Max(s.DelayA+s.DurationA, s.DelayB+s.DurationB)
}

// Align computes the one-time start delays for a clip pair. Real starts
// within startEpsilon of each other yield zero delays on both sides.
func Align(a, b ClipTiming) SyncState {
	st := SyncState{DurationA: a.Duration, DurationB: b.Duration}

	diff := a.realStart() - b.realStart()
	if math.Abs(diff) <= startEpsilon {
		return st
	}
	if diff > 0 {
		st.DelayA = diff
	} else {
		st.DelayB = -diff
	}
	return st
}
