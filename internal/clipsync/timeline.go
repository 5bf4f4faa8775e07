package clipsync

// ClipState says whether a clip has content at a timeline position.
type ClipState string

const (
	// ClipNotStarted means the shared position precedes the clip's start;
	// the clip is blanked at local time 0.
	ClipNotStarted ClipState = "not_started"
	// ClipActive means the clip has content at the mapped local time.
	ClipActive ClipState = "active"
	// ClipEnded means the shared position is past the clip's end; the clip
	// is blanked at its final frame.
	ClipEnded ClipState = "ended"
)

// ClipSeek is one clip's seek target for a shared timeline position.
type ClipSeek struct {
	LocalTime float64   `json:"local_time"`
	State     ClipState `json:"state"`
}

// Blanked reports whether the clip shows no content at this position.
func (c ClipSeek) Blanked() bool {
	return c.State != ClipActive
}

// SeekFraction maps a normalized scrub fraction f ∈ [0,1] to per-clip seek
// targets. f is clamped into range.
func SeekFraction(st SyncState, f float64) (a, b ClipSeek) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	target := f * st.Total()
	return SeekReal(st, target)
}

// SeekReal maps a shared-axis time, in seconds, to per-clip seek targets.
func SeekReal(st SyncState, target float64) (a, b ClipSeek) {
	a = seekClip(target, st.DelayA, st.DurationA)
	b = seekClip(target, st.DelayB, st.DurationB)
	return a, b
}

func seekClip(target, delay, duration float64) ClipSeek {
	local := target - delay
	switch {
	case local < 0:
		return ClipSeek{LocalTime: 0, State: ClipNotStarted}
	case local > duration:
		return ClipSeek{LocalTime: duration, State: ClipEnded}
	default:
		return ClipSeek{LocalTime: local, State: ClipActive}
	}
}

// RealTime recovers the shared-axis time from the two clips' current seek
// positions. Whichever clip is not blanked is ground truth; when neither is
// active, the later of the two clamped positions wins.
func RealTime(st SyncState, a, b ClipSeek) float64 {
	if a.State == ClipActive {
		return a.LocalTime + st.DelayA
	}
	if b.State == ClipActive {
		return b.LocalTime + st.DelayB
	}

	ra := a.LocalTime + st.DelayA
	rb := b.LocalTime + st.DelayB
	if ra > rb {
		return ra
	}
	return rb
}
