package clipsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignLaterClipIsDelayed(t *testing.T) {
	t.Parallel()

	// Camera A began recording 2.5 s after camera B in real time.
	a := ClipTiming{FirstSeen: 1.0, FirstSeenEpoch: 1000003.5, Duration: 30}
	b := ClipTiming{FirstSeen: 2.0, FirstSeenEpoch: 1000002.0, Duration: 40}

	st := Align(a, b)
	assert.InDelta(t, 2.5, st.DelayA, 1e-9)
	assert.InDelta(t, 0.0, st.DelayB, 1e-9)
	assert.InDelta(t, 30.0, st.DurationA, 1e-9)
	assert.InDelta(t, 40.0, st.DurationB, 1e-9)
}

func TestAlignSymmetry(t *testing.T) {
	t.Parallel()

	a := ClipTiming{FirstSeen: 0.5, FirstSeenEpoch: 500.0, Duration: 10}
	b := ClipTiming{FirstSeen: 0.5, FirstSeenEpoch: 503.0, Duration: 10}

	st := Align(a, b)
	assert.InDelta(t, 0.0, st.DelayA, 1e-9)
	assert.InDelta(t, 3.0, st.DelayB, 1e-9)

	// Swapping the arguments swaps the delays.
	sw := Align(b, a)
	assert.InDelta(t, 3.0, sw.DelayA, 1e-9)
	assert.InDelta(t, 0.0, sw.DelayB, 1e-9)
}

func TestAlignNearSimultaneousStarts(t *testing.T) {
	t.Parallel()

	// Real starts 80 ms apart: treated as perfectly synchronized.
	a := ClipTiming{FirstSeen: 1.0, FirstSeenEpoch: 100.00, Duration: 10}
	b := ClipTiming{FirstSeen: 1.0, FirstSeenEpoch: 100.08, Duration: 10}

	st := Align(a, b)
	assert.Zero(t, st.DelayA)
	assert.Zero(t, st.DelayB)
}

func TestAlignDelayProductInvariant(t *testing.T) {
	t.Parallel()

	// For any pair of real starts, delayA × delayB == 0.
	cases := []struct {
		name   string
		epochA float64
		epochB float64
	}{
		{"a much later", 2000, 1000},
		{"b much later", 1000, 2000},
		{"identical", 1500, 1500},
		{"within epsilon", 1500.0, 1500.05},
		{"just outside epsilon", 1500.0, 1500.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			st := Align(
				ClipTiming{FirstSeenEpoch: tc.epochA, Duration: 10},
				ClipTiming{FirstSeenEpoch: tc.epochB, Duration: 10},
			)
			assert.Zero(t, st.DelayA*st.DelayB)
			assert.GreaterOrEqual(t, st.DelayA, 0.0)
			assert.GreaterOrEqual(t, st.DelayB, 0.0)
		})
	}
}

func TestSyncStateTotal(t *testing.T) {
	t.Parallel()

	st := SyncState{DelayA: 2, DurationA: 30, DurationB: 35}
	assert.InDelta(t, 35.0, st.Total(), 1e-9)

	st = SyncState{DelayA: 10, DurationA: 30, DurationB: 35}
	assert.InDelta(t, 40.0, st.Total(), 1e-9)
}
