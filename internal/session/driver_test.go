package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dualcam/syncview/internal/timeutil"
)

// frameRecorder collects rendered frames for assertions.
type frameRecorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *frameRecorder) RenderFrame(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *frameRecorder) last() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func newTestDriver(t *testing.T) (*Driver, *frameRecorder, *timeutil.MockClock) {
	t.Helper()
	a, b := pairRecords()
	s, err := New("pair-1", a, b, nil, nil, nil)
	require.NoError(t, err)

	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	rec := &frameRecorder{}
	d := NewDriver(s, clock, 10, rec) // 100 ms frames
	return d, rec, clock
}

func TestDriverTicksWhilePlaying(t *testing.T) {
	t.Parallel()

	d, rec, clock := newTestDriver(t)
	d.Start()
	defer d.Stop()

	d.Play()
	clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, time.Millisecond)

	frame := rec.last()
	assert.InDelta(t, 0.1, frame.RealTime, 1e-9)
	// Camera A is delayed 2 s: blanked at the start of the timeline.
	assert.Nil(t, frame.BoxA)
	assert.NotNil(t, frame.BoxB)
}

func TestDriverPausedTicksRenderNothing(t *testing.T) {
	t.Parallel()

	d, rec, clock := newTestDriver(t)
	d.Start()
	defer d.Stop()

	clock.Advance(500 * time.Millisecond)
	// Give the loop a chance to (not) render.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
	assert.Zero(t, d.Position())
}

func TestDriverScrub(t *testing.T) {
	t.Parallel()

	d, rec, _ := newTestDriver(t)
	// Scrub renders synchronously; the loop need not be running.

	frame := d.Scrub(0.5) // total 42 s → target 21 s
	assert.InDelta(t, 21.0, frame.RealTime, 1e-9)
	assert.InDelta(t, 19.0, frame.SeekA.LocalTime, 1e-9)
	assert.InDelta(t, 21.0, frame.SeekB.LocalTime, 1e-9)
	assert.Equal(t, 1, rec.count())

	// Out-of-range fractions clamp.
	frame = d.Scrub(2.0)
	assert.InDelta(t, 42.0, frame.RealTime, 1e-9)
	frame = d.Scrub(-1)
	assert.Zero(t, frame.RealTime)
}

func TestDriverScrubPreservesPlayState(t *testing.T) {
	t.Parallel()

	d, rec, clock := newTestDriver(t)
	d.Start()
	defer d.Stop()

	d.Play()
	d.Scrub(0.25)
	assert.InDelta(t, 10.5, d.Position(), 1e-9)

	// Still playing after the scrub: the next tick advances from the new
	// position.
	clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool {
		return rec.count() >= 2 && rec.last().RealTime > 10.5
	}, time.Second, time.Millisecond)

	d.Pause()
	pos := d.Position()
	clock.Advance(300 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.InDelta(t, pos, d.Position(), 1e-9)
}

func TestDriverStopsAtTimelineEnd(t *testing.T) {
	t.Parallel()

	d, rec, clock := newTestDriver(t)
	d.Start()
	defer d.Stop()

	d.Scrub(0.999)
	d.Play()
	clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool {
		return rec.count() >= 2 && rec.last().RealTime >= 42.0-1e-9
	}, time.Second, time.Millisecond)
	assert.InDelta(t, 42.0, d.Position(), 1e-9)
}
