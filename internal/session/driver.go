package session

import (
	"sync"
	"time"

	"github.com/dualcam/syncview/internal/clipsync"
	"github.com/dualcam/syncview/internal/timeutil"
	"github.com/dualcam/syncview/internal/trajectory"
)

// Frame is one paint frame's worth of reconstruction results.
type Frame struct {
	// RealTime is the shared-axis position in seconds.
	RealTime float64           `json:"real_time"`
	SeekA    clipsync.ClipSeek `json:"seek_a"`
	SeekB    clipsync.ClipSeek `json:"seek_b"`
	// BoxA/BoxB are nil when the clip is blanked or no credible box exists.
	BoxA *trajectory.Box `json:"box_a"`
	BoxB *trajectory.Box `json:"box_b"`
}

// Renderer consumes per-frame results. RenderFrame is called from the
// driver's goroutine; implementations scale coordinates to their display
// surface and pick a visual treatment from the projection flags.
type Renderer interface {
	RenderFrame(Frame)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(Frame)

// RenderFrame calls f.
func (f RendererFunc) RenderFrame(fr Frame) { f(fr) }

// Driver owns the frame loop for one viewing session. It advances a shared
// timeline position while playing, queries both cameras' reconstructors each
// tick, and forwards the results to the renderer. Scrubbing pauses both
// clips, seeks, then resumes if playback was active.
type Driver struct {
	session  *Session
	clock    timeutil.Clock
	renderer Renderer
	interval time.Duration

	mu       sync.Mutex
	playing  bool
	position float64 // shared-axis seconds
	lastTick time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewDriver creates a driver ticking at frameRate frames per second.
// Non-positive rates fall back to 30 fps.
func NewDriver(s *Session, clock timeutil.Clock, frameRate float64, renderer Renderer) *Driver {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Driver{
		session:  s,
		clock:    clock,
		renderer: renderer,
		interval: time.Duration(float64(time.Second) / frameRate),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the frame loop. Call Stop to terminate it.
func (d *Driver) Start() {
	// Register the ticker before the goroutine runs so ticks are never
	// lost between Start and the first select.
	ticker := d.clock.NewTicker(d.interval)
	go d.run(ticker)
}

// Stop terminates the frame loop and waits for it to exit.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.done
}

// Play resumes timeline advancement.
func (d *Driver) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = true
	d.lastTick = d.clock.Now()
}

// Pause halts timeline advancement without tearing down the loop.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
}

// Playing reports whether the timeline is currently advancing.
func (d *Driver) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

// Position returns the current shared-axis position in seconds.
func (d *Driver) Position() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

// Scrub seeks to a normalized fraction of the synchronized timeline. Both
// clips are paused for the seek; playback resumes afterwards only if it was
// active, and blanked clips simply produce no boxes until the timeline
// reaches them. The frame at the new position is rendered immediately.
func (d *Driver) Scrub(f float64) Frame {
	d.mu.Lock()
	wasPlaying := d.playing
	d.playing = false

	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	d.position = f * d.session.Sync().Total()
	frame := d.frameLocked()

	d.playing = wasPlaying
	d.lastTick = d.clock.Now()
	d.mu.Unlock()

	d.renderer.RenderFrame(frame)
	return frame
}

func (d *Driver) run(ticker timeutil.Ticker) {
	defer close(d.done)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case now := <-ticker.C():
			if frame, ok := d.tick(now); ok {
				d.renderer.RenderFrame(frame)
			}
		}
	}
}

// tick advances the timeline and builds the frame for the new position.
// Returns false when paused (nothing changed, nothing to render).
func (d *Driver) tick(now time.Time) (Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.playing {
		return Frame{}, false
	}

	if !d.lastTick.IsZero() {
		d.position += now.Sub(d.lastTick).Seconds()
	}
	d.lastTick = now

	total := d.session.Sync().Total()
	if d.position >= total {
		d.position = total
		d.playing = false
	}
	return d.frameLocked(), true
}

func (d *Driver) frameLocked() Frame {
	boxA, boxB, seekA, seekB := d.session.BoxesAtReal(d.position)
	return Frame{
		RealTime: d.position,
		SeekA:    seekA,
		SeekB:    seekB,
		BoxA:     boxA,
		BoxB:     boxB,
	}
}
