package trajectory

import (
	"math"
	"sort"
)

// ReconstructorConfig holds the per-camera inputs to reconstruction.
type ReconstructorConfig struct {
	// Frame bounds the clip's pixel space. Zero dimensions disable
	// out-of-frame clipping.
	Frame FrameBounds

	// Velocity calibration multipliers, applied to projected velocity only,
	// never acceleration. Non-positive values mean identity.
	VelocityMultiplierX float64
	VelocityMultiplierY float64

	// Consensus, when set, is consulted to extend an exhausted projection
	// window. Must not block.
	Consensus ConsensusFunc
}

// Reconstructor answers bounding-box queries against one camera's trajectory.
// The normal gap and anomaly baseline are computed once at construction; each
// BoxAt call is otherwise pure and idempotent, safe to invoke every paint
// frame.
type Reconstructor struct {
	traj         Trajectory
	cfg          ReconstructorConfig
	normalGap    float64
	baselineArea float64
}

// NewReconstructor builds a Reconstructor over an already time-sorted
// trajectory.
func NewReconstructor(traj Trajectory, cfg ReconstructorConfig) *Reconstructor {
	if cfg.VelocityMultiplierX <= 0 {
		cfg.VelocityMultiplierX = 1
	}
	if cfg.VelocityMultiplierY <= 0 {
		cfg.VelocityMultiplierY = 1
	}
	return &Reconstructor{
		traj:         traj,
		cfg:          cfg,
		normalGap:    NormalGap(traj),
		baselineArea: baselineArea(traj),
	}
}

// NormalGap returns the cached normal inter-sample spacing estimate.
func (r *Reconstructor) NormalGap() float64 {
	return r.normalGap
}

// Points returns the observed trajectory, sorted by time. Callers must not
// mutate it.
func (r *Reconstructor) Points() Trajectory {
	return r.traj
}

// baselineArea averages the box area of the first few points. Later samples
// whose area exceeds a multiple of this baseline are treated as the tracker
// re-latching onto a different object.
func baselineArea(traj Trajectory) float64 {
	n := len(traj)
	if n == 0 {
		return 0
	}
	if n > baselineSampleLimit {
		n = baselineSampleLimit
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += traj[i].Area()
	}
	return sum / float64(n)
}

// BoxAt returns the best-estimate box for query time t, or nil when no
// credible box exists. The result is freshly allocated each call.
func (r *Reconstructor) BoxAt(t float64) *Box {
	if len(r.traj) == 0 {
		return nil
	}

	before, after := r.bracket(t)

	// Anomaly rejection: discard samples that look like a tracker re-latch.
	if r.baselineArea > 0 {
		limit := r.baselineArea * anomalyAreaFactor
		if before >= 0 && r.traj[before].Area() > limit {
			// Rewind to the last plausible sample and treat everything after
			// it as nonexistent.
			for before >= 0 && r.traj[before].Area() > limit {
				before--
			}
			if before < 0 {
				return nil
			}
			after = -1
		}
		if after >= 0 && r.traj[after].Area() > limit {
			after = -1
		}
	}

	switch {
	case before < 0 && after < 0:
		return nil

	case before < 0:
		// Query precedes the track: snap forward onto the first sample if it
		// is close enough.
		lead := r.traj[after].Time - t
		if lead > preTrackSnapLead {
			return nil
		}
		b := boxFromPoint(r.traj[after])
		if lead > r.normalGap {
			b.Projected = true
			b.ProjectionConfidence = 1
		}
		return b

	case after < 0:
		// Track has ended (or not yet resumed): project forward.
		return r.projectFrom(before, t)
	}

	gap := r.traj[after].Time - r.traj[before].Time
	switch {
	case gap > lostTrackGap:
		// Track lost across the gap. Near the far side, snap onto it;
		// otherwise coast from the near side within the projection window.
		if r.traj[after].Time-t <= preTrackSnapLead {
			return snapBox(r.traj[after])
		}
		return r.projectFrom(before, t)

	case gap > r.normalGap:
		// Occlusion. Snap back onto the reappearance sample when close,
		// else project across the hidden interval.
		if r.traj[after].Time-t <= occlusionSnapBack {
			return snapBox(r.traj[after])
		}
		return r.projectFrom(before, t)

	default:
		// Ordinary inter-sample gap: linear interpolation.
		if gap <= 0 {
			return boxFromPoint(r.traj[before])
		}
		frac := (t - r.traj[before].Time) / gap
		p, q := r.traj[before], r.traj[after]
		return &Box{
			X:      p.X + (q.X-p.X)*frac,
			Y:      p.Y + (q.Y-p.Y)*frac,
			Width:  p.W + (q.W-p.W)*frac,
			Height: p.H + (q.H-p.H)*frac,
		}
	}
}

// bracket finds the last point with Time ≤ t and the first with Time > t.
// Either index is -1 when absent.
func (r *Reconstructor) bracket(t float64) (before, after int) {
	idx := sort.Search(len(r.traj), func(i int) bool { return r.traj[i].Time > t })
	before = idx - 1
	after = idx
	if after >= len(r.traj) {
		after = -1
	}
	return before, after
}

// projectFrom extrapolates a box forward from the sample at index before to
// query time t, honoring the projection window and out-of-frame clipping.
func (r *Reconstructor) projectFrom(before int, t float64) *Box {
	p := r.traj[before]
	elapsed := t - p.Time
	if elapsed <= 0 {
		return boxFromPoint(p)
	}

	// Window sizing: short tracks earn a generous fixed bound; longer tracks
	// scale with their observed span, clamped to the global bounds.
	span := p.Time - r.traj[0].Time
	durationBound := shortTrackProjection
	if span >= shortTrackSpan {
		durationBound = 2 * span
	}
	maxProjection := clamp(durationBound, minProjectionWindow, maxProjectionWindow)

	allowed := maxProjection
	consensusConfirmed := false
	if elapsed > maxProjection {
		// Past the unaided window: only cross-camera corroboration within
		// the extension window keeps the projection alive.
		if elapsed > maxProjection+consensusExtension {
			return nil
		}
		if r.cfg.Consensus == nil || !r.cfg.Consensus(t) {
			return nil
		}
		allowed += consensusExtension
		consensusConfirmed = true
	}
	if elapsed > allowed {
		return nil
	}

	m := EstimateMotion(r.traj[:before+1], before)
	vx := m.VX * r.cfg.VelocityMultiplierX
	vy := m.VY * r.cfg.VelocityMultiplierY

	b := &Box{
		X:      p.X + vx*elapsed + 0.5*m.AX*elapsed*elapsed,
		Y:      p.Y + vy*elapsed + 0.5*m.AY*elapsed*elapsed,
		Width:  math.Max(minBoxSize, p.W+m.VW*elapsed+0.5*m.AW*elapsed*elapsed),
		Height: math.Max(minBoxSize, p.H+m.VH*elapsed+0.5*m.AH*elapsed*elapsed),

		Projected:            elapsed > r.normalGap,
		ProjectionConfidence: math.Max(0, 1-elapsed/maxProjection),
		ConsensusConfirmed:   consensusConfirmed,
	}

	if r.visibleFraction(b) < minVisibleFraction {
		return nil
	}
	return b
}

// visibleFraction returns the share of the box's area inside the frame.
// Unknown frame bounds disable clipping.
func (r *Reconstructor) visibleFraction(b *Box) float64 {
	if r.cfg.Frame.Width <= 0 || r.cfg.Frame.Height <= 0 {
		return 1
	}
	area := b.Width * b.Height
	if area <= 0 {
		return 0
	}
	vw := math.Min(b.X+b.Width, r.cfg.Frame.Width) - math.Max(b.X, 0)
	vh := math.Min(b.Y+b.Height, r.cfg.Frame.Height) - math.Max(b.Y, 0)
	if vw <= 0 || vh <= 0 {
		return 0
	}
	return vw * vh / area
}

func boxFromPoint(p Point) *Box {
	return &Box{X: p.X, Y: p.Y, Width: p.W, Height: p.H}
}

// snapBox returns the point's box flagged as projected with full confidence:
// the geometry is a real sample, but it is not current at the query time.
func snapBox(p Point) *Box {
	b := boxFromPoint(p)
	b.Projected = true
	b.ProjectionConfidence = 1
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
