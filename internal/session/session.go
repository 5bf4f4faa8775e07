// Package session owns the per-viewing-session state for one clip pairing:
// the two camera records, their reconstructors, the clip alignment, and the
// consensus cache. Nothing here is module-global, so parallel sessions never
// contaminate each other.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dualcam/syncview/internal/clipsync"
	"github.com/dualcam/syncview/internal/config"
	"github.com/dualcam/syncview/internal/consensus"
	"github.com/dualcam/syncview/internal/httputil"
	"github.com/dualcam/syncview/internal/timeutil"
	"github.com/dualcam/syncview/internal/trajectory"
)

// clip bundles one camera's immutable session state.
type clip struct {
	record        ClipRecord
	reconstructor *trajectory.Reconstructor
	fallback      *trajectory.Box
}

// Session holds everything needed to answer box and seek queries for one
// clip pairing. All fields are set at construction and immutable afterwards
// (the consensus oracle manages its own cache internally), so a Session is
// safe for concurrent readers.
type Session struct {
	ID        string
	PairingID string

	clips  map[Label]*clip
	sync   clipsync.SyncState
	oracle *consensus.Oracle
}

// New opens a session for a clip pairing. The consensus oracle is wired only
// when the config names an endpoint; without one, projection windows are
// never extended. client and clock may be nil when consensus is disabled.
func New(pairingID string, a, b ClipRecord, cfg *config.Config, client httputil.HTTPClient, clock timeutil.Clock) (*Session, error) {
	if pairingID == "" {
		return nil, fmt.Errorf("pairing id is required")
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("camera A: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("camera B: %w", err)
	}

	s := &Session{
		ID:        fmt.Sprintf("ses_%s", uuid.NewString()),
		PairingID: pairingID,
		clips:     make(map[Label]*clip, 2),
	}

	if url := cfg.GetConsensusURL(); url != "" && client != nil {
		if clock == nil {
			clock = timeutil.RealClock{}
		}
		s.oracle = consensus.NewOracle(client, clock, url, pairingID)
	}

	s.clips[LabelA] = s.buildClip(LabelA, a, cfg)
	s.clips[LabelB] = s.buildClip(LabelB, b, cfg)

	s.sync = clipsync.Align(
		clipsync.ClipTiming{FirstSeen: a.FirstSeen, FirstSeenEpoch: a.FirstSeenEpoch, Duration: a.Duration},
		clipsync.ClipTiming{FirstSeen: b.FirstSeen, FirstSeenEpoch: b.FirstSeenEpoch, Duration: b.Duration},
	)
	return s, nil
}

func (s *Session) buildClip(label Label, rec ClipRecord, cfg *config.Config) *clip {
	rcfg := trajectory.ReconstructorConfig{
		Frame: trajectory.FrameBounds{Width: rec.VideoWidth, Height: rec.VideoHeight},
	}
	if cal := cfg.CalibrationFor(rec.CameraID); cal != nil {
		rcfg.VelocityMultiplierX = cal.GetVelocityMultiplierX()
		rcfg.VelocityMultiplierY = cal.GetVelocityMultiplierY()
	}
	if s.oracle != nil {
		rcfg.Consensus = s.oracle.Confirms(string(label))
	}
	return &clip{
		record:        rec,
		reconstructor: trajectory.NewReconstructor(rec.buildTrajectory(), rcfg),
		fallback:      rec.staticFallback(),
	}
}

// Sync returns the clip pair's alignment state.
func (s *Session) Sync() clipsync.SyncState {
	return s.sync
}

// Record returns the stored clip record for a camera label.
func (s *Session) Record(label Label) (ClipRecord, bool) {
	c, ok := s.clips[label]
	if !ok {
		return ClipRecord{}, false
	}
	return c.record, true
}

// Trajectory returns a camera's parsed, time-sorted trajectory. Callers must
// not mutate it.
func (s *Session) Trajectory(label Label) trajectory.Trajectory {
	c, ok := s.clips[label]
	if !ok {
		return nil
	}
	return c.reconstructor.Points()
}

// NormalGap exposes a camera's cached normal-gap estimate, chiefly for
// diagnostics.
func (s *Session) NormalGap(label Label) float64 {
	c, ok := s.clips[label]
	if !ok {
		return 0
	}
	return c.reconstructor.NormalGap()
}

// BoxAt returns the best-estimate box for a camera at clip-local time t,
// falling back to the camera's static box when it has no trajectory at all.
// A nil result means no credible box exists this frame.
func (s *Session) BoxAt(label Label, t float64) *trajectory.Box {
	c, ok := s.clips[label]
	if !ok {
		return nil
	}
	if box := c.reconstructor.BoxAt(t); box != nil {
		return box
	}
	if len(c.record.Trajectory) == 0 && c.fallback != nil {
		fb := *c.fallback
		return &fb
	}
	return nil
}

// BoxesAtReal maps a shared-axis time to both cameras' boxes, honoring the
// per-clip delays. Blanked clips yield nil boxes.
func (s *Session) BoxesAtReal(target float64) (a, b *trajectory.Box, seekA, seekB clipsync.ClipSeek) {
	seekA, seekB = clipsync.SeekReal(s.sync, target)
	if !seekA.Blanked() {
		a = s.BoxAt(LabelA, seekA.LocalTime)
	}
	if !seekB.Blanked() {
		b = s.BoxAt(LabelB, seekB.LocalTime)
	}
	return a, b, seekA, seekB
}
