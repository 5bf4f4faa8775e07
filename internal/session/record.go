package session

import (
	"fmt"
	"sort"

	"github.com/dualcam/syncview/internal/trajectory"
)

// Label identifies a clip within a pairing.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
)

// RawPoint is one trajectory sample as delivered by the detection backend.
// Older exports use "ts" where newer ones use "timestamp"; both are accepted.
type RawPoint struct {
	Timestamp *float64 `json:"timestamp,omitempty"`
	TS        *float64 `json:"ts,omitempty"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	W         float64  `json:"w"`
	H         float64  `json:"h"`
	Conf      *float64 `json:"conf,omitempty"`
}

// time returns the sample's timestamp and whether one was present.
func (p RawPoint) time() (float64, bool) {
	if p.Timestamp != nil {
		return *p.Timestamp, true
	}
	if p.TS != nil {
		return *p.TS, true
	}
	return 0, false
}

// StaticBox is the single fallback box a camera may provide when it has no
// trajectory.
type StaticBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ClipRecord is the per-camera payload fetched once when a clip pairing is
// opened, plus the media duration reported when metadata loads.
type ClipRecord struct {
	CameraID       string     `json:"camera_id"`
	VideoWidth     float64    `json:"video_width"`
	VideoHeight    float64    `json:"video_height"`
	FirstSeen      float64    `json:"first_seen"`
	FirstSeenEpoch float64    `json:"first_seen_epoch"`
	Trajectory     []RawPoint `json:"trajectory"`
	BBox           *StaticBox `json:"bbox,omitempty"`
	Duration       float64    `json:"duration"`
}

// Validate checks the fields reconstruction cannot proceed without.
func (c *ClipRecord) Validate() error {
	if c.CameraID == "" {
		return fmt.Errorf("camera_id is required")
	}
	if c.Duration < 0 {
		return fmt.Errorf("camera %s: duration must be non-negative, got %f", c.CameraID, c.Duration)
	}
	return nil
}

// buildTrajectory converts the raw samples into a time-sorted Trajectory.
// Samples without a usable timestamp are dropped rather than failing the
// whole clip.
func (c *ClipRecord) buildTrajectory() trajectory.Trajectory {
	traj := make(trajectory.Trajectory, 0, len(c.Trajectory))
	for _, raw := range c.Trajectory {
		t, ok := raw.time()
		if !ok {
			continue
		}
		traj = append(traj, trajectory.Point{Time: t, X: raw.X, Y: raw.Y, W: raw.W, H: raw.H})
	}
	sort.SliceStable(traj, func(i, j int) bool { return traj[i].Time < traj[j].Time })
	return traj
}

// staticFallback returns the camera's static box as a non-projected Box, or
// nil when the camera provided none.
func (c *ClipRecord) staticFallback() *trajectory.Box {
	if c.BBox == nil {
		return nil
	}
	return &trajectory.Box{X: c.BBox.X, Y: c.BBox.Y, Width: c.BBox.W, Height: c.BBox.H}
}
