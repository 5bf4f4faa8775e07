package trajectory

// Point is a single timestamped detection in source-video pixel space.
// Time is in seconds relative to the clip's start.
type Point struct {
	Time float64 `json:"time"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// Area returns the bounding box area of the point, in square pixels.
func (p Point) Area() float64 {
	return p.W * p.H
}

// Trajectory is an ordered series of points for one camera, monotonically
// non-decreasing in Time. It may be empty or contain gaps of arbitrary size.
// Trajectories are immutable once loaded.
type Trajectory []Point

// Span returns the observed duration of the trajectory in seconds.
func (traj Trajectory) Span() float64 {
	if len(traj) < 2 {
		return 0
	}
	return traj[len(traj)-1].Time - traj[0].Time
}

// MotionModel holds estimated rates of change for box position and size.
// It is recomputed per reconstruction call and never cached across frames.
type MotionModel struct {
	VX, VY float64 // position velocity (px/s)
	VW, VH float64 // size velocity (px/s)
	AX, AY float64 // position acceleration (px/s²)
	AW, AH float64 // size acceleration (px/s²)
}

// Box is a reconstructed bounding box for a query time.
//
// Projected is false for observed samples and linear interpolations between
// two real samples; true for boxes extrapolated across an occlusion or
// track-loss window, and for snaps onto a sample that is not yet (or no
// longer) current. ProjectionConfidence decays from 1 toward 0 as the
// projection ages; snapped boxes carry confidence 1.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Projected            bool    `json:"projected"`
	ProjectionConfidence float64 `json:"projection_confidence,omitempty"`
	ConsensusConfirmed   bool    `json:"consensus_confirmed,omitempty"`
}

// FrameBounds gives a clip's source-video pixel dimensions, used to discard
// projected boxes that have mostly left the frame.
type FrameBounds struct {
	Width  float64
	Height float64
}

// ConsensusFunc reports whether the paired camera corroborates the object's
// presence near the query time. Implementations must not block; a cached,
// possibly stale answer is expected.
type ConsensusFunc func(queryTime float64) bool
