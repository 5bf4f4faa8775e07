package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dualcam/syncview/internal/config"
)

func f64(v float64) *float64 { return &v }

// pairRecords builds a simple pairing: camera A records 2 s later than B in
// real time, both carry dense 0.1 s trajectories moving right at 10 px/s.
func pairRecords() (ClipRecord, ClipRecord) {
	var rawA, rawB []RawPoint
	for i := 0; i < 20; i++ {
		t := float64(i) * 0.1
		rawA = append(rawA, RawPoint{TS: f64(t), X: float64(i), Y: 5, W: 10, H: 10})
		rawB = append(rawB, RawPoint{Timestamp: f64(t), X: 100 - float64(i), Y: 50, W: 12, H: 12})
	}
	a := ClipRecord{
		CameraID:       "cam-a",
		VideoWidth:     640,
		VideoHeight:    480,
		FirstSeen:      0.5,
		FirstSeenEpoch: 1002.5, // real start 1002
		Trajectory:     rawA,
		Duration:       30,
	}
	b := ClipRecord{
		CameraID:       "cam-b",
		VideoWidth:     1280,
		VideoHeight:    720,
		FirstSeen:      1.0,
		FirstSeenEpoch: 1001.0, // real start 1000
		Trajectory:     rawB,
		Duration:       40,
	}
	return a, b
}

func TestBuildTrajectory(t *testing.T) {
	t.Parallel()

	rec := ClipRecord{
		CameraID: "cam-a",
		Trajectory: []RawPoint{
			{Timestamp: f64(0.2), X: 2},
			{TS: f64(0.1), X: 1},         // legacy key, out of order
			{X: 99},                      // no timestamp at all: dropped
			{Timestamp: f64(0.3), X: 3, Conf: f64(0.9)},
		},
	}
	traj := rec.buildTrajectory()
	require.Len(t, traj, 3)
	assert.InDelta(t, 0.1, traj[0].Time, 1e-9)
	assert.InDelta(t, 1, traj[0].X, 1e-9)
	assert.InDelta(t, 0.3, traj[2].Time, 1e-9)
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	a, b := pairRecords()
	s, err := New("pair-1", a, b, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "pair-1", s.PairingID)
	assert.Contains(t, s.ID, "ses_")

	// A's recording began 2 s after B's: A is delayed.
	st := s.Sync()
	assert.InDelta(t, 2.0, st.DelayA, 1e-9)
	assert.Zero(t, st.DelayB)
	assert.InDelta(t, 42.0, st.Total(), 1e-9)

	rec, ok := s.Record(LabelA)
	require.True(t, ok)
	assert.Equal(t, "cam-a", rec.CameraID)
	_, ok = s.Record(Label("C"))
	assert.False(t, ok)
}

func TestNewSessionValidation(t *testing.T) {
	t.Parallel()

	a, b := pairRecords()

	_, err := New("", a, b, nil, nil, nil)
	assert.Error(t, err)

	bad := a
	bad.CameraID = ""
	_, err = New("pair-1", bad, b, nil, nil, nil)
	assert.Error(t, err)
}

func TestSessionBoxAt(t *testing.T) {
	t.Parallel()

	a, b := pairRecords()
	s, err := New("pair-1", a, b, nil, nil, nil)
	require.NoError(t, err)

	// Interpolated between the 0.1 s samples.
	box := s.BoxAt(LabelA, 0.55)
	require.NotNil(t, box)
	assert.InDelta(t, 5.5, box.X, 1e-9)
	assert.False(t, box.Projected)

	assert.Nil(t, s.BoxAt(Label("C"), 0.5))
}

func TestSessionStaticFallback(t *testing.T) {
	t.Parallel()

	a, b := pairRecords()
	a.Trajectory = nil
	a.BBox = &StaticBox{X: 10, Y: 20, W: 30, H: 40}

	s, err := New("pair-1", a, b, nil, nil, nil)
	require.NoError(t, err)

	box := s.BoxAt(LabelA, 3.0)
	require.NotNil(t, box)
	assert.InDelta(t, 10, box.X, 1e-9)
	assert.InDelta(t, 40, box.Height, 1e-9)
	assert.False(t, box.Projected)

	// No trajectory and no static box: no box, never an error.
	a.BBox = nil
	s2, err := New("pair-1", a, b, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, s2.BoxAt(LabelA, 3.0))
}

func TestSessionCalibrationApplied(t *testing.T) {
	t.Parallel()

	a, b := pairRecords()
	cfg := &config.Config{Calibration: map[string]*config.CameraCalibration{
		"cam-a": {VelocityMultiplierX: f64(2.0)},
	}}
	s, err := New("pair-1", a, b, cfg, nil, nil)
	require.NoError(t, err)

	// Track ends at t=1.9, x=19, 10 px/s. Doubled velocity projects
	// 20 px/s forward.
	box := s.BoxAt(LabelA, 2.4)
	require.NotNil(t, box)
	assert.InDelta(t, 19+20*0.5, box.X, 1e-9)

	// Camera B is uncalibrated.
	boxB := s.BoxAt(LabelB, 2.4)
	require.NotNil(t, boxB)
	assert.InDelta(t, 81-10*0.5, boxB.X, 1e-9)
}

func TestBoxesAtRealBlanking(t *testing.T) {
	t.Parallel()

	a, b := pairRecords()
	s, err := New("pair-1", a, b, nil, nil, nil)
	require.NoError(t, err)

	// Before A's delayed start only B has content.
	boxA, boxB, seekA, seekB := s.BoxesAtReal(1.0)
	assert.Nil(t, boxA)
	assert.True(t, seekA.Blanked())
	assert.False(t, seekB.Blanked())
	require.NotNil(t, boxB)
	assert.InDelta(t, 90, boxB.X, 1e-9) // B local 1.0: x = 100 - 10

	// Past the delay both clips are live.
	boxA, boxB, seekA, seekB = s.BoxesAtReal(2.5)
	assert.False(t, seekA.Blanked())
	assert.False(t, seekB.Blanked())
	require.NotNil(t, boxA)
	assert.InDelta(t, 5, boxA.X, 1e-9) // A local 0.5
	require.NotNil(t, boxB)
}
