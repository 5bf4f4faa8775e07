package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// uniformTrajectory builds n points spaced d seconds apart starting at t0,
// all with the same 10×10 box.
func uniformTrajectory(t0, d float64, n int) Trajectory {
	traj := make(Trajectory, 0, n)
	for i := 0; i < n; i++ {
		traj = append(traj, Point{Time: t0 + float64(i)*d, X: float64(i), Y: 0, W: 10, H: 10})
	}
	return traj
}

func TestNormalGapUniformSpacing(t *testing.T) {
	t.Parallel()

	// Above the floor the result is 8× the uniform spacing.
	traj := uniformTrajectory(0, 0.1, 12)
	assert.InDelta(t, 0.8, NormalGap(traj), 1e-9)

	// Halving/doubling the spacing scales the result proportionally.
	assert.InDelta(t, 1.6, NormalGap(uniformTrajectory(0, 0.2, 12)), 1e-9)
	assert.InDelta(t, 0.4, NormalGap(uniformTrajectory(0, 0.05, 12)), 1e-9) // floored
}

func TestNormalGapFloor(t *testing.T) {
	t.Parallel()

	// Dense sampling clamps to the floor.
	traj := uniformTrajectory(0, 0.01, 30)
	assert.InDelta(t, 0.4, NormalGap(traj), 1e-9)
}

func TestNormalGapNoUsableDeltas(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.4, NormalGap(nil), 1e-9)
	assert.InDelta(t, 0.4, NormalGap(Trajectory{{Time: 1}}), 1e-9)

	// Duplicate timestamps yield no positive deltas.
	dup := Trajectory{{Time: 2}, {Time: 2}, {Time: 2}}
	assert.InDelta(t, 0.4, NormalGap(dup), 1e-9)
}

func TestNormalGapIgnoresLateDeltas(t *testing.T) {
	t.Parallel()

	// Only the first 20 deltas participate: a huge gap after them does not
	// move the estimate.
	traj := uniformTrajectory(0, 0.1, 21)
	traj = append(traj, Point{Time: traj[len(traj)-1].Time + 60, W: 10, H: 10})
	assert.InDelta(t, 0.8, NormalGap(traj), 1e-9)
}
