package trajectory

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// NormalGap estimates the typical inter-sample spacing of a trajectory, in
// seconds. It takes the median of up to the first gapSampleLimit positive
// consecutive time deltas and scales it by gapMultiplier, floored at
// defaultNormalGap. Gaps beyond this value indicate a real occlusion rather
// than ordinary detector sparsity.
//
// Non-positive deltas (duplicate or malformed timestamps) contribute nothing.
// A trajectory with no usable deltas yields the floor.
func NormalGap(traj Trajectory) float64 {
	deltas := make([]float64, 0, gapSampleLimit)
	for i := 1; i < len(traj) && len(deltas) < gapSampleLimit; i++ {
		d := traj[i].Time - traj[i-1].Time
		if d > 0 {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return defaultNormalGap
	}

	sort.Float64s(deltas)
	median := stat.Quantile(0.5, stat.Empirical, deltas, nil)
	return math.Max(defaultNormalGap, median*gapMultiplier)
}
