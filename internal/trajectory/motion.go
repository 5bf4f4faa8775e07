package trajectory

import "math"

// EstimateMotion derives a MotionModel from the trailing window of trajectory
// points ending at index last.
//
// Velocity: up to motionWindow points ending at last contribute instantaneous
// velocity samples, one per consecutive pair with a positive time delta.
// Samples are combined with exponential weights exp(-motionDecayRate·age),
// where age is the pair's index distance from last; the final velocity is the
// weighted delta sum divided by the weighted time-delta sum.
//
// Acceleration: the time-weighted rate of change between the earliest and
// latest of the last accelSampleLimit velocity samples.
//
// Approach correction: when box area has grown by more than
// perspectiveGrowthThreshold over a span above perspectiveSpanMin, the object
// is approaching the camera and apparent motion compounds; acceleration is
// scaled by the growth ratio, capped at perspectiveBoostCap. A heuristic, not
// exact perspective geometry.
//
// Pairs with non-positive time deltas contribute nothing rather than failing
// the estimate. A window with no usable pairs yields a zero model.
func EstimateMotion(traj Trajectory, last int) MotionModel {
	var m MotionModel
	if last <= 0 || last >= len(traj) {
		return m
	}

	// Exponentially weighted velocity over the trailing window.
	start := last - motionWindow + 1
	if start < 0 {
		start = 0
	}
	var sumWdt, sumWdx, sumWdy, sumWdw, sumWdh float64
	for j := start + 1; j <= last; j++ {
		dt := traj[j].Time - traj[j-1].Time
		if dt <= 0 {
			continue
		}
		w := math.Exp(-motionDecayRate * float64(last-j))
		sumWdt += w * dt
		sumWdx += w * (traj[j].X - traj[j-1].X)
		sumWdy += w * (traj[j].Y - traj[j-1].Y)
		sumWdw += w * (traj[j].W - traj[j-1].W)
		sumWdh += w * (traj[j].H - traj[j-1].H)
	}
	if sumWdt > 0 {
		m.VX = sumWdx / sumWdt
		m.VY = sumWdy / sumWdt
		m.VW = sumWdw / sumWdt
		m.VH = sumWdh / sumWdt
	}

	// Acceleration from the last few instantaneous velocity samples.
	type velSample struct {
		t              float64
		vx, vy, vw, vh float64
	}
	samples := make([]velSample, 0, accelSampleLimit)
	for j := last; j > 0 && len(samples) < accelSampleLimit; j-- {
		dt := traj[j].Time - traj[j-1].Time
		if dt <= 0 {
			continue
		}
		samples = append(samples, velSample{
			t:  traj[j].Time,
			vx: (traj[j].X - traj[j-1].X) / dt,
			vy: (traj[j].Y - traj[j-1].Y) / dt,
			vw: (traj[j].W - traj[j-1].W) / dt,
			vh: (traj[j].H - traj[j-1].H) / dt,
		})
	}
	if len(samples) >= 2 {
		newest := samples[0]
		oldest := samples[len(samples)-1]
		span := newest.t - oldest.t
		if span > 0 {
			m.AX = (newest.vx - oldest.vx) / span
			m.AY = (newest.vy - oldest.vy) / span
			m.AW = (newest.vw - oldest.vw) / span
			m.AH = (newest.vh - oldest.vh) / span
		}
	}

	// Approach-perspective correction.
	firstArea := traj[0].Area()
	span := traj[last].Time - traj[0].Time
	if firstArea > 0 && span > perspectiveSpanMin {
		ratio := traj[last].Area() / firstArea
		if ratio > perspectiveGrowthThreshold {
			boost := math.Min(ratio, perspectiveBoostCap)
			m.AX *= boost
			m.AY *= boost
			m.AW *= boost
			m.AH *= boost
		}
	}

	return m
}
