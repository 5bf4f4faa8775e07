// Package trajectory reconstructs best-estimate bounding boxes from sparse
// per-camera detection sequences.
//
// A Trajectory is an immutable, time-ordered series of observed boxes for one
// tracked object on one camera. Detections arrive at irregular intervals, so
// a query time rarely lands on a sample. The Reconstructor answers "where is
// the object at time t" with one of:
//
//   - the observed box, when t lands on a sample;
//   - a linear interpolation, when t falls inside an ordinary inter-sample gap;
//   - a quadratic projection from the last known motion, when t falls inside
//     an occlusion or past the end of the track;
//   - nothing, when the projection window is exhausted or the projected box
//     has left the frame.
//
// NormalGap distinguishes ordinary detector sparsity from real occlusions,
// and EstimateMotion derives the velocity/acceleration model that projections
// are built on. All heuristic thresholds are named constants in this package
// so they can be tuned without touching control flow.
package trajectory
