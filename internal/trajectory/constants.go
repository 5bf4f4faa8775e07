package trajectory

// Heuristic constants. Empirically chosen; behavior-compatible tuning should
// change these values, not the surrounding control flow.
const (
	// defaultNormalGap is the floor (and no-data fallback) for the normal
	// inter-sample spacing estimate, in seconds. Protects low-frame-rate
	// sources from classifying every ordinary step as an occlusion.
	defaultNormalGap = 0.4

	// gapSampleLimit caps how many leading inter-sample deltas feed the
	// normal-gap median.
	gapSampleLimit = 20

	// gapMultiplier scales the median sampling interval; several consecutive
	// missed detections are tolerated before a gap counts as an occlusion.
	gapMultiplier = 8.0

	// motionWindow is the number of trailing points feeding velocity
	// estimation.
	motionWindow = 5

	// motionDecayRate is the exponential age decay for velocity samples.
	motionDecayRate = 0.7

	// accelSampleLimit caps the instantaneous velocity samples feeding
	// acceleration estimation.
	accelSampleLimit = 3

	// perspectiveGrowthThreshold and perspectiveSpanMin gate the approach
	// correction: box area growth beyond the threshold over more than the
	// minimum span means the object is approaching the camera and apparent
	// motion compounds. perspectiveBoostCap bounds the correction.
	perspectiveGrowthThreshold = 1.3
	perspectiveSpanMin         = 0.3
	perspectiveBoostCap        = 5.0

	// anomalyAreaFactor marks a sample as a tracker re-latch when its area
	// exceeds this multiple of the baseline area. baselineSampleLimit caps
	// how many leading points establish the baseline.
	anomalyAreaFactor   = 3.0
	baselineSampleLimit = 8

	// lostTrackGap is the inter-sample gap, in seconds, beyond which the
	// track is considered lost rather than occluded.
	lostTrackGap = 10.0

	// preTrackSnapLead is how early, in seconds, a query may snap forward
	// onto the first upcoming sample (or onto the far side of a lost-track
	// gap).
	preTrackSnapLead = 0.5

	// occlusionSnapBack is how close, in seconds, a query must be to the
	// sample ending an occlusion to snap onto it instead of projecting.
	occlusionSnapBack = 0.3

	// Projection window bounds, in seconds. Tracks observed for under
	// shortTrackSpan get the fixed shortTrackProjection bound; longer tracks
	// get twice their observed span, clamped to
	// [minProjectionWindow, maxProjectionWindow].
	minProjectionWindow  = 0.5
	maxProjectionWindow  = 3.0
	shortTrackSpan       = 2.0
	shortTrackProjection = 4.0

	// consensusExtension is the extra projection window, in seconds, granted
	// when the paired camera corroborates the object's presence.
	consensusExtension = 1.5

	// minBoxSize floors projected box dimensions, in pixels.
	minBoxSize = 10.0

	// minVisibleFraction is the minimum share of a projected box's area that
	// must remain inside the frame; below it the box is discarded.
	minVisibleFraction = 0.30
)
