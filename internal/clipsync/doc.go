// Package clipsync aligns two independently recorded clips of the same event
// onto a shared real-time axis.
//
// Each camera reports the clip-local offset of its first detection and the
// absolute epoch of that detection, which together recover when the clip
// started in real time. The later-starting clip is held (blanked) for the
// difference, so corresponding instants play concurrently. TimelineMapper
// operations convert a shared scrubber position into per-clip seek targets
// and back.
package clipsync
