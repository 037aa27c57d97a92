// Package detect implements per-frame scene-cut analysis: the detector
// contracts a scene.Manager drives, and ContentDetector, the dense
// HSV-delta detector ported from PySceneDetect's ContentDetector.
package detect

import "github.com/framewright/scenedetect/frame"

// Detector is a dense scene detector: one that emits cut points (a single
// frame index marking the start of a new scene). Modeled as its own
// interface rather than a tagged union with SparseDetector, per the
// dense/sparse split spec.md keeps at the SceneManager level.
type Detector interface {
	// ProcessFrame analyzes img, the frame at frameIndex, and returns any
	// cut points it fires as a result (almost always zero or one).
	ProcessFrame(frameIndex int, img *frame.Image) ([]int, error)
	// PostProcess is called once after the last frame has been processed,
	// with the inclusive start/end frame range of the whole run, so a
	// detector can emit a final trailing cut if its internal state
	// warrants one. Most detectors return nil.
	PostProcess(startFrame, endFrame int) ([]int, error)
	// Metrics lists the StatsManager metric names this detector owns.
	Metrics() []string
	// StatsManagerRequired reports whether this detector needs a
	// StatsManager to function (as opposed to merely using one if
	// present).
	StatsManagerRequired() bool
	// IsProcessingRequired reports whether this detector still needs a
	// decoded frame at frameIndex, or whether every metric it owns is
	// already cached for that frame.
	IsProcessingRequired(frameIndex int) bool
}

// SparseDetector is a sparse scene detector: one that emits event ranges
// (start, end) rather than single cut points, e.g. fade-to-black spans.
type SparseDetector interface {
	// ProcessFrame analyzes img, the frame at frameIndex, and returns any
	// event ranges it closes off as a result.
	ProcessFrame(frameIndex int, img *frame.Image) ([]Event, error)
	// PostProcess mirrors Detector.PostProcess.
	PostProcess(startFrame, endFrame int) ([]Event, error)
	// Metrics mirrors Detector.Metrics.
	Metrics() []string
	// StatsManagerRequired mirrors Detector.StatsManagerRequired.
	StatsManagerRequired() bool
	// IsProcessingRequired mirrors Detector.IsProcessingRequired.
	IsProcessingRequired(frameIndex int) bool
}

// Event is a sparse detector's output: a half-open [Start, End) frame range.
type Event struct {
	Start, End int
}
