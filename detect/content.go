package detect

import (
	"fmt"

	"github.com/framewright/scenedetect/frame"
	"github.com/framewright/scenedetect/stats"
)

const (
	metricContentVal = "content_val"
	metricDeltaHue   = "delta_hue"
	metricDeltaSat   = "delta_sat"
	metricDeltaLum   = "delta_lum"
	metricDeltaEdges = "delta_edges"

	// defaultEdgeHighThreshold is the fixed Sobel-magnitude threshold
	// used when edge detection is enabled, chosen so that typical
	// compression noise on an otherwise static frame does not register
	// as an edge.
	defaultEdgeHighThreshold = 150.0
)

// ContentDetector is the dense HSV-delta scene-cut detector: it flags a
// cut whenever the average of the changes in mean hue, mean saturation,
// and mean value between consecutive frames reaches threshold, subject to
// a minimum scene length. Ported from PySceneDetect's scenedetect.detectors.
// content_detector.ContentDetector.
type ContentDetector struct {
	threshold   float64
	minSceneLen int
	edgesWeight float64 // 0 disables the edge term entirely

	statsManager *stats.Manager

	prevCutFrame int
	havePrev     bool
	prevHue      float64
	prevSat      float64
	prevVal      float64
	prevEdges    []bool
}

// NewContentDetector returns a ContentDetector with the given cut
// threshold and minimum scene length (in frames). statsManager may be
// nil; if non-nil, per-frame scalars are cached in it and reused on
// IsProcessingRequired checks.
func NewContentDetector(threshold float64, minSceneLen int, statsManager *stats.Manager) *ContentDetector {
	return &ContentDetector{
		threshold:    threshold,
		minSceneLen:  minSceneLen,
		statsManager: statsManager,
	}
}

// EnableEdges turns on the optional edge-difference term, weighting the
// fraction of pixels whose edge presence changed by weight into
// content_val alongside the HSV deltas.
func (d *ContentDetector) EnableEdges(weight float64) {
	d.edgesWeight = weight
}

// Metrics implements Detector.
func (d *ContentDetector) Metrics() []string {
	names := []string{metricContentVal, metricDeltaHue, metricDeltaSat, metricDeltaLum}
	if d.edgesWeight != 0 {
		names = append(names, metricDeltaEdges)
	}
	return names
}

// StatsManagerRequired implements Detector; ContentDetector can run
// without one, so this is always false.
func (d *ContentDetector) StatsManagerRequired() bool { return false }

// IsProcessingRequired implements Detector: true unless every metric this
// detector owns already has a cached value at frameIndex.
func (d *ContentDetector) IsProcessingRequired(frameIndex int) bool {
	if d.statsManager == nil {
		return true
	}
	return !d.statsManager.MetricsExist(frameIndex, d.Metrics())
}

// ProcessFrame implements Detector. Per spec.md §4.4, if content_val is
// already cached for frameIndex, no metrics are recomputed and the cached
// value is used for the cut decision. img may then be nil, which matters
// because the manager passes a nil img on a grab-only frame whenever
// every active detector already reports IsProcessingRequired == false for
// it (the common case on a cache-hit re-run). When img is non-nil its HSV
// means are taken even on a cache hit, so the next frame's delta is
// measured against this frame. img is only required when content_val is
// not yet cached for frameIndex.
func (d *ContentDetector) ProcessFrame(frameIndex int, img *frame.Image) ([]int, error) {
	contentVal, cached := d.cachedContentVal(frameIndex)

	var hueMean, satMean, valMean float64
	var edges []bool
	freshMeans := false

	if img == nil && !cached {
		return nil, fmt.Errorf("detect: ContentDetector: frame %d is not cached and no pixel data was supplied", frameIndex)
	}
	if img != nil {
		hueMean, satMean, valMean = hsvMeans(img)
		if d.edgesWeight != 0 {
			edges = edgeMap(img, defaultEdgeHighThreshold)
		}
		freshMeans = true
	}

	var cuts []int
	if d.havePrev {
		if !cached {
			deltaHue := absf(hueMean - d.prevHue)
			deltaSat := absf(satMean - d.prevSat)
			deltaLum := absf(valMean - d.prevVal)
			deltaEdges := edgeChangeFraction(d.prevEdges, edges)

			contentVal = (deltaHue + deltaSat + deltaLum) / 3
			if d.edgesWeight != 0 {
				contentVal += d.edgesWeight * deltaEdges
			}
			if d.statsManager != nil {
				values := map[string]float64{
					metricContentVal: contentVal,
					metricDeltaHue:   deltaHue,
					metricDeltaSat:   deltaSat,
					metricDeltaLum:   deltaLum,
				}
				if d.edgesWeight != 0 {
					values[metricDeltaEdges] = deltaEdges
				}
				if err := d.statsManager.SetMetrics(frameIndex, values); err != nil {
					return nil, err
				}
			}
		}

		if contentVal >= d.threshold && frameIndex-d.prevCutFrame >= d.minSceneLen {
			cuts = append(cuts, frameIndex)
			d.prevCutFrame = frameIndex
		}
	}

	// prevHue/prevSat/prevVal/prevEdges are updated whenever this frame
	// was decoded, cached or not. On a grab-only frame (img == nil) they're
	// left as-is: the manager's frameIndex+1 lookahead guarantees a real
	// decode happens on the frame immediately before any frame that
	// will actually need them for a delta.
	if freshMeans {
		d.prevHue, d.prevSat, d.prevVal = hueMean, satMean, valMean
		d.prevEdges = edges
	}
	d.havePrev = true
	return cuts, nil
}

// cachedContentVal returns the previously stored content_val for
// frameIndex, if the StatsManager already has one.
func (d *ContentDetector) cachedContentVal(frameIndex int) (float64, bool) {
	if d.statsManager == nil || !d.statsManager.MetricsExist(frameIndex, []string{metricContentVal}) {
		return 0, false
	}
	v, err := d.statsManager.GetMetrics(frameIndex, []string{metricContentVal})
	if err != nil {
		return 0, false
	}
	return v[0], true
}

// PostProcess implements Detector. ContentDetector has no trailing-cut
// behavior: every cut is emitted as soon as its triggering frame is
// processed.
func (d *ContentDetector) PostProcess(startFrame, endFrame int) ([]int, error) {
	return nil, nil
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
