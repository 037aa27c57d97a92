// Package scene implements SceneManager: the orchestrator that drives a
// frame.Source through a set of detect.Detector/detect.SparseDetector
// instances and assembles their output into cut, event, and scene lists.
// Directly adapted from original_source/scenedetect/scene_manager.py's
// SceneManager class and module-level helpers.
package scene

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/framewright/scenedetect/detect"
	"github.com/framewright/scenedetect/frame"
	"github.com/framewright/scenedetect/stats"
	"github.com/framewright/scenedetect/timecode"
)

// DefaultEffectiveWidth is the target effective width auto-downscaling
// aims for, matching PySceneDetect's DEFAULT_MIN_WIDTH.
const DefaultEffectiveWidth = 256

// ComputeDownscaleFactor returns frameWidth / effectiveWidth (integer
// division), which brings frameWidth into [effectiveWidth,
// 2*effectiveWidth) when frameWidth >= effectiveWidth (into
// [effectiveWidth, 1.5*effectiveWidth) once the factor is 2 or more), or
// 1 (no downscale) otherwise. Ported
// from compute_downscale_factor.
func ComputeDownscaleFactor(frameWidth, effectiveWidth int) int {
	if frameWidth < 1 || effectiveWidth < 1 {
		panic("scene: frameWidth and effectiveWidth must be positive")
	}
	if frameWidth < effectiveWidth {
		return 1
	}
	return frameWidth / effectiveWidth
}

// Scene is a contiguous [Start, End) span of the video, expressed as
// FrameTimecodes.
type Scene struct {
	Start, End timecode.FrameTimecode
}

// ScenesFromCuts builds the scene list implied by a sorted cut list: one
// scene per [prevCut, cut) span, plus a leading scene from the start
// frame and a trailing scene to the end of the stream. Ported from
// get_scenes_from_cuts.
func ScenesFromCuts(cuts []timecode.FrameTimecode, base timecode.FrameTimecode, numFrames, startFrame int) []Scene {
	if len(cuts) == 0 {
		return []Scene{{
			Start: base.AddFrames(startFrame),
			End:   base.AddFrames(startFrame + numFrames),
		}}
	}

	scenes := make([]Scene, 0, len(cuts)+1)
	lastCut := base.AddFrames(startFrame)
	for _, cut := range cuts {
		scenes = append(scenes, Scene{Start: lastCut, End: cut})
		lastCut = cut
	}
	scenes = append(scenes, Scene{Start: lastCut, End: base.AddFrames(startFrame + numFrames)})
	return scenes
}

// Manager drives detection over a frame.Source and accumulates results.
// Ported from SceneManager.
type Manager struct {
	statsManager   *stats.Manager
	cuttingList    []int
	eventList      []detect.Event
	detectors      []detect.Detector
	sparseDetectors []detect.SparseDetector

	downscale     int
	autoDownscale bool

	numFrames   int
	startFrame  int
	baseTC      timecode.FrameTimecode
	haveBaseTC  bool
}

// NewManager returns a Manager. statsManager may be nil; one is
// allocated automatically the first time a detector requiring one is
// added via AddDetector.
func NewManager(statsManager *stats.Manager) *Manager {
	return &Manager{statsManager: statsManager, downscale: 1}
}

// SetDownscale sets the fixed downscale factor used when AutoDownscale
// is false. value must be >= 1.
func (m *Manager) SetDownscale(value int) {
	if value < 1 {
		panic("scene: downscale factor must be >= 1")
	}
	m.downscale = value
}

// SetAutoDownscale enables or disables automatic downscale-factor
// computation from the source's frame width, overriding SetDownscale
// when true.
func (m *Manager) SetAutoDownscale(enabled bool) {
	m.autoDownscale = enabled
}

// StatsManager returns the Manager's bound stats.Manager, which may be
// nil if none was supplied and no detector requiring one has been added
// yet.
func (m *Manager) StatsManager() *stats.Manager {
	return m.statsManager
}

// AddDetector registers a dense detector with the Manager, allocating a
// stats.Manager first if the detector requires one and none exists yet,
// then registering the detector's metric names against it (swallowing
// an already-registered conflict, since multiple detectors commonly
// share metric names).
func (m *Manager) AddDetector(d detect.Detector) {
	m.ensureStatsManager(d.StatsManagerRequired())
	if m.statsManager != nil {
		if err := m.statsManager.RegisterMetrics(d.Metrics()); err != nil {
			var alreadyRegistered *stats.ErrMetricAlreadyRegistered
			if !errors.As(err, &alreadyRegistered) {
				panic(fmt.Sprintf("scene: registering detector metrics: %v", err))
			}
		}
	}
	m.detectors = append(m.detectors, d)
}

// AddSparseDetector registers a sparse (event-range) detector, with the
// same StatsManager allocation/registration rules as AddDetector.
func (m *Manager) AddSparseDetector(d detect.SparseDetector) {
	m.ensureStatsManager(d.StatsManagerRequired())
	if m.statsManager != nil {
		if err := m.statsManager.RegisterMetrics(d.Metrics()); err != nil {
			var alreadyRegistered *stats.ErrMetricAlreadyRegistered
			if !errors.As(err, &alreadyRegistered) {
				panic(fmt.Sprintf("scene: registering detector metrics: %v", err))
			}
		}
	}
	m.sparseDetectors = append(m.sparseDetectors, d)
}

func (m *Manager) ensureStatsManager(required bool) {
	if m.statsManager == nil && required {
		m.statsManager = stats.NewManager()
	}
}

// Clear empties the cut/event lists and resets frame counters, but
// preserves the bound StatsManager and its cached metrics.
func (m *Manager) Clear() {
	m.cuttingList = nil
	m.eventList = nil
	m.numFrames = 0
	m.startFrame = 0
}

// ClearDetectors removes every registered detector (dense and sparse).
func (m *Manager) ClearDetectors() {
	m.detectors = nil
	m.sparseDetectors = nil
}

// GetCutList returns the sorted, deduplicated list of detected cut
// points as FrameTimecodes at the source's framerate.
func (m *Manager) GetCutList() []timecode.FrameTimecode {
	if !m.haveBaseTC {
		return nil
	}
	cuts := m.cuttingListSorted()
	out := make([]timecode.FrameTimecode, len(cuts))
	for i, f := range cuts {
		out[i] = m.baseTC.AddFrames(f)
	}
	return out
}

func (m *Manager) cuttingListSorted() []int {
	seen := make(map[int]struct{}, len(m.cuttingList))
	for _, f := range m.cuttingList {
		seen[f] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}

// GetEventList returns the list of sparse-detector event ranges as
// (start, end) FrameTimecode pairs.
func (m *Manager) GetEventList() []Scene {
	if !m.haveBaseTC {
		return nil
	}
	out := make([]Scene, len(m.eventList))
	for i, e := range m.eventList {
		out[i] = Scene{Start: m.baseTC.AddFrames(e.Start), End: m.baseTC.AddFrames(e.End)}
	}
	return out
}

// GetSceneList returns every detected scene (combining sparse-detector
// events with the scenes implied by the dense cut list), sorted by start
// timecode ascending.
func (m *Manager) GetSceneList() []Scene {
	if !m.haveBaseTC {
		return nil
	}
	scenes := append([]Scene{}, m.GetEventList()...)
	scenes = append(scenes, ScenesFromCuts(m.GetCutList(), m.baseTC, m.numFrames, m.startFrame)...)
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Start.Before(scenes[j].Start)
	})
	return scenes
}

// ErrFrameSkipWithStats is returned by DetectScenes when frame_skip > 0
// is requested alongside a bound StatsManager, a combination the cache
// cannot represent correctly (skipped frames would leave permanent
// holes in the per-frame metric series).
var ErrFrameSkipWithStats = errors.New("scene: frame_skip must be 0 when using a StatsManager")

// ErrDurationAndEndTime is returned when both Duration and EndTime are
// set on a DetectScenesOptions; they are mutually exclusive.
var ErrDurationAndEndTime = errors.New("scene: duration and end_time cannot both be set")

// ErrNegativeDuration is returned when Duration is negative.
var ErrNegativeDuration = errors.New("scene: duration must be >= 0")

// ErrNegativeEndTime is returned when EndTime is negative.
var ErrNegativeEndTime = errors.New("scene: end_time must be >= 0")

// Callback is invoked once per detector that fires a cut or event on a
// given frame, receiving the frame that triggered it and its index.
type Callback func(img *frame.Image, frameIndex int)

// DetectScenesOptions configures a single DetectScenes call.
type DetectScenesOptions struct {
	// Duration limits processing to this many frames from the source's
	// current position. Mutually exclusive with EndTime.
	Duration *int
	// EndTime stops processing once the source's position reaches this
	// absolute frame index. Mutually exclusive with Duration.
	EndTime *int
	// FrameSkip performs this many grab-only advances after each
	// processed frame. Must be 0 if a StatsManager is bound.
	FrameSkip int
	// Callback, if non-nil, is invoked once per detector firing a cut or
	// event on a given frame.
	Callback Callback
}

// DetectScenes runs detection over src from its current position,
// blocking until the source is exhausted or the configured Duration/
// EndTime bound is reached. Returns the number of frames processed.
// Ported from SceneManager.detect_scenes.
func (m *Manager) DetectScenes(src frame.Source, opts DetectScenesOptions) (int, error) {
	if opts.FrameSkip > 0 && m.statsManager != nil {
		return 0, ErrFrameSkipWithStats
	}
	if opts.Duration != nil && opts.EndTime != nil {
		return 0, ErrDurationAndEndTime
	}
	if opts.Duration != nil && *opts.Duration < 0 {
		return 0, ErrNegativeDuration
	}
	if opts.EndTime != nil && *opts.EndTime < 0 {
		return 0, ErrNegativeEndTime
	}

	m.baseTC = src.BaseTimecode()
	m.haveBaseTC = true
	m.startFrame = src.FrameNumber()

	var endTime *timecode.FrameTimecode
	if opts.Duration != nil {
		tc := m.baseTC.AddFrames(*opts.Duration + m.startFrame)
		endTime = &tc
	} else if opts.EndTime != nil {
		tc := m.baseTC.AddFrames(*opts.EndTime)
		endTime = &tc
	}

	downscaleFactor := m.downscale
	if m.autoDownscale {
		w, _ := src.FrameSize()
		downscaleFactor = ComputeDownscaleFactor(w, DefaultEffectiveWidth)
	}

	lastFrame := 0
	decodedAny := false

	for {
		needsDecode := m.anyProcessingRequired(src.FrameNumber()) || m.anyProcessingRequired(src.FrameNumber()+1)

		var img *frame.Image
		if needsDecode {
			f, err := src.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return m.numFrames, err
			}
			if downscaleFactor > 1 {
				f = f.Downscale(downscaleFactor)
			}
			img = f
		} else {
			if !src.Grab() {
				break
			}
		}

		processedIndex := src.FrameNumber() - 1
		lastFrame = processedIndex
		decodedAny = true

		if err := m.processFrame(processedIndex, img, opts.Callback); err != nil {
			return m.numFrames, err
		}

		if opts.FrameSkip > 0 {
			for i := 0; i < opts.FrameSkip; i++ {
				if !src.Grab() {
					break
				}
			}
		}

		if endTime != nil {
			cmp, err := src.Position().Compare(*endTime)
			if err != nil {
				return m.numFrames, err
			}
			if cmp >= 0 {
				break
			}
		}
	}

	if decodedAny {
		if err := m.postProcess(m.startFrame, lastFrame); err != nil {
			return m.numFrames, err
		}
	}

	m.numFrames = src.FrameNumber() - m.startFrame
	return m.numFrames, nil
}

func (m *Manager) anyProcessingRequired(frameIndex int) bool {
	for _, d := range m.detectors {
		if d.IsProcessingRequired(frameIndex) {
			return true
		}
	}
	for _, d := range m.sparseDetectors {
		if d.IsProcessingRequired(frameIndex) {
			return true
		}
	}
	return len(m.detectors) == 0 && len(m.sparseDetectors) == 0
}

func (m *Manager) processFrame(frameIndex int, img *frame.Image, callback Callback) error {
	for _, d := range m.detectors {
		cuts, err := d.ProcessFrame(frameIndex, img)
		if err != nil {
			return err
		}
		if len(cuts) > 0 && callback != nil {
			callback(img, frameIndex)
		}
		m.cuttingList = append(m.cuttingList, cuts...)
	}
	for _, d := range m.sparseDetectors {
		events, err := d.ProcessFrame(frameIndex, img)
		if err != nil {
			return err
		}
		if len(events) > 0 && callback != nil {
			callback(img, frameIndex)
		}
		m.eventList = append(m.eventList, events...)
	}
	return nil
}

func (m *Manager) postProcess(startFrame, endFrame int) error {
	for _, d := range m.detectors {
		cuts, err := d.PostProcess(startFrame, endFrame)
		if err != nil {
			return err
		}
		m.cuttingList = append(m.cuttingList, cuts...)
	}
	return nil
}
