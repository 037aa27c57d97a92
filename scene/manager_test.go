package scene

import (
	"testing"

	"github.com/framewright/scenedetect/detect"
	"github.com/framewright/scenedetect/frame"
	"github.com/framewright/scenedetect/stats"
)

func solidFrames(n, w, h int, colorAt func(i int) (b, g, r uint8)) []*frame.Image {
	frames := make([]*frame.Image, n)
	for i := 0; i < n; i++ {
		b, g, r := colorAt(i)
		img := frame.NewImage(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.Set(x, y, b, g, r)
			}
		}
		frames[i] = img
	}
	return frames
}

// TestScenario1_ContentDetectorSingleCut mirrors spec scenario 1: a 30fps,
// 300-frame source with a visible cut at frame 120.
func TestScenario1_ContentDetectorSingleCut(t *testing.T) {
	colorAt := func(i int) (b, g, r uint8) {
		if i < 120 {
			return 0, 0, 0
		}
		return 255, 255, 255
	}
	frames := solidFrames(300, 4, 4, colorAt)
	src := frame.NewSliceSource("t", frames, 30, 1)

	m := NewManager(nil)
	m.AddDetector(detect.NewContentDetector(27, 15, nil))

	n, err := m.DetectScenes(src, DetectScenesOptions{})
	if err != nil {
		t.Fatalf("DetectScenes: %v", err)
	}
	if n != 300 {
		t.Fatalf("frames processed = %d, want 300", n)
	}

	cuts := m.GetCutList()
	if len(cuts) != 1 || cuts[0].Frames() != 120 {
		t.Fatalf("cut list = %v, want [120]", cuts)
	}

	scenes := m.GetSceneList()
	if len(scenes) != 2 {
		t.Fatalf("scene list length = %d, want 2", len(scenes))
	}
	if scenes[0].Start.Frames() != 0 || scenes[0].End.Frames() != 120 {
		t.Fatalf("scene[0] = %+v, want (0,120)", scenes[0])
	}
	if scenes[1].Start.Frames() != 120 || scenes[1].End.Frames() != 300 {
		t.Fatalf("scene[1] = %+v, want (120,300)", scenes[1])
	}
}

// TestScenario2_EmptyCutList mirrors spec scenario 2: a flat-color
// 90-frame source produces a single scene covering the whole stream.
func TestScenario2_EmptyCutList(t *testing.T) {
	frames := solidFrames(90, 4, 4, func(i int) (uint8, uint8, uint8) { return 50, 50, 50 })
	src := frame.NewSliceSource("t", frames, 30, 1)

	m := NewManager(nil)
	m.AddDetector(detect.NewContentDetector(27, 15, nil))

	if _, err := m.DetectScenes(src, DetectScenesOptions{}); err != nil {
		t.Fatalf("DetectScenes: %v", err)
	}

	cuts := m.GetCutList()
	if len(cuts) != 0 {
		t.Fatalf("cut list = %v, want empty", cuts)
	}

	scenes := m.GetSceneList()
	if len(scenes) != 1 || scenes[0].Start.Frames() != 0 || scenes[0].End.Frames() != 90 {
		t.Fatalf("scene list = %+v, want [(0,90)]", scenes)
	}
}

// TestScenario6_CallbackFiresOncePerCut mirrors spec scenario 6.
func TestScenario6_CallbackFiresOncePerCut(t *testing.T) {
	colorAt := func(i int) (b, g, r uint8) {
		switch {
		case i < 50:
			return 0, 0, 0
		case i < 120:
			return 255, 255, 255
		default:
			return 0, 255, 0
		}
	}
	frames := solidFrames(200, 4, 4, colorAt)
	src := frame.NewSliceSource("t", frames, 30, 1)

	m := NewManager(nil)
	m.AddDetector(detect.NewContentDetector(27, 15, nil))

	var callCount int
	seen := make(map[int]bool)
	cb := func(img *frame.Image, frameIndex int) {
		callCount++
		seen[frameIndex] = true
	}

	if _, err := m.DetectScenes(src, DetectScenesOptions{Callback: cb}); err != nil {
		t.Fatalf("DetectScenes: %v", err)
	}

	if callCount != 2 {
		t.Fatalf("callback invocation count = %d, want 2", callCount)
	}
	if !seen[50] || !seen[120] {
		t.Fatalf("callback frames = %v, want {50,120}", seen)
	}
}

// TestP1_ScenePartition checks the scene list exactly tiles
// [start, start+N) with no gaps or overlaps.
func TestP1_ScenePartition(t *testing.T) {
	colorAt := func(i int) (b, g, r uint8) {
		if i < 40 || (i >= 80 && i < 120) {
			return 0, 0, 0
		}
		return 255, 255, 255
	}
	frames := solidFrames(150, 4, 4, colorAt)
	src := frame.NewSliceSource("t", frames, 30, 1)

	m := NewManager(nil)
	m.AddDetector(detect.NewContentDetector(27, 1, nil))
	if _, err := m.DetectScenes(src, DetectScenesOptions{}); err != nil {
		t.Fatalf("DetectScenes: %v", err)
	}

	scenes := m.GetSceneList()
	if len(scenes) == 0 {
		t.Fatal("expected at least one scene")
	}
	if scenes[0].Start.Frames() != 0 {
		t.Fatalf("first scene start = %d, want 0", scenes[0].Start.Frames())
	}
	if scenes[len(scenes)-1].End.Frames() != 150 {
		t.Fatalf("last scene end = %d, want 150", scenes[len(scenes)-1].End.Frames())
	}
	for i := 0; i+1 < len(scenes); i++ {
		if scenes[i].End.Frames() != scenes[i+1].Start.Frames() {
			t.Fatalf("gap between scene %d (end %d) and scene %d (start %d)",
				i, scenes[i].End.Frames(), i+1, scenes[i+1].Start.Frames())
		}
	}
}

// TestP2_SortedUniqueCuts checks GetCutList never returns duplicate or
// out-of-order frame indices even when a detector fires redundantly.
func TestP2_SortedUniqueCuts(t *testing.T) {
	colorAt := func(i int) (b, g, r uint8) {
		if i < 5 {
			return 0, 0, 0
		}
		return 255, 255, 255
	}
	frames := solidFrames(10, 2, 2, colorAt)
	src := frame.NewSliceSource("t", frames, 30, 1)

	// Two identical detectors both fire at frame 5.
	m := NewManager(nil)
	m.AddDetector(detect.NewContentDetector(27, 0, nil))
	m.AddDetector(detect.NewContentDetector(27, 0, nil))
	if _, err := m.DetectScenes(src, DetectScenesOptions{}); err != nil {
		t.Fatalf("DetectScenes: %v", err)
	}

	cuts := m.GetCutList()
	if len(cuts) != 1 || cuts[0].Frames() != 5 {
		t.Fatalf("cut list = %v, want the duplicate cut at 5 reported once", cuts)
	}
	for i := 0; i+1 < len(cuts); i++ {
		if cuts[i].Frames() >= cuts[i+1].Frames() {
			t.Fatalf("cut list not strictly increasing at %d: %v", i, cuts)
		}
	}
}

// TestP3_NonEmptyScenes checks every scene has End > Start.
func TestP3_NonEmptyScenes(t *testing.T) {
	colorAt := func(i int) (b, g, r uint8) {
		if i < 30 {
			return 0, 0, 0
		}
		return 200, 200, 200
	}
	frames := solidFrames(60, 4, 4, colorAt)
	src := frame.NewSliceSource("t", frames, 30, 1)

	m := NewManager(nil)
	m.AddDetector(detect.NewContentDetector(27, 5, nil))
	if _, err := m.DetectScenes(src, DetectScenesOptions{}); err != nil {
		t.Fatalf("DetectScenes: %v", err)
	}

	for _, s := range m.GetSceneList() {
		if s.End.Frames() <= s.Start.Frames() {
			t.Fatalf("empty or inverted scene: %+v", s)
		}
	}
}

// TestP5_CacheHitSkipsCompute runs detection twice over the same
// StatsManager and asserts the second run produces identical cuts, and
// that every frame past the first reports IsProcessingRequired == false
// after the first run, which is what lets the manager skip decoding on a
// cache hit. Frame 0 is excluded: it never has a previous frame to diff
// against, so ContentDetector never stores metrics for it and it always
// reports processing required, by design.
func TestP5_CacheHitSkipsCompute(t *testing.T) {
	colorAt := func(i int) (b, g, r uint8) {
		if i < 40 {
			return 0, 0, 0
		}
		return 255, 255, 255
	}
	frames := solidFrames(80, 4, 4, colorAt)

	sm := stats.NewManager()
	src1 := frame.NewSliceSource("t", frames, 30, 1)
	m1 := NewManager(sm)
	d1 := detect.NewContentDetector(27, 5, sm)
	m1.AddDetector(d1)
	if _, err := m1.DetectScenes(src1, DetectScenesOptions{}); err != nil {
		t.Fatalf("first DetectScenes: %v", err)
	}
	firstCuts := m1.GetCutList()

	for i := 1; i < 80; i++ {
		if d1.IsProcessingRequired(i) {
			t.Fatalf("frame %d still reports processing required after first run", i)
		}
	}

	src2 := frame.NewSliceSource("t", frames, 30, 1)
	m2 := NewManager(sm)
	d2 := detect.NewContentDetector(27, 5, sm)
	m2.AddDetector(d2)
	if _, err := m2.DetectScenes(src2, DetectScenesOptions{}); err != nil {
		t.Fatalf("second DetectScenes: %v", err)
	}
	secondCuts := m2.GetCutList()

	if len(firstCuts) != len(secondCuts) {
		t.Fatalf("cut counts differ: %v vs %v", firstCuts, secondCuts)
	}
	for i := range firstCuts {
		if firstCuts[i].Frames() != secondCuts[i].Frames() {
			t.Fatalf("cut %d differs: %v vs %v", i, firstCuts[i], secondCuts[i])
		}
	}
}

// TestP9_FrameSkipDisallowedWithStats checks detect_scenes rejects
// frame_skip > 0 when a StatsManager is bound, before reading any frame.
func TestP9_FrameSkipDisallowedWithStats(t *testing.T) {
	sm := stats.NewManager()
	frames := solidFrames(10, 2, 2, func(i int) (uint8, uint8, uint8) { return 0, 0, 0 })
	src := frame.NewSliceSource("t", frames, 30, 1)

	m := NewManager(sm)
	m.AddDetector(detect.NewContentDetector(27, 0, sm))

	_, err := m.DetectScenes(src, DetectScenesOptions{FrameSkip: 2})
	if err != ErrFrameSkipWithStats {
		t.Fatalf("err = %v, want ErrFrameSkipWithStats", err)
	}
	if src.FrameNumber() != 0 {
		t.Fatalf("source advanced to frame %d, want 0 (no frame should be read)", src.FrameNumber())
	}
}

// TestDetectScenes_RejectsNegativeDurationAndEndTime checks that a
// negative Duration or EndTime fails immediately, before any frame is
// read, instead of being silently accepted.
func TestDetectScenes_RejectsNegativeDurationAndEndTime(t *testing.T) {
	frames := solidFrames(10, 2, 2, func(i int) (uint8, uint8, uint8) { return 0, 0, 0 })

	negDuration := -5
	src := frame.NewSliceSource("t", frames, 30, 1)
	m := NewManager(nil)
	m.AddDetector(detect.NewContentDetector(27, 0, nil))
	if _, err := m.DetectScenes(src, DetectScenesOptions{Duration: &negDuration}); err != ErrNegativeDuration {
		t.Fatalf("err = %v, want ErrNegativeDuration", err)
	}
	if src.FrameNumber() != 0 {
		t.Fatalf("source advanced to frame %d, want 0 (no frame should be read)", src.FrameNumber())
	}

	negEndTime := -1
	src2 := frame.NewSliceSource("t", frames, 30, 1)
	m2 := NewManager(nil)
	m2.AddDetector(detect.NewContentDetector(27, 0, nil))
	if _, err := m2.DetectScenes(src2, DetectScenesOptions{EndTime: &negEndTime}); err != ErrNegativeEndTime {
		t.Fatalf("err = %v, want ErrNegativeEndTime", err)
	}
	if src2.FrameNumber() != 0 {
		t.Fatalf("source advanced to frame %d, want 0 (no frame should be read)", src2.FrameNumber())
	}
}

func TestComputeDownscaleFactor(t *testing.T) {
	cases := []struct {
		width, effective, want int
	}{
		{100, 256, 1},
		{256, 256, 1},
		{512, 256, 2},
		{800, 256, 3},
	}
	for _, c := range cases {
		got := ComputeDownscaleFactor(c.width, c.effective)
		if got != c.want {
			t.Errorf("ComputeDownscaleFactor(%d,%d) = %d, want %d", c.width, c.effective, got, c.want)
		}
	}
}
