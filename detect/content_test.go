package detect

import (
	"testing"

	"github.com/framewright/scenedetect/frame"
	"github.com/framewright/scenedetect/stats"
)

func solidImage(w, h int, b, g, r uint8) *frame.Image {
	img := frame.NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, b, g, r)
		}
	}
	return img
}

// TestContentDetector_NoCutOnStaticFrames verifies that a sequence of
// identical frames never triggers a cut, since content_val stays 0.
func TestContentDetector_NoCutOnStaticFrames(t *testing.T) {
	d := NewContentDetector(10, 0, nil)
	img := solidImage(8, 8, 10, 20, 30)
	for i := 0; i < 5; i++ {
		cuts, err := d.ProcessFrame(i, img)
		if err != nil {
			t.Fatalf("ProcessFrame(%d): %v", i, err)
		}
		if len(cuts) != 0 {
			t.Fatalf("frame %d: want no cuts on static input, got %v", i, cuts)
		}
	}
}

// TestContentDetector_CutOnColorChange verifies a cut fires when the
// frame content changes sharply enough to cross the threshold.
func TestContentDetector_CutOnColorChange(t *testing.T) {
	d := NewContentDetector(10, 0, nil)
	black := solidImage(8, 8, 0, 0, 0)
	white := solidImage(8, 8, 255, 255, 255)

	if _, err := d.ProcessFrame(0, black); err != nil {
		t.Fatalf("ProcessFrame(0): %v", err)
	}
	cuts, err := d.ProcessFrame(1, white)
	if err != nil {
		t.Fatalf("ProcessFrame(1): %v", err)
	}
	if len(cuts) != 1 || cuts[0] != 1 {
		t.Fatalf("want cut at frame 1, got %v", cuts)
	}
}

// TestContentDetector_P8_MinSceneLen verifies the min_scene_len gate: two
// large changes closer together than min_scene_len only produce one cut.
// The previous cut frame starts at 0, so the first change is placed at
// frame 5 where the gate first opens.
func TestContentDetector_P8_MinSceneLen(t *testing.T) {
	d := NewContentDetector(10, 5, nil)
	black := solidImage(4, 4, 0, 0, 0)
	white := solidImage(4, 4, 255, 255, 255)

	var allCuts []int
	frames := []*frame.Image{black, black, black, black, black, white, black, white, black}
	for i, f := range frames {
		cuts, err := d.ProcessFrame(i, f)
		if err != nil {
			t.Fatalf("ProcessFrame(%d): %v", i, err)
		}
		allCuts = append(allCuts, cuts...)
	}

	if len(allCuts) != 1 {
		t.Fatalf("want exactly 1 cut within min_scene_len window, got %v", allCuts)
	}
	if allCuts[0] != 5 {
		t.Fatalf("want first cut at frame 5, got %d", allCuts[0])
	}
}

// TestContentDetector_IsProcessingRequired_P5 verifies cache-skip
// behavior: once every metric is cached for a frame, IsProcessingRequired
// reports false for it.
func TestContentDetector_IsProcessingRequired_P5(t *testing.T) {
	sm := stats.NewManager()
	d := NewContentDetector(10, 0, sm)

	if !d.IsProcessingRequired(3) {
		t.Fatal("want processing required before any metrics exist")
	}

	if err := sm.RegisterMetrics(d.Metrics()); err != nil {
		t.Fatalf("RegisterMetrics: %v", err)
	}
	values := map[string]float64{
		metricContentVal: 5,
		metricDeltaHue:   1,
		metricDeltaSat:   1,
		metricDeltaLum:   1,
	}
	if err := sm.SetMetrics(3, values); err != nil {
		t.Fatalf("SetMetrics: %v", err)
	}

	if d.IsProcessingRequired(3) {
		t.Fatal("want processing not required once all metrics cached")
	}
	if !d.IsProcessingRequired(4) {
		t.Fatal("want processing required for an unrelated, uncached frame")
	}
}

// TestContentDetector_UsesCachedContentVal verifies that a pre-seeded
// content_val overrides the freshly computed one for the cut decision.
func TestContentDetector_UsesCachedContentVal(t *testing.T) {
	sm := stats.NewManager()
	d := NewContentDetector(10, 0, sm)
	if err := sm.RegisterMetrics(d.Metrics()); err != nil {
		t.Fatalf("RegisterMetrics: %v", err)
	}

	black := solidImage(4, 4, 0, 0, 0)
	if _, err := d.ProcessFrame(0, black); err != nil {
		t.Fatalf("ProcessFrame(0): %v", err)
	}

	// Frame 1 is visually identical to frame 0 (no natural cut), but we
	// seed a cached content_val above threshold to confirm the cache
	// wins over recomputation.
	if err := sm.SetMetrics(1, map[string]float64{metricContentVal: 50}); err != nil {
		t.Fatalf("SetMetrics: %v", err)
	}
	cuts, err := d.ProcessFrame(1, black)
	if err != nil {
		t.Fatalf("ProcessFrame(1): %v", err)
	}
	if len(cuts) != 1 || cuts[0] != 1 {
		t.Fatalf("want cached content_val to force a cut at frame 1, got %v", cuts)
	}
}

// TestContentDetector_NilImgOnCacheHit verifies that a grab-only frame
// (img == nil), the shape scene.Manager produces once every metric is
// already cached, is handled entirely from the cache without
// dereferencing img.
func TestContentDetector_NilImgOnCacheHit(t *testing.T) {
	sm := stats.NewManager()
	d := NewContentDetector(10, 0, sm)
	if err := sm.RegisterMetrics(d.Metrics()); err != nil {
		t.Fatalf("RegisterMetrics: %v", err)
	}

	black := solidImage(4, 4, 0, 0, 0)
	if _, err := d.ProcessFrame(0, black); err != nil {
		t.Fatalf("ProcessFrame(0): %v", err)
	}

	if err := sm.SetMetrics(1, map[string]float64{
		metricContentVal: 50,
		metricDeltaHue:   1,
		metricDeltaSat:   1,
		metricDeltaLum:   1,
	}); err != nil {
		t.Fatalf("SetMetrics: %v", err)
	}

	cuts, err := d.ProcessFrame(1, nil)
	if err != nil {
		t.Fatalf("ProcessFrame(1) with nil img on a cache hit: %v", err)
	}
	if len(cuts) != 1 || cuts[0] != 1 {
		t.Fatalf("want cached content_val to force a cut at frame 1, got %v", cuts)
	}
}

// TestContentDetector_NilImgOnCacheMiss verifies a clear error, not a
// panic, when img is nil and the frame isn't fully cached.
func TestContentDetector_NilImgOnCacheMiss(t *testing.T) {
	d := NewContentDetector(10, 0, nil)
	if _, err := d.ProcessFrame(0, nil); err == nil {
		t.Fatal("want an error for a nil img on a cache miss, got nil")
	}
}

func TestEdgeChangeFraction(t *testing.T) {
	prev := []bool{true, false, true, false}
	cur := []bool{true, true, false, false}
	got := edgeChangeFraction(prev, cur)
	want := 0.5
	if got != want {
		t.Fatalf("edgeChangeFraction = %v, want %v", got, want)
	}
}

func TestRgbToHSV_Primaries(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		wantH   float64
	}{
		{255, 0, 0, 0},
		{0, 255, 0, 120},
		{0, 0, 255, 240},
	}
	for _, c := range cases {
		h, s, v := rgbToHSV(c.r, c.g, c.b)
		if h != c.wantH {
			t.Errorf("rgbToHSV(%d,%d,%d) hue = %v, want %v", c.r, c.g, c.b, h, c.wantH)
		}
		if s != 1 {
			t.Errorf("rgbToHSV(%d,%d,%d) sat = %v, want 1", c.r, c.g, c.b, s)
		}
		if v != 255 {
			t.Errorf("rgbToHSV(%d,%d,%d) val = %v, want 255", c.r, c.g, c.b, v)
		}
	}
}
