package detect

import (
	"math"

	"github.com/framewright/scenedetect/frame"
)

// edgeMap computes a binary edge map over img's value channel (the V
// channel of HSV, i.e. per-pixel max(R,G,B)) using Sobel gradient
// magnitude thresholded at highThresh. This stands in for the "Canny-
// equivalent with fixed low/high thresholds" the spec allows as an
// implementation choice; a Sobel-magnitude threshold is a simpler, still
// faithful rendition of "binary edge map with a fixed threshold on the
// value channel" without needing full Canny's hysteresis/thinning passes.
//
// Returns a Width*Height bool slice, row-major, true where an edge was
// detected. Border pixels (no full 3x3 neighborhood) are never edges.
func edgeMap(img *frame.Image, highThresh float64) []bool {
	w, h := img.Width, img.Height
	out := make([]bool, w*h)
	if w < 3 || h < 3 {
		return out
	}

	val := func(x, y int) float64 {
		b, g, r := img.At(x, y)
		return maxf(float64(r), float64(g), float64(b))
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -val(x-1, y-1) - 2*val(x-1, y) - val(x-1, y+1) +
				val(x+1, y-1) + 2*val(x+1, y) + val(x+1, y+1)
			gy := -val(x-1, y-1) - 2*val(x, y-1) - val(x+1, y-1) +
				val(x-1, y+1) + 2*val(x, y+1) + val(x+1, y+1)
			mag := math.Sqrt(gx*gx + gy*gy)
			out[y*w+x] = mag >= highThresh
		}
	}
	return out
}

// edgeChangeFraction returns the proportion of pixels whose edge presence
// in cur differs from prev. prev and cur must describe images of the same
// dimensions; returns 0 if either is empty.
func edgeChangeFraction(prev, cur []bool) float64 {
	if len(prev) == 0 || len(cur) == 0 || len(prev) != len(cur) {
		return 0
	}
	var changed int
	for i := range cur {
		if prev[i] != cur[i] {
			changed++
		}
	}
	return float64(changed) / float64(len(cur))
}
