package detect

import "github.com/framewright/scenedetect/frame"

// hsvMeans computes the mean hue (degrees, 0-360), mean saturation (0-1),
// and mean value (0-255) over every pixel of img. Hue/saturation/value
// are derived per-pixel from the BGR triple using the standard
// max/min/chroma formulation, matching the conversion OpenCV's
// cv2.cvtColor(..., COLOR_BGR2HSV) performs (scaled back to conventional
// ranges rather than OpenCV's 0-180/0-255/0-255 byte encoding, since
// content_val only cares about consistent deltas, not byte parity).
func hsvMeans(img *frame.Image) (hueMean, satMean, valMean float64) {
	var hueSum, satSum, valSum float64
	n := img.Width * img.Height
	if n == 0 {
		return 0, 0, 0
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			b, g, r := img.At(x, y)
			h, s, v := rgbToHSV(r, g, b)
			hueSum += h
			satSum += s
			valSum += v
		}
	}

	return hueSum / float64(n), satSum / float64(n), valSum / float64(n)
}

// rgbToHSV converts one 8-bit RGB triple to (hue in [0,360), saturation in
// [0,1], value in [0,255]).
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	max := maxf(rf, gf, bf)
	min := minf(rf, gf, bf)
	delta := max - min

	v = max
	if max == 0 {
		s = 0
	} else {
		s = delta / max
	}

	switch {
	case delta == 0:
		h = 0
	case max == rf:
		h = 60 * modf((gf-bf)/delta, 6)
	case max == gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func maxf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func modf(v, m float64) float64 {
	r := v
	for r < 0 {
		r += m
	}
	for r >= m {
		r -= m
	}
	return r
}
