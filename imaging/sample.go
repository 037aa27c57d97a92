// Package imaging implements sample-frame selection, resizing, and a
// parallel extraction pipeline for producing representative images per
// detected scene. Grounded on original_source/scenedetect/
// scene_manager.py's save_images function; actual image file encoding
// is left to an injected Writer, per spec.md §1's "splitter/encoder
// invocation is out of scope" boundary.
package imaging

import "github.com/framewright/scenedetect/scene"

// arraySplit partitions [0, n) into numParts contiguous index ranges as
// evenly as possible, matching numpy.array_split's rule: the first
// n%numParts parts get one extra element. Returns the length of each
// part in order.
func arraySplit(n, numParts int) []int {
	base := n / numParts
	rem := n % numParts
	lens := make([]int, numParts)
	for i := range lens {
		lens[i] = base
		if i < rem {
			lens[i]++
		}
	}
	return lens
}

// SampleIndices returns, for a scene spanning frames [start, end), the
// frameMargin-adjusted, bucket-split sample frame indices: numImages
// ascending frame indices within [start, end). Ported from the
// timecode_list comprehension in save_images.
//
// If end-start is shorter than numImages, the range is padded by
// repeating the last frame index, matching save_images's padding rule.
func SampleIndices(start, end, numImages, frameMargin int) []int {
	if numImages <= 0 {
		return nil
	}
	if end <= start {
		return nil
	}

	frames := make([]int, 0, end-start)
	for f := start; f < end; f++ {
		frames = append(frames, f)
	}
	if len(frames) < numImages {
		last := frames[len(frames)-1]
		for len(frames) < numImages {
			frames = append(frames, last)
		}
	}

	lens := arraySplit(len(frames), numImages)
	out := make([]int, numImages)
	offset := 0
	for j, bucketLen := range lens {
		bucket := frames[offset : offset+bucketLen]
		offset += bucketLen

		switch {
		case numImages == 1 || (j > 0 && j < numImages-1):
			out[j] = bucket[len(bucket)/2]
		case j == 0:
			out[j] = minInt(bucket[0]+frameMargin, bucket[len(bucket)-1])
		default:
			out[j] = maxInt(bucket[len(bucket)-1]-frameMargin, bucket[0])
		}
	}
	return out
}

// SceneSampleIndices computes SampleIndices for every scene in scenes, in
// scene order.
func SceneSampleIndices(scenes []scene.Scene, numImages, frameMargin int) [][]int {
	out := make([][]int, len(scenes))
	for i, s := range scenes {
		out[i] = SampleIndices(s.Start.Frames(), s.End.Frames(), numImages, frameMargin)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
