// Package timecode implements the (frame index, framerate) value type used
// throughout scenedetect to express every cut, scene boundary, and duration.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FrameRateEpsilon is the tolerance used when comparing two framerates for
// equality. Two FrameTimecodes are only comparable/combinable when their
// framerates agree to within this tolerance.
const FrameRateEpsilon = 1e-9

// FramerateMismatchError is returned whenever an operation combines two
// FrameTimecode values whose framerates disagree by more than
// FrameRateEpsilon.
type FramerateMismatchError struct {
	A, B float64
}

func (e *FramerateMismatchError) Error() string {
	return fmt.Sprintf("timecode: framerate mismatch (%.6f vs %.6f)", e.A, e.B)
}

// FrameTimecode is an immutable (frame_index, fps) pair. Zero value is not
// meaningful; construct one with New, FromSeconds, or FromString.
type FrameTimecode struct {
	frames int
	fps    float64
}

// New constructs a FrameTimecode directly from a frame index and framerate.
// Panics if fps <= 0 or frames < 0, mirroring the spec's invariant that
// construction itself never yields an invalid value.
func New(frames int, fps float64) FrameTimecode {
	mustValid(frames, fps)
	return FrameTimecode{frames: frames, fps: fps}
}

// FromSeconds constructs a FrameTimecode from a real-valued second offset,
// rounding to the nearest frame. See Round for the tie-breaking rule.
func FromSeconds(seconds float64, fps float64) FrameTimecode {
	frames := Round(seconds * fps)
	mustValid(frames, fps)
	return FrameTimecode{frames: frames, fps: fps}
}

// FromString parses a timecode string in one of the following forms and
// constructs a FrameTimecode at the given fps:
//
//   - "HH:MM:SS" or "HH:MM:SS.mmm"  — treated as a clock duration
//   - "<number>s"                   — treated as seconds
//   - a bare integer                — treated as a frame count
//   - a bare real number             — treated as seconds
//
// Returns an error if the string cannot be parsed in any of these forms.
func FromString(s string, fps float64) (FrameTimecode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FrameTimecode{}, fmt.Errorf("timecode: empty timecode string")
	}

	if strings.Contains(s, ":") {
		seconds, err := parseClock(s)
		if err != nil {
			return FrameTimecode{}, err
		}
		return FromSeconds(seconds, fps), nil
	}

	if strings.HasSuffix(s, "s") {
		seconds, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
		if err != nil {
			return FrameTimecode{}, fmt.Errorf("timecode: invalid seconds value %q: %w", s, err)
		}
		return FromSeconds(seconds, fps), nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		return New(n, fps), nil
	}

	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		return FromSeconds(seconds, fps), nil
	}

	return FrameTimecode{}, fmt.Errorf("timecode: could not parse %q", s)
}

// Round implements the seconds→frames rounding policy for the whole
// package: round half away from zero. This is the one fixed rule required
// by the spec (P7); see SPEC_FULL.md §4.1 for why this rule was chosen
// over floor or ties-to-even.
func Round(x float64) int {
	return int(math.Round(x))
}

func parseClock(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timecode: invalid clock timecode %q (want HH:MM:SS[.mmm])", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timecode: invalid hours in %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timecode: invalid minutes in %q: %w", s, err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("timecode: invalid seconds in %q: %w", s, err)
	}
	if minutes < 0 || minutes >= 60 || seconds < 0 || seconds >= 60 || hours < 0 {
		return 0, fmt.Errorf("timecode: clock components out of range in %q", s)
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

func mustValid(frames int, fps float64) {
	if fps <= 0 {
		panic(fmt.Sprintf("timecode: fps must be positive, got %v", fps))
	}
	if frames < 0 {
		panic(fmt.Sprintf("timecode: frame index must be nonnegative, got %v", frames))
	}
}

// Frames returns the zero-based frame index.
func (t FrameTimecode) Frames() int { return t.frames }

// FPS returns the framerate this timecode is expressed in.
func (t FrameTimecode) FPS() float64 { return t.fps }

// Seconds returns the timecode expressed as a real-valued second offset.
func (t FrameTimecode) Seconds() float64 {
	return float64(t.frames) / t.fps
}

// Timecode formats the value as "HH:MM:SS.mmm".
func (t FrameTimecode) Timecode() string {
	totalMillis := int64(math.Round(t.Seconds() * 1000))
	hours := totalMillis / 3600000
	totalMillis -= hours * 3600000
	minutes := totalMillis / 60000
	totalMillis -= minutes * 60000
	seconds := totalMillis / 1000
	millis := totalMillis - seconds*1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// String implements fmt.Stringer, returning the same format as Timecode.
func (t FrameTimecode) String() string { return t.Timecode() }

func (t FrameTimecode) sameRate(o FrameTimecode) error {
	if math.Abs(t.fps-o.fps) > FrameRateEpsilon {
		return &FramerateMismatchError{A: t.fps, B: o.fps}
	}
	return nil
}

// Add returns a new FrameTimecode offset by another FrameTimecode's frame
// count. Fails if the two framerates disagree.
func (t FrameTimecode) Add(o FrameTimecode) (FrameTimecode, error) {
	if err := t.sameRate(o); err != nil {
		return FrameTimecode{}, err
	}
	return FrameTimecode{frames: t.frames + o.frames, fps: t.fps}, nil
}

// Sub returns a new FrameTimecode representing the frame-count difference
// from o to t (t - o). Fails if the two framerates disagree, or if the
// result would be negative.
func (t FrameTimecode) Sub(o FrameTimecode) (FrameTimecode, error) {
	if err := t.sameRate(o); err != nil {
		return FrameTimecode{}, err
	}
	diff := t.frames - o.frames
	if diff < 0 {
		return FrameTimecode{}, fmt.Errorf("timecode: subtraction would produce a negative frame index (%d - %d)", t.frames, o.frames)
	}
	return FrameTimecode{frames: diff, fps: t.fps}, nil
}

// AddFrames returns a new FrameTimecode offset by a raw frame count.
func (t FrameTimecode) AddFrames(n int) FrameTimecode {
	return FrameTimecode{frames: t.frames + n, fps: t.fps}
}

// AddSeconds returns a new FrameTimecode offset by a real-valued second
// count, rounded per Round.
func (t FrameTimecode) AddSeconds(seconds float64) FrameTimecode {
	return t.AddFrames(Round(seconds * t.fps))
}

// Compare returns -1, 0, or 1 according to whether t is before, equal to,
// or after o. Returns a *FramerateMismatchError if the framerates disagree.
func (t FrameTimecode) Compare(o FrameTimecode) (int, error) {
	if err := t.sameRate(o); err != nil {
		return 0, err
	}
	switch {
	case t.frames < o.frames:
		return -1, nil
	case t.frames > o.frames:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equal reports whether t and o refer to the same frame index at matching
// framerates.
func (t FrameTimecode) Equal(o FrameTimecode) bool {
	cmp, err := t.Compare(o)
	return err == nil && cmp == 0
}

// Before reports whether t occurs strictly before o.
func (t FrameTimecode) Before(o FrameTimecode) bool {
	cmp, err := t.Compare(o)
	return err == nil && cmp < 0
}

// After reports whether t occurs strictly after o.
func (t FrameTimecode) After(o FrameTimecode) bool {
	cmp, err := t.Compare(o)
	return err == nil && cmp > 0
}
