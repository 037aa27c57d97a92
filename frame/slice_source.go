package frame

import (
	"io"

	"github.com/framewright/scenedetect/timecode"
)

// SliceSource is a Source backed by an in-memory slice of pre-built
// Images, used by tests to drive the detection pipeline without a real
// decoded video. Grounded on original_source/tests/test_api.py's
// VideoCaptureAdapter idea: wrap an existing in-memory frame sequence
// behind the same Source contract real decoders implement.
type SliceSource struct {
	frames      []*Image
	fps         float64
	aspectRatio float64
	name        string

	pos int
}

// NewSliceSource returns a SliceSource over frames at the given
// framerate. aspectRatio of 0 is treated as 1.0 (square pixels).
func NewSliceSource(name string, frames []*Image, fps float64, aspectRatio float64) *SliceSource {
	if aspectRatio == 0 {
		aspectRatio = 1.0
	}
	return &SliceSource{frames: frames, fps: fps, aspectRatio: aspectRatio, name: name}
}

// Read implements Source.
func (s *SliceSource) Read() (*Image, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// Grab implements Source.
func (s *SliceSource) Grab() bool {
	if s.pos >= len(s.frames) {
		return false
	}
	s.pos++
	return true
}

// Seek implements Source.
func (s *SliceSource) Seek(tc timecode.FrameTimecode) error {
	s.pos = tc.Frames()
	return nil
}

// Reset implements Source.
func (s *SliceSource) Reset() error {
	s.pos = 0
	return nil
}

// FrameNumber implements Source.
func (s *SliceSource) FrameNumber() int { return s.pos }

// Position implements Source.
func (s *SliceSource) Position() timecode.FrameTimecode {
	return timecode.New(s.pos, s.fps)
}

// Duration implements Source.
func (s *SliceSource) Duration() timecode.FrameTimecode {
	return timecode.New(len(s.frames), s.fps)
}

// BaseTimecode implements Source.
func (s *SliceSource) BaseTimecode() timecode.FrameTimecode {
	return timecode.New(0, s.fps)
}

// FrameSize implements Source.
func (s *SliceSource) FrameSize() (width, height int) {
	if len(s.frames) == 0 {
		return 0, 0
	}
	return s.frames[0].Width, s.frames[0].Height
}

// AspectRatio implements Source.
func (s *SliceSource) AspectRatio() float64 { return s.aspectRatio }

// Name implements Source.
func (s *SliceSource) Name() string { return s.name }
