package report

import (
	"context"

	"github.com/framewright/scenedetect/scene"
)

// Splitter invokes an external tool (ffmpeg, mkvmerge) to physically cut
// a source video into one file per scene. No implementation is provided:
// spawning and supervising external processes is out of scope per
// spec.md §1's "invocation of external splitters ... out of scope,
// interface-only" boundary. A real implementation would follow
// example/metric_handler_ffmpeg.go's os/exec idiom, mirroring
// original_source/scenedetect/video_splitter.py's split_video_ffmpeg/
// split_video_mkvmerge.
type Splitter interface {
	// Split cuts videoPath into one output file per scene in scenes,
	// writing results under outputDir, and returns once every split has
	// completed or ctx is canceled.
	Split(ctx context.Context, videoPath, outputDir string, scenes []scene.Scene) error
}
