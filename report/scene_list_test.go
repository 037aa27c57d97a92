package report

import (
	"strings"
	"testing"

	"github.com/framewright/scenedetect/scene"
	"github.com/framewright/scenedetect/timecode"
)

func TestWriteSceneList_HeaderAndRows(t *testing.T) {
	fps := 30.0
	scenes := []scene.Scene{
		{Start: timecode.New(0, fps), End: timecode.New(120, fps)},
		{Start: timecode.New(120, fps), End: timecode.New(300, fps)},
	}

	var buf strings.Builder
	if err := WriteSceneList(&buf, scenes, nil); err != nil {
		t.Fatalf("WriteSceneList: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (timecode list + header + 2 scenes):\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Timecode List:") {
		t.Fatalf("line 0 = %q, want to start with Timecode List:", lines[0])
	}
	if !strings.Contains(lines[1], "Scene Number") {
		t.Fatalf("line 1 = %q, want header row", lines[1])
	}
	if !strings.HasPrefix(lines[2], "1,0,") {
		t.Fatalf("line 2 = %q, want to start with scene 1 data", lines[2])
	}
	if !strings.HasPrefix(lines[3], "2,120,") {
		t.Fatalf("line 3 = %q, want to start with scene 2 data", lines[3])
	}
}

func TestWriteSceneList_ExplicitCutList(t *testing.T) {
	fps := 30.0
	scenes := []scene.Scene{
		{Start: timecode.New(0, fps), End: timecode.New(50, fps)},
		{Start: timecode.New(50, fps), End: timecode.New(100, fps)},
	}
	cuts := []timecode.FrameTimecode{timecode.New(50, fps)}

	var buf strings.Builder
	if err := WriteSceneList(&buf, scenes, cuts); err != nil {
		t.Fatalf("WriteSceneList: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.Contains(lines[0], cuts[0].Timecode()) {
		t.Fatalf("timecode list row %q does not contain cut timecode %q", lines[0], cuts[0].Timecode())
	}
}
