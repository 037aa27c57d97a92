// Package report writes human/tool-consumable summaries of a completed
// detection run: the per-scene CSV report, and the (interface-only)
// external scene-splitter contract.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/framewright/scenedetect/scene"
	"github.com/framewright/scenedetect/timecode"
)

// WriteSceneList writes scenes as CSV to w, in the exact column layout
// PySceneDetect's write_scene_list produces. If cuts is non-nil, it is
// written as the leading "Timecode List:" row ahead of the header;
// otherwise that row is built from each scene's start timecode (skipping
// the first scene, whose start is always the video's start).
//
// Ported from original_source/scenedetect/scene_manager.py's
// write_scene_list.
func WriteSceneList(w io.Writer, scenes []scene.Scene, cuts []timecode.FrameTimecode) error {
	cw := csv.NewWriter(w)

	timecodeRow := []string{"Timecode List:"}
	if cuts != nil {
		for _, c := range cuts {
			timecodeRow = append(timecodeRow, c.Timecode())
		}
	} else {
		for i, s := range scenes {
			if i == 0 {
				continue
			}
			timecodeRow = append(timecodeRow, s.Start.Timecode())
		}
	}
	if err := cw.Write(timecodeRow); err != nil {
		return fmt.Errorf("report: writing timecode list row: %w", err)
	}

	header := []string{
		"Scene Number", "Start Frame", "Start Timecode", "Start Time (seconds)",
		"End Frame", "End Timecode", "End Time (seconds)",
		"Length (frames)", "Length (timecode)", "Length (seconds)",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: writing header row: %w", err)
	}

	for i, s := range scenes {
		length, err := s.End.Sub(s.Start)
		if err != nil {
			return fmt.Errorf("report: computing scene %d length: %w", i+1, err)
		}
		row := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", s.Start.Frames()),
			s.Start.Timecode(),
			fmt.Sprintf("%.3f", s.Start.Seconds()),
			fmt.Sprintf("%d", s.End.Frames()),
			s.End.Timecode(),
			fmt.Sprintf("%.3f", s.End.Seconds()),
			fmt.Sprintf("%d", length.Frames()),
			length.Timecode(),
			fmt.Sprintf("%.3f", length.Seconds()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: writing scene %d row: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
