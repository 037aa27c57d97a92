package stats

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/framewright/scenedetect/timecode"
)

// FramerateTolerance is the maximum allowed difference between a stats
// file's recorded framerate and a base timecode's framerate before
// LoadFromCSV reports *ErrStatsFileFramerateMismatch.
const FramerateTolerance = 1e-4

const framerateCommentPrefix = "#framerate="

// SaveToCSV writes the full contents of m to w in the format:
//
//	#framerate=<base fps>
//	Frame Number,Timecode (seconds),<metric1>,<metric2>,...
//	<frame>,<seconds>,<value>,<value>,...
//
// One row is emitted per frame index that has at least one stored metric,
// sorted ascending by frame index. Missing values for a given metric on a
// given row are left blank.
func SaveToCSV(m *Manager, w io.Writer, base timecode.FrameTimecode) error {
	m.ensureInit()

	if _, err := io.WriteString(w, fmt.Sprintf("%s%.10f\n", framerateCommentPrefix, base.FPS())); err != nil {
		return fmt.Errorf("stats: writing framerate comment: %w", err)
	}

	names := m.registeredNames()
	writer := csv.NewWriter(w)

	header := append([]string{"Frame Number", "Timecode (seconds)"}, names...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("stats: writing header: %w", err)
	}

	for _, frame := range m.framesWithData() {
		row := make([]string, 0, len(names)+2)
		row = append(row, strconv.Itoa(frame))
		seconds := float64(frame) / base.FPS()
		row = append(row, strconv.FormatFloat(seconds, 'f', 6, 64))
		for _, name := range names {
			if v, ok := m.values[FrameMetricKey{Frame: frame, Metric: name}]; ok {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("stats: writing row for frame %d: %w", frame, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// LoadFromCSV reads a stats file previously written by SaveToCSV into a
// fresh set of registered metrics and values on m, verifying the recorded
// framerate against base's framerate.
//
// Returns *ErrStatsFileFramerateMismatch if the recorded framerate
// disagrees with base.FPS() by more than FramerateTolerance, or
// *ErrStatsFileCorrupt if the input is otherwise malformed.
func LoadFromCSV(m *Manager, r io.Reader, base timecode.FrameTimecode) error {
	bufReader := bufio.NewReader(r)

	firstLine, err := bufReader.ReadString('\n')
	if err != nil && firstLine == "" {
		return &ErrStatsFileCorrupt{Reason: "missing framerate header line"}
	}
	storedFPS, err := parseFramerateComment(strings.TrimRight(firstLine, "\r\n"))
	if err != nil {
		return &ErrStatsFileCorrupt{Reason: err.Error()}
	}
	if math.Abs(storedFPS-base.FPS()) > FramerateTolerance {
		return &ErrStatsFileFramerateMismatch{StatsFileFPS: storedFPS, BaseTimecodeFPS: base.FPS()}
	}

	csvReader := csv.NewReader(bufReader)
	csvReader.FieldsPerRecord = -1
	header, err := csvReader.Read()
	if err != nil {
		return &ErrStatsFileCorrupt{Reason: "missing header row: " + err.Error()}
	}
	if len(header) < 2 {
		return &ErrStatsFileCorrupt{Reason: "header row has too few columns"}
	}
	metricNames := header[2:]

	fresh := NewManager()
	if err := fresh.RegisterMetrics(metricNames); err != nil {
		// Duplicate column names in the header never occur in a file
		// this package wrote, so loading stops and reports corruption.
		return &ErrStatsFileCorrupt{Reason: "duplicate metric column in header: " + err.Error()}
	}

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &ErrStatsFileCorrupt{Reason: "malformed data row: " + err.Error()}
		}
		if len(record) < 2 {
			return &ErrStatsFileCorrupt{Reason: "data row has too few columns"}
		}
		frame, err := strconv.Atoi(record[0])
		if err != nil {
			return &ErrStatsFileCorrupt{Reason: "invalid frame number: " + err.Error()}
		}
		values := make(map[string]float64)
		for i, name := range metricNames {
			col := i + 2
			if col >= len(record) || record[col] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[col], 64)
			if err != nil {
				return &ErrStatsFileCorrupt{Reason: "invalid value for metric " + name + ": " + err.Error()}
			}
			values[name] = v
		}
		if err := fresh.SetMetrics(frame, values); err != nil {
			return &ErrStatsFileCorrupt{Reason: "value for unregistered metric: " + err.Error()}
		}
	}

	*m = *fresh
	return nil
}

func parseFramerateComment(line string) (float64, error) {
	if len(line) <= len(framerateCommentPrefix) || line[:len(framerateCommentPrefix)] != framerateCommentPrefix {
		return 0, fmt.Errorf("expected line starting with %q, got %q", framerateCommentPrefix, line)
	}
	fps, err := strconv.ParseFloat(line[len(framerateCommentPrefix):], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid framerate value: %w", err)
	}
	return fps, nil
}
