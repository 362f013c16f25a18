package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// maxLineSize bounds one recorded frame; 33 landmarks fit easily.
const maxLineSize = 1 << 20

// ReadRecording reads a .jsonl recording: one landmark set per line, in
// either the list or the named form. Blank lines are ignored.
func ReadRecording(path string) ([]pose.LandmarkSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var frames []pose.LandmarkSet
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var lms pose.LandmarkSet
		if err := json.Unmarshal(b, &lms); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, lms)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return frames, nil
}
