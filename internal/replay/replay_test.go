package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sowferyowman/BiomechFit-app/internal/models"
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
	"github.com/sowferyowman/BiomechFit-app/internal/pose/posetest"
	"github.com/sowferyowman/BiomechFit-app/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRecording(t *testing.T, root, exercise, name string, frames []pose.LandmarkSet) string {
	t.Helper()
	dir := filepath.Join(root, exercise)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	var buf bytes.Buffer
	for _, f := range frames {
		data, err := json.Marshal(f)
		require.NoError(t, err)
		buf.Write(data)
		buf.WriteByte('\n')
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func benchSet(reps int) []pose.LandmarkSet {
	var frames []pose.LandmarkSet
	for range reps {
		frames = append(frames, posetest.Arm(170), posetest.Arm(90), posetest.Arm(170))
	}
	return frames
}

func localAnalyzer() Local {
	return Local{Sessions: session.NewRegistry(session.RegistryConfig{}, testLogger())}
}

// TestReadRecording verifies both frame forms and blank lines.
func TestReadRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.jsonl")
	content := `{"left_shoulder":{"x":0.1,"y":0.2}}

[null,{"x":0.5,"y":0.5,"visibility":0.9}]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	frames, err := ReadRecording(path)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Contains(t, frames[0], pose.LeftShoulder)
	assert.Contains(t, frames[1], pose.LeftEyeInner)
}

// TestReadRecordingBadLine verifies the failing line is named.
func TestReadRecordingBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("[]\n{oops\n"), 0o644))

	_, err := ReadRecording(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

// TestStateDB verifies stored scores are returned only for an identical
// copy of the recording.
func TestStateDB(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	require.NoError(t, err)
	defer state.Close()

	_, _, ok, err := state.Lookup("squat/a.jsonl", 10, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, state.MarkReplayed("squat/a.jsonl", 10, "abc", 3, 0.9))
	reps, avg, ok, err := state.Lookup("squat/a.jsonl", 10, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, reps)
	assert.InDelta(t, 0.9, avg, 1e-9)

	_, _, ok, err = state.Lookup("squat/a.jsonl", 10, "changed")
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, ok, err = state.Lookup("squat/a.jsonl", 11, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, state.MarkReplayed("squat/a.jsonl", 12, "def", 5, 0.75))
	reps, avg, ok, err = state.Lookup("squat/a.jsonl", 12, "def")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, reps)
	assert.InDelta(t, 0.75, avg, 1e-9)
	_, _, ok, err = state.Lookup("squat/a.jsonl", 10, "abc")
	require.NoError(t, err)
	assert.False(t, ok, "a re-marked path replaces its old entry")
}

// TestReplayerLocal verifies recordings are scored once and skipped on the
// next run unless forced.
func TestReplayerLocal(t *testing.T) {
	root := t.TempDir()
	writeRecording(t, root, "bench_press", "monday.jsonl", benchSet(3))
	writeRecording(t, root, "Bench Press", "tuesday.jsonl", benchSet(1))
	writeRecording(t, root, "yoga", "ignored.jsonl", benchSet(1))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644))

	state, err := OpenStateDB(t.TempDir())
	require.NoError(t, err)
	defer state.Close()

	r := New(localAnalyzer(), state, root, Options{TargetReps: 2}, testLogger())
	stats, results, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesTotal)
	assert.Equal(t, 2, stats.FilesReplayed)
	assert.Equal(t, 3, stats.RepsCounted)
	require.Len(t, results, 2)
	byPath := map[string]Result{}
	for _, res := range results {
		byPath[res.Path] = res
	}
	monday := byPath[filepath.Join("bench_press", "monday.jsonl")]
	assert.Equal(t, 2, monday.Summary.Reps)
	assert.Equal(t, 9, monday.Frames)
	assert.Equal(t, "Bench Press", monday.Summary.Workout)

	stats, results, err = New(localAnalyzer(), state, root, Options{TargetReps: 2}, testLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesSkipped)
	assert.Equal(t, 0, stats.FilesReplayed)
	assert.Equal(t, 0, stats.RepsCounted)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Cached, res.Path)
		assert.Equal(t, byPath[res.Path].Summary.Reps, res.Summary.Reps, res.Path)
		assert.Equal(t, byPath[res.Path].Summary.AvgScore, res.Summary.AvgScore, res.Path)
		assert.Equal(t, byPath[res.Path].Summary.Grade, res.Summary.Grade, res.Path)
		assert.Equal(t, "Bench Press", res.Summary.Workout)
		assert.Zero(t, res.Frames)
	}

	stats, _, err = New(localAnalyzer(), state, root, Options{TargetReps: 2, Force: true}, testLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesReplayed)
}

// TestReplayerDryRun verifies dry runs read but neither analyze nor record.
func TestReplayerDryRun(t *testing.T) {
	root := t.TempDir()
	writeRecording(t, root, "row", "set.jsonl", benchSet(2))
	require.NoError(t, os.WriteFile(filepath.Join(root, "row", "broken.jsonl"), []byte("nope\n"), 0o644))

	state, err := OpenStateDB(t.TempDir())
	require.NoError(t, err)
	defer state.Close()

	stats, results, err := New(nil, state, root, Options{DryRun: true}, testLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesTotal)
	assert.Equal(t, 0, stats.FilesReplayed)
	assert.Equal(t, 1, stats.FilesErrored)
	assert.Equal(t, 6, stats.FramesRead)
	require.Len(t, results, 2)

	stats, _, err = New(nil, state, root, Options{DryRun: true}, testLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesSkipped)
}

// TestReplayerCancelled verifies a cancelled context stops the walk.
func TestReplayerCancelled(t *testing.T) {
	root := t.TempDir()
	writeRecording(t, root, "squat", "set.jsonl", nil)

	state, err := OpenStateDB(t.TempDir())
	require.NoError(t, err)
	defer state.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = New(localAnalyzer(), state, root, Options{}, testLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestClientAnalyzeRetries verifies server errors are retried and the
// summary is decoded.
func TestClientAnalyzeRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req models.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Workout != "squat" || req.User.Reps != 4 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(session.Summary{Workout: "Squat", Reps: 4, AvgScore: 0.95})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "k")
	c.backoff = time.Millisecond

	sum, err := c.Analyze(context.Background(), "squat", 4, []pose.LandmarkSet{posetest.Leg(178, 175)})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Reps)
	assert.Equal(t, 0.95, sum.AvgScore)
	assert.Equal(t, int32(2), calls.Load())
}

// TestClientAnalyzeRejected verifies client errors are not retried and carry
// the server's message.
func TestClientAnalyzeRejected(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Workout 'Yoga' not recognized."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	c.backoff = time.Millisecond

	_, err := c.Analyze(context.Background(), "Yoga", 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workout 'Yoga' not recognized.")
	assert.Equal(t, int32(1), calls.Load())
}

// TestClientFetchExercises verifies the catalog is decoded.
func TestClientFetchExercises(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/exercises", r.URL.Path)
		json.NewEncoder(w).Encode(models.Catalog())
	}))
	defer srv.Close()

	catalog, err := NewClient(srv.URL, "").FetchExercises(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog, 5)
}
