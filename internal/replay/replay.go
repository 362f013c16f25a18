// Package replay scores recorded sets from disk, either in process or
// against a running BiomechFit server.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
	"github.com/sowferyowman/BiomechFit-app/internal/session"
)

// Analyzer scores one recorded set.
type Analyzer interface {
	Analyze(ctx context.Context, workout string, targetReps int, frames []pose.LandmarkSet) (session.Summary, error)
}

// Local analyzes recordings in process.
type Local struct {
	Sessions *session.Registry
}

// Analyze implements Analyzer.
func (l Local) Analyze(ctx context.Context, workout string, targetReps int, frames []pose.LandmarkSet) (session.Summary, error) {
	if err := ctx.Err(); err != nil {
		return session.Summary{}, err
	}
	return l.Sessions.Analyze(workout, targetReps, frames)
}

// Stats tracks replay progress.
type Stats struct {
	FilesTotal    int
	FilesReplayed int
	FilesSkipped  int
	FilesErrored  int
	FramesRead    int
	RepsCounted   int
}

// Result is the outcome of one recording.
type Result struct {
	Path     string
	Exercise analysis.Exercise
	Frames   int
	Summary  session.Summary
	Err      error
	// DryRun is set when the recording was read but not analyzed.
	DryRun bool
	// Cached is set when the recording was replayed by an earlier run;
	// Summary then holds the stored reps and average score.
	Cached bool
}

// Options controls a replay run.
type Options struct {
	TargetReps int
	DryRun     bool
	// Force replays recordings the state database has already seen.
	Force bool
}

// Replayer walks a recordings directory laid out as <root>/<exercise>/*.jsonl
// and scores every new recording.
type Replayer struct {
	analyzer Analyzer
	state    *StateDB
	root     string
	opts     Options
	log      *slog.Logger
	stats    Stats
	results  []Result
}

// New creates a new Replayer. analyzer may be nil in dry-run mode.
func New(analyzer Analyzer, state *StateDB, root string, opts Options, log *slog.Logger) *Replayer {
	return &Replayer{
		analyzer: analyzer,
		state:    state,
		root:     root,
		opts:     opts,
		log:      log,
	}
}

// Run executes the replay. Per-recording failures are recorded in the
// results and do not stop the run; a cancelled context does.
func (r *Replayer) Run(ctx context.Context) (*Stats, []Result, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return &r.stats, r.results, fmt.Errorf("reading %s: %w", r.root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		exercise, err := analysis.ParseExercise(entry.Name())
		if err != nil {
			r.log.Warn("skipping directory", "dir", entry.Name(), "error", err)
			continue
		}
		if err := r.processExerciseDir(ctx, filepath.Join(r.root, entry.Name()), exercise); err != nil {
			return &r.stats, r.results, err
		}
	}

	return &r.stats, r.results, nil
}

func (r *Replayer) processExerciseDir(ctx context.Context, dir string, exercise analysis.Exercise) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.stats.FilesTotal++
		res := r.processFile(ctx, f, exercise)
		switch {
		case res.Cached:
			r.stats.FilesSkipped++
		case res.Err != nil:
			r.stats.FilesErrored++
		}
		r.results = append(r.results, res)
	}
	return nil
}

// processFile replays one recording. When the state database already holds
// an identical copy, the stored score is returned instead.
func (r *Replayer) processFile(ctx context.Context, path string, exercise analysis.Exercise) Result {
	relPath, _ := filepath.Rel(r.root, path)
	res := Result{Path: relPath, Exercise: exercise}

	info, err := os.Stat(path)
	if err != nil {
		r.log.Warn("stat failed", "file", path, "error", err)
		res.Err = err
		return res
	}

	hash, err := HashFile(path)
	if err != nil {
		r.log.Warn("hash failed", "file", path, "error", err)
		res.Err = err
		return res
	}

	if !r.opts.Force {
		reps, avg, ok, err := r.state.Lookup(relPath, info.Size(), hash)
		if err != nil {
			r.log.Warn("state check failed", "file", path, "error", err)
			res.Err = err
			return res
		}
		if ok {
			res.Cached = true
			res.Summary = storedSummary(exercise, reps, avg)
			r.log.Debug("already replayed", "file", relPath, "reps", reps, "avg_score", avg)
			return res
		}
	}

	frames, err := ReadRecording(path)
	if err != nil {
		r.log.Warn("parse failed", "file", path, "error", err)
		res.Err = err
		return res
	}
	res.Frames = len(frames)
	r.stats.FramesRead += len(frames)

	if r.opts.DryRun {
		r.log.Info("dry-run: would analyze", "file", relPath, "exercise", exercise, "frames", len(frames))
		res.DryRun = true
		return res
	}

	sum, err := r.analyzer.Analyze(ctx, string(exercise), r.opts.TargetReps, frames)
	if err != nil {
		r.log.Warn("analyze failed", "file", path, "error", err)
		res.Err = err
		return res
	}
	res.Summary = sum
	r.stats.FilesReplayed++
	r.stats.RepsCounted += sum.Reps

	if err := r.state.MarkReplayed(relPath, info.Size(), hash, sum.Reps, sum.AvgScore); err != nil {
		r.log.Warn("failed to mark replayed", "file", relPath, "error", err)
	}

	r.log.Info("replayed recording",
		"file", relPath,
		"exercise", exercise,
		"frames", len(frames),
		"reps", sum.Reps,
		"avg_score", sum.AvgScore,
	)
	return res
}

// storedSummary rebuilds the summary of a recording from its stored score.
func storedSummary(exercise analysis.Exercise, reps int, avg float64) session.Summary {
	grade := session.Grade(avg)
	return session.Summary{
		Workout:  exercise.DisplayName(),
		Reps:     reps,
		AvgScore: avg,
		Grade:    grade,
		Feedback: session.Feedback(grade),
		Done:     true,
	}
}
