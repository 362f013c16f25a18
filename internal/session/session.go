// Package session drives an analyzer over a stream of frames for one
// workout set and accumulates its reps and scores.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// DefaultTargetReps is used when a session is started without a target.
const DefaultTargetReps = 8

// ErrSessionComplete is returned when frames arrive after the target was reached.
var ErrSessionComplete = errors.New("session already reached its target reps")

// Session is one workout set. All methods are safe for concurrent use;
// frames are applied one at a time in the order Feed acquires the lock.
type Session struct {
	ID         uuid.UUID
	Exercise   analysis.Exercise
	TargetReps int
	CreatedAt  time.Time

	mu        sync.Mutex
	analyzer  analysis.Analyzer
	state     *analysis.State
	repScores []float64
	frames    int
	skipped   int
	lastSeen  time.Time
	last      analysis.FrameResult
	onFrame   func(analysis.Exercise, analysis.FrameResult)
}

// Progress is the result of one frame plus the session totals after it.
type Progress struct {
	analysis.FrameResult
	Reps       int  `json:"reps"`
	TargetReps int  `json:"target_reps"`
	Done       bool `json:"done"`
}

// New starts a session on analyzer a. A non-positive target uses DefaultTargetReps.
func New(a analysis.Analyzer, targetReps int) *Session {
	if targetReps <= 0 {
		targetReps = DefaultTargetReps
	}
	now := time.Now()
	return &Session{
		ID:         uuid.New(),
		Exercise:   a.Exercise(),
		TargetReps: targetReps,
		CreatedAt:  now,
		analyzer:   a,
		state:      a.NewState(),
		lastSeen:   now,
	}
}

// Feed analyzes one frame. A frame with no landmarks at all (no person
// detected) is skipped without touching the analyzer.
func (s *Session) Feed(lms pose.LandmarkSet) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doneLocked() {
		return Progress{}, ErrSessionComplete
	}
	s.lastSeen = time.Now()

	var res analysis.FrameResult
	if len(lms) == 0 {
		s.skipped++
		res = analysis.FrameResult{
			Score:  s.state.CurrentRepScore,
			Issues: []string{},
			Stage:  s.state.Stage,
		}
	} else {
		res = s.analyzer.ProcessFrame(s.state, lms)
		s.frames++
		if res.Err != nil {
			s.skipped++
		}
		if res.RepCompleted {
			s.repScores = append(s.repScores, res.Score)
		}
		if s.onFrame != nil {
			s.onFrame(s.Exercise, res)
		}
	}

	s.last = res
	return Progress{
		FrameResult: res,
		Reps:        len(s.repScores),
		TargetReps:  s.TargetReps,
		Done:        s.doneLocked(),
	}, nil
}

// Summary reports the session so far.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	details := append([]float64{}, s.repScores...)
	avg := AverageScore(details)
	grade := Grade(avg)
	return Summary{
		ID:             s.ID.String(),
		Workout:        s.Exercise.DisplayName(),
		Reps:           len(details),
		TargetReps:     s.TargetReps,
		AvgScore:       avg,
		Details:        details,
		Grade:          grade,
		Feedback:       Feedback(grade),
		FramesAnalyzed: s.frames,
		FramesSkipped:  s.skipped,
		Done:           s.doneLocked(),
	}
}

// State returns a copy of the analyzer state.
func (s *Session) State() analysis.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *s.state
	st.FormIssues = append([]string(nil), st.FormIssues...)
	return st
}

// LastResult returns the result of the most recent frame.
func (s *Session) LastResult() analysis.FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// LastSeen is the time of the most recent frame, or creation.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) doneLocked() bool {
	return len(s.repScores) >= s.TargetReps
}

// Analyze runs frames through a fresh session and returns its summary.
// Like a live session it stops consuming frames once the target is reached.
func Analyze(a analysis.Analyzer, targetReps int, frames []pose.LandmarkSet) Summary {
	return analyze(New(a, targetReps), frames)
}

func analyze(s *Session, frames []pose.LandmarkSet) Summary {
	for _, f := range frames {
		if _, err := s.Feed(f); err != nil {
			break
		}
	}
	sum := s.Summary()
	sum.ID = ""
	return sum
}
