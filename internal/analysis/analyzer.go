package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// Analyzer scores frames of one exercise. Implementations hold only
// configuration; all per-session progress lives in the *State the caller
// passes in, so a single Analyzer may serve many sessions as long as each
// State has one writer.
type Analyzer interface {
	Exercise() Exercise
	// NewState returns the starting state for a fresh session.
	NewState() *State
	// ProcessFrame analyzes one frame and advances st. It never panics;
	// per-frame failures are reported through FrameResult.Err.
	ProcessFrame(st *State, lms pose.LandmarkSet) FrameResult
}

// State is the mutable progress of one session.
type State struct {
	Stage           Stage    `json:"stage"`
	RepCount        int      `json:"rep_count"`
	CurrentRepScore float64  `json:"current_rep_score"`
	FormIssues      []string `json:"form_issues"`
}

func newState(initial Stage) *State {
	return &State{Stage: initial, CurrentRepScore: 1.0}
}

// FrameResult is the outcome of one ProcessFrame call. Score is the
// repetition's minimum so far, or, when RepCompleted is set, the final
// score of the repetition that just completed.
type FrameResult struct {
	Score        float64            `json:"score"`
	Issues       []string           `json:"issues"`
	RepCompleted bool               `json:"rep_completed"`
	Stage        Stage              `json:"stage"`
	Angles       map[string]float64 `json:"angles,omitempty"`
	Err          error              `json:"-"`
}

// Option configures an analyzer.
type Option func(*options)

type options struct {
	minVisibility float64
}

// WithMinVisibility sets the landmark visibility below which a joint is
// treated as missing. Zero accepts every detected landmark.
func WithMinVisibility(v float64) Option {
	return func(o *options) {
		o.minVisibility = v
	}
}

func buildOptions(opts []Option) options {
	o := options{minVisibility: pose.DefaultMinVisibility}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the analyzer for e. An unknown exercise yields an *Error of
// KindUnsupportedExercise.
func New(e Exercise, opts ...Option) (Analyzer, error) {
	switch e {
	case BenchPress:
		return NewBenchPressAnalyzer(opts...), nil
	case Squat:
		return NewSquatAnalyzer(opts...), nil
	case Deadlift:
		return NewDeadliftAnalyzer(opts...), nil
	case OverheadPress:
		return NewOverheadPressAnalyzer(opts...), nil
	case Row:
		return NewRowAnalyzer(opts...), nil
	default:
		return nil, &Error{Kind: KindUnsupportedExercise, Name: string(e)}
	}
}

// ForName parses a workout name and returns its analyzer.
func ForName(name string, opts ...Option) (Analyzer, error) {
	e, err := ParseExercise(name)
	if err != nil {
		return nil, err
	}
	return New(e, opts...)
}

// extract looks up every joint of p. A missing or low-visibility joint is a
// KindMissingLandmark error; a non-finite coordinate a KindComputationFailure.
func extract(p Profile, lms pose.LandmarkSet, minVisibility float64) (map[pose.Joint]pose.Point, *Error) {
	pts := make(map[pose.Joint]pose.Point, len(p.Joints))
	var missing []pose.Joint
	for _, j := range p.Joints {
		pt, ok := lms.Lookup(j, minVisibility)
		if !ok {
			missing = append(missing, j)
			continue
		}
		if !pt.Finite() {
			return nil, &Error{
				Kind:     KindComputationFailure,
				Exercise: p.Exercise,
				Err:      fmt.Errorf("non-finite coordinates for %s", j),
			}
		}
		pts[j] = pt
	}
	if len(missing) > 0 {
		return nil, &Error{
			Kind:     KindMissingLandmark,
			Exercise: p.Exercise,
			Required: p.Joints,
			Missing:  missing,
		}
	}
	return pts, nil
}

// settle commits a scored frame: when track is set the frame's score is
// folded into the running minimum, the stage moves to next and, if rep is
// set, the repetition is counted, reported and the minimum reset.
func settle(st *State, next Stage, rep, track bool, score float64, issues []string, angles map[string]float64) FrameResult {
	if issues == nil {
		issues = []string{}
	}
	if track {
		st.CurrentRepScore = math.Min(st.CurrentRepScore, score)
	}
	st.Stage = next
	st.FormIssues = issues

	res := FrameResult{
		Score:  st.CurrentRepScore,
		Issues: issues,
		Stage:  next,
		Angles: angles,
	}
	if rep {
		st.RepCount++
		st.CurrentRepScore = 1.0
		res.RepCompleted = true
	}
	return res
}

// fail reports a skipped frame. Stage, rep count and the running minimum
// are left as they were.
func fail(st *State, err *Error) FrameResult {
	st.FormIssues = []string{err.Issue()}
	return FrameResult{
		Score:  st.CurrentRepScore,
		Issues: st.FormIssues,
		Stage:  st.Stage,
		Err:    err,
	}
}

// recoverFrame converts a panic inside ProcessFrame into a
// KindComputationFailure result. It must be deferred.
func recoverFrame(e Exercise, st *State, res *FrameResult) {
	r := recover()
	if r == nil {
		return
	}
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	if st == nil {
		*res = FrameResult{Err: &Error{Kind: KindComputationFailure, Exercise: e, Err: errors.Join(errNilState, cause)}}
		return
	}
	*res = fail(st, &Error{Kind: KindComputationFailure, Exercise: e, Err: cause})
}

var errNilState = errors.New("nil session state")

