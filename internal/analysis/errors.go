package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// ErrorKind classifies analysis failures.
type ErrorKind int

const (
	// KindMissingLandmark: a required joint was absent or below the
	// visibility threshold. The frame is skipped and the session continues.
	KindMissingLandmark ErrorKind = iota + 1
	// KindComputationFailure: any other per-frame failure. The frame is
	// skipped and the session continues.
	KindComputationFailure
	// KindUnsupportedExercise: no analyzer exists for the requested
	// exercise. No session is created.
	KindUnsupportedExercise
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingLandmark:
		return "missing_landmark"
	case KindComputationFailure:
		return "computation_failure"
	case KindUnsupportedExercise:
		return "unsupported_exercise"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned (or attached to a FrameResult) for every analysis failure.
type Error struct {
	Kind     ErrorKind
	Exercise Exercise
	// Required lists the joints the exercise reads; Missing the subset
	// that was not usable in this frame.
	Required []pose.Joint
	Missing  []pose.Joint
	// Name is the unrecognized workout name.
	Name string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingLandmark:
		return fmt.Sprintf("%s: missing landmarks %v", e.Exercise, e.Missing)
	case KindUnsupportedExercise:
		return fmt.Sprintf("unsupported exercise %q", e.Name)
	default:
		return fmt.Sprintf("%s: analysis failed: %v", e.Exercise, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Issue returns the user-facing text reported in a frame's issue list.
func (e *Error) Issue() string {
	switch e.Kind {
	case KindMissingLandmark:
		labels := make([]string, len(e.Required))
		for i, j := range e.Required {
			labels[i] = j.Label()
		}
		return fmt.Sprintf("Not all required body parts are visible (%s).", strings.Join(labels, ", "))
	case KindUnsupportedExercise:
		return fmt.Sprintf("Workout '%s' not recognized.", e.Name)
	default:
		return fmt.Sprintf("Analysis error: %v", e.Err)
	}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
