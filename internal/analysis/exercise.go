// Package analysis turns per-frame pose landmarks into repetition counts
// and form scores for five barbell/dumbbell exercises.
package analysis

import (
	"strings"
)

// Exercise identifies one of the supported movements.
type Exercise string

const (
	Squat         Exercise = "squat"
	Deadlift      Exercise = "deadlift"
	BenchPress    Exercise = "bench_press"
	OverheadPress Exercise = "overhead_press"
	Row           Exercise = "row"
)

var displayNames = map[Exercise]string{
	Squat:         "Squat",
	Deadlift:      "Deadlift",
	BenchPress:    "Bench Press",
	OverheadPress: "Overhead Press",
	Row:           "Row",
}

// Exercises lists every supported exercise in catalog order.
func Exercises() []Exercise {
	return []Exercise{Squat, Deadlift, BenchPress, OverheadPress, Row}
}

// DisplayName returns the human-facing name, e.g. "Bench Press".
func (e Exercise) DisplayName() string {
	if n, ok := displayNames[e]; ok {
		return n
	}
	return string(e)
}

// Valid reports whether e is a supported exercise.
func (e Exercise) Valid() bool {
	_, ok := displayNames[e]
	return ok
}

// ParseExercise maps a workout name to its Exercise. It accepts display names
// ("Bench Press"), slugs ("bench_press") and their case/spacing variants.
// Unknown names yield an *Error of KindUnsupportedExercise.
func ParseExercise(name string) (Exercise, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if e := Exercise(key); e.Valid() {
		return e, nil
	}
	return "", &Error{Kind: KindUnsupportedExercise, Name: name}
}
