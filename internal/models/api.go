package models

import (
	"errors"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
	"github.com/sowferyowman/BiomechFit-app/internal/session"
)

// AnalyzeRequest is the body of POST /api/v1/analyze, the batch endpoint the
// mobile client posts a whole recorded set to.
type AnalyzeRequest struct {
	Workout string             `json:"workout"`
	User    AnalyzeUser        `json:"user"`
	Frames  []pose.LandmarkSet `json:"frames"`
}

// AnalyzeUser carries the user's settings for a set.
type AnalyzeUser struct {
	Reps int `json:"reps"`
}

// CreateSessionRequest is the body of POST /api/v1/sessions.
type CreateSessionRequest struct {
	Workout    string `json:"workout"`
	TargetReps int    `json:"target_reps"`
}

// SessionCreated is returned when a live session starts.
type SessionCreated struct {
	ID         string            `json:"id"`
	Workout    string            `json:"workout"`
	Exercise   analysis.Exercise `json:"exercise"`
	TargetReps int               `json:"target_reps"`
	Stage      analysis.Stage    `json:"stage"`
}

// FrameRequest is the body of POST /api/v1/sessions/{id}/frames.
type FrameRequest struct {
	Landmarks pose.LandmarkSet `json:"landmarks"`
}

// FrameResponse is one frame's result plus the session totals. Error is set
// when the frame could not be analyzed; the session keeps going regardless.
type FrameResponse struct {
	session.Progress
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// NewFrameResponse wraps p, surfacing its per-frame error.
func NewFrameResponse(p session.Progress) FrameResponse {
	resp := FrameResponse{Progress: p}
	if p.Err != nil {
		resp.Error = p.Err.Error()
		resp.ErrorKind = "error"
		var ae *analysis.Error
		if errors.As(p.Err, &ae) {
			resp.Error = ae.Issue()
			resp.ErrorKind = ae.Kind.String()
		}
	}
	return resp
}

// ExerciseInfo describes one supported exercise for the catalog endpoint.
type ExerciseInfo struct {
	Exercise analysis.Exercise   `json:"exercise"`
	Name     string              `json:"name"`
	Primary  string              `json:"primary_angle"`
	Joints   []pose.Joint        `json:"joints"`
	Initial  analysis.Stage      `json:"initial_stage"`
	Start    analysis.Transition `json:"start"`
	Complete analysis.Transition `json:"complete"`
}

// Catalog lists every supported exercise.
func Catalog() []ExerciseInfo {
	profiles := analysis.Catalog()
	out := make([]ExerciseInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ExerciseInfo(p))
	}
	return out
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
