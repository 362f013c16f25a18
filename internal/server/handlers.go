package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
	"github.com/sowferyowman/BiomechFit-app/internal/models"
	"github.com/sowferyowman/BiomechFit-app/internal/session"
)

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Catalog())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if !decodeBody(w, r, s.maxBody, &req) {
		return
	}

	sess, err := s.sessions.Create(req.Workout, req.TargetReps)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.metrics.CounterSessions.WithLabelValues(string(sess.Exercise)).Inc()
	s.metrics.GaugeActiveSessions.Set(float64(s.sessions.Len()))
	s.log.Info("session created", "id", sess.ID, "exercise", sess.Exercise, "target_reps", sess.TargetReps)

	writeJSON(w, http.StatusCreated, models.SessionCreated{
		ID:         sess.ID.String(),
		Workout:    sess.Exercise.DisplayName(),
		Exercise:   sess.Exercise,
		TargetReps: sess.TargetReps,
		Stage:      sess.State().Stage,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Summary())
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	sum, err := s.sessions.Finish(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.metrics.GaugeActiveSessions.Set(float64(s.sessions.Len()))
	s.log.Info("session finished", "id", id, "reps", sum.Reps, "avg_score", sum.AvgScore)
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req models.FrameRequest
	if !decodeBody(w, r, s.maxBody, &req) {
		return
	}

	progress, err := sess.Feed(req.Landmarks)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	if progress.Err != nil {
		s.log.Debug("frame not analyzed", "id", sess.ID, "error", progress.Err)
	}
	writeJSON(w, http.StatusOK, models.NewFrameResponse(progress))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if !decodeBody(w, r, s.maxAnalyzeBody, &req) {
		return
	}

	sum, err := s.sessions.Analyze(req.Workout, req.User.Reps, req.Frames)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.log.Info("set analyzed",
		"workout", sum.Workout,
		"frames", len(req.Frames),
		"reps", sum.Reps,
		"avg_score", sum.AvgScore,
	)
	writeJSON(w, http.StatusOK, sum)
}

// lookup resolves the {id} URL parameter to an open session, writing the
// error response itself when it cannot.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	var ae *analysis.Error
	switch {
	case errors.As(err, &ae) && ae.Kind == analysis.KindUnsupportedExercise:
		writeError(w, http.StatusBadRequest, ae.Issue())
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrSessionComplete):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrTooManySessions):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error("session error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes the JSON request body into v, reading at most limit
// bytes. On failure it writes 413 or 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
	return false
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
