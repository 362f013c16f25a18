package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

var (
	// ErrNotFound is returned for unknown or expired session IDs.
	ErrNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when MaxActive sessions are open.
	ErrTooManySessions = errors.New("too many active sessions")
)

// RegistryConfig bounds the in-memory session store.
type RegistryConfig struct {
	// MaxActive caps concurrently open sessions; zero means no cap.
	MaxActive int
	// IdleTimeout evicts sessions that have not received a frame for this long.
	IdleTimeout time.Duration
	// ReapInterval is how often Run scans for idle sessions.
	ReapInterval time.Duration
	// TargetReps replaces a non-positive target passed to Create or Analyze.
	// Zero falls back to DefaultTargetReps.
	TargetReps int
	// Options are applied to every analyzer the registry creates.
	Options []analysis.Option
}

// Registry holds the open sessions of a server process.
type Registry struct {
	cfg RegistryConfig
	log *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	// OnEvict, if set, is called for every session removed by the reaper.
	OnEvict func(*Session)
	// OnFrame, if set, is called with every analyzed frame of sessions
	// created after it was set, including batch analyses.
	OnFrame func(analysis.Exercise, analysis.FrameResult)
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig, log *slog.Logger) *Registry {
	return &Registry{
		cfg:      cfg,
		log:      log,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create starts a session for the named workout. An unknown workout yields
// an *analysis.Error of KindUnsupportedExercise and no session is stored.
func (r *Registry) Create(workout string, targetReps int) (*Session, error) {
	s, err := r.newSession(workout, targetReps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.MaxActive > 0 && len(r.sessions) >= r.cfg.MaxActive {
		return nil, ErrTooManySessions
	}
	r.sessions[s.ID] = s
	return s, nil
}

// Analyze runs frames through a session that is never stored, with the
// registry's analyzer options, and returns its summary.
func (r *Registry) Analyze(workout string, targetReps int, frames []pose.LandmarkSet) (Summary, error) {
	s, err := r.newSession(workout, targetReps)
	if err != nil {
		return Summary{}, err
	}
	return analyze(s, frames), nil
}

func (r *Registry) newSession(workout string, targetReps int) (*Session, error) {
	a, err := analysis.ForName(workout, r.cfg.Options...)
	if err != nil {
		return nil, err
	}
	if targetReps <= 0 {
		targetReps = r.cfg.TargetReps
	}
	s := New(a, targetReps)
	s.onFrame = r.OnFrame
	return s, nil
}

// Get returns the session with the given ID.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Finish removes the session and returns its final summary.
func (r *Registry) Finish(id uuid.UUID) (Summary, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return Summary{}, ErrNotFound
	}
	return s.Summary(), nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Run evicts idle sessions every ReapInterval until ctx is cancelled.
// It returns immediately if IdleTimeout or ReapInterval is not set.
func (r *Registry) Run(ctx context.Context) {
	if r.cfg.IdleTimeout <= 0 || r.cfg.ReapInterval <= 0 {
		return
	}
	ticker := time.NewTicker(r.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Reap(now); n > 0 {
				r.log.Info("evicted idle sessions", "count", n, "active", r.Len())
			}
		}
	}
}

// Reap removes sessions idle since before now-IdleTimeout and returns how
// many were removed.
func (r *Registry) Reap(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	var evicted []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			evicted = append(evicted, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		r.log.Debug("session expired", "id", s.ID, "exercise", s.Exercise)
		if r.OnEvict != nil {
			r.OnEvict(s)
		}
	}
	return len(evicted)
}
