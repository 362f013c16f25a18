package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
)

type Manager struct {
	// counters
	CounterRequests        *prometheus.CounterVec
	CounterFrames          *prometheus.CounterVec
	CounterReps            *prometheus.CounterVec
	CounterSessions        *prometheus.CounterVec
	CounterSessionsEvicted prometheus.Counter

	// gauges
	GaugeActiveSessions prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistRepScore        *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("biomechfit", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("biomechfit", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterFrames := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames",
		Help:      "The total number of analyzed frames by outcome",
	}, []string{"exercise", "outcome"})
	counterReps := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reps",
		Help:      "The total number of completed repetitions",
	}, []string{"exercise"})
	counterSessions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions",
		Help:      "The total number of started sessions",
	}, []string{"exercise"})
	counterSessionsEvicted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_evicted",
		Help:      "The total number of sessions removed for inactivity",
	})

	gaugeActiveSessions := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_sessions",
		Help:      "Current number of open sessions",
	})

	histReqDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.00001, 0.00005, 0.0001, 0.0005, 0.001,
				0.005, 0.01, 0.05, 0.1, 0.5, 1, 5,
			},
			Name: "request_duration_seconds",
			Help: "Total duration of requests in seconds",
		},
	)
	histRepScore := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1},
			Name:      "rep_score",
			Help:      "Form score of completed repetitions",
		},
		[]string{"exercise"},
	)

	return &Manager{
		CounterRequests:        counterRequests,
		CounterFrames:          counterFrames,
		CounterReps:            counterReps,
		CounterSessions:        counterSessions,
		CounterSessionsEvicted: counterSessionsEvicted,
		GaugeActiveSessions:    gaugeActiveSessions,
		HistRequestDuration:    histReqDuration,
		HistRepScore:           histRepScore,
	}
}

// ObserveFrame records the outcome of one analyzed frame.
func (m *Manager) ObserveFrame(e analysis.Exercise, res analysis.FrameResult) {
	outcome := "ok"
	if res.Err != nil {
		outcome = "error"
		var ae *analysis.Error
		if errors.As(res.Err, &ae) {
			outcome = ae.Kind.String()
		}
	}
	m.CounterFrames.WithLabelValues(string(e), outcome).Inc()
	if res.RepCompleted {
		m.CounterReps.WithLabelValues(string(e)).Inc()
		m.HistRepScore.WithLabelValues(string(e)).Observe(res.Score)
	}
}
