package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
	"github.com/sowferyowman/BiomechFit-app/internal/pose/posetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// benchRep returns the frames of one clean bench press rep.
func benchRep() []pose.LandmarkSet {
	return []pose.LandmarkSet{posetest.Arm(170), posetest.Arm(90), posetest.Arm(170)}
}

// TestAverageScoreNoReps verifies the average of zero reps is 0, not NaN.
func TestAverageScoreNoReps(t *testing.T) {
	assert.Equal(t, 0.0, AverageScore(nil))
	assert.Equal(t, 0.0, AverageScore([]float64{}))
}

// TestAverageScoreRounds verifies the average is rounded to two decimals.
func TestAverageScoreRounds(t *testing.T) {
	assert.Equal(t, 0.87, AverageScore([]float64{1.0, 0.8, 0.8}))
	assert.Equal(t, 0.9, AverageScore([]float64{0.85, 0.95}))
}

// TestGrade verifies the 1–5 conversion and its clamping.
func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{1.0, 5},
		{0.9, 5},
		{0.85, 4},
		{0.6, 3},
		{0.5, 3},
		{0.3, 2},
		{0.0, 1},
		{-1, 1},
		{2, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score), "score %v", tt.score)
	}
	assert.Equal(t, "Exceptional Form! You earned a perfect 5.", Feedback(5))
	assert.Equal(t, "Critical issues detected. Stop and review the technique immediately.", Feedback(0))
}

// TestSessionCountsRepsToTarget verifies reps accumulate, the session
// completes at the target and later frames are refused.
func TestSessionCountsRepsToTarget(t *testing.T) {
	s := New(analysis.NewBenchPressAnalyzer(), 2)

	var last Progress
	for i := 0; i < 2; i++ {
		for _, f := range benchRep() {
			p, err := s.Feed(f)
			require.NoError(t, err)
			last = p
		}
	}
	assert.True(t, last.RepCompleted)
	assert.Equal(t, 2, last.Reps)
	assert.True(t, last.Done)

	_, err := s.Feed(posetest.Arm(90))
	assert.ErrorIs(t, err, ErrSessionComplete)

	sum := s.Summary()
	assert.Equal(t, "Bench Press", sum.Workout)
	assert.Equal(t, 2, sum.Reps)
	assert.Equal(t, []float64{1.0, 1.0}, sum.Details)
	assert.Equal(t, 1.0, sum.AvgScore)
	assert.Equal(t, 5, sum.Grade)
	assert.Equal(t, 6, sum.FramesAnalyzed)
	assert.True(t, sum.Done)
}

// TestSessionDefaultTarget verifies a missing target falls back to 8.
func TestSessionDefaultTarget(t *testing.T) {
	s := New(analysis.NewRowAnalyzer(), 0)
	assert.Equal(t, DefaultTargetReps, s.TargetReps)
	assert.Equal(t, analysis.Row, s.Exercise)
}

// TestSessionSkipsEmptyAndBadFrames verifies frames with no person or
// missing joints are counted as skipped and do not change progress.
func TestSessionSkipsEmptyAndBadFrames(t *testing.T) {
	s := New(analysis.NewSquatAnalyzer(), 3)

	p, err := s.Feed(pose.LandmarkSet{})
	require.NoError(t, err)
	assert.Empty(t, p.Issues)
	assert.Equal(t, analysis.StageUp, p.Stage)

	p, err = s.Feed(posetest.Without(posetest.Leg(90, 150), pose.LeftKnee))
	require.NoError(t, err)
	assert.True(t, analysis.IsKind(p.Err, analysis.KindMissingLandmark))

	sum := s.Summary()
	assert.Equal(t, 0, sum.Reps)
	assert.Equal(t, 0.0, sum.AvgScore)
	assert.Equal(t, 1, sum.Grade)
	assert.Equal(t, 1, sum.FramesAnalyzed)
	assert.Equal(t, 2, sum.FramesSkipped)
	assert.Equal(t, analysis.StageUp, s.State().Stage)
}

// TestSessionConcurrentFeeds verifies concurrent writers are serialized:
// every frame is applied exactly once.
func TestSessionConcurrentFeeds(t *testing.T) {
	s := New(analysis.NewBenchPressAnalyzer(), 1000)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := s.Feed(posetest.Arm(170))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, s.Summary().FramesAnalyzed)
}

// TestAnalyzeStopsAtTarget verifies batch analysis ignores frames after the target.
func TestAnalyzeStopsAtTarget(t *testing.T) {
	var frames []pose.LandmarkSet
	for i := 0; i < 5; i++ {
		frames = append(frames, benchRep()...)
	}
	frames = append(frames, posetest.Arm(110))

	sum := Analyze(analysis.NewBenchPressAnalyzer(), 3, frames)
	assert.Equal(t, 3, sum.Reps)
	assert.Equal(t, 9, sum.FramesAnalyzed)
	assert.Empty(t, sum.ID)
}

// TestAnalyzeScoresReps verifies per-rep details and the rounded average.
func TestAnalyzeScoresReps(t *testing.T) {
	frames := append(benchRep(), posetest.Arm(110), posetest.Arm(90), posetest.Arm(170))
	sum := Analyze(analysis.NewBenchPressAnalyzer(), 8, frames)

	assert.Equal(t, []float64{1.0, 0.8}, sum.Details)
	assert.Equal(t, 0.9, sum.AvgScore)
	assert.Equal(t, 5, sum.Grade)
	assert.False(t, sum.Done)
}

// TestLastResult verifies the most recent frame result is kept.
func TestLastResult(t *testing.T) {
	s := New(analysis.NewBenchPressAnalyzer(), 0)
	assert.Zero(t, s.LastResult().Stage)

	_, err := s.Feed(posetest.Arm(90))
	require.NoError(t, err)
	assert.Equal(t, analysis.StageDown, s.LastResult().Stage)
}
