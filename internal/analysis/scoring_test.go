package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestScoreBenchPressBands verifies band edges belong to the tighter band.
func TestScoreBenchPressBands(t *testing.T) {
	tests := []struct {
		elbow  float64
		score  float64
		issues int
	}{
		{85, 1.0, 0},
		{90, 1.0, 0},
		{100, 1.0, 0},
		{70, 0.8, 1},
		{84.9, 0.8, 1},
		{100.1, 0.8, 1},
		{120, 0.8, 1},
		{69.9, 0.6, 1},
		{120.1, 0.6, 1},
		{160, 0.6, 1},
		{160.1, 1.0, 0},
		{178, 1.0, 0},
	}
	for _, tt := range tests {
		score, issues := scoreBenchPress(tt.elbow)
		assert.Equal(t, tt.score, score, "elbow %v", tt.elbow)
		assert.Len(t, issues, tt.issues, "elbow %v", tt.elbow)
	}
}

// TestScoreSquatPenalties verifies penalties multiply and depth only counts
// while down.
func TestScoreSquatPenalties(t *testing.T) {
	score, issues := scoreSquat(StageUp, 150, 170)
	assert.Equal(t, 1.0, score)
	assert.Empty(t, issues)

	score, issues = scoreSquat(StageDown, 110, 170)
	assert.InDelta(t, 0.85, score, 1e-12)
	assert.Equal(t, []string{"Insufficient Depth: Go lower (Knee angle too open)."}, issues)

	score, issues = scoreSquat(StageDown, 100, 120)
	assert.Equal(t, 1.0, score, "boundaries are not penalized")
	assert.Empty(t, issues)

	score, issues = scoreSquat(StageDown, 105, 110)
	assert.InDelta(t, 0.85*0.9, score, 1e-12)
	assert.Len(t, issues, 2)

	score, issues = scoreSquat(StageDown, 55, 100)
	assert.InDelta(t, 0.9*0.95, score, 1e-12)
	assert.Equal(t, "Very deep squat: Ensure knees track over feet.", issues[1])
}

// TestScoreDeadliftPenalties verifies the back and lockout checks.
func TestScoreDeadliftPenalties(t *testing.T) {
	score, issues := scoreDeadlift(StageDown, 140, 150)
	assert.InDelta(t, 0.9, score, 1e-12)
	assert.Equal(t, []string{"Maintain a straighter back (hip angle is low)."}, issues)

	score, _ = scoreDeadlift(StageDown, 165, 178)
	assert.Equal(t, 1.0, score, "knee lockout only checked while up")

	score, issues = scoreDeadlift(StageUp, 172, 178)
	assert.InDelta(t, 0.95, score, 1e-12)
	assert.Equal(t, []string{"Avoid hyperextending knees at the top/lockout."}, issues)

	score, _ = scoreDeadlift(StageUp, 150, 175)
	assert.Equal(t, 1.0, score)
}

// TestScoreOverheadPressPenalties verifies the lockout and lean checks.
func TestScoreOverheadPressPenalties(t *testing.T) {
	score, issues := scoreOverheadPress(StageUp, 160, 150)
	assert.InDelta(t, 0.85, score, 1e-12)
	assert.Equal(t, []string{"Incomplete lockout (Elbow not fully extended)."}, issues)

	score, _ = scoreOverheadPress(StageDown, 90, 150)
	assert.Equal(t, 1.0, score, "lockout only checked while up")

	score, issues = scoreOverheadPress(StageUp, 165, 95)
	assert.InDelta(t, 0.85*0.9, score, 1e-12)
	assert.Len(t, issues, 2)

	score, _ = scoreOverheadPress(StageUp, 170, 100)
	assert.Equal(t, 1.0, score)
}

// TestScoreRowBands verifies contraction depth bands.
func TestScoreRowBands(t *testing.T) {
	tests := []struct {
		elbow  float64
		score  float64
		issues int
	}{
		{60, 1.0, 0},
		{95, 1.0, 0},
		{95.1, 0.95, 0},
		{110, 0.95, 0},
		{110.1, 0.8, 1},
		{130, 0.8, 1},
		{130.1, 0.6, 1},
		{170, 0.6, 1},
	}
	for _, tt := range tests {
		score, issues := scoreRow(tt.elbow)
		assert.Equal(t, tt.score, score, "elbow %v", tt.elbow)
		assert.Len(t, issues, tt.issues, "elbow %v", tt.elbow)
	}
}
