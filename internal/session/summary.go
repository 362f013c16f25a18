package session

import (
	"math"
)

// Summary is the result of a session, in the shape the mobile client reads.
type Summary struct {
	ID             string    `json:"id,omitempty"`
	Workout        string    `json:"workout"`
	Reps           int       `json:"reps"`
	TargetReps     int       `json:"target_reps"`
	AvgScore       float64   `json:"avg_score"`
	Details        []float64 `json:"details"`
	Grade          int       `json:"grade"`
	Feedback       string    `json:"feedback"`
	FramesAnalyzed int       `json:"frames_analyzed"`
	FramesSkipped  int       `json:"frames_skipped"`
	Done           bool      `json:"done"`
}

// AverageScore returns the mean of scores rounded to two decimals, or 0
// when no reps were completed.
func AverageScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return math.Round(sum/float64(len(scores))*100) / 100
}

// Grade converts a 0–1 score to the 1–5 scale.
func Grade(score float64) int {
	g := int(math.Round(score*4 + 1))
	return min(5, max(1, g))
}

var gradeFeedback = map[int]string{
	5: "Exceptional Form! You earned a perfect 5.",
	4: "Excellent job! Minor refinements needed for perfection.",
	3: "Good performance. Focus on key issues for improvement.",
	2: "Needs work. Review the form guide before your next session.",
	1: "Critical issues detected. Stop and review the technique immediately.",
}

// Feedback returns the coaching message for a 1–5 grade.
func Feedback(grade int) string {
	return gradeFeedback[min(5, max(1, grade))]
}
