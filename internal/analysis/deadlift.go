package analysis

import (
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// DeadliftAnalyzer counts reps on the hip angle (shoulder-hip-knee) and
// checks lockout on the knee angle (hip-knee-ankle).
type DeadliftAnalyzer struct {
	profile Profile
	opts    options
}

// NewDeadliftAnalyzer returns a deadlift analyzer.
func NewDeadliftAnalyzer(opts ...Option) *DeadliftAnalyzer {
	return &DeadliftAnalyzer{profile: profiles[Deadlift], opts: buildOptions(opts)}
}

func (a *DeadliftAnalyzer) Exercise() Exercise { return Deadlift }

func (a *DeadliftAnalyzer) NewState() *State { return newState(a.profile.Initial) }

func (a *DeadliftAnalyzer) ProcessFrame(st *State, lms pose.LandmarkSet) (res FrameResult) {
	defer recoverFrame(Deadlift, st, &res)

	pts, err := extract(a.profile, lms, a.opts.minVisibility)
	if err != nil {
		return fail(st, err)
	}
	hip := pose.Angle(pts[pose.LeftShoulder], pts[pose.LeftHip], pts[pose.LeftKnee])
	knee := pose.Angle(pts[pose.LeftHip], pts[pose.LeftKnee], pts[pose.LeftAnkle])

	next, rep := a.profile.Next(st.Stage, hip)
	score, issues := scoreDeadlift(next, hip, knee)
	return settle(st, next, rep, true, score, issues, map[string]float64{"hip": hip, "knee": knee})
}

func scoreDeadlift(stage Stage, hip, knee float64) (float64, []string) {
	score := 1.0
	var issues []string
	if hip < 150 {
		issues = append(issues, "Maintain a straighter back (hip angle is low).")
		score *= 0.9
	}
	if stage == StageUp && knee > 175 {
		issues = append(issues, "Avoid hyperextending knees at the top/lockout.")
		score *= 0.95
	}
	return score, issues
}
