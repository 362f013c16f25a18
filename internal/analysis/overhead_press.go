package analysis

import (
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// OverheadPressAnalyzer counts reps on the elbow angle (wrist-elbow-shoulder)
// and checks bar path on the shoulder angle (hip-shoulder-elbow). A session
// starts in the down stage, so the first full lockout counts as a rep.
type OverheadPressAnalyzer struct {
	profile Profile
	opts    options
}

// NewOverheadPressAnalyzer returns an overhead press analyzer.
func NewOverheadPressAnalyzer(opts ...Option) *OverheadPressAnalyzer {
	return &OverheadPressAnalyzer{profile: profiles[OverheadPress], opts: buildOptions(opts)}
}

func (a *OverheadPressAnalyzer) Exercise() Exercise { return OverheadPress }

func (a *OverheadPressAnalyzer) NewState() *State { return newState(a.profile.Initial) }

func (a *OverheadPressAnalyzer) ProcessFrame(st *State, lms pose.LandmarkSet) (res FrameResult) {
	defer recoverFrame(OverheadPress, st, &res)

	pts, err := extract(a.profile, lms, a.opts.minVisibility)
	if err != nil {
		return fail(st, err)
	}
	elbow := pose.Angle(pts[pose.LeftWrist], pts[pose.LeftElbow], pts[pose.LeftShoulder])
	shoulder := pose.Angle(pts[pose.LeftHip], pts[pose.LeftShoulder], pts[pose.LeftElbow])

	next, rep := a.profile.Next(st.Stage, elbow)
	score, issues := scoreOverheadPress(next, elbow, shoulder)
	return settle(st, next, rep, true, score, issues, map[string]float64{"elbow": elbow, "shoulder": shoulder})
}

func scoreOverheadPress(stage Stage, elbow, shoulder float64) (float64, []string) {
	score := 1.0
	var issues []string
	if stage == StageUp && elbow < 170 {
		issues = append(issues, "Incomplete lockout (Elbow not fully extended).")
		score *= 0.85
	}
	if shoulder < 100 {
		issues = append(issues, "Excessive backward lean or poor bar path (Shoulder alignment).")
		score *= 0.9
	}
	return score, issues
}
