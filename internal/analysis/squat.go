package analysis

import (
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// SquatAnalyzer counts reps on the knee angle (hip-knee-ankle) and checks
// torso lean on the hip angle (shoulder-hip-knee).
type SquatAnalyzer struct {
	profile Profile
	opts    options
}

// NewSquatAnalyzer returns a squat analyzer.
func NewSquatAnalyzer(opts ...Option) *SquatAnalyzer {
	return &SquatAnalyzer{profile: profiles[Squat], opts: buildOptions(opts)}
}

func (a *SquatAnalyzer) Exercise() Exercise { return Squat }

func (a *SquatAnalyzer) NewState() *State { return newState(a.profile.Initial) }

func (a *SquatAnalyzer) ProcessFrame(st *State, lms pose.LandmarkSet) (res FrameResult) {
	defer recoverFrame(Squat, st, &res)

	pts, err := extract(a.profile, lms, a.opts.minVisibility)
	if err != nil {
		return fail(st, err)
	}
	knee := pose.Angle(pts[pose.LeftHip], pts[pose.LeftKnee], pts[pose.LeftAnkle])
	hip := pose.Angle(pts[pose.LeftShoulder], pts[pose.LeftHip], pts[pose.LeftKnee])

	next, rep := a.profile.Next(st.Stage, knee)
	score, issues := scoreSquat(next, knee, hip)
	return settle(st, next, rep, true, score, issues, map[string]float64{"knee": knee, "hip": hip})
}

func scoreSquat(stage Stage, knee, hip float64) (float64, []string) {
	score := 1.0
	var issues []string
	if stage == StageDown && knee > 100 {
		issues = append(issues, "Insufficient Depth: Go lower (Knee angle too open).")
		score *= 0.85
	}
	if hip < 120 {
		issues = append(issues, "Torso Leaning Forward: Engage core and maintain upright chest.")
		score *= 0.9
	}
	if knee < 60 {
		issues = append(issues, "Very deep squat: Ensure knees track over feet.")
		score *= 0.95
	}
	return score, issues
}
