package analysis

import (
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// BenchPressAnalyzer counts reps on the elbow angle (shoulder-elbow-wrist),
// which should reach about 90° at the bottom.
type BenchPressAnalyzer struct {
	profile Profile
	opts    options
}

// NewBenchPressAnalyzer returns a bench press analyzer.
func NewBenchPressAnalyzer(opts ...Option) *BenchPressAnalyzer {
	return &BenchPressAnalyzer{profile: profiles[BenchPress], opts: buildOptions(opts)}
}

func (a *BenchPressAnalyzer) Exercise() Exercise { return BenchPress }

func (a *BenchPressAnalyzer) NewState() *State { return newState(a.profile.Initial) }

func (a *BenchPressAnalyzer) ProcessFrame(st *State, lms pose.LandmarkSet) (res FrameResult) {
	defer recoverFrame(BenchPress, st, &res)

	pts, err := extract(a.profile, lms, a.opts.minVisibility)
	if err != nil {
		return fail(st, err)
	}
	elbow := pose.Angle(pts[pose.LeftShoulder], pts[pose.LeftElbow], pts[pose.LeftWrist])

	next, rep := a.profile.Next(st.Stage, elbow)
	score, issues := scoreBenchPress(elbow)
	return settle(st, next, rep, true, score, issues, map[string]float64{"elbow": elbow})
}

// scoreBenchPress grades the elbow angle. Lockout above the completing
// threshold is ideal; elsewhere 85–100° is ideal.
//
// The lockout band must stay at 1.0: scoring it 0.6 would cap every rep,
// since each rep's score is the minimum over its frames and each rep ends
// in lockout.
func scoreBenchPress(elbow float64) (float64, []string) {
	switch {
	case elbow > 160:
		return 1.0, nil
	case elbow >= 85 && elbow <= 100:
		return 1.0, nil
	case (elbow >= 70 && elbow < 85) || (elbow > 100 && elbow <= 120):
		return 0.8, []string{"Minor Elbow Angle Adjustment Needed."}
	default:
		return 0.6, []string{"Poor Elbow Angle: Risk of shoulder injury."}
	}
}
