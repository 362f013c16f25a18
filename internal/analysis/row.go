package analysis

import (
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// RowAnalyzer counts reps on the elbow angle (shoulder-elbow-wrist). The
// rep starts extended (down), contracts (up) and completes on re-extension.
//
// Unlike the other exercises, only frames in the contraction stage are
// scored: extended frames leave the running minimum alone and report no
// issues, including the frame that completes the rep.
type RowAnalyzer struct {
	profile Profile
	opts    options
}

// NewRowAnalyzer returns a row analyzer.
func NewRowAnalyzer(opts ...Option) *RowAnalyzer {
	return &RowAnalyzer{profile: profiles[Row], opts: buildOptions(opts)}
}

func (a *RowAnalyzer) Exercise() Exercise { return Row }

func (a *RowAnalyzer) NewState() *State { return newState(a.profile.Initial) }

func (a *RowAnalyzer) ProcessFrame(st *State, lms pose.LandmarkSet) (res FrameResult) {
	defer recoverFrame(Row, st, &res)

	pts, err := extract(a.profile, lms, a.opts.minVisibility)
	if err != nil {
		return fail(st, err)
	}
	elbow := pose.Angle(pts[pose.LeftShoulder], pts[pose.LeftElbow], pts[pose.LeftWrist])

	next, rep := a.profile.Next(st.Stage, elbow)
	score, issues := scoreRow(elbow)
	contracted := next == StageUp
	if !contracted {
		issues = nil
	}
	return settle(st, next, rep, contracted, score, issues, map[string]float64{"elbow": elbow})
}

// scoreRow grades contraction depth; a smaller elbow angle is better.
func scoreRow(elbow float64) (float64, []string) {
	switch {
	case elbow <= 95:
		return 1.0, nil
	case elbow <= 110:
		return 0.95, nil
	case elbow <= 130:
		return 0.8, []string{"Partial Rep: Elbow angle too wide at contraction."}
	default:
		return 0.6, []string{"Very low range of motion (minimal contraction)."}
	}
}
