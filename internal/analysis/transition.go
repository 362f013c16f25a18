package analysis

import (
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// Stage is the phase of a repetition.
type Stage string

const (
	StageUp   Stage = "up"
	StageDown Stage = "down"
)

// Transition moves an analyzer from one stage to another when the primary
// angle crosses Threshold. Comparisons are strict.
type Transition struct {
	From      Stage   `json:"from"`
	To        Stage   `json:"to"`
	Below     bool    `json:"below"`
	Threshold float64 `json:"threshold"`
}

// Fires reports whether the transition applies to angle while in stage.
func (t Transition) Fires(stage Stage, angle float64) bool {
	if stage != t.From {
		return false
	}
	if t.Below {
		return angle < t.Threshold
	}
	return angle > t.Threshold
}

// Profile is the static state machine of one exercise: which joints it needs,
// which angle drives it and the two hysteretic transitions. Start leaves the
// initial stage; Complete returns to it and counts a repetition.
type Profile struct {
	Exercise Exercise     `json:"exercise"`
	Name     string       `json:"name"`
	Primary  string       `json:"primary_angle"`
	Joints   []pose.Joint `json:"joints"`
	Initial  Stage        `json:"initial_stage"`
	Start    Transition   `json:"start"`
	Complete Transition   `json:"complete"`
}

// Next evaluates Start then Complete against stage, in that order, and
// returns the resulting stage and whether a repetition completed.
func (p Profile) Next(stage Stage, angle float64) (Stage, bool) {
	if p.Start.Fires(stage, angle) {
		stage = p.Start.To
	}
	if p.Complete.Fires(stage, angle) {
		return p.Complete.To, true
	}
	return stage, false
}

var profiles = map[Exercise]Profile{
	BenchPress: {
		Exercise: BenchPress,
		Primary:  "elbow",
		Joints:   []pose.Joint{pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
		Initial:  StageUp,
		Start:    Transition{From: StageUp, To: StageDown, Below: true, Threshold: 120},
		Complete: Transition{From: StageDown, To: StageUp, Threshold: 160},
	},
	Squat: {
		Exercise: Squat,
		Primary:  "knee",
		Joints:   []pose.Joint{pose.LeftHip, pose.LeftKnee, pose.LeftAnkle, pose.LeftShoulder},
		Initial:  StageUp,
		Start:    Transition{From: StageUp, To: StageDown, Below: true, Threshold: 140},
		Complete: Transition{From: StageDown, To: StageUp, Threshold: 170},
	},
	Deadlift: {
		Exercise: Deadlift,
		Primary:  "hip",
		Joints:   []pose.Joint{pose.LeftHip, pose.LeftKnee, pose.LeftAnkle, pose.LeftShoulder},
		Initial:  StageUp,
		Start:    Transition{From: StageUp, To: StageDown, Below: true, Threshold: 160},
		Complete: Transition{From: StageDown, To: StageUp, Threshold: 170},
	},
	OverheadPress: {
		Exercise: OverheadPress,
		Primary:  "elbow",
		Joints:   []pose.Joint{pose.LeftHip, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
		Initial:  StageDown,
		Start:    Transition{From: StageUp, To: StageDown, Below: true, Threshold: 140},
		Complete: Transition{From: StageDown, To: StageUp, Threshold: 170},
	},
	Row: {
		Exercise: Row,
		Primary:  "elbow",
		Joints:   []pose.Joint{pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
		Initial:  StageDown,
		Start:    Transition{From: StageDown, To: StageUp, Below: true, Threshold: 100},
		Complete: Transition{From: StageUp, To: StageDown, Threshold: 160},
	},
}

// ProfileOf returns the state machine for e.
func ProfileOf(e Exercise) (Profile, bool) {
	p, ok := profiles[e]
	if !ok {
		return Profile{}, false
	}
	p.Name = e.DisplayName()
	p.Joints = append([]pose.Joint(nil), p.Joints...)
	return p, true
}

// Catalog returns the profiles of all exercises in catalog order.
func Catalog() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, e := range Exercises() {
		p, _ := ProfileOf(e)
		out = append(out, p)
	}
	return out
}
