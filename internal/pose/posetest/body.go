// Package posetest builds synthetic landmark sets with exact joint angles
// for use in tests.
package posetest

import (
	"math"

	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// Body describes a left-side skeleton by its four joint angles, in degrees.
// Landmarks places the hip, knee, ankle, shoulder, elbow and wrist so that:
//
//	Knee     = angle(hip, knee, ankle)
//	Hip      = angle(shoulder, hip, knee)
//	Shoulder = angle(hip, shoulder, elbow)
//	Elbow    = angle(shoulder, elbow, wrist)
type Body struct {
	Elbow    float64
	Shoulder float64
	Hip      float64
	Knee     float64
}

// Standing is an upright body with straight arms and legs.
var Standing = Body{Elbow: 175, Shoulder: 150, Hip: 175, Knee: 178}

// Arm returns Standing with the given elbow angle.
func Arm(elbow float64) pose.LandmarkSet {
	b := Standing
	b.Elbow = elbow
	return b.Landmarks()
}

// Leg returns Standing with the given knee and hip angles.
func Leg(knee, hip float64) pose.LandmarkSet {
	b := Standing
	b.Knee = knee
	b.Hip = hip
	return b.Landmarks()
}

// Press returns Standing with the given elbow and shoulder angles.
func Press(elbow, shoulder float64) pose.LandmarkSet {
	b := Standing
	b.Elbow = elbow
	b.Shoulder = shoulder
	return b.Landmarks()
}

// Landmarks renders the body as a landmark set.
func (b Body) Landmarks() pose.LandmarkSet {
	hip := pose.Point{X: 0.5, Y: 0.5}
	knee := pose.Point{X: 0.5, Y: 0.7}
	ankle := place(knee, hip, b.Knee, 0.2)
	shoulder := place(hip, knee, b.Hip, 0.25)
	elbow := place(shoulder, hip, b.Shoulder, 0.15)
	wrist := place(elbow, shoulder, b.Elbow, 0.15)

	return pose.LandmarkSet{
		pose.LeftHip:      landmark(hip),
		pose.LeftKnee:     landmark(knee),
		pose.LeftAnkle:    landmark(ankle),
		pose.LeftShoulder: landmark(shoulder),
		pose.LeftElbow:    landmark(elbow),
		pose.LeftWrist:    landmark(wrist),
	}
}

// Without returns a copy of s with the given joints removed.
func Without(s pose.LandmarkSet, joints ...pose.Joint) pose.LandmarkSet {
	out := make(pose.LandmarkSet, len(s))
	for j, lm := range s {
		out[j] = lm
	}
	for _, j := range joints {
		delete(out, j)
	}
	return out
}

// WithVisibility returns a copy of s with j's visibility set to v.
func WithVisibility(s pose.LandmarkSet, j pose.Joint, v float64) pose.LandmarkSet {
	out := Without(s)
	lm := out[j]
	lm.Visibility = &v
	out[j] = lm
	return out
}

// place returns the point at distance r from vertex whose ray forms deg
// degrees with the ray vertex→toward.
func place(vertex, toward pose.Point, deg, r float64) pose.Point {
	dx, dy := toward.X-vertex.X, toward.Y-vertex.Y
	n := math.Hypot(dx, dy)
	dx, dy = dx/n, dy/n
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return pose.Point{
		X: vertex.X + r*(dx*cos-dy*sin),
		Y: vertex.Y + r*(dx*sin+dy*cos),
	}
}

func landmark(p pose.Point) pose.Landmark {
	v := 0.99
	return pose.Landmark{X: p.X, Y: p.Y, Visibility: &v}
}
