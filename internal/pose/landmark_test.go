package pose_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sowferyowman/BiomechFit-app/internal/pose"
	"github.com/sowferyowman/BiomechFit-app/internal/pose/posetest"
)

// TestLandmarkSetDecodeList verifies the MediaPipe list form, where null
// entries are undetected joints.
func TestLandmarkSetDecodeList(t *testing.T) {
	data := `[{"x":0.1,"y":0.2,"z":-0.3,"visibility":0.9}, null, {"x":0.5,"y":0.6}]`

	var set pose.LandmarkSet
	require.NoError(t, json.Unmarshal([]byte(data), &set))

	require.Len(t, set, 2)
	assert.Equal(t, 0.1, set[pose.Nose].X)
	assert.Equal(t, -0.3, set[pose.Nose].Z)
	require.NotNil(t, set[pose.Nose].Visibility)
	assert.Equal(t, 0.9, *set[pose.Nose].Visibility)
	_, ok := set[pose.LeftEyeInner]
	assert.False(t, ok, "null entry should be absent")
	assert.Nil(t, set[pose.LeftEye].Visibility)
}

// TestLandmarkSetDecodeObject verifies the named form.
func TestLandmarkSetDecodeObject(t *testing.T) {
	data := `{"left_knee":{"x":0.5,"y":0.7},"LEFT_HIP":{"x":0.5,"y":0.5},"left_ankle":null}`

	var set pose.LandmarkSet
	require.NoError(t, json.Unmarshal([]byte(data), &set))

	require.Len(t, set, 2)
	assert.Equal(t, 0.7, set[pose.LeftKnee].Y)
	assert.Equal(t, 0.5, set[pose.LeftHip].Y)
}

// TestLandmarkSetDecodeErrors verifies unknown joint names and oversized lists are rejected.
func TestLandmarkSetDecodeErrors(t *testing.T) {
	var set pose.LandmarkSet
	assert.Error(t, json.Unmarshal([]byte(`{"left_tail":{"x":0,"y":0}}`), &set))

	long := make([]pose.Landmark, pose.NumJoints+1)
	data, err := json.Marshal(long)
	require.NoError(t, err)
	assert.Error(t, json.Unmarshal(data, &set))
}

// TestLandmarkSetEncodesNames verifies the set encodes keyed by joint name
// and decodes back to the same joints.
func TestLandmarkSetEncodesNames(t *testing.T) {
	set := pose.LandmarkSet{pose.LeftWrist: {X: 0.25, Y: 0.75}}
	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"left_wrist":{"x":0.25,"y":0.75}}`, string(data))
}

// TestLookupVisibility verifies low-visibility landmarks are treated as missing.
func TestLookupVisibility(t *testing.T) {
	set := posetest.WithVisibility(posetest.Arm(90), pose.LeftElbow, 0.3)

	_, ok := set.Lookup(pose.LeftElbow, pose.DefaultMinVisibility)
	assert.False(t, ok)
	_, ok = set.Lookup(pose.LeftElbow, 0.2)
	assert.True(t, ok)
	_, ok = set.Lookup(pose.RightElbow, 0)
	assert.False(t, ok, "absent joint")
}

// TestJointNames verifies name round-trips and issue labels.
func TestJointNames(t *testing.T) {
	for j := pose.Nose; j <= pose.RightFootIndex; j++ {
		got, err := pose.ParseJoint(j.String())
		require.NoError(t, err)
		assert.Equal(t, j, got)
	}
	assert.Equal(t, "Shoulder", pose.LeftShoulder.Label())
	assert.Equal(t, "Foot Index", pose.RightFootIndex.Label())
	assert.Equal(t, "joint(40)", pose.Joint(40).String())
}

// TestSyntheticBodyAngles verifies the test skeleton produces the requested angles.
func TestSyntheticBodyAngles(t *testing.T) {
	body := posetest.Body{Elbow: 95, Shoulder: 120, Hip: 130, Knee: 85}
	set := body.Landmarks()
	pt := func(j pose.Joint) pose.Point {
		p, ok := set.Lookup(j, pose.DefaultMinVisibility)
		require.True(t, ok)
		return p
	}

	assert.InDelta(t, 85, pose.Angle(pt(pose.LeftHip), pt(pose.LeftKnee), pt(pose.LeftAnkle)), 1e-6)
	assert.InDelta(t, 130, pose.Angle(pt(pose.LeftShoulder), pt(pose.LeftHip), pt(pose.LeftKnee)), 1e-6)
	assert.InDelta(t, 120, pose.Angle(pt(pose.LeftHip), pt(pose.LeftShoulder), pt(pose.LeftElbow)), 1e-6)
	assert.InDelta(t, 95, pose.Angle(pt(pose.LeftShoulder), pt(pose.LeftElbow), pt(pose.LeftWrist)), 1e-6)
}
