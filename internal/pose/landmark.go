package pose

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultMinVisibility is the visibility below which a landmark counts as missing.
const DefaultMinVisibility = 0.5

// Landmark is one detected keypoint. X and Y are normalized image coordinates;
// Z is carried through but never used for angles. Visibility is nil when the
// detector did not report a confidence.
type Landmark struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z,omitempty"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// Point drops the depth coordinate.
func (l Landmark) Point() Point {
	return Point{X: l.X, Y: l.Y}
}

// Visible reports whether the landmark meets minVisibility. Landmarks
// without a visibility score are always visible.
func (l Landmark) Visible(minVisibility float64) bool {
	return l.Visibility == nil || *l.Visibility >= minVisibility
}

// LandmarkSet holds the keypoints detected in a single frame. A joint that is
// not in the map was not detected.
//
// It decodes from either the MediaPipe list form, where the array index is the
// joint and null marks an undetected joint:
//
//	[{"x":0.51,"y":0.22,"visibility":0.99}, null, ...]
//
// or an object keyed by joint name:
//
//	{"left_knee":{"x":0.5,"y":0.7}, "left_hip":{"x":0.5,"y":0.5}}
//
// It always encodes to the object form.
type LandmarkSet map[Joint]Landmark

// Lookup returns the 2D position of j if it was detected with sufficient visibility.
func (s LandmarkSet) Lookup(j Joint, minVisibility float64) (Point, bool) {
	lm, ok := s[j]
	if !ok || !lm.Visible(minVisibility) {
		return Point{}, false
	}
	return lm.Point(), true
}

// MarshalJSON implements json.Marshaler.
func (s LandmarkSet) MarshalJSON() ([]byte, error) {
	named := make(map[string]Landmark, len(s))
	for j, lm := range s {
		named[j.String()] = lm
	}
	return json.Marshal(named)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *LandmarkSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	set := LandmarkSet{}
	if len(data) > 0 && data[0] == '[' {
		var list []*Landmark
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decoding landmark list: %w", err)
		}
		if len(list) > NumJoints {
			return fmt.Errorf("landmark list has %d entries, max %d", len(list), NumJoints)
		}
		for i, lm := range list {
			if lm != nil {
				set[Joint(i)] = *lm
			}
		}
		*s = set
		return nil
	}

	var named map[string]*Landmark
	if err := json.Unmarshal(data, &named); err != nil {
		return fmt.Errorf("decoding landmark object: %w", err)
	}
	for name, lm := range named {
		j, err := ParseJoint(name)
		if err != nil {
			return err
		}
		if lm != nil {
			set[j] = *lm
		}
	}
	*s = set
	return nil
}
