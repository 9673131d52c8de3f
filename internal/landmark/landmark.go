// Package landmark provides hand landmark types and per-frame landmark sources
// for the Mudra gesture control engine.
package landmark

import "math"

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point with x, y, z coordinates.
// X and Y are in normalized image space ([0,1], y down); Z is sensor-native.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Ray is an optional pinch-point shortcut supplied by depth-camera sources.
// When valid, Origin is preferred over raw landmarks as the pinch anchor and
// its Z as the depth reading.
type Ray struct {
	Origin    Point3D `json:"origin"`
	Direction Point3D `json:"direction"`
	Strength  float64 `json:"strength"`
	Valid     bool    `json:"valid"`
}

// Hand represents the 21 landmarks of one detected hand plus per-hand
// auxiliary signals a source may provide.
type Hand struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`

	// Ray is set by sources that compute their own pinch ray (phone depth
	// cameras). Nil for plain webcam sources.
	Ray *Ray `json:"ray,omitempty"`

	// GrabStrength is a source-precomputed grab scalar in [0,1], if any.
	GrabStrength *float64 `json:"grab_strength,omitempty"`
}

// Distance returns the Euclidean distance between two landmark points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
