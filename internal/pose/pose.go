// Package pose reduces a filtered hand landmark set into a compact record of
// normalized gesture metrics.
package pose

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// Metrics is the per-frame derived pose record. All values except PalmFacing
// and Depth are normalized to [0,1]; PalmFacing is in [-1,1] and Depth is in
// the source's native units (see landmark.DepthUnit).
type Metrics struct {
	Spread     float64 `json:"spread"`
	PalmFacing float64 `json:"palm_facing"`
	Point      float64 `json:"point"`
	Pinch      float64 `json:"pinch"`
	Grab       float64 `json:"grab"`
	Depth      float64 `json:"depth"`
	Confidence float64 `json:"confidence"`
}

// Config holds the empirically tuned normalization ranges for metric
// extraction. These are policy constants, likely to need retuning per
// camera/sensor.
type Config struct {
	// SpreadMin/SpreadMax map mean fingertip-to-palm distance into [0,1].
	SpreadMin float64
	SpreadMax float64

	// PalmFacingScale divides the wrist-to-knuckle vertical offset.
	PalmFacingScale float64

	// ExtensionSpan normalizes per-finger extension
	// (tip-to-wrist minus knuckle-to-wrist distance).
	ExtensionSpan float64

	// PointMargin is how far the index extension must exceed the mean
	// extension of the other fingers before a pointing pose registers.
	PointMargin float64

	// PinchNear/PinchFar map thumb-to-index distance into pinch strength.
	PinchNear float64
	PinchFar  float64

	// GrabNear/GrabFar map mean fingertip-to-wrist distance into grab
	// strength (finger curl).
	GrabNear float64
	GrabFar  float64

	// DefaultConfidence is reported when the source supplies no score.
	DefaultConfidence float64
}

// DefaultConfig returns extraction thresholds tuned for normalized image
// coordinates from a webcam pose model.
func DefaultConfig() Config {
	return Config{
		SpreadMin:         0.10,
		SpreadMax:         0.30,
		PalmFacingScale:   0.12,
		ExtensionSpan:     0.15,
		PointMargin:       0.30,
		PinchNear:         0.03,
		PinchFar:          0.15,
		GrabNear:          0.15,
		GrabFar:           0.40,
		DefaultConfidence: 0.5,
	}
}

// fingertips and their knuckles for the four non-thumb fingers.
var fingerTips = [4]int{landmark.IndexTip, landmark.MiddleTip, landmark.RingTip, landmark.PinkyTip}
var fingerMCPs = [4]int{landmark.IndexMCP, landmark.MiddleMCP, landmark.RingMCP, landmark.PinkyMCP}

// Extract computes the pose metrics for one hand. It is a pure function: no
// state is retained between calls. The caller must supply a complete, valid
// hand; missing hands are rejected before this point.
func Extract(hand *landmark.Hand, cfg Config) Metrics {
	m := Metrics{
		Spread:     spread(hand, cfg),
		PalmFacing: palmFacing(hand, cfg),
		Point:      pointScore(hand, cfg),
		Depth:      depth(hand),
		Confidence: confidence(hand, cfg),
	}
	m.Pinch = pinch(hand, cfg)
	m.Grab = grab(hand, cfg)

	// A pointing hand must never be misread as a fist: pointing-for-
	// selection and fist-for-manipulation stay unambiguous at this level.
	if m.Point > 0.5 {
		m.Grab = 0
	}

	return m
}

// spread is the mean distance from each non-thumb fingertip to the middle
// finger knuckle (a palm-center proxy), normalized into [0,1].
func spread(hand *landmark.Hand, cfg Config) float64 {
	palm := hand.Points[landmark.MiddleMCP]

	var sum float64
	for _, tip := range fingerTips {
		sum += landmark.Distance(hand.Points[tip], palm)
	}
	mean := sum / float64(len(fingerTips))

	span := math.Max(cfg.SpreadMax-cfg.SpreadMin, 1e-6)
	return clamp01((mean - cfg.SpreadMin) / span)
}

// palmFacing derives a facing score from the vertical offset between the
// wrist and the index/middle knuckles in image space (wrist below knuckles
// means the palm is presented toward the sensor).
//
// This is a 2D image-space heuristic, not a true 3D palm-normal computation;
// it can misfire at extreme camera angles.
func palmFacing(hand *landmark.Hand, cfg Config) float64 {
	wristY := hand.Points[landmark.Wrist].Y
	knuckleY := (hand.Points[landmark.IndexMCP].Y + hand.Points[landmark.MiddleMCP].Y) / 2

	scale := math.Max(cfg.PalmFacingScale, 1e-6)
	v := (wristY - knuckleY) / scale
	return math.Max(-1, math.Min(1, v))
}

// extension measures how far a finger is extended: tip-to-wrist distance
// minus knuckle-to-wrist distance, normalized into [0,1].
func extension(hand *landmark.Hand, tip, mcp int, cfg Config) float64 {
	wrist := hand.Points[landmark.Wrist]
	tipDist := landmark.Distance(hand.Points[tip], wrist)
	mcpDist := landmark.Distance(hand.Points[mcp], wrist)

	span := math.Max(cfg.ExtensionSpan, 1e-6)
	return clamp01((tipDist - mcpDist) / span)
}

// pointScore is nonzero only when the index finger's extension clearly
// exceeds the mean extension of the other three fingers.
func pointScore(hand *landmark.Hand, cfg Config) float64 {
	index := extension(hand, landmark.IndexTip, landmark.IndexMCP, cfg)

	others := extension(hand, landmark.MiddleTip, landmark.MiddleMCP, cfg) +
		extension(hand, landmark.RingTip, landmark.RingMCP, cfg) +
		extension(hand, landmark.PinkyTip, landmark.PinkyMCP, cfg)
	mean := others / 3

	lead := index - mean
	if lead <= cfg.PointMargin {
		return 0
	}
	return clamp01((lead - cfg.PointMargin) / math.Max(1-cfg.PointMargin, 1e-6))
}

// pinch is the normalized inverse distance between thumb tip and index tip.
func pinch(hand *landmark.Hand, cfg Config) float64 {
	d := landmark.Distance(hand.Points[landmark.ThumbTip], hand.Points[landmark.IndexTip])

	span := math.Max(cfg.PinchFar-cfg.PinchNear, 1e-6)
	return 1 - clamp01((d-cfg.PinchNear)/span)
}

// grab is the normalized finger curl: mean non-thumb fingertip-to-wrist
// distance mapped inversely into [0,1]. A source-precomputed grab strength,
// when present, is trusted over the landmark estimate.
func grab(hand *landmark.Hand, cfg Config) float64 {
	if hand.GrabStrength != nil {
		return clamp01(*hand.GrabStrength)
	}

	wrist := hand.Points[landmark.Wrist]
	var sum float64
	for _, tip := range fingerTips {
		sum += landmark.Distance(hand.Points[tip], wrist)
	}
	mean := sum / float64(len(fingerTips))

	span := math.Max(cfg.GrabFar-cfg.GrabNear, 1e-6)
	return 1 - clamp01((mean-cfg.GrabNear)/span)
}

// depth reads the best available depth source: the ray origin when the
// source provides a valid pinch ray, else the raw wrist z. Units are
// sensor-dependent; consumers must consult the frame's DepthUnit.
func depth(hand *landmark.Hand) float64 {
	if hand.Ray != nil && hand.Ray.Valid {
		return hand.Ray.Origin.Z
	}
	return hand.Points[landmark.Wrist].Z
}

func confidence(hand *landmark.Hand, cfg Config) float64 {
	if hand.Score > 0 {
		return hand.Score
	}
	return cfg.DefaultConfidence
}

// PinchPoint returns the screen-space anchor for pinch-driven interaction:
// the source-supplied ray origin when valid, else the midpoint of thumb tip
// and index tip.
func PinchPoint(hand *landmark.Hand) landmark.Point3D {
	if hand.Ray != nil && hand.Ray.Valid {
		return hand.Ray.Origin
	}

	thumb := hand.Points[landmark.ThumbTip]
	index := hand.Points[landmark.IndexTip]
	return landmark.Point3D{
		X: (thumb.X + index.X) / 2,
		Y: (thumb.Y + index.Y) / 2,
		Z: (thumb.Z + index.Z) / 2,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
