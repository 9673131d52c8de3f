// Package control turns per-frame pose metrics into hysteresis-gated
// manipulation commands: pan, zoom, rotate, and point-and-pinch selection.
package control

// Config holds the policy constants for the control engine: acquisition
// thresholds, hysteresis pairs, gains, and timing windows. All values are
// empirically tuned and exposed here rather than hard-coded so they can be
// retuned per camera/sensor.
type Config struct {
	// PreferredHand is used when both hands qualify ("Left" or "Right").
	PreferredHand string

	// Acquisition pose thresholds (open palm toward the sensor).
	SpreadThreshold float64
	PalmThreshold   float64
	ConfidenceFloor float64

	// RequiredFrames is how many consecutive qualifying frames it takes to
	// move from candidate to locked. Any disqualifying frame resets the
	// counter to zero.
	RequiredFrames int

	// GraceMs is how long a lock survives tracking dropout before
	// reverting to idle.
	GraceMs int64

	// Grab hysteresis pair: the grab metric must rise above GrabOn to
	// enter the grabbed sub-state and fall below GrabOff to leave it.
	GrabOn  float64
	GrabOff float64

	// Single-hand pan gains (screen displacement to world units). Screen Y
	// grows downward, so the vertical gain is applied sign-flipped.
	PanGainX float64
	PanGainY float64

	// Depth-driven push/pull: displacement beyond the dead zone maps to a
	// Z pan delta and a small zoom delta.
	DepthDeadZone float64
	DepthPanGain  float64
	DepthZoomGain float64

	// Bimanual estimator.
	PinchFloor       float64 // minimum pinch strength on both hands
	MinPinchDistance float64 // denominator clamp for the distance ratio
	ZoomSpeed        float64
	RotateSpeed      float64
	BimanualPanGain  float64
	SmoothFactor     float64 // per-frame exponential follow toward targets

	// Target picker.
	SelectRadius float64 // screen-space hover radius
	ActivateOn   float64 // pinch threshold for edge-triggered selection
	DebounceMs   int64   // minimum interval between two activations
}

// DefaultConfig returns the tuning used for ~60 Hz webcam tracking in
// normalized screen coordinates.
func DefaultConfig() Config {
	return Config{
		PreferredHand: "Right",

		SpreadThreshold: 0.70,
		PalmThreshold:   0.50,
		ConfidenceFloor: 0.50,
		RequiredFrames:  4,
		GraceMs:         350,

		GrabOn:  0.72,
		GrabOff: 0.45,

		PanGainX: 1.6,
		PanGainY: 1.2,

		DepthDeadZone: 0.015,
		DepthPanGain:  2.0,
		DepthZoomGain: 0.35,

		PinchFloor:       0.60,
		MinPinchDistance: 0.02,
		ZoomSpeed:        1.0,
		RotateSpeed:      1.0,
		BimanualPanGain:  1.5,
		SmoothFactor:     0.35,

		SelectRadius: 0.08,
		ActivateOn:   0.80,
		DebounceMs:   400,
	}
}
