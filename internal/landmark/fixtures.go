package landmark

// Preset hand poses for tests and the mock detector. Coordinates are in
// normalized image space: x right, y down, wrist near the bottom of frame.

// OpenPalmHand returns a Hand presenting an open palm toward the sensor.
// All fingers are extended outward; this is the acquisition pose.
func OpenPalmHand() Hand {
	hand := Hand{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist at base
	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	hand.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	hand.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	hand.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	hand.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	hand.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	hand.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	hand.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	hand.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	hand.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	hand.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	hand.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward
	hand.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	hand.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	hand.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	hand.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward
	hand.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	hand.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	hand.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	hand.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return hand
}

// FistHand returns a Hand with all fingers curled into a fist, thumb wrapped
// across the curled fingers. This is the grab pose.
func FistHand() Hand {
	hand := Hand{
		Handedness: "Right",
		Score:      0.95,
	}

	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb wrapped over the curled fingers
	hand.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	hand.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: 0.01}
	hand.Points[ThumbIP] = Point3D{X: 0.59, Y: 0.66, Z: 0.01}
	hand.Points[ThumbTip] = Point3D{X: 0.60, Y: 0.62, Z: 0.01}

	// Index finger curled (knuckles close together, tip near palm)
	hand.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	hand.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	hand.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	hand.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	// Middle finger curled
	hand.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	hand.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	hand.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	hand.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	// Ring finger curled
	hand.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	hand.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	hand.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	hand.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	// Pinky finger curled
	hand.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	hand.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	hand.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	hand.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return hand
}

// PointingHand returns a Hand with the index finger extended and all other
// fingers curled. This is the selection pose.
func PointingHand() Hand {
	hand := FistHand()

	// Extend the index finger upward
	hand.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	hand.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	hand.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Thumb along the side rather than wrapped
	hand.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72, Z: 0.01}
	hand.Points[ThumbIP] = Point3D{X: 0.63, Y: 0.70, Z: 0.01}
	hand.Points[ThumbTip] = Point3D{X: 0.66, Y: 0.68, Z: 0.01}

	return hand
}

// PinchHand returns a Hand with thumb tip and index tip touching and the
// remaining fingers extended. This is the bimanual/activation pose.
func PinchHand() Hand {
	hand := OpenPalmHand()

	// Bring index tip down and thumb tip up until they touch
	hand.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	hand.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.52, Z: 0.02}
	hand.Points[ThumbTip] = Point3D{X: 0.57, Y: 0.46, Z: 0.01}

	return hand
}

// Translated returns a copy of the hand with every landmark shifted by
// (dx, dy). Useful for scripting motion in tests.
func Translated(h Hand, dx, dy float64) Hand {
	out := h
	for i := 0; i < NumLandmarks; i++ {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	if h.Ray != nil {
		ray := *h.Ray
		ray.Origin.X += dx
		ray.Origin.Y += dy
		out.Ray = &ray
	}
	return out
}

// WithSide returns a copy of the hand relabelled to the given handedness.
func WithSide(h Hand, side string) Hand {
	out := h
	out.Handedness = side
	return out
}
