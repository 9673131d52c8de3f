package filter

import "github.com/ayusman/mudra/internal/landmark"

// Point filters a 3D point by running one scalar filter per coordinate.
type Point struct {
	x, y, z *OneEuro
}

// NewPoint creates a 3D point filter with the given preset.
func NewPoint(preset Preset) *Point {
	return &Point{
		x: New(preset),
		y: New(preset),
		z: New(preset),
	}
}

// Filter smooths one point sample taken at the given timestamp.
func (p *Point) Filter(pt landmark.Point3D, timestampMs int64) landmark.Point3D {
	return landmark.Point3D{
		X: p.x.Filter(pt.X, timestampMs),
		Y: p.y.Filter(pt.Y, timestampMs),
		Z: p.z.Filter(pt.Z, timestampMs),
	}
}

// Reset discards the history of all three coordinate filters.
func (p *Point) Reset() {
	p.x.Reset()
	p.y.Reset()
	p.z.Reset()
}

// Landmarks filters a full 21-point hand, one point filter per landmark.
// One instance owns the filter state for exactly one tracked hand.
type Landmarks struct {
	points [landmark.NumLandmarks]*Point
}

// NewLandmarks creates a hand landmark filter with the given preset.
func NewLandmarks(preset Preset) *Landmarks {
	f := &Landmarks{}
	for i := range f.points {
		f.points[i] = NewPoint(preset)
	}
	return f
}

// Filter returns a copy of the hand with all 21 landmark points smoothed.
// Auxiliary fields (handedness, score, ray, grab strength) pass through
// untouched.
func (f *Landmarks) Filter(hand landmark.Hand, timestampMs int64) landmark.Hand {
	out := hand
	for i := 0; i < landmark.NumLandmarks; i++ {
		out.Points[i] = f.points[i].Filter(hand.Points[i], timestampMs)
	}
	return out
}

// Reset discards the history of all landmark filters.
func (f *Landmarks) Reset() {
	for _, p := range f.points {
		p.Reset()
	}
}
