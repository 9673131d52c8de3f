package control

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// BimanualAnchor is the baseline two-hand pose snapshot against which
// ongoing pan/zoom/rotate deltas are measured. It lives only while the
// bimanual pose persists uninterrupted.
type BimanualAnchor struct {
	PinchDistance float64 `json:"pinch_distance"`
	SegmentAngle  float64 `json:"segment_angle"` // canonical half-turn range
	CenterX       float64 `json:"center_x"`
	CenterY       float64 `json:"center_y"`
}

// Bimanual estimates pan/zoom/rotate deltas from the two pinch points while
// both hands hold a qualifying pinch. Its output takes priority over the
// single-hand lock machine whenever it is active.
type Bimanual struct {
	cfg    Config
	anchor *BimanualAnchor

	// Smoothed outputs: each frame moves them exponentially toward the
	// anchor-relative target rather than snapping.
	zoom, rotate, panX, panY float64
}

// NewBimanual creates an inactive estimator with the given configuration.
func NewBimanual(cfg Config) *Bimanual {
	return &Bimanual{cfg: cfg}
}

// Active reports whether an anchor is currently held.
func (b *Bimanual) Active() bool {
	return b.anchor != nil
}

// Anchor returns the current anchor, or nil when inactive.
func (b *Bimanual) Anchor() *BimanualAnchor {
	return b.anchor
}

// Reset discards the anchor and all smoothed output. Re-entry always starts
// a brand-new anchor; no momentum carries across a gap.
func (b *Bimanual) Reset() {
	b.anchor = nil
	b.zoom, b.rotate, b.panX, b.panY = 0, 0, 0, 0
}

// Advance processes one frame given both hands' pinch points and strengths.
// It returns the smoothed deltas, whether the estimator is active, and
// whether a new anchor was taken this frame (the consumer's cue to snapshot
// the world transform it will manipulate).
func (b *Bimanual) Advance(a, c landmark.Point3D, strengthA, strengthC float64) (Deltas, bool, bool) {
	// The instant either hand drops the pinch, the anchor is gone.
	if strengthA < b.cfg.PinchFloor || strengthC < b.cfg.PinchFloor {
		b.Reset()
		return Deltas{}, false, false
	}

	dx := c.X - a.X
	dy := c.Y - a.Y
	dist := math.Max(math.Hypot(dx, dy), b.cfg.MinPinchDistance)
	angle := canonicalHalfTurn(math.Atan2(dy, dx))
	centerX := (a.X + c.X) / 2
	centerY := (a.Y + c.Y) / 2

	if b.anchor == nil {
		b.anchor = &BimanualAnchor{
			PinchDistance: dist,
			SegmentAngle:  angle,
			CenterX:       centerX,
			CenterY:       centerY,
		}
		b.zoom, b.rotate, b.panX, b.panY = 0, 0, 0, 0
		return Deltas{}, true, true
	}

	// Log scaling makes pinch-in and pinch-out symmetric in perceived
	// speed; the anchor distance is already clamped away from zero.
	zoomTarget := math.Log(dist/b.anchor.PinchDistance) * b.cfg.ZoomSpeed

	// Shortest-path angle difference within the half-turn range, so a
	// hand swap or ±π wraparound never causes a discontinuous jump.
	rotateTarget := canonicalHalfTurn(angle-b.anchor.SegmentAngle) * b.cfg.RotateSpeed

	panXTarget := (centerX - b.anchor.CenterX) * b.cfg.BimanualPanGain
	panYTarget := -(centerY - b.anchor.CenterY) * b.cfg.BimanualPanGain // screen Y is down

	// Critically-damped follow toward the anchor-relative targets.
	b.zoom += (zoomTarget - b.zoom) * b.cfg.SmoothFactor
	b.rotate += (rotateTarget - b.rotate) * b.cfg.SmoothFactor
	b.panX += (panXTarget - b.panX) * b.cfg.SmoothFactor
	b.panY += (panYTarget - b.panY) * b.cfg.SmoothFactor

	return Deltas{
		Zoom:    b.zoom,
		RotateZ: b.rotate,
		PanX:    b.panX,
		PanY:    b.panY,
	}, true, false
}

// canonicalHalfTurn reduces an angle into the half-turn range (-π/2, π/2].
// The segment joining two pinch points is undirected, so angles a and a+π
// are the same pose; canonicalizing both anchors and differences keeps
// swapping which hand is "left" from ever causing a jump.
func canonicalHalfTurn(a float64) float64 {
	for a > math.Pi/2 {
		a -= math.Pi
	}
	for a <= -math.Pi/2 {
		a += math.Pi
	}
	return a
}
