package control

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/landmark"
)

func pt(x, y float64) landmark.Point3D {
	return landmark.Point3D{X: x, Y: y}
}

// snappyConfig disables output smoothing so delta math can be checked
// exactly against the functional forms.
func snappyConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothFactor = 1.0
	return cfg
}

func TestBimanual_AnchorOnFirstQualifyingFrame(t *testing.T) {
	b := NewBimanual(snappyConfig())

	d, active, started := b.Advance(pt(0.4, 0.5), pt(0.5, 0.5), 0.9, 0.9)
	if !active || !started {
		t.Fatalf("active=%v started=%v, want both true on the anchor frame", active, started)
	}
	if d != (Deltas{}) {
		t.Errorf("anchor frame deltas = %+v, want zero", d)
	}

	a := b.Anchor()
	if a == nil {
		t.Fatal("expected an anchor after a qualifying frame")
	}
	if math.Abs(a.PinchDistance-0.1) > 1e-9 {
		t.Errorf("anchor distance = %f, want 0.1", a.PinchDistance)
	}
	if math.Abs(a.SegmentAngle) > 1e-9 {
		t.Errorf("anchor angle = %f, want 0", a.SegmentAngle)
	}
	if math.Abs(a.CenterX-0.45) > 1e-9 || math.Abs(a.CenterY-0.5) > 1e-9 {
		t.Errorf("anchor center = (%f, %f), want (0.45, 0.5)", a.CenterX, a.CenterY)
	}
}

func TestBimanual_WeakPinchStaysInactive(t *testing.T) {
	b := NewBimanual(snappyConfig())

	// Either hand below the pinch floor keeps the estimator inactive.
	if _, active, _ := b.Advance(pt(0.4, 0.5), pt(0.5, 0.5), 0.5, 0.9); active {
		t.Error("active with left pinch below floor")
	}
	if _, active, _ := b.Advance(pt(0.4, 0.5), pt(0.5, 0.5), 0.9, 0.5); active {
		t.Error("active with right pinch below floor")
	}
	if b.Active() {
		t.Error("estimator holds an anchor without a qualifying pinch pair")
	}
}

func TestBimanual_ZoomAndRotateFunctionalForm(t *testing.T) {
	// Hands separate from 0.10 to 0.20 apart while the segment rotates
	// from 0° to 30°: zoom must be ln(2) * speed and rotation 30° * speed.
	cfg := snappyConfig()
	b := NewBimanual(cfg)

	b.Advance(pt(0.4, 0.5), pt(0.5, 0.5), 0.9, 0.9) // anchor: dist 0.1, angle 0

	c := pt(0.4+0.2*math.Cos(math.Pi/6), 0.5+0.2*math.Sin(math.Pi/6))
	d, active, started := b.Advance(pt(0.4, 0.5), c, 0.9, 0.9)
	if !active || started {
		t.Fatalf("active=%v started=%v, want active continuation", active, started)
	}

	wantZoom := math.Log(2) * cfg.ZoomSpeed
	if math.Abs(d.Zoom-wantZoom) > 1e-9 {
		t.Errorf("zoom = %f, want ln(2)*speed = %f", d.Zoom, wantZoom)
	}
	wantRotate := math.Pi / 6 * cfg.RotateSpeed
	if math.Abs(d.RotateZ-wantRotate) > 1e-9 {
		t.Errorf("rotate = %f, want 30deg*speed = %f", d.RotateZ, wantRotate)
	}
}

func TestBimanual_RotationShortestPath(t *testing.T) {
	// Anchor angle 89 degrees, current angle -89 degrees: the delta must be
	// the 2-degree shortest path, never a 178-degree jump.
	cfg := snappyConfig()
	b := NewBimanual(cfg)

	deg := math.Pi / 180
	b.Advance(pt(0, 0), pt(math.Cos(89*deg), math.Sin(89*deg)), 0.9, 0.9)
	d, _, _ := b.Advance(pt(0, 0), pt(math.Cos(-89*deg), math.Sin(-89*deg)), 0.9, 0.9)

	if math.Abs(d.RotateZ-2*deg) > 1e-9 {
		t.Errorf("rotate = %f rad (%.2f deg), want ~2 deg via shortest path",
			d.RotateZ, d.RotateZ/deg)
	}
}

func TestBimanual_CenterPanWithScreenYFlip(t *testing.T) {
	cfg := snappyConfig()
	b := NewBimanual(cfg)

	b.Advance(pt(0.4, 0.5), pt(0.5, 0.5), 0.9, 0.9)
	// Both hands translate right and up by the same amount: pure pan.
	d, _, _ := b.Advance(pt(0.5, 0.4), pt(0.6, 0.4), 0.9, 0.9)

	if math.Abs(d.PanX-0.1*cfg.BimanualPanGain) > 1e-9 {
		t.Errorf("panX = %f, want %f", d.PanX, 0.1*cfg.BimanualPanGain)
	}
	if math.Abs(d.PanY-0.1*cfg.BimanualPanGain) > 1e-9 {
		t.Errorf("panY = %f, want %f (screen Y flipped)", d.PanY, 0.1*cfg.BimanualPanGain)
	}
	if math.Abs(d.Zoom) > 1e-9 || math.Abs(d.RotateZ) > 1e-9 {
		t.Errorf("pure pan produced zoom=%f rotate=%f", d.Zoom, d.RotateZ)
	}
}

func TestBimanual_AnchorDiscardedAndRetaken(t *testing.T) {
	b := NewBimanual(snappyConfig())

	b.Advance(pt(0.4, 0.5), pt(0.5, 0.5), 0.9, 0.9)
	b.Advance(pt(0.35, 0.5), pt(0.55, 0.5), 0.9, 0.9)

	// One weak frame ends the session instantly.
	_, active, _ := b.Advance(pt(0.35, 0.5), pt(0.55, 0.5), 0.9, 0.3)
	if active || b.Active() {
		t.Fatal("anchor must be discarded the moment either pinch drops")
	}

	// Re-entry takes a brand-new anchor at the current geometry: the
	// previously accumulated zoom does not carry over.
	d, active, started := b.Advance(pt(0.35, 0.5), pt(0.55, 0.5), 0.9, 0.9)
	if !active || !started {
		t.Fatalf("active=%v started=%v, want a fresh anchor on re-entry", active, started)
	}
	if d != (Deltas{}) {
		t.Errorf("re-entry deltas = %+v, want zero against the new anchor", d)
	}
	if got := b.Anchor().PinchDistance; math.Abs(got-0.2) > 1e-9 {
		t.Errorf("new anchor distance = %f, want 0.2 (current geometry)", got)
	}
}

func TestBimanual_DegeneratePinchDistanceClamped(t *testing.T) {
	cfg := snappyConfig()
	b := NewBimanual(cfg)

	// Both pinch points at the same spot: distance clamps to the minimum
	// instead of producing a -Inf zoom.
	b.Advance(pt(0.5, 0.5), pt(0.6, 0.5), 0.9, 0.9)
	d, _, _ := b.Advance(pt(0.5, 0.5), pt(0.5, 0.5), 0.9, 0.9)

	if math.IsInf(d.Zoom, 0) || math.IsNaN(d.Zoom) {
		t.Fatalf("zoom = %f, want finite", d.Zoom)
	}
	wantZoom := math.Log(cfg.MinPinchDistance/0.1) * cfg.ZoomSpeed
	if math.Abs(d.Zoom-wantZoom) > 1e-9 {
		t.Errorf("zoom = %f, want %f from the clamped distance", d.Zoom, wantZoom)
	}
}

func TestBimanual_OutputSmoothing(t *testing.T) {
	// With the default smoothing factor, a step change in geometry moves
	// the output only partway toward its target each frame.
	cfg := DefaultConfig()
	b := NewBimanual(cfg)

	b.Advance(pt(0.4, 0.5), pt(0.5, 0.5), 0.9, 0.9)

	target := math.Log(2) * cfg.ZoomSpeed
	d, _, _ := b.Advance(pt(0.4, 0.5), pt(0.6, 0.5), 0.9, 0.9)
	if math.Abs(d.Zoom-target*cfg.SmoothFactor) > 1e-9 {
		t.Fatalf("first smoothed zoom = %f, want %f", d.Zoom, target*cfg.SmoothFactor)
	}

	// Holding the pose converges monotonically toward the target.
	prev := d.Zoom
	for i := 0; i < 30; i++ {
		d, _, _ = b.Advance(pt(0.4, 0.5), pt(0.6, 0.5), 0.9, 0.9)
		if d.Zoom < prev {
			t.Fatalf("frame %d: smoothed zoom regressed from %f to %f", i, prev, d.Zoom)
		}
		prev = d.Zoom
	}
	if math.Abs(prev-target) > 1e-3 {
		t.Errorf("smoothed zoom settled at %f, want ~%f", prev, target)
	}
}
