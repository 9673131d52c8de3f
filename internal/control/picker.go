package control

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// Target is one selectable scene object with its current screen-space
// projected position, refreshed by the caller every frame.
type Target struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Picker maps a screen-space anchor point to the nearest selectable target
// within a fixed radius, with edge-triggered, debounced activation.
type Picker struct {
	cfg        Config
	hoverID    string
	prevActive bool

	// fired distinguishes "never fired" from "fired at lastFireMs"; the
	// debounce subtraction only runs once lastFireMs is a real timestamp.
	fired      bool
	lastFireMs int64
}

// NewPicker creates an empty picker with the given configuration.
func NewPicker(cfg Config) *Picker {
	return &Picker{cfg: cfg}
}

// HoverID returns the currently hovered target id, or "" when none.
func (p *Picker) HoverID() string {
	return p.hoverID
}

// Reset clears hover and edge state. The debounce clock is preserved so a
// reset cannot be used to sneak in a double-fire.
func (p *Picker) Reset() {
	p.hoverID = ""
	p.prevActive = false
}

// Advance updates hover for this frame and returns the hovered target id
// plus the id selected this frame ("" if none). Selection fires only on the
// frame the activation signal crosses its threshold upward while a target is
// hovered, and never within the debounce interval of a previous fire.
func (p *Picker) Advance(anchor landmark.Point3D, targets []Target, activation float64, nowMs int64) (hoverID, selectedID string) {
	// Hover updates every frame so the UI can show pre-selection feedback
	// even without activation.
	p.hoverID = nearestWithin(anchor, targets, p.cfg.SelectRadius)

	active := activation >= p.cfg.ActivateOn
	rising := active && !p.prevActive
	p.prevActive = active

	if rising && p.hoverID != "" && (!p.fired || nowMs-p.lastFireMs >= p.cfg.DebounceMs) {
		p.fired = true
		p.lastFireMs = nowMs
		return p.hoverID, p.hoverID
	}

	return p.hoverID, ""
}

// nearestWithin returns the id of the minimum-distance target, but only if
// that distance is within the selection radius.
func nearestWithin(anchor landmark.Point3D, targets []Target, radius float64) string {
	bestID := ""
	bestDist := radius

	for _, t := range targets {
		d := math.Hypot(t.X-anchor.X, t.Y-anchor.Y)
		if d <= bestDist {
			bestDist = d
			bestID = t.ID
		}
	}

	return bestID
}
