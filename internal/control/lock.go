package control

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/pose"
)

// Phase is the lock state machine's coarse phase.
type Phase string

const (
	// PhaseIdle means no hand is controlling the scene.
	PhaseIdle Phase = "idle"
	// PhaseCandidate means a hand is holding the acquisition pose but has
	// not yet held it long enough to lock.
	PhaseCandidate Phase = "candidate"
	// PhaseLocked means a hand owns the control session.
	PhaseLocked Phase = "locked"
)

// GrabAnchor is the wrist screen position and depth recorded on the first
// frame of a grab. Subsequent grabbed frames measure displacement from it.
type GrabAnchor struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Depth float64 `json:"depth"`
}

// LockState is a snapshot of the state machine, exposed for UI affordances
// ("acquiring", "locked", "grabbed" badges) and diagnostics.
type LockState struct {
	Phase             Phase            `json:"phase"`
	Hand              string           `json:"hand,omitempty"`
	ConsecutiveFrames int              `json:"consecutive_frames,omitempty"`
	LockedAtMs        int64            `json:"locked_at_ms,omitempty"`
	NeutralWrist      landmark.Point3D `json:"neutral_wrist,omitempty"`
	Grabbed           bool             `json:"grabbed"`
	GrabAnchor        *GrabAnchor      `json:"grab_anchor,omitempty"`
	LastSeenMs        int64            `json:"last_seen_ms,omitempty"`
	Metrics           pose.Metrics     `json:"metrics,omitempty"`
}

// Deltas is the per-frame manipulation output, consumed immediately by the
// scene transform. Pan and zoom values are displacements measured from the
// grab/bimanual anchor; the consumer applies them against the world snapshot
// it took when GrabStartedThisFrame (or the bimanual start) fired.
type Deltas struct {
	Zoom                 float64 `json:"zoom"`
	PanX                 float64 `json:"pan_x"`
	PanY                 float64 `json:"pan_y"`
	PanZ                 float64 `json:"pan_z"`
	RotateZ              float64 `json:"rotate_z"`
	GrabStartedThisFrame bool    `json:"grab_started_this_frame"`
}

// Lock is the single-hand acquisition/lock/grab state machine. Exactly one
// instance exists per control session; it is advanced once per frame and is
// not safe for concurrent use.
type Lock struct {
	cfg   Config
	state LockState
}

// NewLock creates an idle lock machine with the given configuration.
func NewLock(cfg Config) *Lock {
	return &Lock{
		cfg:   cfg,
		state: LockState{Phase: PhaseIdle},
	}
}

// State returns a snapshot of the current lock state.
func (l *Lock) State() LockState {
	return l.state
}

// Reset drops the machine back to idle immediately.
func (l *Lock) Reset() {
	l.state = LockState{Phase: PhaseIdle}
}

// qualifies reports whether the metrics satisfy the acquisition pose:
// spread palm presented toward the sensor with usable confidence.
func (l *Lock) qualifies(m *pose.Metrics) bool {
	return m.Spread > l.cfg.SpreadThreshold &&
		m.PalmFacing > l.cfg.PalmThreshold &&
		m.Confidence > l.cfg.ConfidenceFloor
}

// Advance processes one frame. metrics is nil when no usable hand was
// observed this frame; side and wrist describe the observed hand otherwise.
// The returned deltas are zero unless the machine is in the grabbed
// sub-state.
func (l *Lock) Advance(metrics *pose.Metrics, side string, wrist landmark.Point3D, nowMs int64) Deltas {
	if metrics == nil {
		return l.advanceAbsent(nowMs)
	}

	switch l.state.Phase {
	case PhaseIdle:
		if l.qualifies(metrics) {
			l.state = LockState{
				Phase:             PhaseCandidate,
				Hand:              side,
				ConsecutiveFrames: 1,
				Metrics:           *metrics,
				LastSeenMs:        nowMs,
			}
			l.maybeLock(side, wrist, nowMs)
		}
		return Deltas{}

	case PhaseCandidate:
		if !l.qualifies(metrics) {
			// No partial credit: the counter resets, it does not decay.
			l.Reset()
			return Deltas{}
		}
		l.state.ConsecutiveFrames++
		l.state.Hand = side
		l.state.Metrics = *metrics
		l.state.LastSeenMs = nowMs
		l.maybeLock(side, wrist, nowMs)
		return Deltas{}

	case PhaseLocked:
		return l.advanceLocked(metrics, wrist, nowMs)
	}

	return Deltas{}
}

// advanceAbsent handles a frame with no usable hand: candidates reset
// immediately, locks persist for the grace window so the UI does not flicker
// during brief tracking dropout.
func (l *Lock) advanceAbsent(nowMs int64) Deltas {
	switch l.state.Phase {
	case PhaseCandidate:
		l.Reset()
	case PhaseLocked:
		if nowMs-l.state.LastSeenMs > l.cfg.GraceMs {
			l.Reset()
		}
	}
	return Deltas{}
}

// maybeLock promotes a candidate that has held the pose long enough,
// capturing the hand side and its neutral wrist pose.
func (l *Lock) maybeLock(side string, wrist landmark.Point3D, nowMs int64) {
	if l.state.ConsecutiveFrames < l.cfg.RequiredFrames {
		return
	}
	l.state.Phase = PhaseLocked
	l.state.Hand = side
	l.state.LockedAtMs = nowMs
	l.state.NeutralWrist = wrist
	l.state.Grabbed = false
	l.state.GrabAnchor = nil
}

// advanceLocked runs the grab hysteresis and, while grabbed, computes
// anchor-relative displacement deltas.
func (l *Lock) advanceLocked(metrics *pose.Metrics, wrist landmark.Point3D, nowMs int64) Deltas {
	l.state.Metrics = *metrics
	l.state.LastSeenMs = nowMs

	var out Deltas

	if !l.state.Grabbed {
		if metrics.Grab >= l.cfg.GrabOn {
			// Rising edge: record the anchor so the consumer can
			// snapshot whatever world position it will manipulate.
			l.state.Grabbed = true
			l.state.GrabAnchor = &GrabAnchor{X: wrist.X, Y: wrist.Y, Depth: metrics.Depth}
			out.GrabStartedThisFrame = true
		}
	} else if metrics.Grab <= l.cfg.GrabOff {
		// Falling edge of the hysteresis pair. Between GrabOff and
		// GrabOn the sub-state holds whatever it already was.
		l.state.Grabbed = false
		l.state.GrabAnchor = nil
	}

	if l.state.Grabbed && l.state.GrabAnchor != nil {
		a := l.state.GrabAnchor
		out.PanX = (wrist.X - a.X) * l.cfg.PanGainX
		out.PanY = -(wrist.Y - a.Y) * l.cfg.PanGainY // screen Y is down

		// Depth displacement beyond the dead zone drives push/pull.
		dd := metrics.Depth - a.Depth
		if math.Abs(dd) > l.cfg.DepthDeadZone {
			eff := dd - math.Copysign(l.cfg.DepthDeadZone, dd)
			out.PanZ = eff * l.cfg.DepthPanGain
			out.Zoom = eff * l.cfg.DepthZoomGain
		}
	}

	return out
}
