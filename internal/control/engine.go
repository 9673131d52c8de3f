package control

import (
	"github.com/ayusman/mudra/internal/filter"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/pose"
)

// Output is the complete per-frame engine result, consumed by the scene
// client (deltas, selection) and the UI (metrics, lock state badges).
type Output struct {
	TimestampMs     int64         `json:"timestamp_ms"`
	Left            *pose.Metrics `json:"left,omitempty"`
	Right           *pose.Metrics `json:"right,omitempty"`
	Lock            LockState     `json:"lock"`
	Deltas          Deltas        `json:"deltas"`
	BimanualActive  bool          `json:"bimanual_active"`
	BimanualStarted bool          `json:"bimanual_started"`
	HoverID         string        `json:"hover_id,omitempty"`
	SelectedID      string        `json:"selected_id,omitempty"`
}

// handChannels owns all persistent filter state for one tracked hand. The
// whole set is reset together when the hand disappears, so stale velocity
// estimates never leak into a reacquired hand.
type handChannels struct {
	landmarks *filter.Landmarks
	pointer   *filter.Point
	pinch     *filter.OneEuro
	grab      *filter.OneEuro
	present   bool
}

func newHandChannels() *handChannels {
	return &handChannels{
		landmarks: filter.NewLandmarks(filter.LandmarkPreset),
		pointer:   filter.NewPoint(filter.PointerPreset),
		pinch:     filter.New(filter.GesturePreset),
		grab:      filter.New(filter.GesturePreset),
	}
}

func (c *handChannels) reset() {
	c.landmarks.Reset()
	c.pointer.Reset()
	c.pinch.Reset()
	c.grab.Reset()
	c.present = false
}

// handFrame is one hand's derived view of the current frame.
type handFrame struct {
	metrics    pose.Metrics
	wrist      landmark.Point3D
	pinchPoint landmark.Point3D
}

// Engine is the frame-driven gesture control core: it filters raw landmarks,
// extracts pose metrics, and runs the lock machine, bimanual estimator, and
// target picker. All state is owned by the single control loop that calls
// Advance once per render tick; the engine is not safe for concurrent use.
type Engine struct {
	cfg     Config
	poseCfg pose.Config
	hands   map[string]*handChannels

	lock     *Lock
	bimanual *Bimanual
	picker   *Picker
}

// NewEngine creates an idle engine with the given tuning.
func NewEngine(cfg Config, poseCfg pose.Config) *Engine {
	return &Engine{
		cfg:     cfg,
		poseCfg: poseCfg,
		hands: map[string]*handChannels{
			"Left":  newHandChannels(),
			"Right": newHandChannels(),
		},
		lock:     NewLock(cfg),
		bimanual: NewBimanual(cfg),
		picker:   NewPicker(cfg),
	}
}

// Reset drops all engine state: filter histories, lock, anchors, hover.
func (e *Engine) Reset() {
	for _, ch := range e.hands {
		ch.reset()
	}
	e.lock.Reset()
	e.bimanual.Reset()
	e.picker.Reset()
}

// LockState returns the current lock machine snapshot.
func (e *Engine) LockState() LockState {
	return e.lock.State()
}

// Advance processes one landmark frame and the current selectable targets.
// frame must be non-nil; a frame with no hands is the "nothing observed"
// case and degrades the machines gracefully. Never blocks.
func (e *Engine) Advance(frame *landmark.Frame, targets []Target) Output {
	ts := frame.TimestampMs
	out := Output{TimestampMs: ts}

	observed := make(map[string]*handFrame, 2)
	for _, side := range [...]string{"Left", "Right"} {
		ch := e.hands[side]
		hand := frame.HandBySide(side)
		if hand == nil {
			// Tracking lost for this hand: discard filter history so
			// reacquisition starts clean.
			if ch.present {
				ch.reset()
			}
			continue
		}

		ch.present = true
		filtered := ch.landmarks.Filter(*hand, ts)
		m := pose.Extract(&filtered, e.poseCfg)

		// Gesture-strength scalars get their own responsive filtering on
		// top of the landmark smoothing.
		m.Pinch = ch.pinch.Filter(m.Pinch, ts)
		m.Grab = ch.grab.Filter(m.Grab, ts)

		observed[side] = &handFrame{
			metrics:    m,
			wrist:      filtered.Points[landmark.Wrist],
			pinchPoint: ch.pointer.Filter(pose.PinchPoint(&filtered), ts),
		}
	}

	if hf := observed["Left"]; hf != nil {
		out.Left = &hf.metrics
	}
	if hf := observed["Right"]; hf != nil {
		out.Right = &hf.metrics
	}

	// Bimanual estimator: runs whenever both hands are observed, and its
	// output takes priority over the single-hand machine when active.
	var bimanualDeltas Deltas
	if left, right := observed["Left"], observed["Right"]; left != nil && right != nil {
		bimanualDeltas, out.BimanualActive, out.BimanualStarted = e.bimanual.Advance(
			left.pinchPoint, right.pinchPoint, left.metrics.Pinch, right.metrics.Pinch)
	} else {
		e.bimanual.Reset()
	}

	// Single-hand lock machine on the best available hand.
	var lockDeltas Deltas
	if side, hf := e.controlHand(observed); hf != nil {
		lockDeltas = e.lock.Advance(&hf.metrics, side, hf.wrist, ts)
	} else {
		lockDeltas = e.lock.Advance(nil, "", landmark.Point3D{}, ts)
	}
	out.Lock = e.lock.State()

	if out.BimanualActive {
		out.Deltas = bimanualDeltas
	} else {
		out.Deltas = lockDeltas
	}

	// Picker: only a locked, non-grabbing hand points at targets.
	if out.Lock.Phase == PhaseLocked && !out.Lock.Grabbed && !out.BimanualActive {
		if hf := observed[out.Lock.Hand]; hf != nil {
			out.HoverID, out.SelectedID = e.picker.Advance(
				hf.pinchPoint, targets, hf.metrics.Pinch, ts)
		} else {
			e.picker.Reset()
		}
	} else {
		e.picker.Reset()
	}

	return out
}

// controlHand picks the hand that drives the lock machine: the hand that
// already owns the lock if still observed, else the preferred hand, else
// whichever hand is available.
func (e *Engine) controlHand(observed map[string]*handFrame) (string, *handFrame) {
	if st := e.lock.State(); st.Phase != PhaseIdle {
		if hf := observed[st.Hand]; hf != nil {
			return st.Hand, hf
		}
	}

	if hf := observed[e.cfg.PreferredHand]; hf != nil {
		return e.cfg.PreferredHand, hf
	}
	for side, hf := range observed {
		return side, hf
	}
	return "", nil
}
