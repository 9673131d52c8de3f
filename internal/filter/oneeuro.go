// Package filter provides speed-adaptive low-pass filtering for noisy
// landmark and gesture signals.
//
// The filter is the One Euro filter (Casiez, Roussel, Vogel): an exponential
// low-pass filter whose cutoff frequency rises with the estimated signal
// speed. Slow signals get heavy smoothing (less jitter); fast signals get
// light smoothing (less lag).
package filter

import "math"

// Timing constants.
const (
	// DefaultFrequency is the sampling frequency assumed before two
	// timestamps have been observed, in Hz.
	DefaultFrequency = 60.0

	// MaxIntervalMs is the largest plausible gap between samples.
	// Larger gaps (a stalled source) do not update the frequency estimate.
	MaxIntervalMs = 1000
)

// Preset bundles the tuning parameters for one class of signal.
type Preset struct {
	// MinCutoff is the cutoff frequency at zero speed, in Hz.
	// Lower values give more smoothing when the signal is still.
	MinCutoff float64

	// Beta scales how quickly the cutoff rises with estimated speed.
	// Higher values reduce lag during fast motion.
	Beta float64

	// DCutoff is the fixed cutoff used for the derivative estimate, in Hz.
	DCutoff float64
}

// Tuning presets for the signal classes the engine filters. Values are
// empirically tuned for ~60 Hz hand tracking.
var (
	// LandmarkPreset favors stability for raw landmark positions.
	LandmarkPreset = Preset{MinCutoff: 1.0, Beta: 0.007, DCutoff: 1.0}

	// PointerPreset balances stability and lag for derived pointer points.
	PointerPreset = Preset{MinCutoff: 1.2, Beta: 0.02, DCutoff: 1.0}

	// GesturePreset favors responsiveness for fast-changing gesture
	// strength scalars (pinch, grab).
	GesturePreset = Preset{MinCutoff: 1.7, Beta: 0.3, DCutoff: 1.0}
)

// lowPass is a single exponential low-pass stage.
type lowPass struct {
	initialized bool
	prevRaw     float64
	prev        float64
}

// apply filters one sample with the given smoothing coefficient.
// The first sample after creation or reset passes through unchanged.
func (l *lowPass) apply(x, alpha float64) float64 {
	var y float64
	if l.initialized {
		y = alpha*x + (1-alpha)*l.prev
	} else {
		y = x
		l.initialized = true
	}
	l.prevRaw = x
	l.prev = y
	return y
}

func (l *lowPass) reset() {
	l.initialized = false
	l.prevRaw = 0
	l.prev = 0
}

// OneEuro filters a single scalar channel. One instance owns the persistent
// state for exactly one channel; vector signals run one OneEuro per
// coordinate. Not safe for concurrent use.
type OneEuro struct {
	preset Preset
	freq   float64 // last-known sampling frequency in Hz
	lastTs int64   // milliseconds; negative when no sample seen yet
	value  lowPass
	deriv  lowPass
}

// New creates a scalar filter with the given preset.
func New(preset Preset) *OneEuro {
	return &OneEuro{
		preset: preset,
		freq:   DefaultFrequency,
		lastTs: -1,
	}
}

// Filter smooths one sample taken at the given monotonic timestamp and
// returns the filtered value. The first sample after creation or Reset is
// returned unchanged.
func (f *OneEuro) Filter(value float64, timestampMs int64) float64 {
	// Re-estimate the sampling frequency from the timestamp delta.
	// Non-positive or implausibly large deltas keep the last-known
	// frequency rather than adopting a corrupt one.
	if f.lastTs >= 0 {
		dt := timestampMs - f.lastTs
		if dt > 0 && dt < MaxIntervalMs {
			f.freq = 1000.0 / float64(dt)
		}
	}
	f.lastTs = timestampMs

	// Estimate the signal speed from the previous raw sample, then smooth
	// the estimate with the fixed derivative cutoff.
	var rate float64
	if f.value.initialized {
		rate = (value - f.value.prevRaw) * f.freq
	}
	speed := f.deriv.apply(rate, alphaFor(f.preset.DCutoff, f.freq))

	// Speed-adaptive cutoff for the value stage.
	cutoff := f.preset.MinCutoff + f.preset.Beta*math.Abs(speed)
	return f.value.apply(value, alphaFor(cutoff, f.freq))
}

// Reset discards all filter history. Required whenever the tracked entity
// disappears and reappears, so stale velocity estimates do not bleed into a
// new gesture and cause a visible snap.
func (f *OneEuro) Reset() {
	f.value.reset()
	f.deriv.reset()
	f.lastTs = -1
	f.freq = DefaultFrequency
}

// alphaFor converts a cutoff frequency into an exponential smoothing
// coefficient for the current sampling frequency:
// alpha = 1 / (1 + tau/te) with tau = 1/(2*pi*cutoff) and te = 1/freq.
func alphaFor(cutoff, freq float64) float64 {
	tau := 1.0 / (2.0 * math.Pi * cutoff)
	te := 1.0 / freq
	return 1.0 / (1.0 + tau/te)
}
