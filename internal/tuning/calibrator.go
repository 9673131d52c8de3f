// Package tuning derives control thresholds from recorded, labelled pose
// samples. A short calibration run (hold an open palm, relax, make a fist,
// pinch) gives per-user distributions; the calibrator turns those into
// suggested config values with a safety margin between the classes.
package tuning

import (
	"encoding/json"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/pose"
)

// Labels for calibration poses. Each recording phase tags its samples with
// the pose the user was asked to hold.
const (
	LabelOpenPalm = "open_palm"
	LabelRelaxed  = "relaxed"
	LabelFist     = "fist"
	LabelPinch    = "pinch"
)

// MinSamplesPerLabel is the floor below which a distribution is too thin to
// trust for threshold placement.
const MinSamplesPerLabel = 10

// Sample is one recorded calibration frame: the extracted metrics plus the
// pose the user was holding at the time.
type Sample struct {
	Label       string       `json:"label"`
	Metrics     pose.Metrics `json:"metrics"`
	TimestampMs int64        `json:"timestamp_ms"`
}

// Stats summarizes one metric's distribution within a label.
type Stats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	P10   float64 `json:"p10"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
}

// Suggestion is the calibrator's output: threshold overrides for the control
// config, plus the per-label distributions they were derived from so a
// frontend can plot them.
type Suggestion struct {
	SpreadThreshold float64 `json:"spread_threshold"`
	PalmThreshold   float64 `json:"palm_threshold"`
	GrabOn          float64 `json:"grab_on"`
	GrabOff         float64 `json:"grab_off"`
	ActivateOn      float64 `json:"activate_on"`

	Distributions map[string]map[string]Stats `json:"distributions"`
}

// Calibrator accumulates labelled samples and derives thresholds.
type Calibrator struct {
	samples []Sample
}

// NewCalibrator creates an empty calibrator.
func NewCalibrator() *Calibrator {
	return &Calibrator{}
}

// Add appends one sample.
func (c *Calibrator) Add(s Sample) {
	c.samples = append(c.samples, s)
}

// AddJSON appends raw recorded samples, e.g. uploaded from a calibration UI.
func (c *Calibrator) AddJSON(raw []json.RawMessage) error {
	for i, r := range raw {
		var s Sample
		if err := json.Unmarshal(r, &s); err != nil {
			return fmt.Errorf("failed to parse sample %d: %w", i, err)
		}
		if s.Label == "" {
			return fmt.Errorf("sample %d has no label", i)
		}
		c.samples = append(c.samples, s)
	}
	return nil
}

// Count returns the number of samples recorded under the given label.
func (c *Calibrator) Count(label string) int {
	n := 0
	for _, s := range c.samples {
		if s.Label == label {
			n++
		}
	}
	return n
}

// Reset discards all recorded samples.
func (c *Calibrator) Reset() {
	c.samples = nil
}

// Suggest derives thresholds from the recorded samples. It requires the
// open_palm, relaxed and fist phases; the pinch phase is optional and only
// affects the selection threshold.
func (c *Calibrator) Suggest() (Suggestion, error) {
	for _, label := range []string{LabelOpenPalm, LabelRelaxed, LabelFist} {
		if n := c.Count(label); n < MinSamplesPerLabel {
			return Suggestion{}, fmt.Errorf("label %q has %d samples, need at least %d", label, n, MinSamplesPerLabel)
		}
	}

	palmSpread := c.metric(LabelOpenPalm, func(m pose.Metrics) float64 { return m.Spread })
	relaxedSpread := c.metric(LabelRelaxed, func(m pose.Metrics) float64 { return m.Spread })
	palmFacing := c.metric(LabelOpenPalm, func(m pose.Metrics) float64 { return m.PalmFacing })
	fistGrab := c.metric(LabelFist, func(m pose.Metrics) float64 { return m.Grab })
	relaxedGrab := c.metric(LabelRelaxed, func(m pose.Metrics) float64 { return m.Grab })

	def := control.DefaultConfig()
	s := Suggestion{
		SpreadThreshold: separate(quantile(relaxedSpread, 0.90), quantile(palmSpread, 0.10), def.SpreadThreshold),
		PalmThreshold:   quantile(palmFacing, 0.10) * 0.8,
		GrabOn:          separate(quantile(relaxedGrab, 0.90), quantile(fistGrab, 0.10), def.GrabOn),
		ActivateOn:      def.ActivateOn,
	}

	// Release sits between the relaxed median and the on threshold so the
	// hysteresis band never collapses.
	s.GrabOff = quantile(relaxedGrab, 0.50) + 0.4*(s.GrabOn-quantile(relaxedGrab, 0.50))

	if c.Count(LabelPinch) >= MinSamplesPerLabel {
		pinch := c.metric(LabelPinch, func(m pose.Metrics) float64 { return m.Pinch })
		relaxedPinch := c.metric(LabelRelaxed, func(m pose.Metrics) float64 { return m.Pinch })
		s.ActivateOn = separate(quantile(relaxedPinch, 0.90), quantile(pinch, 0.10), def.ActivateOn)
	}

	s.Distributions = c.distributions()
	return s, nil
}

// metric collects one metric's values for a label.
func (c *Calibrator) metric(label string, get func(pose.Metrics) float64) []float64 {
	var vals []float64
	for _, s := range c.samples {
		if s.Label == label {
			vals = append(vals, get(s.Metrics))
		}
	}
	return vals
}

func (c *Calibrator) distributions() map[string]map[string]Stats {
	getters := map[string]func(pose.Metrics) float64{
		"spread":      func(m pose.Metrics) float64 { return m.Spread },
		"palm_facing": func(m pose.Metrics) float64 { return m.PalmFacing },
		"pinch":       func(m pose.Metrics) float64 { return m.Pinch },
		"grab":        func(m pose.Metrics) float64 { return m.Grab },
	}

	out := make(map[string]map[string]Stats)
	for _, label := range []string{LabelOpenPalm, LabelRelaxed, LabelFist, LabelPinch} {
		if c.Count(label) == 0 {
			continue
		}
		byMetric := make(map[string]Stats)
		for name, get := range getters {
			byMetric[name] = summarize(c.metric(label, get))
		}
		out[label] = byMetric
	}
	return out
}

// separate places a threshold between two class boundaries. When the classes
// overlap (the negative boundary sits above the positive one) the recording
// was too noisy to trust and the fallback is returned.
func separate(negHigh, posLow, fallback float64) float64 {
	if negHigh >= posLow {
		return fallback
	}
	return (negHigh + posLow) / 2
}

func quantile(vals []float64, p float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

func summarize(vals []float64) Stats {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return Stats{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Std:   stat.StdDev(sorted, nil),
		P10:   stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}

// Apply copies the suggested thresholds onto a control config.
func (s Suggestion) Apply(cfg control.Config) control.Config {
	cfg.SpreadThreshold = s.SpreadThreshold
	cfg.PalmThreshold = s.PalmThreshold
	cfg.GrabOn = s.GrabOn
	cfg.GrabOff = s.GrabOff
	cfg.ActivateOn = s.ActivateOn
	return cfg
}
