package tuning

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/pose"
)

// record adds n samples of one label with a small deterministic jitter so the
// quantiles are not degenerate.
func record(c *Calibrator, label string, n int, base pose.Metrics) {
	for i := 0; i < n; i++ {
		m := base
		jitter := 0.01 * float64(i%5)
		m.Spread += jitter
		m.Grab += jitter
		m.Pinch += jitter
		c.Add(Sample{Label: label, Metrics: m, TimestampMs: int64(i) * 33})
	}
}

func recordAllPhases(c *Calibrator) {
	record(c, LabelOpenPalm, 20, pose.Metrics{Spread: 0.85, PalmFacing: 0.7, Grab: 0.05, Pinch: 0.05})
	record(c, LabelRelaxed, 20, pose.Metrics{Spread: 0.25, PalmFacing: 0.1, Grab: 0.15, Pinch: 0.05})
	record(c, LabelFist, 20, pose.Metrics{Spread: 0.05, PalmFacing: 0.2, Grab: 0.90, Pinch: 0.10})
	record(c, LabelPinch, 20, pose.Metrics{Spread: 0.30, PalmFacing: 0.3, Grab: 0.20, Pinch: 0.92})
}

func TestCalibrator_SuggestSeparatesClasses(t *testing.T) {
	c := NewCalibrator()
	recordAllPhases(c)

	s, err := c.Suggest()
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	// Spread threshold sits between relaxed and open-palm distributions.
	if s.SpreadThreshold <= 0.29 || s.SpreadThreshold >= 0.85 {
		t.Errorf("SpreadThreshold = %v, want between relaxed and palm spread", s.SpreadThreshold)
	}

	// Grab threshold sits between relaxed curl and fist curl, with the
	// release threshold strictly below it.
	if s.GrabOn <= 0.19 || s.GrabOn >= 0.90 {
		t.Errorf("GrabOn = %v, want between relaxed and fist grab", s.GrabOn)
	}
	if s.GrabOff >= s.GrabOn {
		t.Errorf("GrabOff = %v not below GrabOn = %v, hysteresis band collapsed", s.GrabOff, s.GrabOn)
	}

	// Pinch phase was recorded, so the selection threshold is personalized.
	if s.ActivateOn <= 0.09 || s.ActivateOn >= 0.92 {
		t.Errorf("ActivateOn = %v, want between relaxed and pinch", s.ActivateOn)
	}

	if s.PalmThreshold <= 0 {
		t.Errorf("PalmThreshold = %v, want positive for a facing palm", s.PalmThreshold)
	}

	if len(s.Distributions) != 4 {
		t.Errorf("len(Distributions) = %d, want 4 labels", len(s.Distributions))
	}
	palm := s.Distributions[LabelOpenPalm]["spread"]
	if palm.Count != 20 {
		t.Errorf("open palm spread count = %d, want 20", palm.Count)
	}
	if palm.P10 > palm.P50 || palm.P50 > palm.P90 {
		t.Errorf("quantiles out of order: %+v", palm)
	}
}

func TestCalibrator_SuggestRequiresCorePhases(t *testing.T) {
	c := NewCalibrator()
	record(c, LabelOpenPalm, 20, pose.Metrics{Spread: 0.85})
	record(c, LabelRelaxed, 20, pose.Metrics{Spread: 0.25})
	record(c, LabelFist, 5, pose.Metrics{Grab: 0.9}) // under the floor

	if _, err := c.Suggest(); err == nil {
		t.Error("expected error with too few fist samples")
	}
}

func TestCalibrator_OverlappingClassesFallBack(t *testing.T) {
	c := NewCalibrator()
	// Relaxed and open palm spreads fully overlap: the recording is unusable
	// and the default threshold must survive.
	record(c, LabelOpenPalm, 20, pose.Metrics{Spread: 0.50, PalmFacing: 0.7, Grab: 0.05})
	record(c, LabelRelaxed, 20, pose.Metrics{Spread: 0.50, Grab: 0.15})
	record(c, LabelFist, 20, pose.Metrics{Grab: 0.90})

	s, err := c.Suggest()
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if s.SpreadThreshold != control.DefaultConfig().SpreadThreshold {
		t.Errorf("SpreadThreshold = %v, want default fallback on overlap", s.SpreadThreshold)
	}
}

func TestCalibrator_AddJSON(t *testing.T) {
	c := NewCalibrator()

	raw := []json.RawMessage{
		json.RawMessage(`{"label": "open_palm", "metrics": {"spread": 0.9, "palm_facing": 0.8}, "timestamp_ms": 100}`),
	}
	if err := c.AddJSON(raw); err != nil {
		t.Fatalf("AddJSON failed: %v", err)
	}
	if c.Count(LabelOpenPalm) != 1 {
		t.Errorf("Count = %d, want 1", c.Count(LabelOpenPalm))
	}

	if err := c.AddJSON([]json.RawMessage{json.RawMessage(`{`)}); err == nil {
		t.Error("expected error for malformed sample")
	}
	if err := c.AddJSON([]json.RawMessage{json.RawMessage(`{"metrics": {}}`)}); err == nil {
		t.Error("expected error for unlabelled sample")
	}
}

func TestCalibrator_Reset(t *testing.T) {
	c := NewCalibrator()
	recordAllPhases(c)
	c.Reset()
	if c.Count(LabelOpenPalm) != 0 {
		t.Errorf("Count after Reset = %d, want 0", c.Count(LabelOpenPalm))
	}
}

func TestSuggestion_Apply(t *testing.T) {
	s := Suggestion{
		SpreadThreshold: 0.55,
		PalmThreshold:   0.42,
		GrabOn:          0.65,
		GrabOff:         0.40,
		ActivateOn:      0.75,
	}

	// Exactly the five threshold fields change; everything else keeps its
	// default.
	want := control.DefaultConfig()
	want.SpreadThreshold = 0.55
	want.PalmThreshold = 0.42
	want.GrabOn = 0.65
	want.GrabOff = 0.40
	want.ActivateOn = 0.75

	got := s.Apply(control.DefaultConfig())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("applied config mismatch (-want +got):\n%s", diff)
	}
}
