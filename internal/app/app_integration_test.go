package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/pose"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// enqueuePalmFrames scripts n consecutive open-palm frames 16ms apart.
func enqueuePalmFrames(src *landmark.MockSource, n int, startMs int64) {
	for i := 0; i < n; i++ {
		src.Enqueue(&landmark.Frame{
			TimestampMs: startMs + int64(i)*16,
			Hands:       []landmark.Hand{landmark.OpenPalmHand()},
			DepthUnit:   landmark.DepthUnitRelative,
		})
	}
}

func waitForPhase(t *testing.T, a *App, phase control.Phase, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if a.LatestOutput().Lock.Phase == phase {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("phase never reached %s, last output: %+v", phase, a.LatestOutput())
}

func TestApp_SourcePipelineLocksAndRecords(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	defer s.Close()

	src := landmark.NewMockSource(landmark.DepthUnitRelative)
	enqueuePalmFrames(src, 20, 0)

	hub := server.NewHub()
	metrics := server.NewMetrics()

	a := New(Config{
		Store:      s,
		Source:     src,
		SourceKind: store.SourceMock,
		Control:    control.DefaultConfig(),
		Pose:       pose.DefaultConfig(),
		Hub:        hub,
		Metrics:    metrics,
	})

	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	a.SetEnabled(true)

	waitForPhase(t, a, control.PhaseLocked, 5*time.Second)

	out := a.LatestOutput()
	if out.Lock.Hand != "Right" {
		t.Errorf("locked hand = %s, want Right", out.Lock.Hand)
	}

	a.Stop()

	// The session was created, ended, and carries a locked event.
	sessions, err := s.Sessions().List()
	if err != nil || len(sessions) != 1 {
		t.Fatalf("sessions = %v (err %v), want exactly one", sessions, err)
	}
	if sessions[0].Source != store.SourceMock {
		t.Errorf("session source = %s, want mock", sessions[0].Source)
	}
	if sessions[0].EndedAt == nil {
		t.Error("session should be ended after Stop")
	}

	n, err := s.Events().CountByKind(sessions[0].ID, store.EventLocked)
	if err != nil {
		t.Fatalf("CountByKind failed: %v", err)
	}
	if n != 1 {
		t.Errorf("locked events = %d, want 1", n)
	}
}

func TestApp_SourceKindDefaultsToPhone(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	defer s.Close()

	// An injected source with no declared kind is assumed to be the phone
	// ingest path.
	a := New(Config{
		Store:   s,
		Source:  landmark.NewMockSource(landmark.DepthUnitRelative),
		Control: control.DefaultConfig(),
		Pose:    pose.DefaultConfig(),
	})
	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	a.Stop()

	sessions, err := s.Sessions().List()
	if err != nil || len(sessions) != 1 {
		t.Fatalf("sessions = %v (err %v), want exactly one", sessions, err)
	}
	if sessions[0].Source != store.SourcePhone {
		t.Errorf("session source = %s, want phone by default for an injected source", sessions[0].Source)
	}
}

func TestApp_DisabledPipelineIgnoresFrames(t *testing.T) {
	src := landmark.NewMockSource(landmark.DepthUnitRelative)
	enqueuePalmFrames(src, 10, 0)

	a := New(Config{
		Source:  src,
		Control: control.DefaultConfig(),
		Pose:    pose.DefaultConfig(),
	})

	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer a.Stop()

	// Never enabled: no frame should be consumed.
	time.Sleep(300 * time.Millisecond)
	if out := a.LatestOutput(); out.TimestampMs != 0 {
		t.Errorf("disabled pipeline advanced to %+v", out)
	}
}

func TestApp_StartTwiceIsNoop(t *testing.T) {
	src := landmark.NewMockSource(landmark.DepthUnitRelative)

	a := New(Config{
		Source:  src,
		Control: control.DefaultConfig(),
		Pose:    pose.DefaultConfig(),
	})

	if err := a.Start(); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	a.Stop()
}

func TestApp_SetTargetsCopiesInput(t *testing.T) {
	a := New(Config{
		Source:  landmark.NewMockSource(landmark.DepthUnitRelative),
		Control: control.DefaultConfig(),
		Pose:    pose.DefaultConfig(),
	})

	targets := []control.Target{{ID: "cube", X: 0.5, Y: 0.5}}
	a.SetTargets(targets)

	// Mutating the caller's slice must not leak into the pipeline.
	targets[0].ID = "mutated"

	a.mu.RLock()
	got := a.targets[0].ID
	a.mu.RUnlock()
	if got != "cube" {
		t.Errorf("target id = %s, want cube", got)
	}
}
