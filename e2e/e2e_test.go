package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/pose"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tuning"
)

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	src := landmark.NewMockSource(landmark.DepthUnitRelative)
	for i := 0; i < 30; i++ {
		src.Enqueue(&landmark.Frame{
			TimestampMs: int64(i) * 16,
			Hands:       []landmark.Hand{landmark.OpenPalmHand()},
			DepthUnit:   landmark.DepthUnitRelative,
		})
	}

	hub := server.NewHub()
	metrics := server.NewMetrics()

	application := app.New(app.Config{
		Store:      s,
		Source:     src,
		SourceKind: store.SourceMock,
		Control:    control.DefaultConfig(),
		Pose:       pose.DefaultConfig(),
		Hub:        hub,
		Metrics:    metrics,
	})

	srv := server.New(server.Config{
		Store:   s,
		Hub:     hub,
		Metrics: metrics,
		State:   application.LatestOutput,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("CreateProfile", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/profiles",
			"application/json",
			strings.NewReader(`{"name": "e2e", "config": {"control": {"GrabOn": 0.72}}}`),
		)
		if err != nil {
			t.Fatalf("create profile error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	// Subscribe to the state stream before the pipeline starts so the lock
	// transition is observable both ways.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/state"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s failed: %v", wsURL, err)
	}
	defer conn.Close()
	waitFor(t, 2*time.Second, func() bool { return hub.ClientCount() == 1 }, "ws client never registered")

	if err := application.Start(); err != nil {
		t.Fatalf("app.Start() error = %v", err)
	}
	application.SetEnabled(true)

	t.Run("StateReachesLocked", func(t *testing.T) {
		waitFor(t, 5*time.Second, func() bool {
			resp, err := client.Get(ts.URL + "/api/state")
			if err != nil {
				return false
			}
			defer resp.Body.Close()
			var out control.Output
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return false
			}
			return out.Lock.Phase == control.PhaseLocked
		}, "state endpoint never reported a locked hand")
	})

	t.Run("BroadcastCarriesLock", func(t *testing.T) {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			var out control.Output
			if err := conn.ReadJSON(&out); err != nil {
				t.Fatalf("ReadJSON failed before a locked broadcast: %v", err)
			}
			if out.Lock.Phase == control.PhaseLocked {
				if out.Lock.Hand != "Right" {
					t.Errorf("broadcast hand = %s, want Right", out.Lock.Hand)
				}
				break
			}
		}
	})

	application.Stop()

	t.Run("SessionRecorded", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions")
		if err != nil {
			t.Fatalf("list sessions error = %v", err)
		}
		var listed struct {
			Sessions []struct {
				ID      string `json:"id"`
				Source  string `json:"source"`
				EndedAt string `json:"ended_at"`
			} `json:"sessions"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)
		resp.Body.Close()

		if len(listed.Sessions) != 1 {
			t.Fatalf("sessions = %+v, want exactly one", listed.Sessions)
		}
		if listed.Sessions[0].Source != "mock" {
			t.Errorf("session source = %s, want mock", listed.Sessions[0].Source)
		}
		if listed.Sessions[0].EndedAt == "" {
			t.Error("session should be ended after Stop")
		}

		resp, _ = client.Get(ts.URL + "/api/sessions/" + listed.Sessions[0].ID + "/events")
		var events struct {
			Events []struct {
				Kind string `json:"kind"`
			} `json:"events"`
		}
		json.NewDecoder(resp.Body).Decode(&events)
		resp.Body.Close()

		locked := 0
		for _, e := range events.Events {
			if e.Kind == store.EventLocked {
				locked++
			}
		}
		if locked != 1 {
			t.Errorf("locked events = %d, want 1", locked)
		}
	})

	t.Run("MetricsScrape", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/metrics")
		defer resp.Body.Close()
		var body strings.Builder
		buf := make([]byte, 32*1024)
		for {
			n, err := resp.Body.Read(buf)
			body.Write(buf[:n])
			if err != nil {
				break
			}
		}
		if !strings.Contains(body.String(), "mudra_frames_processed_total") {
			t.Error("scrape output missing the frames counter")
		}
		if !strings.Contains(body.String(), `mudra_lock_transitions_total{phase="locked"}`) {
			t.Error("scrape output missing the lock transition counter")
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after pipeline operations")
		}
		resp.Body.Close()
	})
}

func TestE2E_PhoneIngestDrivesEngine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	ingest := server.NewPhoneSource()

	application := app.New(app.Config{
		Source:  ingest,
		Control: control.DefaultConfig(),
		Pose:    pose.DefaultConfig(),
	})

	srv := server.New(server.Config{Ingest: ingest, State: application.LatestOutput})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	if err := application.Start(); err != nil {
		t.Fatalf("app.Start() error = %v", err)
	}
	defer application.Stop()
	application.SetEnabled(true)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/ingest"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s failed: %v", wsURL, err)
	}
	defer conn.Close()

	// Stream open-palm frames the way a phone client would: paced slightly
	// faster than the pipeline tick so the latest-frame slot never starves.
	type ingestFrame struct {
		TimestampMs int64           `json:"timestamp_ms"`
		DepthUnit   string          `json:"depth_unit"`
		Hands       []landmark.Hand `json:"hands"`
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 120; i++ {
			msg := ingestFrame{
				TimestampMs: int64(i) * 16,
				DepthUnit:   string(landmark.DepthUnitRelative),
				Hands:       []landmark.Hand{landmark.OpenPalmHand()},
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			time.Sleep(16 * time.Millisecond)
		}
	}()

	waitFor(t, 5*time.Second, func() bool {
		return application.LatestOutput().Lock.Phase == control.PhaseLocked
	}, "phone-fed pipeline never locked")
	<-done
}

func TestE2E_CalibratedThresholdsDriveEngine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	// Calibrate from synthetic recordings, then verify an engine configured
	// with the suggestion still locks on the acquisition pose.
	c := tuning.NewCalibrator()
	poseCfg := pose.DefaultConfig()
	palm := landmark.OpenPalmHand()
	for i := 0; i < 20; i++ {
		c.Add(tuning.Sample{Label: tuning.LabelOpenPalm, Metrics: pose.Extract(&palm, poseCfg), TimestampMs: int64(i) * 33})
		c.Add(tuning.Sample{Label: tuning.LabelRelaxed, Metrics: pose.Metrics{Spread: 0.2 + 0.01*float64(i%4), Grab: 0.15}, TimestampMs: int64(i) * 33})
		c.Add(tuning.Sample{Label: tuning.LabelFist, Metrics: pose.Metrics{Grab: 0.88 + 0.005*float64(i%4)}, TimestampMs: int64(i) * 33})
	}

	suggestion, err := c.Suggest()
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	cfg := suggestion.Apply(control.DefaultConfig())

	engine := control.NewEngine(cfg, poseCfg)
	var out control.Output
	for i := 0; i < 30; i++ {
		out = engine.Advance(&landmark.Frame{
			TimestampMs: int64(i) * 16,
			Hands:       []landmark.Hand{landmark.OpenPalmHand()},
			DepthUnit:   landmark.DepthUnitRelative,
		}, nil)
	}
	if out.Lock.Phase != control.PhaseLocked {
		t.Errorf("phase = %s, want locked under calibrated thresholds", out.Lock.Phase)
	}
}
