// Package app wires the Mudra control pipeline together: landmark source,
// control engine, event persistence, and the broadcast hub.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/pose"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the tick rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the tick rate while a hand is being tracked.
	ActiveFPS = 30
	// IdleTimeoutMs is how long after the last motion the pipeline drops
	// back to the idle rate.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Camera       capture.CameraConfig
	MotionThresh float64
	Control      control.Config
	Pose         pose.Config

	// Source, when set, replaces the local webcam+detector path entirely
	// (e.g. the phone WebSocket ingest source).
	Source landmark.Source

	// SourceKind labels the sessions this pipeline records. When empty it
	// defaults to webcam, or phone when Source is set; callers injecting a
	// different source (the mock in tests) state the kind explicitly.
	SourceKind store.SourceKind

	// Hub and Metrics are optional output sinks.
	Hub     *server.Hub
	Metrics *server.Metrics
}

// App orchestrates the control pipeline: it owns the camera, motion gate,
// landmark detector, and engine, and forwards engine output to the hub and
// the event store.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector landmark.Detector
	engine   *control.Engine

	mu         sync.RWMutex
	enabled    bool
	stopCh     chan struct{}
	sessionID  string
	targets    []control.Target
	lastOutput control.Output
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // 1% pixel change
	}

	a := &App{
		config: config,
		camera: capture.NewCamera(config.Camera),
		motion: capture.NewMotionDetector(motionThreshold),
		engine: control.NewEngine(config.Control, config.Pose),
	}

	if config.Source == nil {
		// Try MediaPipe first, fall back to the mock detector.
		if mp, err := landmark.NewMediaPipeDetector(landmark.DefaultDetectorConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = landmark.NewMockDetector()
		}
	}

	return a
}

// SetEnabled enables or disables the control pipeline.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether the pipeline is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d landmark.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetTargets replaces the selectable scene targets. The scene client pushes
// fresh projected positions whenever its camera or objects move.
func (a *App) SetTargets(targets []control.Target) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.targets = append(a.targets[:0:0], targets...)
}

// LatestOutput returns the most recent engine output snapshot.
func (a *App) LatestOutput() control.Output {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastOutput
}

// Start begins the control pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if a.config.Source == nil {
		if err := a.camera.Open(); err != nil {
			return err
		}
		a.camera.SetFPS(IdleFPS)
	}

	kind := a.config.SourceKind
	if kind == "" {
		kind = store.SourceWebcam
		if a.config.Source != nil {
			kind = store.SourcePhone
		}
	}

	if a.config.Store != nil {
		sess := &store.Session{ID: uuid.New().String(), Source: kind}
		if err := a.config.Store.Sessions().Create(sess); err != nil {
			log.Printf("Failed to create session: %v", err)
		} else {
			a.sessionID = sess.ID
		}
	}

	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Control pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if a.config.Source == nil {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
		a.motion.Close()
		if a.detector != nil {
			if err := a.detector.Close(); err != nil {
				log.Printf("Error closing detector: %v", err)
			}
		}
	}

	if a.config.Store != nil && a.sessionID != "" {
		if err := a.config.Store.Sessions().End(a.sessionID); err != nil {
			log.Printf("Failed to end session: %v", err)
		}
		a.sessionID = ""
	}

	log.Println("Control pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Detector returns the hand detector.
func (a *App) Detector() landmark.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// recordEvent appends one control event to the current session.
func (a *App) recordEvent(kind string, timestampMs int64, payload string) {
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()

	if a.config.Store == nil || sessionID == "" {
		return
	}
	e := &store.Event{
		SessionID:   sessionID,
		Kind:        kind,
		TimestampMs: timestampMs,
		Payload:     payload,
	}
	if err := a.config.Store.Events().Append(e); err != nil {
		log.Printf("Failed to record %s event: %v", kind, err)
	}
}
