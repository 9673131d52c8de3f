package app

import (
	"fmt"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/store"
)

// runPipeline is the main control loop. With a remote source it drains
// frames at the active rate; with the local webcam it motion-gates the
// expensive landmark detection:
//
//  1. Start in idle mode (IdleFPS).
//  2. On motion, switch to active mode (ActiveFPS) and run detection.
//  3. Advance the engine with each landmark frame; publish the output.
//  4. After IdleTimeoutMs without motion, drop back to idle and reset the
//     engine so a stale lock never survives an empty room.
func (a *App) runPipeline() {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	if a.config.Source != nil {
		frameInterval = time.Second / time.Duration(ActiveFPS)
	}

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	a.mu.RLock()
	stopCh := a.stopCh
	a.mu.RUnlock()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			if a.config.Source != nil {
				a.advanceFromSource()
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			// A tracked hand counts as motion even when it hovers still,
			// otherwise a deliberate steady pose would idle the pipeline.
			if a.LatestOutput().Lock.Phase != control.PhaseIdle {
				motionDetected = true
			}

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					a.engine.Reset()
					log.Println("Switched to idle mode")
				}
			}

			detector := a.Detector()
			if !activeMode || detector == nil {
				frame.Close()
				continue
			}

			hands, err := detector.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			a.advance(&landmark.Frame{
				TimestampMs: time.Now().UnixMilli(),
				Hands:       hands,
				DepthUnit:   landmark.DepthUnitRelative,
			})
		}
	}
}

// advanceFromSource drains the most recent frame from the remote source.
func (a *App) advanceFromSource() {
	frame, err := a.config.Source.NextFrame()
	if err != nil {
		log.Printf("Error reading source frame: %v", err)
		return
	}
	if frame == nil {
		return
	}
	a.advance(frame)
}

// advance runs one engine step and fans the output out to the hub, the
// event store, and the metrics collectors.
func (a *App) advance(frame *landmark.Frame) {
	a.mu.RLock()
	targets := a.targets
	a.mu.RUnlock()

	start := time.Now()
	out := a.engine.Advance(frame, targets)

	if m := a.config.Metrics; m != nil {
		m.AdvanceDuration.Observe(time.Since(start).Seconds())
		m.FramesProcessed.Inc()
	}

	prev := a.LatestOutput()
	a.recordTransitions(prev, out)

	a.mu.Lock()
	a.lastOutput = out
	a.mu.Unlock()

	if a.config.Hub != nil {
		a.config.Hub.Publish(out)
	}
}

// recordTransitions diffs consecutive outputs and persists the control
// transitions worth keeping for diagnostics and tuning.
func (a *App) recordTransitions(prev, cur control.Output) {
	m := a.config.Metrics

	if cur.Lock.Phase != prev.Lock.Phase {
		if m != nil {
			m.LockTransitions.WithLabelValues(string(cur.Lock.Phase)).Inc()
		}
		switch {
		case cur.Lock.Phase == control.PhaseLocked:
			a.recordEvent(store.EventLocked, cur.TimestampMs, fmt.Sprintf(`{"hand":%q}`, cur.Lock.Hand))
		case prev.Lock.Phase == control.PhaseLocked:
			a.recordEvent(store.EventUnlocked, cur.TimestampMs, "{}")
		}
	}

	if cur.Lock.Grabbed && !prev.Lock.Grabbed {
		a.recordEvent(store.EventGrabbed, cur.TimestampMs, fmt.Sprintf(`{"hand":%q}`, cur.Lock.Hand))
	} else if !cur.Lock.Grabbed && prev.Lock.Grabbed {
		a.recordEvent(store.EventReleased, cur.TimestampMs, "{}")
	}

	if cur.SelectedID != "" {
		if m != nil {
			m.Selections.Inc()
		}
		a.recordEvent(store.EventSelection, cur.TimestampMs, fmt.Sprintf(`{"target":%q}`, cur.SelectedID))
	}

	if cur.BimanualStarted {
		a.recordEvent(store.EventBimanual, cur.TimestampMs, "{}")
	}
}
