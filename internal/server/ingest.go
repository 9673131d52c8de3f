package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/ayusman/mudra/internal/landmark"
)

// ingestMessage is one landmark frame pushed by a phone over /ws/ingest.
type ingestMessage struct {
	TimestampMs int64              `json:"timestamp_ms"`
	DepthUnit   landmark.DepthUnit `json:"depth_unit,omitempty"`
	Hands       []landmark.Hand    `json:"hands"`
}

// PhoneSource accepts landmark frames over WebSocket from a phone depth
// camera and exposes them as a landmark.Source for the pipeline. Only the
// most recent frame is kept; the pipeline drains it at its own tick rate.
type PhoneSource struct {
	mu     sync.Mutex
	latest *landmark.Frame
	unit   landmark.DepthUnit
}

// NewPhoneSource creates a source with no frames and relative depth until a
// publisher declares otherwise.
func NewPhoneSource() *PhoneSource {
	return &PhoneSource{unit: landmark.DepthUnitRelative}
}

// ServeHTTP handles WebSocket upgrade requests from a publishing phone. A
// new publisher simply takes over; frames from concurrent publishers
// interleave last-writer-wins.
func (p *PhoneSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ingest upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ingestMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ingest decode error: %v", err)
			continue
		}

		frame := &landmark.Frame{
			TimestampMs: msg.TimestampMs,
			Hands:       msg.Hands,
			DepthUnit:   msg.DepthUnit,
		}
		if frame.DepthUnit == "" {
			frame.DepthUnit = landmark.DepthUnitRelative
		}

		p.mu.Lock()
		p.latest = frame
		p.unit = frame.DepthUnit
		p.mu.Unlock()
	}
}

// NextFrame returns the most recent unconsumed frame, or nil when nothing
// new has arrived. Never blocks.
func (p *PhoneSource) NextFrame() (*landmark.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame := p.latest
	p.latest = nil
	return frame, nil
}

// DepthUnit reports the depth space of the publishing phone.
func (p *PhoneSource) DepthUnit() landmark.DepthUnit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unit
}

// Close implements landmark.Source.
func (p *PhoneSource) Close() error {
	return nil
}
