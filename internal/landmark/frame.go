package landmark

// DepthUnit identifies the coordinate space of the Z channel supplied by a
// source. Consumers read this flag rather than guessing units from magnitude.
type DepthUnit string

const (
	// DepthUnitRelative is the unitless relative depth of webcam pose models.
	DepthUnitRelative DepthUnit = "relative"
	// DepthUnitMetres is metric depth from a LiDAR/ToF phone camera.
	DepthUnitMetres DepthUnit = "metres"
)

// Frame is a single per-tick landmark snapshot: zero, one, or two hands plus
// a monotonic timestamp. Frames are read-only to consumers; the engine never
// mutates a frame it is handed.
type Frame struct {
	TimestampMs int64     `json:"timestamp_ms"`
	Hands       []Hand    `json:"hands"`
	DepthUnit   DepthUnit `json:"depth_unit"`
}

// HandBySide returns the hand with the given handedness ("Left" or "Right"),
// or nil if that hand is absent this frame.
func (f *Frame) HandBySide(side string) *Hand {
	if f == nil {
		return nil
	}
	for i := range f.Hands {
		if f.Hands[i].Handedness == side {
			return &f.Hands[i]
		}
	}
	return nil
}

// Source supplies landmark frames to the pipeline. Implementations include
// the MediaPipe webcam source, the WebSocket phone ingest, and the mock
// source used in tests.
type Source interface {
	// NextFrame returns the most recent landmark frame, or nil if no frame
	// is available yet. It never blocks.
	NextFrame() (*Frame, error)

	// DepthUnit reports the Z coordinate space this source produces.
	DepthUnit() DepthUnit

	// Close releases any resources held by the source.
	Close() error
}
