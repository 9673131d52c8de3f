package landmark

import "gocv.io/x/gocv"

// Detector defines the interface for hand landmark detection implementations
// that operate on camera frames.
type Detector interface {
	// Detect analyzes a video frame and returns detected hands.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// DetectorConfig holds configuration options for hand landmark detection.
type DetectorConfig struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultDetectorConfig returns a DetectorConfig with sensible default values.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
