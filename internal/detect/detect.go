// Package detect implements the step-detection algorithm suite: five
// independent detectors that consume a shared windowed-signal abstraction
// and emit ordered step timestamps. Detectors are pure functions of their
// recording and configuration; running one twice yields identical output.
package detect

import (
	"time"

	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/params"
)

// Result is the output of one detector over one recording. Steps are
// strictly increasing timestamps in seconds.
type Result struct {
	Algorithm     string        `json:"algorithm_name"`
	Steps         []float64     `json:"step_timestamps"`
	ExecutionTime time.Duration `json:"execution_time_ns"`
}

// StepCount returns the number of detected steps.
func (r Result) StepCount() int { return len(r.Steps) }

// Detector maps a motion-signal recording to a sequence of step timestamps.
// Implementations hold only their configuration; Detect is safe for
// concurrent use across recordings.
type Detector interface {
	// Name returns the algorithm name used in reports and stores.
	Name() string

	// Detect runs the algorithm over the recording. Zero detected steps is
	// a valid result, never an error; errors are reserved for numeric or
	// input defects inside this one (recording, detector) pair.
	Detect(rec *imu.Recording) (Result, error)
}

// DetectorError reports a numeric or input failure inside a single
// algorithm run. It is scoped to one (recording, detector) pair and must
// not abort sibling detectors.
type DetectorError struct {
	Algorithm string
	Reason    string
}

func (e *DetectorError) Error() string {
	return e.Algorithm + ": " + e.Reason
}

// NewSuite constructs the full detector suite from a resolved configuration
// set, in the canonical reporting order.
func NewSuite(cs params.ConfigSet) []Detector {
	return []Detector{
		NewPeak(cs.Peak),
		NewZeroCrossing(cs.ZeroCrossing),
		NewSpectral(cs.Spectral),
		NewAdaptiveThreshold(cs.Adaptive),
		NewSHOE(cs.SHOE),
	}
}
