// Package imu holds the inertial-sensor signal model shared by all step
// detectors: time-stamped accelerometer/gyroscope recordings and the numeric
// helpers (magnitude, smoothing, detrending, rate estimation) that turn a raw
// recording into usable channels.
package imu

import (
	"fmt"
	"math"
)

// Channel selects one of the sensor channels in a Recording.
type Channel int

const (
	// Accel selects the 3-axis accelerometer channel (m/s²).
	Accel Channel = iota
	// Gyro selects the 3-axis gyroscope channel (rad/s).
	Gyro
)

func (c Channel) String() string {
	switch c {
	case Accel:
		return "accel"
	case Gyro:
		return "gyro"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Sample is a single inertial measurement. Timestamps are seconds from the
// start of the trial.
type Sample struct {
	T     float64
	Accel [3]float64
	Gyro  [3]float64
}

// Recording is the ordered sample sequence for one sensor on one trial.
// Timestamps must be strictly increasing; irregular spacing is expected
// (sampling jitter is not an error). Recordings are read-only once built.
type Recording struct {
	Samples []Sample

	// HasGyro reports whether the gyroscope channel carries real data.
	// Detectors that need angular rate must check it.
	HasGyro bool
}

// InvalidRecordingError reports a recording that cannot be analysed:
// too few samples, non-monotonic timestamps, or an all-NaN channel.
type InvalidRecordingError struct {
	Reason string
}

func (e *InvalidRecordingError) Error() string {
	return "invalid recording: " + e.Reason
}

// Validate checks the Recording invariants. It returns an
// *InvalidRecordingError describing the first violation found.
func (r *Recording) Validate() error {
	if len(r.Samples) < 2 {
		return &InvalidRecordingError{Reason: fmt.Sprintf("need at least 2 samples, got %d", len(r.Samples))}
	}
	finite := 0
	for i, s := range r.Samples {
		if i > 0 && s.T <= r.Samples[i-1].T {
			return &InvalidRecordingError{Reason: fmt.Sprintf(
				"timestamps not strictly increasing at index %d (%.6f after %.6f)", i, s.T, r.Samples[i-1].T)}
		}
		if !math.IsNaN(s.Accel[0]) || !math.IsNaN(s.Accel[1]) || !math.IsNaN(s.Accel[2]) {
			finite++
		}
	}
	if finite == 0 {
		return &InvalidRecordingError{Reason: "acceleration channel is all NaN"}
	}
	return nil
}

// Duration returns the time span covered by the recording in seconds.
func (r *Recording) Duration() float64 {
	if len(r.Samples) < 2 {
		return 0
	}
	return r.Samples[len(r.Samples)-1].T - r.Samples[0].T
}

// MeanRate estimates the average sampling rate in Hz over the whole
// recording. Returns 0 for recordings too short to estimate.
func (r *Recording) MeanRate() float64 {
	d := r.Duration()
	if d <= 0 {
		return 0
	}
	return float64(len(r.Samples)-1) / d
}

// LocalRate estimates the sampling rate around sample i from its immediate
// neighbourhood (up to two samples on each side). Sampling is not assumed
// uniform, so windowed operations convert durations to sample counts using
// this local estimate rather than a global one.
func (r *Recording) LocalRate(i int) float64 {
	lo := i - 2
	if lo < 0 {
		lo = 0
	}
	hi := i + 2
	if hi > len(r.Samples)-1 {
		hi = len(r.Samples) - 1
	}
	if hi <= lo {
		return 0
	}
	span := r.Samples[hi].T - r.Samples[lo].T
	if span <= 0 {
		return 0
	}
	return float64(hi-lo) / span
}

// Magnitude returns the per-sample Euclidean norm across the three axes of
// the selected channel.
func (r *Recording) Magnitude(ch Channel) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		v := s.Accel
		if ch == Gyro {
			v = s.Gyro
		}
		out[i] = math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	return out
}

// Times returns the timestamp series of the recording.
func (r *Recording) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.T
	}
	return out
}

// Slice returns the contiguous sub-view covering [t0, t1). The returned
// Recording shares backing storage with the receiver and must not outlive
// its read-only contract.
func (r *Recording) Slice(t0, t1 float64) *Recording {
	lo := 0
	for lo < len(r.Samples) && r.Samples[lo].T < t0 {
		lo++
	}
	hi := lo
	for hi < len(r.Samples) && r.Samples[hi].T < t1 {
		hi++
	}
	return &Recording{Samples: r.Samples[lo:hi], HasGyro: r.HasGyro}
}
