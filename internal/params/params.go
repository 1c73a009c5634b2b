// Package params resolves (scenario, mounting point, sensor) keys to
// concrete per-detector configurations. Detector configs are closed,
// validated types: unknown fields and out-of-range values are rejected when
// a parameter document is loaded, never at first use inside a detector.
package params

import "fmt"

// Detector name constants used as keys throughout the module.
const (
	AlgoPeak         = "peak_detection"
	AlgoZeroCrossing = "zero_crossing"
	AlgoSpectral     = "spectral_analysis"
	AlgoAdaptive     = "adaptive_threshold"
	AlgoSHOE         = "shoe"
)

// ConfigurationError reports a parameter lookup that has no entry and no
// configured fallback. Resolution failures are setup mistakes and fail fast.
type ConfigurationError struct {
	Scenario string
	Mount    string
	Sensor   string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no parameters for scenario=%q mount=%q sensor=%q: %s",
		e.Scenario, e.Mount, e.Sensor, e.Reason)
}

// FreqRange bounds the expected step frequency band in Hz.
type FreqRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PeakConfig configures the peak-detection algorithm.
type PeakConfig struct {
	WindowSize          float64 `json:"window_size"`
	Threshold           float64 `json:"threshold"`
	MinTimeBetweenSteps float64 `json:"min_time_between_steps"`
}

// Validate checks PeakConfig invariants.
func (c PeakConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("peak_detection: window_size must be > 0, got %g", c.WindowSize)
	}
	if c.MinTimeBetweenSteps <= 0 {
		return fmt.Errorf("peak_detection: min_time_between_steps must be > 0, got %g", c.MinTimeBetweenSteps)
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("peak_detection: threshold must be > 0, got %g", c.Threshold)
	}
	return nil
}

// ZeroCrossingConfig configures the zero-crossing algorithm.
type ZeroCrossingConfig struct {
	WindowSize          float64 `json:"window_size"`
	HysteresisBand      float64 `json:"hysteresis_band"`
	MinTimeBetweenSteps float64 `json:"min_time_between_steps"`
}

// Validate checks ZeroCrossingConfig invariants.
func (c ZeroCrossingConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("zero_crossing: window_size must be > 0, got %g", c.WindowSize)
	}
	if c.MinTimeBetweenSteps <= 0 {
		return fmt.Errorf("zero_crossing: min_time_between_steps must be > 0, got %g", c.MinTimeBetweenSteps)
	}
	if c.HysteresisBand < 0 {
		return fmt.Errorf("zero_crossing: hysteresis_band must be >= 0, got %g", c.HysteresisBand)
	}
	return nil
}

// SpectralConfig configures the STFT spectral-analysis algorithm.
type SpectralConfig struct {
	WindowSize          float64   `json:"window_size"`
	Overlap             float64   `json:"overlap"`
	StepFreqRange       FreqRange `json:"step_freq_range"`
	MinTimeBetweenSteps float64   `json:"min_time_between_steps"`

	// PeakInterpolation enables parabolic interpolation of the dominant
	// frequency bin across its neighbours. Uniform per-frame placement is
	// the baseline behaviour; this refinement is opt-in.
	PeakInterpolation bool `json:"peak_interpolation,omitempty"`
}

// Validate checks SpectralConfig invariants.
func (c SpectralConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("spectral_analysis: window_size must be > 0, got %g", c.WindowSize)
	}
	if c.MinTimeBetweenSteps <= 0 {
		return fmt.Errorf("spectral_analysis: min_time_between_steps must be > 0, got %g", c.MinTimeBetweenSteps)
	}
	if c.Overlap < 0 || c.Overlap >= 1 {
		return fmt.Errorf("spectral_analysis: overlap must be in [0, 1), got %g", c.Overlap)
	}
	if c.StepFreqRange.Min >= c.StepFreqRange.Max {
		return fmt.Errorf("spectral_analysis: step_freq_range min %g must be < max %g",
			c.StepFreqRange.Min, c.StepFreqRange.Max)
	}
	if c.StepFreqRange.Min < 0 {
		return fmt.Errorf("spectral_analysis: step_freq_range min must be >= 0, got %g", c.StepFreqRange.Min)
	}
	return nil
}

// AdaptiveConfig configures the adaptive-threshold algorithm. WindowSize is
// the trailing statistics window the threshold is recomputed from, not the
// smoothing window.
type AdaptiveConfig struct {
	WindowSize          float64 `json:"window_size"`
	Sensitivity         float64 `json:"sensitivity"`
	MinTimeBetweenSteps float64 `json:"min_time_between_steps"`
}

// Validate checks AdaptiveConfig invariants.
func (c AdaptiveConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("adaptive_threshold: window_size must be > 0, got %g", c.WindowSize)
	}
	if c.MinTimeBetweenSteps <= 0 {
		return fmt.Errorf("adaptive_threshold: min_time_between_steps must be > 0, got %g", c.MinTimeBetweenSteps)
	}
	if c.Sensitivity <= 0 {
		return fmt.Errorf("adaptive_threshold: sensitivity must be > 0, got %g", c.Sensitivity)
	}
	return nil
}

// SHOEConfig configures the SHOE stance-phase algorithm. Threshold is a
// first-class calibration value: mounting points that never truly stop
// moving (wrist, pocket, upper arm) need substantially relaxed thresholds
// compared to the foot/ankle the algorithm was designed for, so presets are
// data in the mount override tables rather than branches in detector code.
type SHOEConfig struct {
	WindowSize          float64 `json:"window_size"`
	Threshold           float64 `json:"threshold"`
	MinTimeBetweenSteps float64 `json:"min_time_between_steps"`
}

// Validate checks SHOEConfig invariants.
func (c SHOEConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("shoe: window_size must be > 0, got %g", c.WindowSize)
	}
	if c.MinTimeBetweenSteps <= 0 {
		return fmt.Errorf("shoe: min_time_between_steps must be > 0, got %g", c.MinTimeBetweenSteps)
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("shoe: threshold must be > 0, got %g", c.Threshold)
	}
	return nil
}

// ConfigSet bundles one configuration per detector kind.
type ConfigSet struct {
	Peak         PeakConfig         `json:"peak_detection"`
	ZeroCrossing ZeroCrossingConfig `json:"zero_crossing"`
	Spectral     SpectralConfig     `json:"spectral_analysis"`
	Adaptive     AdaptiveConfig     `json:"adaptive_threshold"`
	SHOE         SHOEConfig         `json:"shoe"`
}

// Validate checks every detector configuration in the set.
func (s ConfigSet) Validate() error {
	if err := s.Peak.Validate(); err != nil {
		return err
	}
	if err := s.ZeroCrossing.Validate(); err != nil {
		return err
	}
	if err := s.Spectral.Validate(); err != nil {
		return err
	}
	if err := s.Adaptive.Validate(); err != nil {
		return err
	}
	return s.SHOE.Validate()
}
