package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Override carries partial per-detector parameter overrides. Fields are
// pointers so a mount or sensor entry can adjust a single value (typically
// the SHOE stance threshold) without restating the whole scenario table.
type Override struct {
	Peak         *PeakOverride         `json:"peak_detection,omitempty"`
	ZeroCrossing *ZeroCrossingOverride `json:"zero_crossing,omitempty"`
	Spectral     *SpectralOverride     `json:"spectral_analysis,omitempty"`
	Adaptive     *AdaptiveOverride     `json:"adaptive_threshold,omitempty"`
	SHOE         *SHOEOverride         `json:"shoe,omitempty"`
}

// PeakOverride overrides individual PeakConfig fields.
type PeakOverride struct {
	WindowSize          *float64 `json:"window_size,omitempty"`
	Threshold           *float64 `json:"threshold,omitempty"`
	MinTimeBetweenSteps *float64 `json:"min_time_between_steps,omitempty"`
}

// ZeroCrossingOverride overrides individual ZeroCrossingConfig fields.
type ZeroCrossingOverride struct {
	WindowSize          *float64 `json:"window_size,omitempty"`
	HysteresisBand      *float64 `json:"hysteresis_band,omitempty"`
	MinTimeBetweenSteps *float64 `json:"min_time_between_steps,omitempty"`
}

// SpectralOverride overrides individual SpectralConfig fields.
type SpectralOverride struct {
	WindowSize          *float64   `json:"window_size,omitempty"`
	Overlap             *float64   `json:"overlap,omitempty"`
	StepFreqRange       *FreqRange `json:"step_freq_range,omitempty"`
	MinTimeBetweenSteps *float64   `json:"min_time_between_steps,omitempty"`
	PeakInterpolation   *bool      `json:"peak_interpolation,omitempty"`
}

// AdaptiveOverride overrides individual AdaptiveConfig fields.
type AdaptiveOverride struct {
	WindowSize          *float64 `json:"window_size,omitempty"`
	Sensitivity         *float64 `json:"sensitivity,omitempty"`
	MinTimeBetweenSteps *float64 `json:"min_time_between_steps,omitempty"`
}

// SHOEOverride overrides individual SHOEConfig fields.
type SHOEOverride struct {
	WindowSize          *float64 `json:"window_size,omitempty"`
	Threshold           *float64 `json:"threshold,omitempty"`
	MinTimeBetweenSteps *float64 `json:"min_time_between_steps,omitempty"`
}

func (o Override) apply(s ConfigSet) ConfigSet {
	if o.Peak != nil {
		setIf(&s.Peak.WindowSize, o.Peak.WindowSize)
		setIf(&s.Peak.Threshold, o.Peak.Threshold)
		setIf(&s.Peak.MinTimeBetweenSteps, o.Peak.MinTimeBetweenSteps)
	}
	if o.ZeroCrossing != nil {
		setIf(&s.ZeroCrossing.WindowSize, o.ZeroCrossing.WindowSize)
		setIf(&s.ZeroCrossing.HysteresisBand, o.ZeroCrossing.HysteresisBand)
		setIf(&s.ZeroCrossing.MinTimeBetweenSteps, o.ZeroCrossing.MinTimeBetweenSteps)
	}
	if o.Spectral != nil {
		setIf(&s.Spectral.WindowSize, o.Spectral.WindowSize)
		setIf(&s.Spectral.Overlap, o.Spectral.Overlap)
		if o.Spectral.StepFreqRange != nil {
			s.Spectral.StepFreqRange = *o.Spectral.StepFreqRange
		}
		setIf(&s.Spectral.MinTimeBetweenSteps, o.Spectral.MinTimeBetweenSteps)
		if o.Spectral.PeakInterpolation != nil {
			s.Spectral.PeakInterpolation = *o.Spectral.PeakInterpolation
		}
	}
	if o.Adaptive != nil {
		setIf(&s.Adaptive.WindowSize, o.Adaptive.WindowSize)
		setIf(&s.Adaptive.Sensitivity, o.Adaptive.Sensitivity)
		setIf(&s.Adaptive.MinTimeBetweenSteps, o.Adaptive.MinTimeBetweenSteps)
	}
	if o.SHOE != nil {
		setIf(&s.SHOE.WindowSize, o.SHOE.WindowSize)
		setIf(&s.SHOE.Threshold, o.SHOE.Threshold)
		setIf(&s.SHOE.MinTimeBetweenSteps, o.SHOE.MinTimeBetweenSteps)
	}
	return s
}

func setIf(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// Document is the on-disk parameter format: a base table keyed by scenario
// plus optional override tables keyed by mounting point and by sensor.
type Document struct {
	Tolerance *float64              `json:"tolerance,omitempty"`
	Scenarios map[string]ConfigSet  `json:"scenarios"`
	Mounts    map[string]Override   `json:"mounts,omitempty"`
	Sensors   map[string]Override   `json:"sensors,omitempty"`
}

// Resolver maps (scenario, mount, sensor) keys to merged configurations.
type Resolver struct {
	// Tolerance is the matching tolerance in seconds carried alongside the
	// detector parameters, since both come from the same document.
	Tolerance float64

	scenarios map[string]ConfigSet
	mounts    map[string]Override
	sensors   map[string]Override
}

// DefaultTolerance is used when a parameter document omits tolerance.
const DefaultTolerance = 0.3

// NewResolver builds a Resolver from a parsed Document, validating every
// scenario base table eagerly.
func NewResolver(doc Document) (*Resolver, error) {
	if len(doc.Scenarios) == 0 {
		return nil, fmt.Errorf("parameter document has no scenarios")
	}
	for name, set := range doc.Scenarios {
		if err := set.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", name, err)
		}
	}
	tol := DefaultTolerance
	if doc.Tolerance != nil {
		if *doc.Tolerance <= 0 {
			return nil, fmt.Errorf("tolerance must be > 0, got %g", *doc.Tolerance)
		}
		tol = *doc.Tolerance
	}
	return &Resolver{
		Tolerance: tol,
		scenarios: doc.Scenarios,
		mounts:    doc.Mounts,
		sensors:   doc.Sensors,
	}, nil
}

// Load reads and validates a parameter document from a JSON file. Unknown
// fields anywhere in the document are rejected.
func Load(path string) (*Resolver, error) {
	if ext := filepath.Ext(path); ext != ".json" {
		return nil, fmt.Errorf("parameter file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse parameter file %s: %w", path, err)
	}
	r, err := NewResolver(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid parameter file %s: %w", path, err)
	}
	return r, nil
}

// Resolve returns the merged configuration for the given key. The scenario
// supplies the base table; mount and sensor overrides are applied in that
// order. A scenario or mount with no entry and no "default" fallback is a
// *ConfigurationError. Sensor overrides are optional per sensor.
func (r *Resolver) Resolve(scenario, mount, sensor string) (ConfigSet, error) {
	base, ok := r.scenarios[scenario]
	if !ok {
		base, ok = r.scenarios["default"]
		if !ok {
			return ConfigSet{}, &ConfigurationError{
				Scenario: scenario, Mount: mount, Sensor: sensor,
				Reason: "scenario not in table and no default configured",
			}
		}
	}

	if len(r.mounts) > 0 {
		ov, ok := r.mounts[mount]
		if !ok {
			ov, ok = r.mounts["default"]
			if !ok {
				return ConfigSet{}, &ConfigurationError{
					Scenario: scenario, Mount: mount, Sensor: sensor,
					Reason: "mounting point not in table and no default configured",
				}
			}
		}
		base = ov.apply(base)
	}

	if ov, ok := r.sensors[sensor]; ok {
		base = ov.apply(base)
	}

	if err := base.Validate(); err != nil {
		return ConfigSet{}, &ConfigurationError{
			Scenario: scenario, Mount: mount, Sensor: sensor,
			Reason: "merged configuration invalid: " + err.Error(),
		}
	}
	return base, nil
}

// Default returns a Resolver preloaded with the calibrated scenario and
// mounting-point tables used by the field trials.
func Default() *Resolver {
	base := ConfigSet{
		Peak:         PeakConfig{WindowSize: 0.1, Threshold: 1.0, MinTimeBetweenSteps: 0.3},
		ZeroCrossing: ZeroCrossingConfig{WindowSize: 0.1, HysteresisBand: 0.3, MinTimeBetweenSteps: 0.3},
		Spectral: SpectralConfig{
			WindowSize: 5.0, Overlap: 0.5,
			StepFreqRange:       FreqRange{Min: 1.0, Max: 2.5},
			MinTimeBetweenSteps: 0.3,
		},
		Adaptive: AdaptiveConfig{WindowSize: 2.0, Sensitivity: 0.6, MinTimeBetweenSteps: 0.3},
		SHOE:     SHOEConfig{WindowSize: 0.2, Threshold: 0.5, MinTimeBetweenSteps: 0.3},
	}

	scenarios := map[string]ConfigSet{
		"walk_normal": base,
		"walk_fast":   base,
		"tug":         base,
		"stairs_up":   base,
		"stairs_down": base,
		"stairs_mixed": base,
		"run":         base,
		"default":     base,
	}

	// Faster gaits shift the frequency band and shorten the refractory
	// period; irregular gaits (TUG, stairs) loosen it.
	fast := scenarios["walk_fast"]
	fast.Spectral.StepFreqRange = FreqRange{Min: 1.5, Max: 3.5}
	fast.Peak.MinTimeBetweenSteps = 0.25
	fast.ZeroCrossing.MinTimeBetweenSteps = 0.25
	fast.Spectral.MinTimeBetweenSteps = 0.25
	fast.Adaptive.MinTimeBetweenSteps = 0.25
	fast.SHOE.MinTimeBetweenSteps = 0.25
	scenarios["walk_fast"] = fast

	run := scenarios["run"]
	run.Spectral.StepFreqRange = FreqRange{Min: 2.2, Max: 4.5}
	run.Peak.MinTimeBetweenSteps = 0.2
	run.ZeroCrossing.MinTimeBetweenSteps = 0.2
	run.Spectral.MinTimeBetweenSteps = 0.2
	run.Adaptive.MinTimeBetweenSteps = 0.2
	run.SHOE.MinTimeBetweenSteps = 0.2
	scenarios["run"] = run

	tug := scenarios["tug"]
	tug.Spectral.WindowSize = 3.0
	tug.Peak.MinTimeBetweenSteps = 0.4
	tug.ZeroCrossing.MinTimeBetweenSteps = 0.4
	tug.Spectral.MinTimeBetweenSteps = 0.4
	tug.Adaptive.MinTimeBetweenSteps = 0.4
	tug.SHOE.MinTimeBetweenSteps = 0.4
	scenarios["tug"] = tug

	for _, name := range []string{"stairs_up", "stairs_down", "stairs_mixed"} {
		s := scenarios[name]
		s.Spectral.StepFreqRange = FreqRange{Min: 0.8, Max: 2.2}
		s.Peak.MinTimeBetweenSteps = 0.35
		s.ZeroCrossing.MinTimeBetweenSteps = 0.35
		s.Spectral.MinTimeBetweenSteps = 0.35
		s.Adaptive.MinTimeBetweenSteps = 0.35
		s.SHOE.MinTimeBetweenSteps = 0.35
		scenarios[name] = s
	}

	// SHOE stance thresholds are per-mount calibration data. The ankle is
	// the reference mounting; anything that never truly stops moving gets a
	// relaxed threshold so quasi-stationary phases are still found.
	mounts := map[string]Override{
		"ankle": {},
		"back": {
			SHOE: &SHOEOverride{Threshold: ptr(1.5)},
		},
		"thigh_pocket": {
			SHOE: &SHOEOverride{Threshold: ptr(2.0)},
			Peak: &PeakOverride{Threshold: ptr(0.8)},
		},
		"wrist": {
			SHOE:         &SHOEOverride{Threshold: ptr(2.5)},
			ZeroCrossing: &ZeroCrossingOverride{HysteresisBand: ptr(0.2)},
		},
		"upper_arm": {
			SHOE: &SHOEOverride{Threshold: ptr(2.5)},
		},
	}

	return &Resolver{
		Tolerance: DefaultTolerance,
		scenarios: scenarios,
		mounts:    mounts,
	}
}

func ptr(v float64) *float64 { return &v }
