package params

import "testing"

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	mutations := map[string]func(*ConfigSet){
		"peak window zero":         func(s *ConfigSet) { s.Peak.WindowSize = 0 },
		"peak refractory negative": func(s *ConfigSet) { s.Peak.MinTimeBetweenSteps = -0.3 },
		"zero-crossing band negative": func(s *ConfigSet) {
			s.ZeroCrossing.HysteresisBand = -0.1
		},
		"spectral overlap one":       func(s *ConfigSet) { s.Spectral.Overlap = 1.0 },
		"spectral inverted band":     func(s *ConfigSet) { s.Spectral.StepFreqRange = FreqRange{Min: 3, Max: 1} },
		"spectral negative band min": func(s *ConfigSet) { s.Spectral.StepFreqRange = FreqRange{Min: -1, Max: 2} },
		"adaptive sensitivity zero":  func(s *ConfigSet) { s.Adaptive.Sensitivity = 0 },
		"shoe threshold zero":        func(s *ConfigSet) { s.SHOE.Threshold = 0 },
	}

	if err := validSet().Validate(); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}
	for name, mutate := range mutations {
		set := validSet()
		mutate(&set)
		if err := set.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	// A zero hysteresis band is plain zero-crossing detection, still valid.
	set := validSet()
	set.ZeroCrossing.HysteresisBand = 0
	if err := set.Validate(); err != nil {
		t.Errorf("zero hysteresis band rejected: %v", err)
	}
}
