package detect

import (
	"math"
	"testing"

	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/params"
	"github.com/gaitlab/stride.report/internal/testutil"
)

func TestAdaptiveDetectsCadence(t *testing.T) {
	t.Parallel()

	rec := testutil.SineRecording(50, 10, 2.0, 3.0)
	d := NewAdaptiveThreshold(params.AdaptiveConfig{
		WindowSize: 2.0, Sensitivity: 0.6, MinTimeBetweenSteps: 0.3,
	})

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if n := len(res.Steps); n < 18 || n > 22 {
		t.Fatalf("detected %d steps, want ~20", n)
	}
	for i := 1; i < len(res.Steps); i++ {
		if gap := res.Steps[i] - res.Steps[i-1]; gap < 0.3 {
			t.Errorf("refractory violated: gap %d = %.3f s", i, gap)
		}
	}
}

func TestAdaptiveTracksAmplitudeDrift(t *testing.T) {
	t.Parallel()

	// The oscillation grows from amplitude 1 to 2.5 across the trial, the
	// kind of drift a fixed threshold mis-handles. The rolling statistics
	// should keep detecting throughout.
	n := 500
	samples := make([]imu.Sample, n)
	for i := 0; i < n; i++ {
		ts := float64(i) / 50.0
		amp := 1.0 + 0.15*ts
		samples[i] = imu.Sample{
			T:     ts,
			Accel: [3]float64{0, 0, 9.81 + amp*math.Sin(2*math.Pi*2*ts)},
		}
	}
	rec := &imu.Recording{Samples: samples}

	d := NewAdaptiveThreshold(params.AdaptiveConfig{
		WindowSize: 2.0, Sensitivity: 0.6, MinTimeBetweenSteps: 0.3,
	})
	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)

	if n := len(res.Steps); n < 17 || n > 22 {
		t.Fatalf("detected %d steps across the drift, want ~20", n)
	}
	// Detections should span the trial, not just the loud tail.
	if res.Steps[0] > 2.0 {
		t.Errorf("first step at %.3f s, want early coverage", res.Steps[0])
	}
	if last := res.Steps[len(res.Steps)-1]; last < 8.0 {
		t.Errorf("last step at %.3f s, want late coverage", last)
	}
}

func TestAdaptiveFlatSignal(t *testing.T) {
	t.Parallel()
	rec := testutil.FlatRecording(50, 5)
	d := NewAdaptiveThreshold(params.AdaptiveConfig{
		WindowSize: 2.0, Sensitivity: 0.6, MinTimeBetweenSteps: 0.3,
	})

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if len(res.Steps) != 0 {
		t.Errorf("flat signal produced %d steps, want 0", len(res.Steps))
	}
}
