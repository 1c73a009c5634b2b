package detect

import (
	"testing"

	"github.com/gaitlab/stride.report/internal/params"
	"github.com/gaitlab/stride.report/internal/testutil"
)

func TestZeroCrossingDetectsCycles(t *testing.T) {
	t.Parallel()

	rec := testutil.SineRecording(50, 10, 2.0, 3.0)
	d := NewZeroCrossing(params.ZeroCrossingConfig{
		WindowSize: 0.1, HysteresisBand: 0.3, MinTimeBetweenSteps: 0.3,
	})

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)

	// One full hysteresis cycle per sine period: ~20 over 10 s.
	if n := len(res.Steps); n < 18 || n > 21 {
		t.Fatalf("detected %d steps, want ~20", n)
	}
	for i := 1; i < len(res.Steps); i++ {
		if gap := res.Steps[i] - res.Steps[i-1]; gap < 0.3 {
			t.Errorf("refractory violated: gap %d = %.3f s", i, gap)
		}
	}
}

func TestZeroCrossingBandWiderThanSignal(t *testing.T) {
	t.Parallel()

	// A dead band wider than the oscillation amplitude is expected to
	// yield zero detections, not an error.
	rec := testutil.SineRecording(50, 10, 2.0, 3.0)
	d := NewZeroCrossing(params.ZeroCrossingConfig{
		WindowSize: 0.1, HysteresisBand: 5.0, MinTimeBetweenSteps: 0.3,
	})

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if len(res.Steps) != 0 {
		t.Errorf("band wider than amplitude produced %d steps, want 0", len(res.Steps))
	}
}

func TestZeroCrossingFlatSignal(t *testing.T) {
	t.Parallel()
	rec := testutil.FlatRecording(50, 5)
	d := NewZeroCrossing(params.ZeroCrossingConfig{
		WindowSize: 0.1, HysteresisBand: 0.3, MinTimeBetweenSteps: 0.3,
	})

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if len(res.Steps) != 0 {
		t.Errorf("flat signal produced %d steps, want 0", len(res.Steps))
	}
}
