package detect

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gaitlab/stride.report/internal/params"
	"github.com/gaitlab/stride.report/internal/testutil"
)

func TestPeakDetectsCadence(t *testing.T) {
	t.Parallel()

	// 2 Hz sine for 10 s at 50 Hz with amplitude 3: one peak per cycle,
	// so ~20 steps spaced ~0.5 s apart.
	rec := testutil.SineRecording(50, 10, 2.0, 3.0)
	d := NewPeak(params.PeakConfig{WindowSize: 0.1, Threshold: 1.0, MinTimeBetweenSteps: 0.3})

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)

	if n := len(res.Steps); n < 19 || n > 21 {
		t.Fatalf("detected %d steps, want 19-21", n)
	}
	for i := 1; i < len(res.Steps); i++ {
		gap := res.Steps[i] - res.Steps[i-1]
		if gap < 0.4 || gap > 0.6 {
			t.Errorf("step gap %d = %.3f s, want ~0.5", i, gap)
		}
	}
}

func TestPeakFlatSignal(t *testing.T) {
	t.Parallel()
	rec := testutil.FlatRecording(50, 5)
	d := NewPeak(params.PeakConfig{WindowSize: 0.1, Threshold: 1.0, MinTimeBetweenSteps: 0.3})

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if len(res.Steps) != 0 {
		t.Errorf("flat signal produced %d steps, want 0", len(res.Steps))
	}
}

func TestPeakIdempotent(t *testing.T) {
	t.Parallel()
	rec := testutil.SineRecording(50, 10, 2.0, 3.0)
	d := NewPeak(params.PeakConfig{WindowSize: 0.1, Threshold: 1.0, MinTimeBetweenSteps: 0.3})

	first, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	second, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if diff := cmp.Diff(first.Steps, second.Steps); diff != "" {
		t.Errorf("repeated detection differs (-first +second):\n%s", diff)
	}
}

func TestPeakTinyRecording(t *testing.T) {
	t.Parallel()
	rec := testutil.FlatRecording(50, 0.02) // one sample
	d := NewPeak(params.PeakConfig{WindowSize: 0.1, Threshold: 1.0, MinTimeBetweenSteps: 0.3})
	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if len(res.Steps) != 0 {
		t.Errorf("got %d steps from a one-sample recording", len(res.Steps))
	}
}
