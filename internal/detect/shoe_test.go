package detect

import (
	"errors"
	"testing"

	"github.com/gaitlab/stride.report/internal/params"
	"github.com/gaitlab/stride.report/internal/testutil"
)

func shoeConfig() params.SHOEConfig {
	return params.SHOEConfig{WindowSize: 0.2, Threshold: 0.5, MinTimeBetweenSteps: 0.3}
}

func TestSHOEDetectsStanceTransitions(t *testing.T) {
	t.Parallel()

	// One stance/swing cycle per second for 20 s: one stance-to-swing
	// transition, hence one step, per stride.
	rec := testutil.GaitRecording(50, 20, 1.0)
	d := NewSHOE(shoeConfig())

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)

	if n := len(res.Steps); n < 17 || n > 21 {
		t.Fatalf("detected %d steps, want ~20", n)
	}
	for i := 1; i < len(res.Steps); i++ {
		gap := res.Steps[i] - res.Steps[i-1]
		if gap < 0.3 {
			t.Errorf("refractory violated: gap %d = %.3f s", i, gap)
		}
		if gap < 0.8 || gap > 1.2 {
			t.Errorf("stride gap %d = %.3f s, want ~1.0", i, gap)
		}
	}
}

func TestSHOENoStancePhase(t *testing.T) {
	t.Parallel()

	// A sensor that never stops moving has no stance phases anywhere.
	// Zero steps is the defined outcome, not an error.
	rec := testutil.AlwaysMovingRecording(50, 10)
	d := NewSHOE(shoeConfig())

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if len(res.Steps) != 0 {
		t.Errorf("always-moving signal produced %d steps, want 0", len(res.Steps))
	}
}

func TestSHOERequiresGyro(t *testing.T) {
	t.Parallel()

	rec := testutil.SineRecording(50, 10, 2.0, 3.0) // accel only
	d := NewSHOE(shoeConfig())

	_, err := d.Detect(rec)
	testutil.AssertError(t, err)
	var derr *DetectorError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DetectorError, got %T", err)
	}
	if derr.Algorithm != params.AlgoSHOE {
		t.Errorf("error attributed to %q, want %q", derr.Algorithm, params.AlgoSHOE)
	}
}

func TestSHOERelaxedThresholdFindsQuasiStance(t *testing.T) {
	t.Parallel()

	// The wrist preset relaxes the stance threshold by an order of
	// magnitude. On a clean gait signal that must not break detection.
	rec := testutil.GaitRecording(50, 20, 1.0)
	d := NewSHOE(params.SHOEConfig{WindowSize: 0.2, Threshold: 2.5, MinTimeBetweenSteps: 0.3})

	res, err := d.Detect(rec)
	testutil.AssertNoError(t, err)
	if len(res.Steps) == 0 {
		t.Error("relaxed threshold detected no steps on a clean gait signal")
	}
}
