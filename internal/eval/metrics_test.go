package eval

import (
	"math"
	"testing"
	"time"
)

func TestComputeKnownScores(t *testing.T) {
	t.Parallel()

	gt := []float64{1.0, 2.0, 3.0}
	det := []float64{1.05, 2.90}
	tol := 0.3
	corr := Match(gt, det, tol)

	m := Compute(corr, gt, det, tol, 1500*time.Microsecond)

	if m.Precision != 1.0 {
		t.Errorf("precision = %g, want 1.0", m.Precision)
	}
	if math.Abs(m.Recall-2.0/3.0) > 1e-9 {
		t.Errorf("recall = %g, want 2/3", m.Recall)
	}
	if math.Abs(m.F1-0.8) > 1e-9 {
		t.Errorf("f1 = %g, want 0.8", m.F1)
	}
	if m.StepCountError != 1 {
		t.Errorf("step count error = %d, want 1", m.StepCountError)
	}

	// Two matched terms (0.05² and 0.10²) plus one missed event at tol².
	wantMSE := (0.0025 + 0.01 + 0.09) / 3.0
	if math.Abs(m.MSEPenalty-wantMSE) > 1e-9 {
		t.Errorf("mse penalty = %g, want %g", m.MSEPenalty, wantMSE)
	}
	if math.Abs(m.ExecutionTimeSeconds-0.0015) > 1e-12 {
		t.Errorf("execution time = %g s, want 0.0015", m.ExecutionTimeSeconds)
	}
}

func TestComputeZeroConventions(t *testing.T) {
	t.Parallel()

	tol := 0.3

	t.Run("no detections", func(t *testing.T) {
		gt := []float64{1.0, 2.0}
		corr := Match(gt, nil, tol)
		m := Compute(corr, gt, nil, tol, 0)
		if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
			t.Errorf("got p=%g r=%g f1=%g, want all 0", m.Precision, m.Recall, m.F1)
		}
		if m.StepCountError != 2 {
			t.Errorf("step count error = %d, want 2", m.StepCountError)
		}
		// Two missed events, nothing else: the penalty is exactly tol².
		if math.Abs(m.MSEPenalty-tol*tol) > 1e-12 {
			t.Errorf("mse penalty = %g, want %g", m.MSEPenalty, tol*tol)
		}
	})

	t.Run("no ground truth", func(t *testing.T) {
		det := []float64{1.0, 2.0, 3.0}
		corr := Match(nil, det, tol)
		m := Compute(corr, nil, det, tol, 0)
		if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
			t.Errorf("got p=%g r=%g f1=%g, want all 0", m.Precision, m.Recall, m.F1)
		}
		if math.Abs(m.MSEPenalty-tol*tol) > 1e-12 {
			t.Errorf("mse penalty = %g, want %g", m.MSEPenalty, tol*tol)
		}
	})

	t.Run("both empty", func(t *testing.T) {
		corr := Match(nil, nil, tol)
		m := Compute(corr, nil, nil, tol, 0)
		if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 || m.MSEPenalty != 0 || m.StepCountError != 0 {
			t.Errorf("non-zero metrics on empty inputs: %+v", m)
		}
	})
}

func TestComputePerfectDetection(t *testing.T) {
	t.Parallel()

	gt := []float64{1.0, 2.0, 3.0}
	corr := Match(gt, gt, 0.3)
	m := Compute(corr, gt, gt, 0.3, 0)
	if m.Precision != 1 || m.Recall != 1 || m.F1 != 1 {
		t.Errorf("got p=%g r=%g f1=%g, want all 1", m.Precision, m.Recall, m.F1)
	}
	if m.MSEPenalty != 0 {
		t.Errorf("mse penalty = %g, want 0", m.MSEPenalty)
	}
	if m.StepCountError != 0 {
		t.Errorf("step count error = %d, want 0", m.StepCountError)
	}
}
