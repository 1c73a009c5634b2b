package eval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaitlab/stride.report/internal/detect"
	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/testutil"
)

// stubDetector returns canned steps or a canned error; it stands in for the
// real suite so batch semantics can be tested in isolation.
type stubDetector struct {
	name  string
	steps []float64
	err   error
}

func (s *stubDetector) Name() string { return s.name }

func (s *stubDetector) Detect(*imu.Recording) (detect.Result, error) {
	if s.err != nil {
		return detect.Result{Algorithm: s.name, ExecutionTime: time.Microsecond}, s.err
	}
	return detect.Result{
		Algorithm:     s.name,
		Steps:         append([]float64(nil), s.steps...),
		ExecutionTime: time.Microsecond,
	}, nil
}

func TestEvaluateRecordingFailureIsolation(t *testing.T) {
	t.Parallel()

	job := Job{
		Trial:       "t01",
		Sensor:      "sensor1",
		Recording:   testutil.SineRecording(50, 10, 2.0, 3.0),
		GroundTruth: []float64{1.0, 2.0},
		Detectors: []detect.Detector{
			&stubDetector{name: "good_a", steps: []float64{1.05, 2.1}},
			&stubDetector{name: "broken", err: &detect.DetectorError{Algorithm: "broken", Reason: "singular matrix"}},
			&stubDetector{name: "good_b", steps: []float64{0.9}},
		},
	}
	e := &Evaluator{Tolerance: 0.3}
	rec := e.EvaluateRecording(context.Background(), job)

	require.Len(t, rec.Reports, 3)

	assert.Empty(t, rec.Reports[0].Err)
	assert.Equal(t, 2, rec.Reports[0].DetectedStepCount)
	require.NotNil(t, rec.Reports[0].Metrics)
	assert.Equal(t, 1.0, rec.Reports[0].Metrics.Precision)

	// The failed detector degrades to an empty result with a reason and
	// leaves its siblings untouched.
	broken := rec.Reports[1]
	assert.Equal(t, "broken", broken.Algorithm)
	assert.Contains(t, broken.Err, "singular matrix")
	assert.NotNil(t, broken.StepTimestamps)
	assert.Empty(t, broken.StepTimestamps)
	assert.Nil(t, broken.Metrics)

	assert.Empty(t, rec.Reports[2].Err)
	assert.Equal(t, 1, rec.Reports[2].DetectedStepCount)
}

func TestEvaluateRecordingGroundTruthModes(t *testing.T) {
	t.Parallel()

	e := &Evaluator{Tolerance: 0.3}
	rec := testutil.SineRecording(50, 10, 2.0, 3.0)
	det := []detect.Detector{&stubDetector{name: "stub", steps: []float64{1.0, 2.0}}}

	t.Run("nil ground truth skips metrics", func(t *testing.T) {
		out := e.EvaluateRecording(context.Background(), Job{
			Trial: "t01", Sensor: "sensor1", Recording: rec, Detectors: det,
		})
		assert.Nil(t, out.Reports[0].Metrics)
		assert.Equal(t, 2, out.Reports[0].DetectedStepCount)
	})

	t.Run("empty ground truth scores with zero recall", func(t *testing.T) {
		out := e.EvaluateRecording(context.Background(), Job{
			Trial: "t01", Sensor: "sensor1", Recording: rec,
			GroundTruth: []float64{}, Detectors: det,
		})
		m := out.Reports[0].Metrics
		require.NotNil(t, m)
		assert.Zero(t, m.Recall)
		assert.Zero(t, m.Precision)
		assert.Equal(t, 2, m.StepCountError)
	})
}

func TestEvaluateRecordingInvalidInput(t *testing.T) {
	t.Parallel()

	e := &Evaluator{Tolerance: 0.3}
	dets := []detect.Detector{
		&stubDetector{name: "a", steps: []float64{1.0}},
		&stubDetector{name: "b", steps: []float64{2.0}},
	}

	t.Run("missing recording", func(t *testing.T) {
		out := e.EvaluateRecording(context.Background(), Job{
			Trial: "t01", Sensor: "sensor1", Detectors: dets,
		})
		require.Len(t, out.Reports, 2)
		for _, r := range out.Reports {
			assert.Contains(t, r.Err, "no recording")
			assert.Zero(t, r.DetectedStepCount)
		}
	})

	t.Run("recording that fails validation", func(t *testing.T) {
		bad := &imu.Recording{Samples: []imu.Sample{{T: 0}}}
		out := e.EvaluateRecording(context.Background(), Job{
			Trial: "t01", Sensor: "sensor1", Recording: bad, Detectors: dets,
		})
		for _, r := range out.Reports {
			assert.NotEmpty(t, r.Err)
		}
	})
}

func TestEvaluateRecordingCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &Evaluator{Tolerance: 0.3}
	out := e.EvaluateRecording(ctx, Job{
		Trial: "t01", Sensor: "sensor1",
		Recording: testutil.SineRecording(50, 10, 2.0, 3.0),
		Detectors: []detect.Detector{&stubDetector{name: "stub", steps: []float64{1.0}}},
	})
	assert.Contains(t, out.Reports[0].Err, "context canceled")
}

func TestEvaluateBatchPreservesOrder(t *testing.T) {
	t.Parallel()

	rec := testutil.SineRecording(50, 5, 2.0, 3.0)
	var jobs []Job
	for i := 0; i < 12; i++ {
		jobs = append(jobs, Job{
			Trial:     fmt.Sprintf("trial_%02d", i),
			Sensor:    "sensor1",
			Recording: rec,
			Detectors: []detect.Detector{&stubDetector{name: "stub", steps: []float64{1.0}}},
		})
	}

	e := &Evaluator{Tolerance: 0.3, Workers: 3}
	records := e.EvaluateBatch(context.Background(), jobs)

	require.Len(t, records, len(jobs))
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("trial_%02d", i), r.Trial)
		assert.Equal(t, rec.Duration(), r.DurationSeconds)
	}
}
