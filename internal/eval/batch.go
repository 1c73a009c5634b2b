package eval

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/gaitlab/stride.report/internal/detect"
	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/monitoring"
)

// AlgorithmReport is the per-(recording, detector) output record consumed by
// the persistence and reporting layers.
type AlgorithmReport struct {
	Algorithm            string    `json:"algorithm_name"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
	DetectedStepCount    int       `json:"detected_step_count"`
	StepTimestamps       []float64 `json:"step_timestamps"`
	StepRate             float64   `json:"step_rate_steps_per_second"`

	// Metrics is present when ground truth was supplied for the recording.
	Metrics *Metrics `json:"metrics,omitempty"`

	// Err records the degraded-failure reason for this one pair; the
	// sibling detectors are unaffected.
	Err string `json:"error,omitempty"`
}

// EvaluationRecord assembles the reports of every detector over one
// recording.
type EvaluationRecord struct {
	Trial           string            `json:"trial"`
	Sensor          string            `json:"sensor"`
	DurationSeconds float64           `json:"duration_seconds"`
	Reports         []AlgorithmReport `json:"reports"`
}

// Job is one recording queued for batch evaluation. GroundTruth may be nil
// (no metrics) or empty (metrics with zero recall by convention).
type Job struct {
	Trial       string
	Sensor      string
	Recording   *imu.Recording
	GroundTruth []float64
	Detectors   []detect.Detector
}

// Evaluator runs detector suites over recordings. Detection is pure and
// stateless, so the five detectors of one recording run concurrently and
// recordings fan out across a bounded worker pool.
type Evaluator struct {
	// Tolerance is the matching tolerance in seconds.
	Tolerance float64

	// Workers bounds concurrent recordings in EvaluateBatch; zero means
	// one worker per CPU.
	Workers int
}

// EvaluateRecording runs every detector over one recording and assembles
// the result record. A numeric or input defect in one detector degrades to
// an empty result with a recorded reason and never aborts the others.
func (e *Evaluator) EvaluateRecording(ctx context.Context, job Job) EvaluationRecord {
	rec := EvaluationRecord{
		Trial:  job.Trial,
		Sensor: job.Sensor,
	}
	if job.Recording != nil {
		rec.DurationSeconds = job.Recording.Duration()
	}
	rec.Reports = make([]AlgorithmReport, len(job.Detectors))

	// An invalid recording is an input defect for every detector on it,
	// recorded per pair rather than aborting the batch.
	var inputErr error
	if job.Recording == nil {
		inputErr = &imu.InvalidRecordingError{Reason: "no recording"}
	} else if err := job.Recording.Validate(); err != nil {
		inputErr = err
	}

	var wg sync.WaitGroup
	for i, det := range job.Detectors {
		rec.Reports[i].Algorithm = det.Name()
		if inputErr != nil {
			rec.Reports[i].Err = inputErr.Error()
			continue
		}
		if err := ctx.Err(); err != nil {
			rec.Reports[i].Err = err.Error()
			continue
		}
		wg.Add(1)
		go func(i int, det detect.Detector) {
			defer wg.Done()
			rec.Reports[i] = e.runDetector(det, job)
		}(i, det)
	}
	wg.Wait()
	return rec
}

func (e *Evaluator) runDetector(det detect.Detector, job Job) AlgorithmReport {
	report := AlgorithmReport{Algorithm: det.Name()}

	result, err := det.Detect(job.Recording)
	report.ExecutionTimeSeconds = result.ExecutionTime.Seconds()
	if err != nil {
		report.Err = err.Error()
		report.StepTimestamps = []float64{}
		monitoring.Logf("detector %s failed on trial %s/%s: %v", det.Name(), job.Trial, job.Sensor, err)
		return report
	}

	report.StepTimestamps = result.Steps
	report.DetectedStepCount = len(result.Steps)
	if d := job.Recording.Duration(); d > 0 {
		report.StepRate = float64(len(result.Steps)) / d
	}

	if job.GroundTruth != nil {
		corr := Match(job.GroundTruth, result.Steps, e.Tolerance)
		m := Compute(corr, job.GroundTruth, result.Steps, e.Tolerance, result.ExecutionTime)
		report.Metrics = &m
	}
	return report
}

// EvaluateBatch processes many recordings with a bounded fan-out. Results
// are returned in job order; failures stay scoped to their own records.
func (e *Evaluator) EvaluateBatch(ctx context.Context, jobs []Job) []EvaluationRecord {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	records := make([]EvaluationRecord, len(jobs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	start := time.Now()
	for i, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-sem }()
			records[i] = e.EvaluateRecording(ctx, job)
		}(i, job)
	}
	wg.Wait()
	monitoring.Logf("evaluated %d recordings in %s", len(jobs), time.Since(start).Round(time.Millisecond))
	return records
}
