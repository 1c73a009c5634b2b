package eval

import (
	"sort"
	"time"
)

// Metrics are the quality scores for one (recording, detector) pair,
// derived purely from a Correspondence and the two timestamp sequences.
//
// MSEPenalty is the tolerance-penalized mean squared timing error: every
// matched ground-truth event contributes its squared time error, every
// missed event and every spurious detection contributes tolerance², and the
// sum is divided by the number of contributing terms. Missed and spurious
// steps are penalized symmetrically, so the scalar stays comparable across
// algorithms regardless of how many steps each produced. With no
// contributing terms at all the penalty is 0.
type Metrics struct {
	Precision            float64 `json:"precision"`
	Recall               float64 `json:"recall"`
	F1                   float64 `json:"f1"`
	StepCountError       int     `json:"step_count_error"`
	MSEPenalty           float64 `json:"mse_penalty"`
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
}

// Compute derives Metrics from a correspondence. The zero conventions are
// explicit: precision is 0 with no detections, recall is 0 with no ground
// truth, and F1 is 0 whenever precision+recall is 0, including the case
// where both sequences are empty.
func Compute(corr Correspondence, groundTruth, detections []float64, tolerance float64, execTime time.Duration) Metrics {
	m := Metrics{
		StepCountError:       absInt(len(detections) - len(groundTruth)),
		ExecutionTimeSeconds: execTime.Seconds(),
	}

	matched := float64(corr.Matched())
	if len(detections) > 0 {
		m.Precision = matched / float64(len(detections))
	}
	if len(groundTruth) > 0 {
		m.Recall = matched / float64(len(groundTruth))
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	gt := append([]float64(nil), groundTruth...)
	det := append([]float64(nil), detections...)
	sort.Float64s(gt)
	sort.Float64s(det)

	var sum float64
	terms := 0
	for _, p := range corr.Pairs {
		d := gt[p.GroundTruth] - det[p.Detection]
		sum += d * d
		terms++
	}
	penalty := tolerance * tolerance
	sum += penalty * float64(len(corr.FalseNegatives)+len(corr.FalsePositives))
	terms += len(corr.FalseNegatives) + len(corr.FalsePositives)
	if terms > 0 {
		m.MSEPenalty = sum / float64(terms)
	}
	return m
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
