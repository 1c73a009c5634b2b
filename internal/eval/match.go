// Package eval scores detected step sequences against human-marked ground
// truth: a tolerance-window matcher producing a one-to-one correspondence,
// a metrics engine deriving comparable quality scores from it, and a batch
// evaluator that runs the whole detector suite with partial-failure
// isolation.
package eval

import "sort"

// Pair is one matched (ground truth, detection) index pair.
type Pair struct {
	GroundTruth int
	Detection   int
}

// Correspondence is a one-to-one matching between a ground-truth sequence
// and a detection sequence. Every index of both inputs appears exactly once
// across Pairs, FalseNegatives and FalsePositives.
type Correspondence struct {
	Pairs          []Pair
	FalseNegatives []int // unmatched ground-truth indices
	FalsePositives []int // unmatched detection indices
}

// Matched returns the number of matched pairs.
func (c Correspondence) Matched() int { return len(c.Pairs) }

// Match aligns detections against ground truth under the given tolerance in
// seconds, using a single left-to-right greedy sweep. Steps are strictly
// ordered in time and the tolerance is much smaller than the physiological
// inter-step interval, so the greedy result coincides with optimal bipartite
// matching in practice. When two detections are equally close the earlier
// one wins, keeping the output deterministic.
//
// Both inputs are expected sorted; copies are sorted here since the sweep
// silently misbehaves otherwise.
func Match(groundTruth, detections []float64, tolerance float64) Correspondence {
	gt := append([]float64(nil), groundTruth...)
	det := append([]float64(nil), detections...)
	sort.Float64s(gt)
	sort.Float64s(det)

	var corr Correspondence
	j := 0
	for i, g := range gt {
		// Walk to the nearest unmatched detection. Strict improvement only:
		// on a tie the earlier detection is preferred.
		for j < len(det)-1 && abs(det[j+1]-g) < abs(det[j]-g) {
			corr.FalsePositives = append(corr.FalsePositives, j)
			j++
		}
		if j < len(det) && abs(det[j]-g) <= tolerance {
			corr.Pairs = append(corr.Pairs, Pair{GroundTruth: i, Detection: j})
			j++
		} else {
			corr.FalseNegatives = append(corr.FalseNegatives, i)
		}
	}
	for ; j < len(det); j++ {
		corr.FalsePositives = append(corr.FalsePositives, j)
	}
	return corr
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
