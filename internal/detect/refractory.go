package detect

// candidate is a provisional step with a score used to break refractory
// ties. Score is algorithm-specific amplitude; detectors with no meaningful
// amplitude (zero-crossing cycles) pass preferHighest=false and keep the
// first candidate in time.
type candidate struct {
	T     float64
	Score float64
}

// suppress enforces the refractory period: any two accepted steps differ by
// at least minGap seconds. Candidates must be in ascending time order. When
// preferHighest is set and a candidate falls inside the refractory window of
// the last accepted step, the higher-scoring of the two survives.
func suppress(cands []candidate, minGap float64, preferHighest bool) []float64 {
	if len(cands) == 0 {
		return nil
	}
	accepted := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if len(accepted) == 0 {
			accepted = append(accepted, c)
			continue
		}
		last := &accepted[len(accepted)-1]
		if c.T-last.T >= minGap {
			accepted = append(accepted, c)
			continue
		}
		// Replacing with a later candidate only widens the gap to the
		// accepted step before it, so the invariant is preserved.
		if preferHighest && c.Score > last.Score {
			*last = c
		}
	}
	out := make([]float64, len(accepted))
	for i, c := range accepted {
		out[i] = c.T
	}
	return out
}
