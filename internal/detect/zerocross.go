package detect

import (
	"time"

	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/params"
)

// zcDetrendWindowSeconds is the moving-mean window used to remove the
// gravity/orientation bias before crossing logic runs.
const zcDetrendWindowSeconds = 2.0

// ZeroCrossing detects steps from full hysteresis cycles of the detrended
// acceleration magnitude: a downward crossing of -hysteresis_band followed
// by an upward crossing of +hysteresis_band. The dead band suppresses
// chatter near zero from sensor noise; a band wider than the signal's
// amplitude yields zero detections.
type ZeroCrossing struct {
	cfg params.ZeroCrossingConfig
}

// NewZeroCrossing returns a ZeroCrossing detector with the given configuration.
func NewZeroCrossing(cfg params.ZeroCrossingConfig) *ZeroCrossing {
	return &ZeroCrossing{cfg: cfg}
}

// Name implements Detector.
func (d *ZeroCrossing) Name() string { return params.AlgoZeroCrossing }

// Detect implements Detector.
func (d *ZeroCrossing) Detect(rec *imu.Recording) (Result, error) {
	start := time.Now()
	res := Result{Algorithm: d.Name()}
	if len(rec.Samples) < 2 {
		res.ExecutionTime = time.Since(start)
		return res, nil
	}

	rate := rec.MeanRate()
	mag := rec.Magnitude(imu.Accel)
	smoothed := imu.Smooth(mag, d.cfg.WindowSize, rate)
	centered := imu.Detrend(smoothed, zcDetrendWindowSeconds, rate)

	band := d.cfg.HysteresisBand
	var cands []candidate
	armed := false
	for i, v := range centered {
		switch {
		case !armed && v < -band:
			armed = true
		case armed && v > band:
			// Full cycle complete; the step lands on the upward crossing.
			cands = append(cands, candidate{T: rec.Samples[i].T})
			armed = false
		}
	}

	// A hysteresis cycle has no meaningful amplitude, so ties inside the
	// refractory window keep the first crossing in time.
	res.Steps = suppress(cands, d.cfg.MinTimeBetweenSteps, false)
	res.ExecutionTime = time.Since(start)
	return res, nil
}
