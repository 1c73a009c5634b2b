package detect

import (
	"time"

	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/params"
)

// adaptiveSmoothWindowSeconds is the fixed pre-smoothing applied before the
// trailing statistics are computed; the configured window_size governs the
// statistics window itself.
const adaptiveSmoothWindowSeconds = 0.1

// AdaptiveThreshold has the same structural shape as Peak but recomputes its
// threshold continuously from a trailing window, using sensitivity as the
// multiplier on the rolling standard deviation. That tolerates slow drift in
// signal amplitude (a subject tiring mid-trial) at the cost of reacting to
// short noise bursts.
type AdaptiveThreshold struct {
	cfg params.AdaptiveConfig
}

// NewAdaptiveThreshold returns an AdaptiveThreshold detector with the given
// configuration.
func NewAdaptiveThreshold(cfg params.AdaptiveConfig) *AdaptiveThreshold {
	return &AdaptiveThreshold{cfg: cfg}
}

// Name implements Detector.
func (d *AdaptiveThreshold) Name() string { return params.AlgoAdaptive }

// Detect implements Detector.
func (d *AdaptiveThreshold) Detect(rec *imu.Recording) (Result, error) {
	start := time.Now()
	res := Result{Algorithm: d.Name()}
	if len(rec.Samples) < 2 {
		res.ExecutionTime = time.Since(start)
		return res, nil
	}

	rate := rec.MeanRate()
	mag := rec.Magnitude(imu.Accel)
	filtered := imu.Smooth(mag, adaptiveSmoothWindowSeconds, rate)

	statsWin := int(d.cfg.WindowSize * rate)
	if statsWin < 2 {
		statsWin = 2
	}
	localMean := imu.RollingMean(filtered, statsWin)
	sd := imu.RollingStd(filtered, statsWin)

	var cands []candidate
	for i := 1; i < len(filtered)-1; i++ {
		// A zero rolling deviation means the trailing window is flat;
		// nothing there can be a step.
		if sd[i] <= 0 {
			continue
		}
		dev := filtered[i] - localMean[i]
		if dev <= d.cfg.Sensitivity*sd[i] {
			continue
		}
		if filtered[i] > filtered[i-1] && filtered[i] >= filtered[i+1] {
			cands = append(cands, candidate{T: rec.Samples[i].T, Score: dev})
		}
	}

	res.Steps = suppress(cands, d.cfg.MinTimeBetweenSteps, true)
	res.ExecutionTime = time.Since(start)
	return res, nil
}
