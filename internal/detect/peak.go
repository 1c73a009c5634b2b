package detect

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/params"
)

// peakStatsWindowSeconds is the sliding analysis window the local mean and
// rolling deviation are computed over.
const peakStatsWindowSeconds = 2.0

// Peak detects steps as local maxima of the smoothed acceleration magnitude
// that exceed an adaptive threshold: the configured multiplier applied to
// the rolling standard deviation above the local mean.
type Peak struct {
	cfg params.PeakConfig
}

// NewPeak returns a Peak detector with the given configuration.
func NewPeak(cfg params.PeakConfig) *Peak { return &Peak{cfg: cfg} }

// Name implements Detector.
func (d *Peak) Name() string { return params.AlgoPeak }

// Detect implements Detector.
func (d *Peak) Detect(rec *imu.Recording) (Result, error) {
	start := time.Now()
	res := Result{Algorithm: d.Name()}
	if len(rec.Samples) < 2 {
		res.ExecutionTime = time.Since(start)
		return res, nil
	}

	rate := rec.MeanRate()
	mag := rec.Magnitude(imu.Accel)
	filtered := imu.Smooth(mag, d.cfg.WindowSize, rate)

	// A flat window has nothing to threshold against; zero steps, no error.
	if stat.Variance(filtered, nil) == 0 {
		res.ExecutionTime = time.Since(start)
		return res, nil
	}

	statsWin := int(peakStatsWindowSeconds * rate)
	if statsWin < 20 {
		statsWin = 20
	}
	localMean := imu.RollingMean(filtered, statsWin)
	sd := imu.RollingStd(filtered, statsWin)

	var cands []candidate
	for i := 1; i < len(filtered)-1; i++ {
		dev := filtered[i] - localMean[i]
		if sd[i] <= 0 || dev <= d.cfg.Threshold*sd[i] {
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
