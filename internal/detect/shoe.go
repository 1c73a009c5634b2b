package detect

import (
	"time"

	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/params"
)

const (
	// shoeSmoothWindowSeconds pre-smooths both magnitude channels before
	// the stance statistics are computed.
	shoeSmoothWindowSeconds = 0.1

	// stanceAccelFactor and stanceGyroFactor derive the two stance
	// thresholds from the single configured threshold value. The split
	// follows the calibration used in the field trials: stance requires
	// both low acceleration variance and low angular rate.
	stanceAccelFactor = 0.5
	stanceGyroFactor  = 0.3
)

// SHOE (Step Heading Offset Estimator) is the multi-sensor detector: a
// sample interval is classified as stance when the trailing acceleration
// variance and the trailing gyroscope magnitude mean are both below their
// thresholds, and a step is emitted at each stance-to-swing transition.
//
// The stance threshold is calibration data, not a literature constant: a
// sensor that never truly stops moving (wrist, pocket, upper arm) needs a
// substantially relaxed threshold to find quasi-stationary phases. Mounting
// presets live in the parameter tables.
type SHOE struct {
	cfg params.SHOEConfig
}

// NewSHOE returns a SHOE detector with the given configuration.
func NewSHOE(cfg params.SHOEConfig) *SHOE { return &SHOE{cfg: cfg} }

// Name implements Detector.
func (d *SHOE) Name() string { return params.AlgoSHOE }

// Detect implements Detector.
func (d *SHOE) Detect(rec *imu.Recording) (Result, error) {
	start := time.Now()
	res := Result{Algorithm: d.Name()}
	if len(rec.Samples) < 2 {
		res.ExecutionTime = time.Since(start)
		return res, nil
	}
	if !rec.HasGyro {
		res.ExecutionTime = time.Since(start)
		return res, &DetectorError{Algorithm: d.Name(), Reason: "recording has no gyroscope channel"}
	}

	rate := rec.MeanRate()
	accel := imu.Smooth(rec.Magnitude(imu.Accel), shoeSmoothWindowSeconds, rate)
	gyro := imu.Smooth(rec.Magnitude(imu.Gyro), shoeSmoothWindowSeconds, rate)

	win := int(d.cfg.WindowSize * rate)
	if win < 2 {
		win = 2
	}
	accelSd := imu.RollingStd(accel, win)
	gyroMean := imu.RollingMean(gyro, win)

	accelThresh := d.cfg.Threshold * stanceAccelFactor
	gyroThresh := d.cfg.Threshold * stanceGyroFactor

	var cands []candidate
	prevStance := false
	for i := range accel {
		stance := accelSd[i]*accelSd[i] < accelThresh && gyroMean[i] < gyroThresh
		if prevStance && !stance {
			// Stance ended here; the swing onset is the step event. The
			// swing-side angular rate breaks refractory ties.
			cands = append(cands, candidate{T: rec.Samples[i].T, Score: gyro[i]})
		}
		prevStance = stance
	}

	// An always-moving signal produces no stance phases and therefore no
	// steps; that is a defined outcome, not a failure.
	res.Steps = suppress(cands, d.cfg.MinTimeBetweenSteps, true)
	res.ExecutionTime = time.Since(start)
	return res, nil
}
