package detect

import (
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/gaitlab/stride.report/internal/imu"
	"github.com/gaitlab/stride.report/internal/params"
)

const (
	// minFrameSamples is the smallest STFT frame worth transforming; below
	// this the frequency resolution in the gait band is useless.
	minFrameSamples = 32

	// noiseFloorRatio gates the dominant bin: it must exceed this multiple
	// of the mean spectral amplitude or the frame contributes zero steps.
	noiseFloorRatio = 2.0
)

// Spectral detects steps in the frequency domain: overlapping Hann-windowed
// frames are transformed, the dominant frequency inside step_freq_range is
// converted to an expected cadence, and step timestamps are laid out evenly
// at that cadence. It trades point-in-time precision for robustness on
// sustained periodic motion and is expected to score worse on irregular
// gaits (TUG, stairs).
type Spectral struct {
	cfg params.SpectralConfig
}

// NewSpectral returns a Spectral detector with the given configuration.
func NewSpectral(cfg params.SpectralConfig) *Spectral { return &Spectral{cfg: cfg} }

// Name implements Detector.
func (d *Spectral) Name() string { return params.AlgoSpectral }

// Detect implements Detector.
func (d *Spectral) Detect(rec *imu.Recording) (Result, error) {
	start := time.Now()
	res := Result{Algorithm: d.Name()}
	n := len(rec.Samples)
	if n < minFrameSamples {
		res.ExecutionTime = time.Since(start)
		return res, nil
	}

	rate := rec.MeanRate()
	mag := rec.Magnitude(imu.Accel)
	times := rec.Times()

	frameLen := int(d.cfg.WindowSize * rate)
	if frameLen > n {
		frameLen = n
	}
	if frameLen < minFrameSamples {
		frameLen = minFrameSamples
	}
	hop := int(float64(frameLen) * (1 - d.cfg.Overlap))
	if hop < 1 {
		hop = 1
	}

	fft := fourier.NewFFT(frameLen)
	frame := make([]float64, frameLen)
	var steps []float64
	cursor := math.NaN()

	for s := 0; s+frameLen <= n; s += hop {
		copy(frame, mag[s:s+frameLen])
		floats.AddConst(-stMean(frame), frame)
		window.Hann(frame)

		coeffs := fft.Coefficients(nil, frame)
		freq, ok := d.dominantFrequency(fft, coeffs, rate)

		// Steps are laid out over the frame's advance segment only, so
		// overlapping frames never double count; the last frame covers its
		// full extent.
		segStart := times[s]
		segEnd := times[s+frameLen-1]
		if s+hop+frameLen <= n {
			segEnd = times[s+hop]
		}

		if !ok {
			cursor = math.NaN()
			continue
		}
		interval := 1.0 / freq
		if math.IsNaN(cursor) || cursor < segStart {
			cursor = segStart + interval/2
		}
		for cursor < segEnd {
			steps = append(steps, cursor)
			cursor += interval
		}
	}

	cands := make([]candidate, len(steps))
	for i, t := range steps {
		cands[i] = candidate{T: t}
	}
	res.Steps = suppress(cands, d.cfg.MinTimeBetweenSteps, false)
	res.ExecutionTime = time.Since(start)
	return res, nil
}

// dominantFrequency picks the strongest bin inside step_freq_range, gated
// by the noise floor. With peak_interpolation enabled the bin centre is
// refined by a parabolic fit across its neighbours.
func (d *Spectral) dominantFrequency(fft *fourier.FFT, coeffs []complex128, rate float64) (float64, bool) {
	var sum float64
	count := 0
	bestIdx := -1
	bestAmp := 0.0
	for i := 1; i < len(coeffs); i++ { // skip DC
		amp := cmplx.Abs(coeffs[i])
		sum += amp
		count++
		hz := fft.Freq(i) * rate
		if hz < d.cfg.StepFreqRange.Min || hz > d.cfg.StepFreqRange.Max {
			continue
		}
		if amp > bestAmp {
			bestAmp = amp
			bestIdx = i
		}
	}
	if bestIdx < 0 || count == 0 {
		return 0, false
	}
	if bestAmp <= noiseFloorRatio*(sum/float64(count)) {
		return 0, false
	}

	freq := fft.Freq(bestIdx) * rate
	if d.cfg.PeakInterpolation && bestIdx > 1 && bestIdx < len(coeffs)-1 {
		a := cmplx.Abs(coeffs[bestIdx-1])
		b := bestAmp
		c := cmplx.Abs(coeffs[bestIdx+1])
		denom := a - 2*b + c
		if denom != 0 {
			delta := 0.5 * (a - c) / denom
			if delta > -0.5 && delta < 0.5 {
				binWidth := fft.Freq(1) * rate
				freq += delta * binWidth
			}
		}
	}
	if freq <= 0 {
		return 0, false
	}
	return freq, true
}

func stMean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Sum(x) / float64(len(x))
}
