package imu

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// savgolOrder is the polynomial degree used for Savitzky-Golay smoothing.
// Cubic fits preserve peak shape noticeably better than quadratic on gait
// signals sampled in the 20-100 Hz range.
const savgolOrder = 3

// Smooth applies Savitzky-Golay smoothing with the window given as a time
// duration, converted to samples with the supplied rate. When the window in
// samples is too small to support the filter order (very short recordings or
// very low rates) it degrades to a plain moving average instead of failing.
func Smooth(x []float64, windowSeconds, rate float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	w := int(windowSeconds * rate)
	if w < 3 {
		w = 3
	}
	if w%2 == 0 {
		w++
	}
	if w > n {
		w = n
		if w%2 == 0 {
			w--
		}
	}
	if w < savgolOrder+2 {
		return MovingAverage(x, maxInt(w, 1))
	}
	coeffs, err := savgolCoeffs(w, savgolOrder)
	if err != nil {
		// Degenerate design matrix; moving average is the defined fallback.
		return MovingAverage(x, w)
	}
	return convolveReflect(x, coeffs)
}

// Detrend subtracts a centred local moving mean over windowSeconds, removing
// the gravity/orientation bias so threshold and zero-crossing logic see a
// zero-centred signal.
func Detrend(x []float64, windowSeconds, rate float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	w := int(windowSeconds * rate)
	if w < 1 {
		w = 1
	}
	mean := MovingAverage(x, w)
	out := make([]float64, n)
	for i := range x {
		out[i] = x[i] - mean[i]
	}
	return out
}

// MovingAverage returns the centred moving mean with window size w samples.
// Near the edges the window shrinks to the available samples.
func MovingAverage(x []float64, w int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if w < 1 {
		w = 1
	}
	half := w / 2
	// Prefix sums keep this linear regardless of window size.
	prefix := make([]float64, n+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}
		out[i] = (prefix[hi+1] - prefix[lo]) / float64(hi-lo+1)
	}
	return out
}

// RollingMean returns the trailing mean over windows of w samples with
// min-periods-1 semantics: the first elements average whatever is available.
func RollingMean(x []float64, w int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if w < 1 {
		w = 1
	}
	var sum float64
	for i, v := range x {
		sum += v
		if i >= w {
			sum -= x[i-w]
		}
		count := i + 1
		if count > w {
			count = w
		}
		out[i] = sum / float64(count)
	}
	return out
}

// RollingStd returns the trailing sample standard deviation over windows of
// w samples. Windows with fewer than two samples yield 0 rather than NaN so
// threshold comparisons stay well defined.
func RollingStd(x []float64, w int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if w < 2 {
		return out
	}
	var sum, sumSq float64
	for i, v := range x {
		sum += v
		sumSq += v * v
		if i >= w {
			sum -= x[i-w]
			sumSq -= x[i-w] * x[i-w]
		}
		count := i + 1
		if count > w {
			count = w
		}
		if count < 2 {
			continue
		}
		mean := sum / float64(count)
		variance := (sumSq - float64(count)*mean*mean) / float64(count-1)
		if variance < 0 {
			variance = 0 // floating-point cancellation
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// savgolCoeffs computes the central Savitzky-Golay convolution coefficients
// for the given odd window length and polynomial order by solving the
// least-squares normal equations.
func savgolCoeffs(window, order int) ([]float64, error) {
	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		p := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, p)
			p *= x
		}
	}
	var ata mat.Dense
	ata.Mul(a.T(), a)

	// The smoothed centre value is the constant term of the local fit, so
	// the convolution kernel is A (AᵀA)⁻¹ e₀.
	e0 := mat.NewVecDense(order+1, nil)
	e0.SetVec(0, 1)
	var z mat.VecDense
	if err := z.SolveVec(&ata, e0); err != nil {
		return nil, err
	}
	var c mat.VecDense
	c.MulVec(a, &z)

	out := make([]float64, window)
	for i := range out {
		out[i] = c.AtVec(i)
	}
	return out, nil
}

// convolveReflect applies a symmetric FIR kernel with reflected edges,
// preserving the input length.
func convolveReflect(x, kernel []float64) []float64 {
	n := len(x)
	half := len(kernel) / 2
	out := make([]float64, n)
	for i := range x {
		var acc float64
		for k, c := range kernel {
			j := i + k - half
			// Reflect out-of-range indices back into the signal.
			if j < 0 {
				j = -j
			}
			if j > n-1 {
				j = 2*(n-1) - j
			}
			if j < 0 {
				j = 0 // signals shorter than the kernel half-width
			}
			acc += c * x[j]
		}
		out[i] = acc
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
