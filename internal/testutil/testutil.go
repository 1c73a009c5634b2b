// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common assert helpers and synthetic inertial
// signal generators so detector and evaluation tests do not duplicate
// waveform construction.
package testutil

import (
	"math"
	"testing"

	"github.com/gaitlab/stride.report/internal/imu"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertClose checks that got is within tol of want.
func AssertClose(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("got %g, want %g (±%g)", got, want, tol)
	}
}

// SineRecording builds a recording whose acceleration magnitude oscillates
// at freqHz around a gravity-like baseline, sampled at rate Hz for duration
// seconds. The oscillation rides on the Z axis so the magnitude carries it
// directly.
func SineRecording(rate, duration, freqHz, amplitude float64) *imu.Recording {
	n := int(rate * duration)
	samples := make([]imu.Sample, n)
	for i := 0; i < n; i++ {
		t := float64(i) / rate
		samples[i] = imu.Sample{
			T:     t,
			Accel: [3]float64{0, 0, 9.81 + amplitude*math.Sin(2*math.Pi*freqHz*t)},
		}
	}
	return &imu.Recording{Samples: samples}
}

// FlatRecording builds a zero-variance recording: constant gravity on Z,
// nothing else.
func FlatRecording(rate, duration float64) *imu.Recording {
	n := int(rate * duration)
	samples := make([]imu.Sample, n)
	for i := 0; i < n; i++ {
		samples[i] = imu.Sample{
			T:     float64(i) / rate,
			Accel: [3]float64{0, 0, 9.81},
		}
	}
	return &imu.Recording{Samples: samples}
}

// GaitRecording builds a stance/swing composite with both channels: during
// each stride the first half is quiet (stance) and the second half carries
// an acceleration burst plus angular rate (swing). stridePeriod is the full
// stance+swing cycle in seconds.
func GaitRecording(rate, duration, stridePeriod float64) *imu.Recording {
	n := int(rate * duration)
	samples := make([]imu.Sample, n)
	for i := 0; i < n; i++ {
		t := float64(i) / rate
		phase := math.Mod(t, stridePeriod) / stridePeriod
		var accelZ, gyroY float64
		if phase >= 0.5 {
			swing := (phase - 0.5) * 2 // 0..1 across the swing
			accelZ = 3.0 * math.Sin(math.Pi*swing)
			gyroY = 2.0 * math.Sin(math.Pi*swing)
		}
		samples[i] = imu.Sample{
			T:     t,
			Accel: [3]float64{0, 0, 9.81 + accelZ},
			Gyro:  [3]float64{0, gyroY, 0},
		}
	}
	return &imu.Recording{Samples: samples, HasGyro: true}
}

// AlwaysMovingRecording builds a recording whose gyroscope magnitude never
// drops toward zero, so no stance phase exists anywhere.
func AlwaysMovingRecording(rate, duration float64) *imu.Recording {
	n := int(rate * duration)
	samples := make([]imu.Sample, n)
	for i := 0; i < n; i++ {
		t := float64(i) / rate
		samples[i] = imu.Sample{
			T:     t,
			Accel: [3]float64{0, 0, 9.81 + 2.0*math.Sin(2*math.Pi*1.8*t)},
			Gyro:  [3]float64{3.0 + math.Sin(2*math.Pi*1.8*t), 0, 0},
		}
	}
	return &imu.Recording{Samples: samples, HasGyro: true}
}
