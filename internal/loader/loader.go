// Package loader ingests trial directories: per-sensor CSV recordings, the
// human-marked ground-truth step times, and optional trial metadata. The
// folder contract matches the field-trial collector: each trial directory
// holds sensor1_waveshare.csv, sensor2_adafruit.csv, ground_truth.csv and
// optionally metadata.json.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gaitlab/stride.report/internal/imu"
)

// Sensor file names inside a trial directory, keyed by sensor label.
var SensorFiles = map[string]string{
	"sensor1": "sensor1_waveshare.csv",
	"sensor2": "sensor2_adafruit.csv",
}

const (
	// GroundTruthFile is the marker file of step timestamps.
	GroundTruthFile = "ground_truth.csv"
	// MetadataFile carries per-trial context (sampling rate, scenario, mount).
	MetadataFile = "metadata.json"
)

// Metadata is the optional per-trial context document.
type Metadata struct {
	SamplingFrequency float64 `json:"sampling_frequency"`
	Scenario          string  `json:"scenario"`
	MountingPoint     string  `json:"mounting_point"`
}

// LoadRecording parses a sensor CSV into a Recording. Required columns:
// time, accel_x, accel_y, accel_z. Gyroscope columns are optional; any
// other columns (magnetometer, battery) are ignored. Malformed files
// surface as *imu.InvalidRecordingError wrapped with the path.
func LoadRecording(path string) (*imu.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		return nil, invalid(path, "cannot read CSV header: "+err.Error())
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"time", "accel_x", "accel_y", "accel_z"} {
		if _, ok := col[required]; !ok {
			return nil, invalid(path, "missing column "+required)
		}
	}
	_, hasGyro := col["gyro_x"]

	rec := &imu.Recording{HasGyro: hasGyro}
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, invalid(path, fmt.Sprintf("line %d: %v", line, err))
		}
		var s imu.Sample
		if s.T, err = field(row, col, "time"); err != nil {
			return nil, invalid(path, fmt.Sprintf("line %d: %v", line, err))
		}
		for axis, name := range [3]string{"accel_x", "accel_y", "accel_z"} {
			if s.Accel[axis], err = field(row, col, name); err != nil {
				return nil, invalid(path, fmt.Sprintf("line %d: %v", line, err))
			}
		}
		if hasGyro {
			for axis, name := range [3]string{"gyro_x", "gyro_y", "gyro_z"} {
				if s.Gyro[axis], err = field(row, col, name); err != nil {
					return nil, invalid(path, fmt.Sprintf("line %d: %v", line, err))
				}
			}
		}
		rec.Samples = append(rec.Samples, s)
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// LoadGroundTruth parses the step_times column of a ground-truth CSV. An
// empty sequence is valid.
func LoadGroundTruth(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return []float64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: cannot read header: %w", path, err)
	}
	idx := -1
	for i, name := range header {
		if name == "step_times" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s: missing column step_times", path)
	}

	steps := []float64{}
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, line, err)
		}
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: bad step time %q", path, line, row[idx])
		}
		steps = append(steps, v)
	}
	sort.Float64s(steps)
	return steps, nil
}

// LoadMetadata reads the optional metadata document. A missing file is not
// an error; the zero Metadata is returned.
func LoadMetadata(dir string) (Metadata, error) {
	var md Metadata
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if os.IsNotExist(err) {
		return md, nil
	}
	if err != nil {
		return md, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &md); err != nil {
		return md, fmt.Errorf("parse %s: %w", MetadataFile, err)
	}
	return md, nil
}

// FindTrialDirs walks root and returns every directory containing the full
// trial file set, sorted for deterministic batch order.
func FindTrialDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		for _, file := range SensorFiles {
			if _, err := os.Stat(filepath.Join(path, file)); err != nil {
				return nil
			}
		}
		if _, err := os.Stat(filepath.Join(path, GroundTruthFile)); err != nil {
			return nil
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

func invalid(path, reason string) error {
	return fmt.Errorf("%s: %w", path, &imu.InvalidRecordingError{Reason: reason})
}

func field(row []string, col map[string]int, name string) (float64, error) {
	i := col[name]
	if i >= len(row) {
		return 0, fmt.Errorf("row too short for column %s", name)
	}
	v, err := strconv.ParseFloat(row[i], 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", name, row[i])
	}
	return v, nil
}
