package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gaitlab/stride.report/internal/imu"
)

// PlotTrial writes a PNG of the acceleration magnitude trace with detected
// steps and ground-truth steps marked, for eyeballing one trial.
func PlotTrial(path, title string, rec *imu.Recording, detected, groundTruth []float64) error {
	if len(rec.Samples) == 0 {
		return fmt.Errorf("empty recording")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "|accel| (m/s²)"

	mag := rec.Magnitude(imu.Accel)
	trace := make(plotter.XYs, len(mag))
	maxMag := mag[0]
	for i, v := range mag {
		trace[i].X = rec.Samples[i].T
		trace[i].Y = v
		if v > maxMag {
			maxMag = v
		}
	}
	line, err := plotter.NewLine(trace)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Legend.Add("magnitude", line)

	if len(detected) > 0 {
		pts := stepMarkers(detected, maxMag*1.02)
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add("detected", s)
	}
	if len(groundTruth) > 0 {
		pts := stepMarkers(groundTruth, maxMag*1.08)
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add("ground truth", s)
	}

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

func stepMarkers(times []float64, y float64) plotter.XYs {
	pts := make(plotter.XYs, len(times))
	for i, t := range times {
		pts[i].X = t
		pts[i].Y = y
	}
	return pts
}
