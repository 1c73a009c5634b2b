// Command stride runs the step-detection suite over a tree of recorded
// trials and scores every algorithm against the human-marked ground truth.
// It prints a per-algorithm summary, and can export JSON, persist results
// to sqlite and render an HTML comparison chart.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/gaitlab/stride.report/internal/detect"
	"github.com/gaitlab/stride.report/internal/eval"
	"github.com/gaitlab/stride.report/internal/loader"
	"github.com/gaitlab/stride.report/internal/monitoring"
	"github.com/gaitlab/stride.report/internal/params"
	"github.com/gaitlab/stride.report/internal/report"
	"github.com/gaitlab/stride.report/internal/storage/sqlite"
)

type config struct {
	DataRoot   string
	ParamsFile string
	Scenario   string
	Mount      string
	Tolerance  float64
	DBPath     string
	OutputJSON string
	ReportHTML string
	PlotDir    string
	Workers    int
	Quiet      bool
}

func main() {
	cfg := parseFlags()

	if cfg.DataRoot == "" {
		log.Fatal("data root is required (-data)")
	}
	if cfg.Quiet {
		monitoring.SetLogger(nil)
	}

	resolver := params.Default()
	if cfg.ParamsFile != "" {
		var err error
		resolver, err = params.Load(cfg.ParamsFile)
		if err != nil {
			log.Fatalf("Failed to load parameters: %v", err)
		}
	}
	tolerance := resolver.Tolerance
	if cfg.Tolerance > 0 {
		tolerance = cfg.Tolerance
	}

	trialDirs, err := loader.FindTrialDirs(cfg.DataRoot)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", cfg.DataRoot, err)
	}
	if len(trialDirs) == 0 {
		log.Fatalf("No trial directories under %s", cfg.DataRoot)
	}
	monitoring.Logf("found %d trial directories", len(trialDirs))

	jobs, err := buildJobs(cfg, resolver, trialDirs)
	if err != nil {
		log.Fatalf("Failed to prepare jobs: %v", err)
	}

	evaluator := &eval.Evaluator{Tolerance: tolerance, Workers: cfg.Workers}
	records := evaluator.EvaluateBatch(context.Background(), jobs)

	aggs := aggregate(records)
	printSummary(aggs, len(records))

	if cfg.OutputJSON != "" {
		if err := exportJSON(records, cfg.OutputJSON); err != nil {
			log.Printf("Warning: failed to export JSON: %v", err)
		}
	}

	runID := "local"
	if cfg.DBPath != "" {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open results database: %v", err)
		}
		defer store.Close()
		runID, err = store.CreateRun(cfg.DataRoot, tolerance)
		if err != nil {
			log.Fatalf("Failed to create run: %v", err)
		}
		for _, rec := range records {
			if err := store.InsertRecord(runID, rec); err != nil {
				log.Fatalf("Failed to store results for %s/%s: %v", rec.Trial, rec.Sensor, err)
			}
		}
		monitoring.Logf("stored run %s in %s", runID, cfg.DBPath)
	}

	if cfg.ReportHTML != "" {
		f, err := os.Create(cfg.ReportHTML)
		if err != nil {
			log.Fatalf("Failed to create report: %v", err)
		}
		defer f.Close()
		if err := report.WriteComparisonChart(f, runID, aggs); err != nil {
			log.Fatalf("Failed to render report: %v", err)
		}
		monitoring.Logf("wrote comparison chart to %s", cfg.ReportHTML)
	}

	if cfg.PlotDir != "" {
		if err := plotTrials(cfg, jobs, records); err != nil {
			log.Printf("Warning: failed to plot trials: %v", err)
		}
	}
}

func parseFlags() config {
	cfg := config{}
	flag.StringVar(&cfg.DataRoot, "data", "", "Root directory of trial recordings")
	flag.StringVar(&cfg.ParamsFile, "params", "", "Parameter document (JSON); built-in tables when omitted")
	flag.StringVar(&cfg.Scenario, "scenario", "", "Scenario fallback when trial metadata has none")
	flag.StringVar(&cfg.Mount, "mount", "ankle", "Mounting point fallback when trial metadata has none")
	flag.Float64Var(&cfg.Tolerance, "tolerance", 0, "Matching tolerance in seconds (overrides parameter document)")
	flag.StringVar(&cfg.DBPath, "db", "", "Write results to this sqlite database")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Export evaluation records as JSON to this file")
	flag.StringVar(&cfg.ReportHTML, "report", "", "Render an HTML comparison chart to this file")
	flag.StringVar(&cfg.PlotDir, "plots", "", "Write per-trial signal plots (PNG) into this directory")
	flag.IntVar(&cfg.Workers, "workers", 0, "Concurrent recordings (0 = one per CPU)")
	flag.BoolVar(&cfg.Quiet, "quiet", false, "Mute progress logging")
	flag.Parse()
	return cfg
}

func buildJobs(cfg config, resolver *params.Resolver, trialDirs []string) ([]eval.Job, error) {
	var jobs []eval.Job
	for _, dir := range trialDirs {
		md, err := loader.LoadMetadata(dir)
		if err != nil {
			return nil, err
		}
		scenario := md.Scenario
		if scenario == "" {
			scenario = cfg.Scenario
			if scenario == "" {
				scenario = "default"
			}
		}
		mount := md.MountingPoint
		if mount == "" {
			mount = cfg.Mount
		}

		groundTruth, err := loader.LoadGroundTruth(filepath.Join(dir, loader.GroundTruthFile))
		if err != nil {
			return nil, err
		}

		trial, err := filepath.Rel(cfg.DataRoot, dir)
		if err != nil {
			trial = dir
		}

		for sensor, file := range loader.SensorFiles {
			set, err := resolver.Resolve(scenario, mount, sensor)
			if err != nil {
				// Configuration defects are setup mistakes: fail fast.
				return nil, err
			}
			rec, err := loader.LoadRecording(filepath.Join(dir, file))
			if err != nil {
				// Input defects stay scoped to this recording; queue the
				// job with a nil recording so the defect is reported per
				// detector without sinking the batch.
				monitoring.Logf("skipping %s/%s: %v", trial, sensor, err)
				rec = nil
			}
			jobs = append(jobs, eval.Job{
				Trial:       trial,
				Sensor:      sensor,
				Recording:   rec,
				GroundTruth: groundTruth,
				Detectors:   detect.NewSuite(set),
			})
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].Trial != jobs[j].Trial {
			return jobs[i].Trial < jobs[j].Trial
		}
		return jobs[i].Sensor < jobs[j].Sensor
	})
	return jobs, nil
}

func aggregate(records []eval.EvaluationRecord) []sqlite.AlgorithmAggregate {
	type acc struct {
		n                               int
		precision, recall, f1, mse, sec float64
	}
	byAlgo := map[string]*acc{}
	for _, rec := range records {
		for _, r := range rec.Reports {
			if r.Err != "" || r.Metrics == nil {
				continue
			}
			a := byAlgo[r.Algorithm]
			if a == nil {
				a = &acc{}
				byAlgo[r.Algorithm] = a
			}
			a.n++
			a.precision += r.Metrics.Precision
			a.recall += r.Metrics.Recall
			a.f1 += r.Metrics.F1
			a.mse += r.Metrics.MSEPenalty
			a.sec += r.Metrics.ExecutionTimeSeconds
		}
	}

	names := make([]string, 0, len(byAlgo))
	for name := range byAlgo {
		names = append(names, name)
	}
	sort.Strings(names)

	aggs := make([]sqlite.AlgorithmAggregate, 0, len(names))
	for _, name := range names {
		a := byAlgo[name]
		n := float64(a.n)
		aggs = append(aggs, sqlite.AlgorithmAggregate{
			Algorithm:            name,
			Results:              a.n,
			MeanPrecision:        a.precision / n,
			MeanRecall:           a.recall / n,
			MeanF1:               a.f1 / n,
			MeanMSEPenalty:       a.mse / n,
			MeanExecutionSeconds: a.sec / n,
		})
	}
	return aggs
}

func printSummary(aggs []sqlite.AlgorithmAggregate, recordings int) {
	fmt.Printf("\n=== Step Detection Summary (%d recordings) ===\n", recordings)
	fmt.Printf("%-22s %8s %8s %8s %12s %12s\n",
		"algorithm", "prec", "recall", "f1", "mse_penalty", "exec_s")
	for _, a := range aggs {
		fmt.Printf("%-22s %8.3f %8.3f %8.3f %12.5f %12.5f\n",
			a.Algorithm, a.MeanPrecision, a.MeanRecall, a.MeanF1,
			a.MeanMSEPenalty, a.MeanExecutionSeconds)
	}
	fmt.Println()
}

func exportJSON(records []eval.EvaluationRecord, path string) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func plotTrials(cfg config, jobs []eval.Job, records []eval.EvaluationRecord) error {
	if err := os.MkdirAll(cfg.PlotDir, 0755); err != nil {
		return err
	}
	for i, rec := range records {
		if jobs[i].Recording == nil {
			continue
		}
		// Plot the best-scoring detector for each recording.
		best := -1
		for j, r := range rec.Reports {
			if r.Err != "" || r.Metrics == nil {
				continue
			}
			if best < 0 || r.Metrics.F1 > rec.Reports[best].Metrics.F1 {
				best = j
			}
		}
		if best < 0 {
			continue
		}
		name := fmt.Sprintf("%s_%s_%s.png",
			sanitize(rec.Trial), rec.Sensor, rec.Reports[best].Algorithm)
		title := fmt.Sprintf("%s / %s / %s", rec.Trial, rec.Sensor, rec.Reports[best].Algorithm)
		err := report.PlotTrial(
			filepath.Join(cfg.PlotDir, name), title,
			jobs[i].Recording, rec.Reports[best].StepTimestamps, jobs[i].GroundTruth,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r == '/' || r == '\\' || r == ' ' {
			out[i] = '_'
		}
	}
	return string(out)
}
