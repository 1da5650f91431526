package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vdbmend/vdbmend/internal/classify"
	"github.com/vdbmend/vdbmend/internal/config"
	"github.com/vdbmend/vdbmend/internal/vdb"
)

// scanReport is the phase-1 output: every package's classification plus the
// aggregate counts the fail-fast policy keys on.
type scanReport struct {
	DB      *vdb.Database
	Results []*classify.Result

	Fine      int
	Broken    int
	Ambiguous int
	SkippedN  int
}

// BrokenResults returns the packages eligible for repair.
func (r *scanReport) BrokenResults() []*classify.Result {
	var broken []*classify.Result
	for _, res := range r.Results {
		if !res.Skipped() && res.Verdict == classify.VerdictBroken {
			broken = append(broken, res)
		}
	}
	return broken
}

// runClassification is phase 1: classify every package in the database. It
// completes the full pass even when ambiguous verdicts turn up, so the
// operator sees the whole picture; only a missing manifest aborts.
func runClassification(cfg *config.Config) (*scanReport, error) {
	db, err := vdb.Open(cfg.VDBPath)
	if err != nil {
		return nil, err
	}
	pkgs, err := db.Packages()
	if err != nil {
		return nil, err
	}

	classifier := classify.NewClassifier(selectProber(cfg, logger), cfg.Deep, logger)
	classifier.IgnorePrefixes = append(classifier.IgnorePrefixes, cfg.IgnorePrefixes...)

	report := &scanReport{DB: db}
	for _, pkg := range pkgs {
		res, err := classifier.Classify(pkg)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)

		switch {
		case res.Skipped():
			report.SkippedN++
			logger.Debugf("skipping %s: %s", pkg.CPF(), res.SkipReason)
		case res.Verdict == classify.VerdictFine:
			report.Fine++
			logger.Debugf("package %s is fine", pkg.CPF())
		case res.Verdict == classify.VerdictBroken:
			report.Broken++
			logger.Warnf("package %s is broken", pkg.CPF())
		case res.Verdict == classify.VerdictAmbiguous:
			report.Ambiguous++
		}
	}

	return report, nil
}

func RunScan(cmd *cobra.Command, args []string) error {
	asJSON, err := parseJSONFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger.Infof("scanning %s, this may take a few minutes", cfg.VDBPath)
	if cfg.Deep {
		logger.Warnf("deep mode probes every installed file and may significantly increase runtime")
	}

	start := time.Now()
	report, err := runClassification(cfg)
	if err != nil {
		return err
	}

	summary := ScanSummary{
		Mode:       "scan",
		VDBPath:    report.DB.Root,
		Deep:       cfg.Deep,
		Packages:   len(report.Results),
		Skipped:    report.SkippedN,
		Fine:       report.Fine,
		Broken:     report.Broken,
		Ambiguous:  report.Ambiguous,
		DurationMS: time.Since(start).Milliseconds(),
	}
	for _, res := range report.BrokenResults() {
		summary.BrokenPackages = append(summary.BrokenPackages, res.Pkg.CPF())
	}
	if err := PrintScanSummary(summary, asJSON); err != nil {
		return err
	}

	if report.Ambiguous > 0 {
		return fmt.Errorf("found %d package(s) with ambiguous classification, please report", report.Ambiguous)
	}
	return nil
}
