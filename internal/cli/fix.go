package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vdbmend/vdbmend/internal/repair"
	"github.com/vdbmend/vdbmend/internal/staging"
)

func RunFix(cmd *cobra.Command, args []string) error {
	asJSON, err := parseJSONFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to read --verbose flag: %w", err)
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

	// Fail fast after the full pass: never stage anything while the
	// decision procedure has uncovered cases in this database.
	if report.Ambiguous > 0 {
		return fmt.Errorf("aborting before any writes: %d package(s) with ambiguous classification", report.Ambiguous)
	}

	summary := FixSummary{
		Mode:       "fix",
		VDBPath:    report.DB.Root,
		Packages:   len(report.Results),
		Broken:     report.Broken,
		DurationMS: time.Since(start).Milliseconds(),
	}

	broken := report.BrokenResults()
	if len(broken) == 0 {
		summary.DurationMS = time.Since(start).Milliseconds()
		if err := PrintFixSummary(summary, asJSON); err != nil {
			return err
		}
		logger.Infof("no broken packages found")
		return nil
	}

	writer, err := staging.NewWriter(cfg.Output)
	if err != nil {
		return err
	}
	summary.StagingRoot = writer.Root
	logger.Infof("found %d package(s) to fix, writing to %s", len(broken), writer.Root)

	repairer := &repair.Repairer{
		DB:        report.DB,
		Extractor: selectExtractor(cfg, logger),
		Writer:    writer,
		Log:       logger,
		Verbose:   verbose,
	}

	anySharedLibs := false
	for _, res := range broken {
		if res.Facts.InstallsSharedLib {
			anySharedLibs = true
		}
		if err := repairer.Repair(res); err != nil {
			// Keep repairing the rest; the failures are reported together
			// at the end.
			logger.Errorf("repair failed for %s: %v", res.Pkg.CPF(), err)
			summary.Failed = append(summary.Failed, res.Pkg.CPF())
			continue
		}
		summary.Fixed++
	}

	if !anySharedLibs {
		// Only executable-only packages were affected, so re-merging them
		// is enough; no full rebuild of their reverse dependencies needed.
		logger.Infof("no corrupt libraries found, re-merging the affected packages should be sufficient")
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	if err := PrintFixSummary(summary, asJSON); err != nil {
		return err
	}

	if len(summary.Failed) > 0 {
		return fmt.Errorf("repair failed for %d package(s)", len(summary.Failed))
	}
	return nil
}
