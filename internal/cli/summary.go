package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type ScanSummary struct {
	Mode           string   `json:"mode"`
	VDBPath        string   `json:"vdb_path"`
	Deep           bool     `json:"deep"`
	Packages       int      `json:"packages"`
	Skipped        int      `json:"skipped"`
	Fine           int      `json:"fine"`
	Broken         int      `json:"broken"`
	Ambiguous      int      `json:"ambiguous"`
	DurationMS     int64    `json:"duration_ms"`
	BrokenPackages []string `json:"broken_packages,omitempty"`
}

type FixSummary struct {
	Mode        string   `json:"mode"`
	VDBPath     string   `json:"vdb_path"`
	StagingRoot string   `json:"staging_root,omitempty"`
	Packages    int      `json:"packages"`
	Broken      int      `json:"broken"`
	Fixed       int      `json:"fixed"`
	Failed      []string `json:"failed,omitempty"`
	DurationMS  int64    `json:"duration_ms"`
}

func PrintScanSummary(summary ScanSummary, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	fmt.Printf("scan complete in %dms\n", summary.DurationMS)
	fmt.Printf("database: %s\n", summary.VDBPath)
	fmt.Printf("packages: total=%d skipped=%d fine=%d broken=%d ambiguous=%d\n",
		summary.Packages, summary.Skipped, summary.Fine, summary.Broken, summary.Ambiguous)
	if len(summary.BrokenPackages) > 0 {
		fmt.Printf("broken packages (%d): %s\n", len(summary.BrokenPackages),
			strings.Join(summary.BrokenPackages, ", "))
	}
	return nil
}

func PrintFixSummary(summary FixSummary, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	fmt.Printf("fix complete in %dms\n", summary.DurationMS)
	fmt.Printf("database: %s\n", summary.VDBPath)
	if summary.StagingRoot != "" {
		fmt.Printf("staging root: %s\n", summary.StagingRoot)
	}
	fmt.Printf("packages: total=%d broken=%d fixed=%d failed=%d\n",
		summary.Packages, summary.Broken, summary.Fixed, len(summary.Failed))
	if len(summary.Failed) > 0 {
		fmt.Printf("failed packages (%d): %s\n", len(summary.Failed),
			strings.Join(summary.Failed, ", "))
	}
	return nil
}
