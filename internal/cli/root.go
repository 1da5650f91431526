// Package cli wires the vdbmend commands: a read-only scan pass and a fix
// pass that stages regenerated metadata. Both share the same two-phase
// protocol: classify everything first, write only if nothing was ambiguous.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vdbmend",
		Short: "Audit the package database for missing ELF linkage metadata",
		Long: `vdbmend scans the installed-package metadata database for packages that
install ELF binaries or shared libraries but are missing one or more of the
NEEDED, NEEDED.ELF.2, PROVIDES and REQUIRES records the dependency resolver
relies on.

Broken packages can have their records regenerated from the binaries on
disk; regenerated records are written to a staging directory mirroring the
database layout, never to the live database.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return fmt.Errorf("failed to read --verbose flag: %w", err)
			}

			config := zap.NewProductionConfig()
			config.Encoding = "console"
			config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			base, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = base.Sugar()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().String("vdb", "", "Path to the package database (default /var/db/pkg)")
	rootCmd.PersistentFlags().String("config", "", "Path to an optional YAML config file")
	rootCmd.PersistentFlags().Bool("deep", false, "Probe every installed obj entry, not just soname-like and bin-like paths")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging, including per-file skip decisions")
	rootCmd.PersistentFlags().String("prober", "", "Content-type probe: auto|file|native")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Classify every package as fine, broken or ambiguous",
		Args:  cobra.NoArgs,
		RunE:  RunScan,
	}
	scanCmd.Flags().Bool("json", false, "Print a machine-readable scan summary")

	fixCmd := &cobra.Command{
		Use:   "fix",
		Short: "Scan, then stage regenerated metadata for broken packages",
		Args:  cobra.NoArgs,
		RunE:  RunFix,
	}
	fixCmd.Flags().String("output", "", "Staging directory for regenerated records (default: a fresh temporary directory)")
	fixCmd.Flags().String("scanelf", "", "External scanelf wrapper command (default: built-in extractor)")
	fixCmd.Flags().Bool("json", false, "Print a machine-readable fix summary")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vdbmend %s\n", version)
		},
	}

	rootCmd.AddCommand(scanCmd, fixCmd, versionCmd)
	return rootCmd
}
