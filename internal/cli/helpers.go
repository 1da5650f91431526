package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vdbmend/vdbmend/internal/config"
	"github.com/vdbmend/vdbmend/internal/probe"
	"github.com/vdbmend/vdbmend/internal/scanelf"
)

// resolveConfig loads the optional config file and applies flag overrides.
// A flag only wins when it was explicitly set, so config-file values
// survive unset flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read --config flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("vdb") {
		cfg.VDBPath, _ = cmd.Flags().GetString("vdb")
	}
	if cmd.Flags().Changed("deep") {
		cfg.Deep, _ = cmd.Flags().GetBool("deep")
	}
	if cmd.Flags().Changed("prober") {
		cfg.Prober, _ = cmd.Flags().GetString("prober")
	}
	if cmd.Flags().Lookup("output") != nil && cmd.Flags().Changed("output") {
		cfg.Output, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Lookup("scanelf") != nil && cmd.Flags().Changed("scanelf") {
		cfg.Scanelf.Command, _ = cmd.Flags().GetString("scanelf")
	}

	switch cfg.Prober {
	case "", config.ProberAuto, config.ProberFile, config.ProberNative:
	default:
		return nil, fmt.Errorf("unsupported prober %q (supported: auto, file, native)", cfg.Prober)
	}

	return cfg, nil
}

// selectProber picks the content-type probe implementation. In auto mode
// file(1) is preferred when present, matching what the records were
// originally derived with; the debug/elf prober covers hosts without it.
func selectProber(cfg *config.Config, log *zap.SugaredLogger) probe.Prober {
	fileCmd := &probe.FileCmd{}
	switch cfg.Prober {
	case config.ProberFile:
		return fileCmd
	case config.ProberNative:
		return probe.ELFProber{}
	default:
		if fileCmd.Available() {
			return fileCmd
		}
		log.Debugf("file(1) not found, falling back to the built-in ELF prober")
		return probe.ELFProber{}
	}
}

// selectExtractor picks the linkage fact extractor: the external wrapper
// when configured, otherwise the built-in debug/elf extractor.
func selectExtractor(cfg *config.Config, log *zap.SugaredLogger) scanelf.Extractor {
	if cfg.Scanelf.Command != "" {
		return &scanelf.ExecExtractor{
			Command:   cfg.Scanelf.Command,
			ChunkSize: cfg.Scanelf.ChunkSize,
		}
	}
	return &scanelf.NativeExtractor{Log: log}
}

func parseJSONFlag(cmd *cobra.Command) (bool, error) {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return false, fmt.Errorf("failed to read --json flag: %w", err)
	}
	return asJSON, nil
}
