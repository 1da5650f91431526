package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vdbmend.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.VDBPath != "/var/db/pkg" {
		t.Fatalf("default vdb path = %q", cfg.VDBPath)
	}
	if cfg.Prober != ProberAuto {
		t.Fatalf("default prober = %q", cfg.Prober)
	}
	if cfg.Deep {
		t.Fatalf("deep must default to false")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
vdb_path: /mnt/gentoo/var/db/pkg
output: /tmp/vdb-fix
deep: true
prober: native
ignore_prefixes:
  - /opt/bundled/
scanelf:
  command: my-scanelf-wrapper
  chunk_size: 200
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.VDBPath != "/mnt/gentoo/var/db/pkg" {
		t.Fatalf("vdb path = %q", cfg.VDBPath)
	}
	if cfg.Output != "/tmp/vdb-fix" {
		t.Fatalf("output = %q", cfg.Output)
	}
	if !cfg.Deep {
		t.Fatalf("deep not set")
	}
	if cfg.Prober != ProberNative {
		t.Fatalf("prober = %q", cfg.Prober)
	}
	if len(cfg.IgnorePrefixes) != 1 || cfg.IgnorePrefixes[0] != "/opt/bundled/" {
		t.Fatalf("ignore prefixes = %v", cfg.IgnorePrefixes)
	}
	if cfg.Scanelf.Command != "my-scanelf-wrapper" || cfg.Scanelf.ChunkSize != 200 {
		t.Fatalf("scanelf config = %+v", cfg.Scanelf)
	}
}

func TestLoadRejectsBadProber(t *testing.T) {
	path := writeConfig(t, "prober: psychic\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported prober")
	}
}

func TestLoadRejectsNegativeChunkSize(t *testing.T) {
	path := writeConfig(t, "scanelf:\n  chunk_size: -1\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for negative chunk size")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
