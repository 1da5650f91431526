package scanelf

import (
	"debug/elf"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vdbmend/vdbmend/internal/soname"
)

// NativeExtractor reads linkage facts with debug/elf instead of shelling out
// to the scanelf wrapper. It honors the same contract: the two build-info
// files appear only if at least one dynamically linked ELF was found.
type NativeExtractor struct {
	Log *zap.SugaredLogger
}

func (n *NativeExtractor) Extract(workdir string, paths []string) error {
	var needed, elf2 strings.Builder

	for _, path := range paths {
		entry, ok := n.inspect(path)
		if !ok {
			continue
		}
		needed.WriteString(entry.Filename)
		needed.WriteString(" ")
		needed.WriteString(strings.Join(entry.Needed, ","))
		needed.WriteString("\n")

		elf2.WriteString(entry.String())
		elf2.WriteString("\n")
	}

	if elf2.Len() == 0 {
		// Nothing to extract; leave the files absent.
		return nil
	}

	dir := filepath.Join(workdir, BuildInfoDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "NEEDED"), []byte(needed.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write extracted NEEDED: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "NEEDED.ELF.2"), []byte(elf2.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write extracted NEEDED.ELF.2: %w", err)
	}
	return nil
}

// inspect pulls one binary's linkage facts. Unreadable or uninteresting
// files are skipped, never fatal.
func (n *NativeExtractor) inspect(path string) (*soname.Entry, bool) {
	f, err := elf.Open(path)
	if err != nil {
		n.Log.Debugf("skipping %s: %v", path, err)
		return nil, false
	}
	defer f.Close()

	libs, err := f.ImportedLibraries()
	if err != nil {
		// Statically linked or stripped of dynamic info. An empty needed
		// list is not a skip: the dynamic loader and other leaf libraries
		// carry a soname while needing nothing, and their soname must
		// still surface in the extracted records.
		n.Log.Debugf("skipping %s: no dynamic linkage", path)
		return nil, false
	}

	entry := &soname.Entry{
		Arch:     strings.TrimPrefix(f.Machine.String(), "EM_"),
		Filename: path,
		Needed:   libs,
	}

	if sonames, err := f.DynString(elf.DT_SONAME); err == nil && len(sonames) > 0 {
		entry.Soname = sonames[0]
	}
	if runpaths, err := f.DynString(elf.DT_RUNPATH); err == nil && len(runpaths) > 0 {
		entry.Runpaths = splitRunpaths(runpaths)
	} else if rpaths, err := f.DynString(elf.DT_RPATH); err == nil && len(rpaths) > 0 {
		entry.Runpaths = splitRunpaths(rpaths)
	}

	return entry, true
}

func splitRunpaths(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ":") {
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
