// Package scanelf invokes the linkage fact extractor: given a set of binary
// paths it produces the raw NEEDED and NEEDED.ELF.2 records as side-effect
// files under <workdir>/build-info, mirroring the contract of the scanelf
// wrapper script.
package scanelf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// BuildInfoDir is the workdir subdirectory the extractor populates.
const BuildInfoDir = "build-info"

// DefaultChunkSize bounds argv length per extractor invocation.
const DefaultChunkSize = 1000

// Extractor turns a set of binary paths into raw linkage records under
// workdir/build-info. Implementations must treat a path that yields nothing
// as a non-error; an absent NEEDED file afterwards means "nothing to
// extract".
type Extractor interface {
	Extract(workdir string, paths []string) error
}

// Results holds the two raw records an extraction produced.
type Results struct {
	Needed     string
	NeededELF2 string
}

// ReadResults collects the extractor's side-effect files. ok is false when
// no NEEDED file was produced, which signals an uninteresting binary set
// rather than an error.
func ReadResults(workdir string) (res Results, ok bool, err error) {
	dir := filepath.Join(workdir, BuildInfoDir)

	needed, err := os.ReadFile(filepath.Join(dir, "NEEDED"))
	if err != nil {
		if os.IsNotExist(err) {
			return Results{}, false, nil
		}
		return Results{}, false, fmt.Errorf("failed to read extracted NEEDED: %w", err)
	}

	elf2, err := os.ReadFile(filepath.Join(dir, "NEEDED.ELF.2"))
	if err != nil {
		return Results{}, false, fmt.Errorf("failed to read extracted NEEDED.ELF.2: %w", err)
	}

	return Results{Needed: string(needed), NeededELF2: string(elf2)}, true, nil
}

// ExecExtractor runs the external wrapper script, passing the workdir and a
// chunk of binary paths per invocation.
type ExecExtractor struct {
	Command   string
	ChunkSize int
}

func (e *ExecExtractor) chunkSize() int {
	if e.ChunkSize > 0 {
		return e.ChunkSize
	}
	return DefaultChunkSize
}

func (e *ExecExtractor) Extract(workdir string, paths []string) error {
	size := e.chunkSize()
	for start := 0; start < len(paths); start += size {
		end := start + size
		if end > len(paths) {
			end = len(paths)
		}

		args := append([]string{workdir}, paths[start:end]...)
		cmd := exec.Command(e.Command, args...)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("extractor %s failed: %w", e.Command, err)
		}
	}
	return nil
}
