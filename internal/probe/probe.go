// Package probe answers "what kind of file is this?" for candidate binaries.
// The classifier only ever sees the Prober interface so it can be tested with
// canned descriptions instead of real executables.
package probe

import (
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Prober describes a file's content type in the human-readable style of
// file(1). Descriptions are matched by substring, never parsed.
type Prober interface {
	Describe(path string) (string, error)
}

// FileType is the decoded shape of a probe description.
type FileType struct {
	ELF          bool
	Dynamic      bool
	SharedObject bool
	Executable   bool
}

// Relevant reports whether the file is a dynamically linked ELF object,
// i.e. something the dependency metadata must cover.
func (ft FileType) Relevant() bool {
	return ft.ELF && ft.Dynamic && (ft.SharedObject || ft.Executable)
}

// Classify decodes a probe description into its FileType.
func Classify(desc string) FileType {
	return FileType{
		ELF:          strings.Contains(desc, "ELF"),
		Dynamic:      strings.Contains(desc, "dynamically linked"),
		SharedObject: strings.Contains(desc, "shared object"),
		Executable:   strings.Contains(desc, "executable"),
	}
}

// FileCmd probes by running file(1).
type FileCmd struct {
	// Command overrides the binary name, mainly for tests.
	Command string
}

// Available reports whether file(1) can be found on PATH.
func (f *FileCmd) Available() bool {
	_, err := exec.LookPath(f.command())
	return err == nil
}

func (f *FileCmd) command() string {
	if f.Command != "" {
		return f.Command
	}
	return "file"
}

// Describe runs `file -b path`. Output that is not valid UTF-8 is reported
// as an error so the caller can skip the file; it is clearly not the ELF
// description we are after.
func (f *FileCmd) Describe(path string) (string, error) {
	out, err := exec.Command(f.command(), "-b", path).Output()
	if err != nil {
		return "", fmt.Errorf("file probe failed for %s: %w", path, err)
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("file probe returned non-UTF-8 output for %s", path)
	}
	return strings.TrimSpace(string(out)), nil
}
