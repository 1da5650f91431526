package vdb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EntryType tags one installed-file record in a CONTENTS manifest.
type EntryType string

const (
	EntryObj EntryType = "obj"
	EntryDir EntryType = "dir"
	EntrySym EntryType = "sym"
)

// ContentsEntry is one line of the manifest. Path is the absolute install
// path; trailing fields (checksums, timestamps, symlink targets) are not
// carried because nothing downstream consumes them.
type ContentsEntry struct {
	Type EntryType
	Path string
}

// Contents parses the package's CONTENTS manifest. A missing manifest yields
// ErrMissingManifest; malformed lines are skipped rather than fatal since the
// manifest format has historically grown fields.
func (p *Package) Contents() ([]ContentsEntry, error) {
	f, err := os.Open(filepath.Join(p.Dir, RecordContents))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", p.CPF(), ErrMissingManifest)
		}
		return nil, fmt.Errorf("failed to open CONTENTS for %s: %w", p.CPF(), err)
	}
	defer f.Close()

	var entries []ContentsEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, " ", 3)
		if len(fields) < 2 {
			continue
		}

		entries = append(entries, ContentsEntry{
			Type: EntryType(fields[0]),
			Path: fields[1],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CONTENTS for %s: %w", p.CPF(), err)
	}

	return entries, nil
}
