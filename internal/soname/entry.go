// Package soname implements the NEEDED.ELF.2 line grammar and the
// derivation of the PROVIDES/REQUIRES soname relations from it.
package soname

import (
	"fmt"
	"strings"
)

// Entry is one NEEDED.ELF.2 record: the raw linkage facts for one binary.
//
// Line grammar: arch;path;soname;runpaths;needed[;multilib], with runpaths
// ':'-separated and needed ','-separated. The multilib field is optional;
// extractors do not emit it and the synthesizer approximates it.
type Entry struct {
	Arch     string
	Filename string
	Soname   string
	Runpaths []string
	Needed   []string
	Multilib string
}

const minFields = 5

// ParseEntry parses one NEEDED.ELF.2 line.
func ParseEntry(line string) (*Entry, error) {
	fields := strings.Split(line, ";")
	if len(fields) < minFields {
		return nil, fmt.Errorf("malformed NEEDED.ELF.2 line (%d fields, want >= %d): %q",
			len(fields), minFields, line)
	}

	e := &Entry{
		Arch:     fields[0],
		Filename: fields[1],
		Soname:   fields[2],
		Runpaths: splitList(fields[3], ":"),
		Needed:   splitList(fields[4], ","),
	}
	if len(fields) > minFields {
		e.Multilib = fields[5]
	}
	return e, nil
}

// ParseRecord parses a whole NEEDED.ELF.2 record, skipping blank lines.
func ParseRecord(record string) ([]*Entry, error) {
	var entries []*Entry
	for _, line := range strings.Split(record, "\n") {
		if line == "" {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// String renders the five-field extractor form of the entry. The multilib
// tag is deliberately not emitted; it is a synthesizer-internal refinement.
func (e *Entry) String() string {
	return strings.Join([]string{
		e.Arch,
		e.Filename,
		e.Soname,
		strings.Join(e.Runpaths, ":"),
		strings.Join(e.Needed, ","),
	}, ";")
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
