package probe

import (
	"debug/elf"
	"errors"
	"fmt"
	"strings"
)

// ELFProber is a pure-Go fallback for hosts without file(1). It inspects the
// ELF header directly and renders a description carrying the same keywords
// file(1) would use, so Classify treats both probers identically.
type ELFProber struct{}

// Describe opens path with debug/elf. Non-ELF files are described as "data"
// rather than failing, matching how file(1) degrades.
func (ELFProber) Describe(path string) (string, error) {
	f, err := elf.Open(path)
	if err != nil {
		var formatErr *elf.FormatError
		if errors.As(err, &formatErr) {
			return "data", nil
		}
		return "", fmt.Errorf("elf probe failed for %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	b.WriteString("ELF ")
	switch f.Class {
	case elf.ELFCLASS64:
		b.WriteString("64-bit ")
	case elf.ELFCLASS32:
		b.WriteString("32-bit ")
	}

	switch {
	case f.Type == elf.ET_EXEC:
		b.WriteString("executable")
	case f.Type == elf.ET_DYN && hasInterp(f):
		// PIE binaries are ET_DYN but behave as executables.
		b.WriteString("pie executable")
	case f.Type == elf.ET_DYN:
		b.WriteString("shared object")
	case f.Type == elf.ET_REL:
		b.WriteString("relocatable")
	case f.Type == elf.ET_CORE:
		b.WriteString("core file")
	default:
		b.WriteString(fmt.Sprintf("unknown type (%d)", f.Type))
	}

	b.WriteString(", ")
	b.WriteString(strings.TrimPrefix(f.Machine.String(), "EM_"))

	if f.Section(".dynamic") != nil {
		b.WriteString(", dynamically linked")
	} else {
		b.WriteString(", statically linked")
	}

	return b.String(), nil
}

func hasInterp(f *elf.File) bool {
	for _, prog := range f.Progs {
		if prog.Type == elf.PT_INTERP {
			return true
		}
	}
	return false
}
