package vdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingManifest marks a database entry without a CONTENTS file. That is
// corruption outside this tool's repair scope, so callers abort on it.
var ErrMissingManifest = errors.New("package has no CONTENTS manifest")

// Package is one installed-package entry under the database root.
type Package struct {
	Category string
	PF       string // name-version-revision
	Dir      string // absolute path to the entry directory
}

// CPF returns the category-qualified package identifier, e.g.
// "net-misc/openssh-8.6_p1-r2".
func (p *Package) CPF() string {
	return p.Category + "/" + p.PF
}

func (p *Package) String() string {
	return p.CPF()
}

// Synthetic reports whether the entry is a virtual or account package, which
// never installs files of interest.
func (p *Package) Synthetic() bool {
	return p.Category == "virtual" || strings.HasPrefix(p.Category, "acct-")
}

// MidMerge reports whether the entry is an in-progress merge marker rather
// than a fully installed package.
func (p *Package) MidMerge() bool {
	return strings.Contains(p.PF, "-MERGING-")
}

// Lockfile reports whether the entry is a package-manager lock marker.
func (p *Package) Lockfile() bool {
	return strings.HasPrefix(p.PF, ".portage_lockfile")
}

// HasRecord reports whether the named metadata record exists for the package.
func (p *Package) HasRecord(name string) bool {
	_, err := os.Stat(filepath.Join(p.Dir, name))
	return err == nil
}

// ReadRecord returns the raw contents of the named metadata record.
func (p *Package) ReadRecord(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(p.Dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read %s for %s: %w", name, p.CPF(), err)
	}
	return string(data), nil
}
