// Package vdb models the installed-package metadata database: a two-level
// directory tree of category/name-version-revision entries, each holding a
// CONTENTS manifest and optional linkage metadata records.
package vdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Record names found inside a package directory.
const (
	RecordContents   = "CONTENTS"
	RecordNeeded     = "NEEDED"
	RecordNeededELF2 = "NEEDED.ELF.2"
	RecordProvides   = "PROVIDES"
	RecordRequires   = "REQUIRES"
)

// Database is a read-only view over the package database root.
type Database struct {
	Root string
}

// Open validates root and returns a Database over it.
func Open(root string) (*Database, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to access database path %q: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("database path %q is not a directory", abs)
	}

	return &Database{Root: abs}, nil
}

// Packages lists every category/PF entry under the root, sorted by CPF so
// runs are deterministic. Stray files at either level are skipped.
func (db *Database) Packages() ([]*Package, error) {
	categories, err := os.ReadDir(db.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read database root %q: %w", db.Root, err)
	}

	var pkgs []*Package
	for _, cat := range categories {
		if !cat.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(db.Root, cat.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read category %q: %w", cat.Name(), err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			pkgs = append(pkgs, &Package{
				Category: cat.Name(),
				PF:       entry.Name(),
				Dir:      filepath.Join(db.Root, cat.Name(), entry.Name()),
			})
		}
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].CPF() < pkgs[j].CPF() })
	return pkgs, nil
}
