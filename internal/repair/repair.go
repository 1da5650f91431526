// Package repair regenerates the four linkage metadata records for one
// broken package at a time: re-scan its binaries, synthesize the derived
// relations, stage the results.
package repair

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vdbmend/vdbmend/internal/classify"
	"github.com/vdbmend/vdbmend/internal/scanelf"
	"github.com/vdbmend/vdbmend/internal/soname"
	"github.com/vdbmend/vdbmend/internal/staging"
	"github.com/vdbmend/vdbmend/internal/vdb"
)

// ErrNoProvides marks the synthesis invariant violation: a package known to
// install shared libraries produced an empty PROVIDES. That repair cannot be
// trusted and must not be written.
var ErrNoProvides = errors.New("package installs shared libraries but synthesis produced no PROVIDES")

// Repairer drives the extractor, synthesizer and staging writer.
type Repairer struct {
	DB        *vdb.Database
	Extractor scanelf.Extractor
	Writer    *staging.Writer
	Log       *zap.SugaredLogger
	Verbose   bool
}

// Repair regenerates NEEDED, NEEDED.ELF.2, PROVIDES and REQUIRES for one
// broken package into the staging tree. A package whose binaries yield no
// linkage facts is logged and skipped, not an error.
func (r *Repairer) Repair(res *classify.Result) error {
	pkg := res.Pkg
	r.Log.Infof("fixing metadata for %s", pkg.CPF())

	workdir, err := os.MkdirTemp("", "vdbmend-extract-")
	if err != nil {
		return fmt.Errorf("failed to create extractor workdir: %w", err)
	}
	defer os.RemoveAll(workdir)

	if err := r.Extractor.Extract(workdir, res.BinaryPaths); err != nil {
		return fmt.Errorf("linkage extraction failed for %s: %w", pkg.CPF(), err)
	}

	raw, ok, err := scanelf.ReadResults(workdir)
	if err != nil {
		return err
	}
	if !ok {
		// Statically linked or otherwise uninteresting binaries.
		r.Log.Infof("nothing to fix for %s: extractor produced no NEEDED", pkg.CPF())
		return nil
	}

	entries, err := soname.ParseRecord(raw.NeededELF2)
	if err != nil {
		return fmt.Errorf("bad extractor output for %s: %w", pkg.CPF(), err)
	}
	deps := soname.Synthesize(entries)

	records := []struct {
		name     string
		contents string
	}{
		{vdb.RecordNeeded, raw.Needed},
		{vdb.RecordNeededELF2, raw.NeededELF2},
		{vdb.RecordProvides, deps.Provides()},
		{vdb.RecordRequires, deps.Requires()},
	}

	for _, rec := range records {
		if rec.name == vdb.RecordProvides && rec.contents == "" {
			if res.Facts.InstallsSharedLib {
				return fmt.Errorf("%s: %w", pkg.CPF(), ErrNoProvides)
			}
			// Executable-only packages legitimately have no PROVIDES;
			// don't stage an empty record.
			continue
		}

		if r.Verbose {
			r.Log.Infof("record %s for %s:\n%s", rec.name, pkg.CPF(), rec.contents)
		}

		path := filepath.Join(pkg.Dir, rec.name)
		if err := r.Writer.Write(path, rec.contents, r.DB.Root); err != nil {
			if errors.Is(err, staging.ErrBlankContent) {
				// Seen with executable-only packages installed by older
				// package managers; the record is legitimately empty.
				r.Log.Warnf("tried to write blank %s for %s, likely harmless, skipping",
					rec.name, pkg.CPF())
				continue
			}
			return err
		}
	}

	r.Log.Infof("generated fixed metadata for %s", pkg.CPF())
	return nil
}
