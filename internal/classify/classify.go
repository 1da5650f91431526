// Package classify decides, per package, whether the linkage metadata
// records are consistent with the binaries the package installed.
package classify

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/vdbmend/vdbmend/internal/probe"
	"github.com/vdbmend/vdbmend/internal/vdb"
)

// Verdict is the per-package classification outcome.
type Verdict int

const (
	VerdictFine Verdict = iota
	VerdictBroken
	// VerdictAmbiguous marks a record combination the decision procedure
	// does not cover. It is surfaced to the operator, never auto-fixed.
	VerdictAmbiguous
)

func (v Verdict) String() string {
	switch v {
	case VerdictFine:
		return "fine"
	case VerdictBroken:
		return "broken"
	case VerdictAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Facts is the evidence the decision procedure runs on: which metadata
// records exist and what kinds of binaries the manifest scan found.
type Facts struct {
	HasNeeded   bool
	HasProvides bool
	HasRequires bool

	InstallsSharedLib  bool
	InstallsExecutable bool

	Deep bool
}

// Result is one package's classification.
type Result struct {
	Pkg     *vdb.Package
	Verdict Verdict
	Facts   Facts

	// BinaryPaths are the dynamically linked ELF objects found in the
	// manifest; the repair pass re-scans exactly this set.
	BinaryPaths []string

	// SkipReason is set for entries that are not real installed packages
	// (virtuals, accounts, mid-merge markers, lockfiles).
	SkipReason string
}

// Skipped reports whether the entry was excluded before classification.
func (r *Result) Skipped() bool {
	return r.SkipReason != ""
}

// DefaultIgnorePrefixes are install paths that look binary-like but never
// hold dynamically linked objects worth probing.
var DefaultIgnorePrefixes = []string{"/usr/share/", "/usr/include/"}

var sonameLike = regexp.MustCompile(`\.so(\.|$)`)

// Classifier scans one package at a time. The content-type probe is injected
// so the scan logic is testable without real binaries on disk.
type Classifier struct {
	Prober         probe.Prober
	Deep           bool
	IgnorePrefixes []string
	Log            *zap.SugaredLogger
}

func NewClassifier(prober probe.Prober, deep bool, log *zap.SugaredLogger) *Classifier {
	return &Classifier{
		Prober:         prober,
		Deep:           deep,
		IgnorePrefixes: DefaultIgnorePrefixes,
		Log:            log,
	}
}

// Classify inspects one package directory and produces its verdict plus the
// facts the repair pass needs. A missing manifest is the only fatal error.
func (c *Classifier) Classify(pkg *vdb.Package) (*Result, error) {
	res := &Result{Pkg: pkg}

	switch {
	case pkg.Synthetic():
		res.SkipReason = "virtual or account package"
		return res, nil
	case pkg.MidMerge():
		res.SkipReason = "merge in progress"
		return res, nil
	case pkg.Lockfile():
		res.SkipReason = "lockfile marker"
		return res, nil
	}

	res.Facts = Facts{
		HasNeeded:   pkg.HasRecord(vdb.RecordNeeded),
		HasProvides: pkg.HasRecord(vdb.RecordProvides),
		HasRequires: pkg.HasRecord(vdb.RecordRequires),
		Deep:        c.Deep,
	}

	// Cheap success path: both derived records exist. The manifest is
	// deliberately never opened here.
	if res.Facts.HasProvides && res.Facts.HasNeeded {
		c.Log.Debugf("skipping %s: PROVIDES and NEEDED exist", pkg.CPF())
		res.Verdict = VerdictFine
		return res, nil
	}

	entries, err := pkg.Contents()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		c.Log.Warnf("%s has CONTENTS but installs nothing", pkg.CPF())
	}

	c.scanManifest(pkg, entries, res)

	res.Verdict = decide(res.Facts)
	if res.Verdict == VerdictAmbiguous {
		c.dumpFacts(res)
	}
	return res, nil
}

// scanManifest probes the package's obj entries and fills in the
// installs-shared-lib / installs-executable facts and the binary path list.
func (c *Classifier) scanManifest(pkg *vdb.Package, entries []vdb.ContentsEntry, res *Result) {
	for _, entry := range entries {
		if entry.Type != vdb.EntryObj {
			continue
		}
		path := entry.Path

		soLike := sonameLike.MatchString(path)
		binLike := strings.Contains(path, "bin") || strings.Contains(path, "libexec")

		// Outside deep mode, non-soname paths are only worth a probe when
		// they live somewhere executables do. This bounds probe volume on
		// large trees.
		if !soLike && !binLike && !c.Deep {
			continue
		}
		if c.ignored(path) {
			continue
		}

		desc, err := c.Prober.Describe(path)
		if err != nil {
			c.Log.Warnf("probe failed for %s, skipping: %v", path, err)
			continue
		}

		ft := probe.Classify(desc)
		if !ft.ELF || !ft.Dynamic {
			c.Log.Debugf("skipping %s's %s: not a dynamically linked ELF", pkg.CPF(), path)
			continue
		}

		if ft.Executable {
			res.Facts.InstallsExecutable = true
		}
		if ft.SharedObject {
			res.Facts.InstallsSharedLib = true
		}

		if len(res.BinaryPaths) == 0 && soLike && !res.Facts.HasProvides {
			c.Log.Warnf("%s installed a dynamic library with no PROVIDES", pkg.CPF())
		}
		res.BinaryPaths = append(res.BinaryPaths, path)
	}
}

func (c *Classifier) ignored(path string) bool {
	for _, prefix := range c.IgnorePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// decide applies the record-presence decision table.
//
// PROVIDES without NEEDED is never a legitimate state, so it outranks the
// nothing-installed rule. The ordering matters for a PROVIDES-only package
// whose manifest probes clean: swapping the first two cases would call it
// fine, whereas here the stale PROVIDES wins and the package is staged for
// repair, where an empty extraction degrades to a nothing-to-fix skip.
// NEEDED without PROVIDES is legitimate only for packages with no shared
// libraries. Total absence of all three records alongside any binary
// install is always broken. Anything else is a logic gap surfaced as
// ambiguous.
func decide(f Facts) Verdict {
	switch {
	case f.HasProvides && !f.HasNeeded:
		return VerdictBroken
	case !f.InstallsSharedLib && !f.InstallsExecutable:
		return VerdictFine
	case f.HasNeeded && f.HasProvides:
		return VerdictFine
	case f.HasNeeded && !f.HasProvides:
		if f.InstallsSharedLib {
			return VerdictBroken
		}
		return VerdictFine
	case !f.HasNeeded && !f.HasProvides && !f.HasRequires:
		return VerdictBroken
	default:
		return VerdictAmbiguous
	}
}

// dumpFacts logs everything an operator needs to report the uncovered case.
func (c *Classifier) dumpFacts(res *Result) {
	c.Log.Errorw("unexpected record combination, please report this as a bug",
		"package", res.Pkg.CPF(),
		"needed", res.Facts.HasNeeded,
		"provides", res.Facts.HasProvides,
		"requires", res.Facts.HasRequires,
		"installs_executable", res.Facts.InstallsExecutable,
		"installs_shared_lib", res.Facts.InstallsSharedLib,
		"deep", res.Facts.Deep,
	)
}
