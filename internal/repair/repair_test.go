package repair

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vdbmend/vdbmend/internal/classify"
	"github.com/vdbmend/vdbmend/internal/scanelf"
	"github.com/vdbmend/vdbmend/internal/staging"
	"github.com/vdbmend/vdbmend/internal/vdb"
)

// fakeExtractor writes canned build-info files, or nothing at all.
type fakeExtractor struct {
	needed string
	elf2   string
	paths  []string
}

func (f *fakeExtractor) Extract(workdir string, paths []string) error {
	f.paths = paths
	if f.needed == "" {
		return nil
	}
	dir := filepath.Join(workdir, scanelf.BuildInfoDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "NEEDED"), []byte(f.needed), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "NEEDED.ELF.2"), []byte(f.elf2), 0o644)
}

func newRepairer(t *testing.T, ex scanelf.Extractor) (*Repairer, *vdb.Database, *staging.Writer) {
	t.Helper()
	dbRoot := t.TempDir()
	w, err := staging.NewWriter(t.TempDir())
	require.NoError(t, err)
	db := &vdb.Database{Root: dbRoot}
	return &Repairer{
		DB:        db,
		Extractor: ex,
		Writer:    w,
		Log:       zap.NewNop().Sugar(),
	}, db, w
}

func brokenResult(db *vdb.Database, sharedLib bool, paths ...string) *classify.Result {
	return &classify.Result{
		Pkg: &vdb.Package{
			Category: "dev-libs",
			PF:       "libdemo-1.0",
			Dir:      filepath.Join(db.Root, "dev-libs", "libdemo-1.0"),
		},
		Verdict:     classify.VerdictBroken,
		Facts:       classify.Facts{InstallsSharedLib: sharedLib, InstallsExecutable: true},
		BinaryPaths: paths,
	}
}

func TestRepairStagesAllFourRecords(t *testing.T) {
	ex := &fakeExtractor{
		needed: "/usr/lib64/libdemo.so.1 libc.so.6\n/usr/bin/demo libc.so.6,libdemo.so.1\n",
		elf2: "X86_64;/usr/lib64/libdemo.so.1;libdemo.so.1;;libc.so.6\n" +
			"X86_64;/usr/bin/demo;;;libc.so.6,libdemo.so.1\n",
	}
	r, db, w := newRepairer(t, ex)
	res := brokenResult(db, true, "/usr/lib64/libdemo.so.1", "/usr/bin/demo")

	require.NoError(t, r.Repair(res))
	require.Equal(t, res.BinaryPaths, ex.paths)

	stagedDir := filepath.Join(w.Root, "dev-libs", "libdemo-1.0")
	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(stagedDir, name))
		require.NoError(t, err, name)
		return string(data)
	}

	require.Equal(t, ex.needed, read(vdb.RecordNeeded))
	require.Equal(t, ex.elf2, read(vdb.RecordNeededELF2))
	require.Equal(t, "x86_64: libdemo.so.1\n", read(vdb.RecordProvides))
	require.Equal(t, "x86_64: libc.so.6 libdemo.so.1\n", read(vdb.RecordRequires))
}

func TestRepairNothingToExtract(t *testing.T) {
	r, db, w := newRepairer(t, &fakeExtractor{})
	res := brokenResult(db, true, "/usr/lib64/libdemo.so.1")

	require.NoError(t, r.Repair(res))

	// Nothing staged at all.
	entries, err := os.ReadDir(w.Root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRepairEmptyProvidesForSharedLibPackage(t *testing.T) {
	// The extractor found linkage but no sonames; for a package known to
	// install shared libraries that is an unrecoverable synthesis error.
	ex := &fakeExtractor{
		needed: "/usr/lib64/libdemo.so.1 libc.so.6\n",
		elf2:   "X86_64;/usr/lib64/libdemo.so.1;;;libc.so.6\n",
	}
	r, db, _ := newRepairer(t, ex)
	res := brokenResult(db, true, "/usr/lib64/libdemo.so.1")

	err := r.Repair(res)
	require.ErrorIs(t, err, ErrNoProvides)
}

func TestRepairExecutableOnlySkipsProvides(t *testing.T) {
	ex := &fakeExtractor{
		needed: "/usr/bin/demo libc.so.6\n",
		elf2:   "X86_64;/usr/bin/demo;;;libc.so.6\n",
	}
	r, db, w := newRepairer(t, ex)
	res := brokenResult(db, false, "/usr/bin/demo")

	require.NoError(t, r.Repair(res))

	stagedDir := filepath.Join(w.Root, "dev-libs", "libdemo-1.0")
	require.FileExists(t, filepath.Join(stagedDir, vdb.RecordNeeded))
	require.FileExists(t, filepath.Join(stagedDir, vdb.RecordRequires))
	require.NoFileExists(t, filepath.Join(stagedDir, vdb.RecordProvides))
}

func TestRepairMalformedExtractorOutput(t *testing.T) {
	ex := &fakeExtractor{
		needed: "/usr/bin/demo libc.so.6\n",
		elf2:   "not-a-valid-line\n",
	}
	r, db, _ := newRepairer(t, ex)

	err := r.Repair(brokenResult(db, false, "/usr/bin/demo"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoProvides)
}

func TestRepairExtractorFailurePropagates(t *testing.T) {
	r, db, _ := newRepairer(t, failingExtractor{})

	err := r.Repair(brokenResult(db, true, "/usr/lib64/libdemo.so.1"))
	require.Error(t, err)
}

type failingExtractor struct{}

func (failingExtractor) Extract(string, []string) error {
	return errors.New("extractor exploded")
}
