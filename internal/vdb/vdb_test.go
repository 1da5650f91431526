package vdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePackage(t *testing.T, root, category, pf string, records map[string]string) *Package {
	t.Helper()
	dir := filepath.Join(root, category, pf)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	for name, contents := range records {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return &Package{Category: category, PF: pf, Dir: dir}
}

func TestOpenRejectsMissingRoot(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing database root")
	}
}

func TestPackagesWalksTwoLevels(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "net-misc", "openssh-8.6_p1-r2", nil)
	writePackage(t, root, "dev-libs", "libfoo-1.0", nil)

	// Stray files at both levels must be ignored.
	if err := os.WriteFile(filepath.Join(root, "stray"), nil, 0o644); err != nil {
		t.Fatalf("failed to write stray file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "net-misc", "stray"), nil, 0o644); err != nil {
		t.Fatalf("failed to write stray file: %v", err)
	}

	db, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	pkgs, err := db.Packages()
	if err != nil {
		t.Fatalf("Packages failed: %v", err)
	}

	if len(pkgs) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(pkgs))
	}
	// Sorted by CPF.
	if pkgs[0].CPF() != "dev-libs/libfoo-1.0" || pkgs[1].CPF() != "net-misc/openssh-8.6_p1-r2" {
		t.Fatalf("unexpected package order: %s, %s", pkgs[0].CPF(), pkgs[1].CPF())
	}
}

func TestSkipPredicates(t *testing.T) {
	cases := []struct {
		category, pf                  string
		synthetic, midMerge, lockfile bool
	}{
		{category: "virtual", pf: "rust-1.0", synthetic: true},
		{category: "acct-user", pf: "sshd-0", synthetic: true},
		{category: "net-misc", pf: "openssh-8.6-MERGING-", midMerge: true},
		{category: "net-misc", pf: ".portage_lockfile_openssh", lockfile: true},
		{category: "net-misc", pf: "openssh-8.6_p1-r2"},
	}

	for _, tc := range cases {
		p := &Package{Category: tc.category, PF: tc.pf}
		if got := p.Synthetic(); got != tc.synthetic {
			t.Errorf("%s: Synthetic()=%v, want %v", p.CPF(), got, tc.synthetic)
		}
		if got := p.MidMerge(); got != tc.midMerge {
			t.Errorf("%s: MidMerge()=%v, want %v", p.CPF(), got, tc.midMerge)
		}
		if got := p.Lockfile(); got != tc.lockfile {
			t.Errorf("%s: Lockfile()=%v, want %v", p.CPF(), got, tc.lockfile)
		}
	}
}

func TestContentsParsesTypedEntries(t *testing.T) {
	root := t.TempDir()
	pkg := writePackage(t, root, "app-misc", "demo-1.0", map[string]string{
		RecordContents: "dir /usr\n" +
			"dir /usr/bin\n" +
			"obj /usr/bin/demo d41d8cd98f00b204e9800998ecf8427e 1650000000\n" +
			"sym /usr/bin/demo-alias -> demo 1650000000\n" +
			"\n" +
			"obj /usr/lib64/libdemo.so.1 aabbcc 1650000000\n",
	})

	entries, err := pkg.Contents()
	if err != nil {
		t.Fatalf("Contents failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}

	var objs []string
	for _, e := range entries {
		if e.Type == EntryObj {
			objs = append(objs, e.Path)
		}
	}
	want := []string{"/usr/bin/demo", "/usr/lib64/libdemo.so.1"}
	if len(objs) != len(want) || objs[0] != want[0] || objs[1] != want[1] {
		t.Fatalf("unexpected obj paths: %v", objs)
	}
}

func TestContentsMissingManifest(t *testing.T) {
	root := t.TempDir()
	pkg := writePackage(t, root, "app-misc", "demo-1.0", nil)

	_, err := pkg.Contents()
	if !errors.Is(err, ErrMissingManifest) {
		t.Fatalf("expected ErrMissingManifest, got %v", err)
	}
}

func TestRecords(t *testing.T) {
	root := t.TempDir()
	pkg := writePackage(t, root, "app-misc", "demo-1.0", map[string]string{
		RecordNeeded: "/usr/bin/demo libc.so.6\n",
	})

	if !pkg.HasRecord(RecordNeeded) {
		t.Fatalf("expected NEEDED to exist")
	}
	if pkg.HasRecord(RecordProvides) {
		t.Fatalf("did not expect PROVIDES to exist")
	}

	data, err := pkg.ReadRecord(RecordNeeded)
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if data != "/usr/bin/demo libc.so.6\n" {
		t.Fatalf("unexpected NEEDED contents: %q", data)
	}
}
