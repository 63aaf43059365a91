package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLockDryRun(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "config.yaml"), "log_level: info\n")
	writeTestFile(t, filepath.Join(dir, "profiles", "search.yaml"), "profiles: {}\n")

	report, err := Lock(dir, true)
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	if report.Written {
		t.Fatal("dry run reported Written")
	}
	if len(report.Files) != 2 {
		t.Fatalf("len(report.Files) = %d, want 2", len(report.Files))
	}
	if report.Files[0].Rel != "config.yaml" || report.Files[1].Rel != "profiles/search.yaml" {
		t.Errorf("files = %+v", report.Files)
	}
	for _, f := range report.Files {
		if len(f.Hash) != 64 {
			t.Errorf("%s: hash length = %d, want 64", f.Rel, len(f.Hash))
		}
	}
	if _, err := os.Stat(filepath.Join(dir, ChecksumFile)); !os.IsNotExist(err) {
		t.Fatal(".checksums written in dry run")
	}
}

func TestLockWritesChecksums(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "config.yaml"), "log_level: info\n")
	writeTestFile(t, filepath.Join(dir, "profiles", "search.yaml"), "profiles: {}\n")

	report, err := Lock(dir, false)
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	if !report.Written {
		t.Fatal("report.Written = false, want true")
	}

	manifest, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest() failed: %v", err)
	}
	if len(manifest.Hashes) != 2 {
		t.Fatalf("len(manifest.Hashes) = %d, want 2", len(manifest.Hashes))
	}
	if manifest.Hashes["profiles/search.yaml"] != report.Files[1].Hash {
		t.Errorf("manifest hash for profiles/search.yaml = %q, report = %q", manifest.Hashes["profiles/search.yaml"], report.Files[1].Hash)
	}

	info, err := os.Stat(report.ManifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf(".checksums mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestCheckDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.yaml")
	writeTestFile(t, path, "a: 1\n")

	sum, err := fileDigest(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := checkDigest(path, "f.yaml", sum); err != nil {
		t.Errorf("checkDigest() failed: %v", err)
	}
	err = checkDigest(path, "f.yaml", "00")
	if err == nil || !strings.Contains(err.Error(), "f.yaml changed") {
		t.Errorf("checkDigest() = %v, want change error", err)
	}
}

func TestReadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadManifest(dir); err == nil || !strings.Contains(err.Error(), "config lock") {
		t.Fatalf("missing manifest: err = %v", err)
	}

	writeTestFile(t, filepath.Join(dir, ChecksumFile), "version: 2\nhashes: {}\n")
	if _, err := ReadManifest(dir); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}
