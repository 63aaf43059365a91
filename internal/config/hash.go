package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ChecksumFile is the manifest name inside a config directory.
const ChecksumFile = ".checksums"

const manifestVersion = 1

// LockedFile is one manifest entry produced by Lock.
type LockedFile struct {
	Rel  string
	Hash string
}

// LockReport describes what `breakdown config lock` hashed.
type LockReport struct {
	ManifestPath string
	Written      bool
	Files        []LockedFile
}

// Lock hashes config.yaml and every profile file under configDir and, unless
// dryRun, writes them to .checksums (mode 0600).
func Lock(configDir string, dryRun bool) (*LockReport, error) {
	files, err := DiscoverConfigFiles(configDir)
	if err != nil {
		return nil, err
	}

	report := &LockReport{ManifestPath: filepath.Join(files.Root, ChecksumFile)}
	manifest := ChecksumManifest{
		Version:     manifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes:      make(map[string]string),
	}
	for _, rel := range files.RelFiles() {
		sum, err := fileDigest(filepath.Join(files.Root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		manifest.Hashes[rel] = sum
		report.Files = append(report.Files, LockedFile{Rel: rel, Hash: sum})
	}
	if dryRun {
		return report, nil
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ChecksumFile, err)
	}
	if err := os.WriteFile(report.ManifestPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write %s: %w", ChecksumFile, err)
	}
	report.Written = true
	return report, nil
}

// ReadManifest loads .checksums from configDir.
func ReadManifest(configDir string) (*ChecksumManifest, error) {
	data, err := os.ReadFile(filepath.Join(configDir, ChecksumFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s not found (run 'breakdown config lock')", ChecksumFile)
	}
	if err != nil {
		return nil, err
	}

	var m ChecksumManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ChecksumFile, err)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("%s: unsupported version %d", ChecksumFile, m.Version)
	}
	return &m, nil
}

// fileDigest is the hex BLAKE3-256 of the file at path.
func fileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// checkDigest reports a changed or unreadable file under its manifest key.
func checkDigest(path, rel, want string) error {
	got, err := fileDigest(path)
	if err != nil {
		return fmt.Errorf("%s: %w", rel, err)
	}
	if got != want {
		return fmt.Errorf("%s changed since the last lock", rel)
	}
	return nil
}
