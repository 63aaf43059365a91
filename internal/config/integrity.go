package config

import (
	"fmt"
	"path/filepath"
	"sort"
)

// VerifyIntegrity checks all discovered files against the .checksums manifest.
// A missing manifest is a warning. A file missing from the manifest, a file
// listed but gone, or a hash mismatch is an error.
func VerifyIntegrity(configDir string, files *ConfigFiles) (*IntegrityResult, error) {
	result := &IntegrityResult{Passed: true}

	checksumPath := filepath.Join(configDir, ChecksumFile)
	if !fileExists(checksumPath) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no .checksums manifest found at %s; run 'breakdown config lock' to enable integrity verification", checksumPath))
		return result, nil
	}

	manifest, err := ReadManifest(configDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, rel := range files.RelFiles() {
		seen[rel] = true
		path := filepath.Join(configDir, filepath.FromSlash(rel))

		expectedHash, inManifest := manifest.Hashes[rel]
		if !inManifest {
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf("file %s not in .checksums manifest", rel))
			continue
		}

		if err := checkDigest(path, rel, expectedHash); err != nil {
			result.Passed = false
			result.Errors = append(result.Errors, err.Error())
		}
	}

	listed := make([]string, 0, len(manifest.Hashes))
	for rel := range manifest.Hashes {
		listed = append(listed, rel)
	}
	sort.Strings(listed)
	for _, rel := range listed {
		if !seen[rel] {
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf("file %s is in .checksums but missing from disk", rel))
		}
	}

	return result, nil
}
