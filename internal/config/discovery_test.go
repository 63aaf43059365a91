package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mattjoyce/breakdown/internal/failure"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverConfigFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeTestFile(t, filepath.Join(tmpDir, "config.yaml"), "log_level: info\n")
	writeTestFile(t, filepath.Join(tmpDir, "profiles", "search.yaml"), "profiles: {}\n")
	writeTestFile(t, filepath.Join(tmpDir, "profiles", "alpha.yml"), "profiles: {}\n")
	writeTestFile(t, filepath.Join(tmpDir, "profiles", "notes.txt"), "ignored\n")

	cf, err := DiscoverConfigFiles(tmpDir)
	if err != nil {
		t.Fatalf("DiscoverConfigFiles() failed: %v", err)
	}

	if cf.Config != filepath.Join(tmpDir, "config.yaml") {
		t.Errorf("Config = %q", cf.Config)
	}
	if len(cf.Profiles) != 2 {
		t.Fatalf("len(Profiles) = %d, want 2", len(cf.Profiles))
	}
	// Verify alphabetical order
	if filepath.Base(cf.Profiles[0]) != "alpha.yml" {
		t.Errorf("Profiles[0] = %q, want alpha.yml", filepath.Base(cf.Profiles[0]))
	}

	want := []string{"config.yaml", "profiles/alpha.yml", "profiles/search.yaml"}
	got := cf.RelFiles()
	if len(got) != len(want) {
		t.Fatalf("RelFiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RelFiles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscoverConfigFilesMissingConfig(t *testing.T) {
	if _, err := DiscoverConfigFiles(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config.yaml")
	}
}

func TestDiscoverConfigDirOrder(t *testing.T) {
	work := t.TempDir()
	home := t.TempDir()
	envDir := t.TempDir()
	explicit := t.TempDir()

	t.Setenv("HOME", home)
	t.Setenv(EnvConfigDir, "")

	// Nothing anywhere
	dir, err := DiscoverConfigDir("", work)
	if err != nil || dir != "" {
		t.Fatalf("DiscoverConfigDir() = %q, %v; want empty, nil", dir, err)
	}

	// User directory
	userDir := filepath.Join(home, ".config", "breakdown")
	writeTestFile(t, filepath.Join(userDir, "config.yaml"), "{}\n")
	if dir, _ := DiscoverConfigDir("", work); dir != userDir {
		t.Errorf("got %q, want user dir %q", dir, userDir)
	}

	// Project directory wins over user
	projectDir := filepath.Join(work, ".agent", "breakdown", "config")
	writeTestFile(t, filepath.Join(projectDir, "config.yaml"), "{}\n")
	if dir, _ := DiscoverConfigDir("", work); dir != projectDir {
		t.Errorf("got %q, want project dir %q", dir, projectDir)
	}

	// Env wins over project
	writeTestFile(t, filepath.Join(envDir, "config.yaml"), "{}\n")
	t.Setenv(EnvConfigDir, envDir)
	if dir, _ := DiscoverConfigDir("", work); dir != envDir {
		t.Errorf("got %q, want env dir %q", dir, envDir)
	}

	// Explicit wins over env
	writeTestFile(t, filepath.Join(explicit, "config.yaml"), "{}\n")
	if dir, _ := DiscoverConfigDir(explicit, work); dir != explicit {
		t.Errorf("got %q, want explicit dir %q", dir, explicit)
	}
}

func TestDiscoverConfigDirExplicitMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := DiscoverConfigDir(missing, t.TempDir())
	if failure.KindOf(err) != failure.KindConfigurationNotFound {
		t.Fatalf("expected ConfigurationNotFound, got %v", err)
	}
}

func TestDiscoverConfigDirEnvMissing(t *testing.T) {
	t.Setenv(EnvConfigDir, filepath.Join(t.TempDir(), "nope"))

	_, err := DiscoverConfigDir("", t.TempDir())
	if failure.KindOf(err) != failure.KindConfigurationNotFound {
		t.Fatalf("expected ConfigurationNotFound, got %v", err)
	}
}
