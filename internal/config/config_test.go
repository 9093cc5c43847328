package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	content := `
debug = true
style = "monokai"

[listing]
offsets = false
labels = true

[output]
disassembly = "json"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	want := &Config{
		Debug:   true,
		Style:   "monokai",
		Listing: ListingConfig{Offsets: false, Labels: true},
		Output:  OutputConfig{Disassembly: "json", Assembly: "text"},
		Path:    filepath.Join(dir, FileName),
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(dir, filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing explicit path")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("debug = ["), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir, bad)
	if err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PVMKIT_DEBUG", "1")
	t.Setenv("PVMKIT_NO_COLOR", "true")
	t.Setenv("PVMKIT_STYLE", "dracula")

	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug || !cfg.NoColor || cfg.Style != "dracula" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("PVMKIT_DEBUG", "maybe")
	if _, err := Load(t.TempDir(), ""); err == nil {
		t.Error("expected error for invalid PVMKIT_DEBUG")
	}
}

func TestSchema(t *testing.T) {
	bts, err := Schema()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(bts, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if !strings.Contains(string(bts), "noColor") {
		t.Error("schema does not describe noColor")
	}
}
