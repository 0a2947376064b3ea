package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMergesOverZeroValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "iborb.yaml")
	yaml := `
outputDir: gen
includes:
  - /usr/include/idl
defines:
  - DEBUG
withDoxygen: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	c := New()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile returned an error: %v", err)
	}
	if c.OutputDir != "gen" {
		t.Errorf("OutputDir = %q, want gen", c.OutputDir)
	}
	if len(c.Includes) != 1 || c.Includes[0] != "/usr/include/idl" {
		t.Errorf("unexpected Includes: %v", c.Includes)
	}
	if len(c.Defines) != 1 || c.Defines[0] != "DEBUG" {
		t.Errorf("unexpected Defines: %v", c.Defines)
	}
	if !c.WithDoxygen {
		t.Errorf("expected WithDoxygen to be true")
	}
	if c.NoPreprocess {
		t.Errorf("expected NoPreprocess to stay false, the file never set it")
	}
}

func TestLoadFileListsReplaceRatherThanAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "iborb.yaml")
	if err := os.WriteFile(path, []byte("includes:\n  - b\n"), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	c := New()
	c.Includes = []string{"a"}
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile returned an error: %v", err)
	}
	if len(c.Includes) != 1 || c.Includes[0] != "b" {
		t.Errorf("expected loaded Includes to replace the default, got %v", c.Includes)
	}
}

func TestLoadFileMissingPathIsAnError(t *testing.T) {
	c := New()
	if err := c.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestLoadFileMalformedYAMLIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("outputDir: [unterminated"), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}
	c := New()
	if err := c.LoadFile(path); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}
