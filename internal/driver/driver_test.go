package driver_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uysalibov/ibORB/internal/driver"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestRunGeneratesHeaderForValidInput(t *testing.T) {
	dir := t.TempDir()
	idlPath := filepath.Join(dir, "account.idl")
	err := os.WriteFile(idlPath, []byte(`
		module bank {
			interface Account {
				readonly attribute long balance;
				void deposit(in long amount);
			};
		};
	`), 0o644)
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	opts := driver.Options{OutputDir: outDir, NoPreprocess: true}

	failures := driver.Run(discardLogger(), opts, []string{idlPath})
	assert.Equal(t, 0, failures)

	generated, err := os.ReadFile(filepath.Join(outDir, "account.hpp"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "namespace bank {")
	assert.Contains(t, string(generated), "class Account {")
}

func TestRunReportsFailureOnSyntaxError(t *testing.T) {
	dir := t.TempDir()
	idlPath := filepath.Join(dir, "broken.idl")
	err := os.WriteFile(idlPath, []byte(`struct Broken { long ; };`), 0o644)
	require.NoError(t, err)

	opts := driver.Options{OutputDir: filepath.Join(dir, "out"), NoPreprocess: true}
	failures := driver.Run(discardLogger(), opts, []string{idlPath})
	assert.Equal(t, 1, failures)
}

func TestRunParseOnlySkipsGeneration(t *testing.T) {
	dir := t.TempDir()
	idlPath := filepath.Join(dir, "plain.idl")
	err := os.WriteFile(idlPath, []byte(`const long X = 1;`), 0o644)
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	opts := driver.Options{OutputDir: outDir, NoPreprocess: true, ParseOnly: true}
	failures := driver.Run(discardLogger(), opts, []string{idlPath})
	assert.Equal(t, 0, failures)

	_, err = os.Stat(filepath.Join(outDir, "plain.hpp"))
	assert.True(t, os.IsNotExist(err), "parse-only should not write a header")
}

func TestRunAcrossMultipleFilesCountsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.idl")
	bad := filepath.Join(dir, "bad.idl")
	require.NoError(t, os.WriteFile(good, []byte(`const long X = 1;`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`struct { };`), 0o644))

	opts := driver.Options{OutputDir: filepath.Join(dir, "out"), NoPreprocess: true}
	failures := driver.Run(discardLogger(), opts, []string{good, bad})
	assert.Equal(t, 1, failures)
}
