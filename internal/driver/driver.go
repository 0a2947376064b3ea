// Package driver orchestrates one compilation run: for every input
// file it preprocesses, parses and generates in sequence, counting
// failures across the whole batch the way the original main.cpp's
// processFile/main loop does (spec.md §5, §6).
package driver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/uysalibov/ibORB/internal/generator"
	"github.com/uysalibov/ibORB/internal/parser"
	"github.com/uysalibov/ibORB/internal/pathutil"
	"github.com/uysalibov/ibORB/internal/preprocess"
)

// Options is the fully resolved set of knobs for one run, assembled by
// the CLI layer from flags and an optional config file.
type Options struct {
	OutputDir    string
	Includes     []string
	Defines      []string
	NoPreprocess bool
	ParseOnly    bool
	Verbose      bool
	WithDoxygen  bool
	PreprocessBinary string
}

var stageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

func banner(opts Options, format string, args ...interface{}) {
	if !opts.Verbose {
		return
	}
	fmt.Fprintln(os.Stderr, stageStyle.Render(fmt.Sprintf(format, args...)))
}

// Run processes every path in paths and returns the number of files
// that failed. A non-zero return is the caller's cue to exit(1).
func Run(log *slog.Logger, opts Options, paths []string) int {
	if !opts.ParseOnly {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			log.Error("creating output directory", "dir", opts.OutputDir, "err", err)
			return len(paths)
		}
	}

	failures := 0
	for _, path := range paths {
		if err := processFile(log, opts, path); err != nil {
			log.Error("processing failed", "file", path, "err", err)
			failures++
		}
	}
	return failures
}

func processFile(log *slog.Logger, opts Options, inputFile string) error {
	banner(opts, "==> %s", inputFile)
	filename := filepath.Base(inputFile)

	absPath, parentDir, err := pathutil.Resolve(inputFile)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", inputFile, err)
	}
	log = log.With("file", absPath)

	raw, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputFile, err)
	}
	src := string(raw)

	if opts.NoPreprocess {
		banner(opts, "  skipping preprocessor")
	} else {
		banner(opts, "  preprocessing")
		res := preprocess.Run(src, filename, preprocess.Options{
			Includes: append([]string{parentDir}, opts.Includes...),
			Defines:  opts.Defines,
			Binary:   opts.PreprocessBinary,
		})
		if !res.Ran {
			banner(opts, "  preprocessor unavailable, using raw source")
			if res.Err != nil {
				log.Warn("preprocessor failed, falling back to raw source", "file", inputFile, "err", res.Err)
			}
		}
		src = res.Text
	}

	banner(opts, "  parsing")
	p := parser.New(src, inputFile)
	unit := p.Parse(filename)

	bag := p.Diagnostics()
	for _, d := range bag.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if bag.HasErrors() {
		return fmt.Errorf("parsing failed with %d diagnostic(s)", bag.Len())
	}
	banner(opts, "  parsed %d top-level definition(s)", len(unit.Definitions))

	if opts.ParseOnly {
		return nil
	}

	banner(opts, "  generating C++11 code")
	text := generator.Generate(unit, generator.Options{WithDoxygen: opts.WithDoxygen})

	base := baseName(filename)
	outPath := filepath.Join(opts.OutputDir, base+".hpp")
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	banner(opts, "  wrote %s", outPath)
	return nil
}

func baseName(filename string) string {
	ext := filepath.Ext(filename)
	return filename[:len(filename)-len(ext)]
}
