// Package preprocess shells out to a C preprocessor so that IDL files
// can use #include and #define the same way spec.md §5 describes,
// instead of reimplementing macro expansion. If no preprocessor binary
// is available, or it exits non-zero, the source is passed through
// verbatim and the caller is told so via Result.Ran == false.
package preprocess

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// Options mirrors the -I/-D flags accepted by the command line.
type Options struct {
	Includes []string
	Defines  []string // "NAME" or "NAME=VALUE"
	Binary   string   // defaults to "cpp" when empty
}

// Result carries the preprocessed text plus whether an external
// preprocessor actually ran.
type Result struct {
	Text string
	Ran  bool
	Err  error
}

// Run preprocesses src, which originated from filename, and returns the
// expanded text. On any failure to locate or execute the preprocessor
// binary it falls back to returning src unchanged with Ran == false;
// this is not itself an error, since -E/--no-preprocess exists precisely
// to make "skip preprocessing" a supported path.
func Run(src, filename string, opts Options) Result {
	bin := opts.Binary
	if bin == "" {
		bin = "cpp"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return Result{Text: src, Ran: false}
	}

	scratchDir := os.TempDir()
	scratchName := filepath.Join(scratchDir, "iborb-"+uuid.NewString()+filepath.Ext(filename))
	if err := os.WriteFile(scratchName, []byte(src), 0o600); err != nil {
		return Result{Text: src, Ran: false, Err: err}
	}
	defer os.Remove(scratchName)

	args := []string{"-P"}
	for _, inc := range opts.Includes {
		args = append(args, "-I"+inc)
	}
	for _, def := range opts.Defines {
		args = append(args, "-D"+def)
	}
	args = append(args, scratchName)

	cmd := exec.Command(path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{Text: src, Ran: false, Err: errors.New(stderr.String())}
	}
	return Result{Text: stdout.String(), Ran: true}
}
