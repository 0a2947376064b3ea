// Package diag implements the accumulating diagnostic model described in
// spec.md §7: every recoverable error is appended to a per-component
// slice rather than thrown, and the top-level driver decides the exit
// code from whatever remains once the pipeline has run to completion.
package diag

import (
	"fmt"

	"github.com/uysalibov/ibORB/internal/token"
)

// Stage identifies which pipeline component raised a diagnostic.
type Stage string

const (
	Lexical    Stage = "lexical"
	Syntactic  Stage = "syntactic"
	Semantic   Stage = "semantic"
	Generation Stage = "generation"
)

// Severity distinguishes warnings, which never affect the exit code,
// from errors, which do.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one accumulated finding, anchored to a source location.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Message  string
	Loc      token.Location
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: [%s] %s", d.Loc, d.Severity, d.Stage, d.Message)
}

// Bag accumulates diagnostics for one component or one whole compilation.
// The zero value is ready to use.
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Errorf(stage Stage, loc token.Location, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{Stage: stage, Severity: Error, Message: fmt.Sprintf(format, args...), Loc: loc})
}

func (b *Bag) Warnf(stage Stage, loc token.Location, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{Stage: stage, Severity: Warning, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Add appends diagnostics from another bag, preserving order.
func (b *Bag) Add(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

func (b *Bag) All() []Diagnostic {
	return b.items
}

// HasErrors reports whether any non-warning diagnostic is present.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}
