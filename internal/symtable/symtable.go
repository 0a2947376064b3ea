// Package symtable implements the hierarchical scope model described in
// spec.md §4.3: a tree of lexical scopes populated during parsing and
// queried during both parsing (constant expressions) and generation
// (scoped-reference resolution).
package symtable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/uysalibov/ibORB/internal/ast"
)

// Kind is the role a Symbol plays, mirroring spec.md §3's Symbol table.
type Kind int

const (
	KModule Kind = iota
	KInterface
	KStruct
	KUnion
	KEnum
	KTypedef
	KException
	KConstant
	KOperation
	KAttribute
	KParameter
	KEnumValue
)

func (k Kind) String() string {
	switch k {
	case KModule:
		return "module"
	case KInterface:
		return "interface"
	case KStruct:
		return "struct"
	case KUnion:
		return "union"
	case KEnum:
		return "enum"
	case KTypedef:
		return "typedef"
	case KException:
		return "exception"
	case KConstant:
		return "constant"
	case KOperation:
		return "operation"
	case KAttribute:
		return "attribute"
	case KParameter:
		return "parameter"
	case KEnumValue:
		return "enum value"
	default:
		return "unknown"
	}
}

// Symbol is one named entry in a Scope.
type Symbol struct {
	Name   string
	FQN    string
	Kind   Kind
	Node   ast.Node // non-owning, optional for scope-only kinds
	Ordnal int      // enumerator ordinal, meaningful only for KEnumValue
}

// Scope is one node in the lexical scope tree. The global scope has an
// empty Name and a nil Parent.
type Scope struct {
	Name     string
	Parent   *Scope
	Children []*Scope
	Symbols  map[string]Symbol
	fqn      string
}

func newScope(name string, parent *Scope) *Scope {
	s := &Scope{Name: name, Parent: parent, Symbols: make(map[string]Symbol)}
	if parent == nil || parent.fqn == "" {
		s.fqn = name
	} else {
		s.fqn = parent.fqn + "::" + name
	}
	return s
}

// FQN returns the fully qualified name of the scope itself.
func (s *Scope) FQN() string { return s.fqn }

func (s *Scope) childByName(name string) *Scope {
	for _, c := range s.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *Scope) lookupLocal(name string) (Symbol, bool) {
	sym, ok := s.Symbols[name]
	return sym, ok
}

func (s *Scope) lookup(name string) (Symbol, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.lookupLocal(name); ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// String renders a deterministic, sorted dump of the scope tree — useful
// for debugging and golden-output tests, grounded on the teacher's own
// SymbolTable.String() dump method.
func (s *Scope) String() string {
	var b strings.Builder
	s.dump(&b, 0)
	return b.String()
}

func (s *Scope) dump(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	label := s.Name
	if label == "" {
		label = "<global>"
	}
	fmt.Fprintf(b, "%sscope %s\n", indent, label)
	names := make([]string, 0, len(s.Symbols))
	for n := range s.Symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		sym := s.Symbols[n]
		fmt.Fprintf(b, "%s  %s %s -> %s\n", indent, sym.Kind, sym.Name, sym.FQN)
	}
	for _, c := range s.Children {
		c.dump(b, depth+1)
	}
}

// SymbolTable tracks the current scope during parsing and remains
// queryable by non-owning reference afterward, during generation.
type SymbolTable struct {
	global  *Scope
	current *Scope
}

// New returns a SymbolTable positioned at the global scope.
func New() *SymbolTable {
	g := newScope("", nil)
	return &SymbolTable{global: g, current: g}
}

// Global returns the root scope.
func (st *SymbolTable) Global() *Scope { return st.global }

// Current returns the scope currently being populated.
func (st *SymbolTable) Current() *Scope { return st.current }

// EnterScope makes name the current scope, reusing an existing child
// scope of the same name if one exists — the re-opened-module case.
func (st *SymbolTable) EnterScope(name string) *Scope {
	if existing := st.current.childByName(name); existing != nil {
		st.current = existing
		return existing
	}
	child := newScope(name, st.current)
	st.current.Children = append(st.current.Children, child)
	st.current = child
	return child
}

// LeaveScope pops to the parent scope; a no-op at global.
func (st *SymbolTable) LeaveScope() {
	if st.current.Parent != nil {
		st.current = st.current.Parent
	}
}

// AddSymbol inserts name into the current scope. The returned bool
// reports whether the insertion happened; a false return means name was
// already present and the original symbol was kept. The parser ignores
// the bool: duplicates neither abort parsing nor produce a diagnostic.
func (st *SymbolTable) AddSymbol(name string, kind Kind, node ast.Node) (Symbol, bool) {
	if existing, ok := st.current.lookupLocal(name); ok {
		return existing, false
	}
	sym := Symbol{Name: name, Kind: kind, Node: node, FQN: st.buildFQN(name)}
	st.current.Symbols[name] = sym
	return sym, true
}

// AddEnumValue is AddSymbol specialized for enumerators, which spec.md
// §4.4 requires to land in the *surrounding* scope, not a child scope
// named after the enum, and which carry an ordinal for constant folding
// (spec.md §9's resolved open question).
func (st *SymbolTable) AddEnumValue(name string, ordinal int, node ast.Node) (Symbol, bool) {
	if existing, ok := st.current.lookupLocal(name); ok {
		return existing, false
	}
	sym := Symbol{Name: name, Kind: KEnumValue, Node: node, FQN: st.buildFQN(name), Ordnal: ordinal}
	st.current.Symbols[name] = sym
	return sym, true
}

func (st *SymbolTable) buildFQN(name string) string {
	if st.current.fqn == "" {
		return name
	}
	return st.current.fqn + "::" + name
}

// Lookup walks from the current scope toward global, returning the first
// match.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	return st.current.lookup(name)
}

// LookupScoped resolves a dotted path A::B::C per the three-step
// algorithm in spec.md §4.3.
func (st *SymbolTable) LookupScoped(parts []string, isAbsolute bool) (Symbol, bool) {
	if len(parts) == 0 {
		return Symbol{}, false
	}

	if isAbsolute {
		search := st.global
		for i := 0; i < len(parts)-1; i++ {
			child := search.childByName(parts[i])
			if child == nil {
				return Symbol{}, false
			}
			search = child
		}
		return search.lookupLocal(parts[len(parts)-1])
	}

	if len(parts) == 1 {
		return st.current.lookup(parts[0])
	}

	// Find the first ancestor that has either a child scope named
	// parts[0], or (when |parts|==1, handled above) a local symbol.
	var anchor *Scope
	for scope := st.current; scope != nil; scope = scope.Parent {
		if child := scope.childByName(parts[0]); child != nil {
			anchor = child
			break
		}
	}
	if anchor == nil {
		return Symbol{}, false
	}

	search := anchor
	for i := 1; i < len(parts)-1; i++ {
		child := search.childByName(parts[i])
		if child == nil {
			return Symbol{}, false
		}
		search = child
	}
	return search.lookupLocal(parts[len(parts)-1])
}

// ExistsInCurrentScope reports whether name is already bound locally.
func (st *SymbolTable) ExistsInCurrentScope(name string) bool {
	_, ok := st.current.lookupLocal(name)
	return ok
}

// String renders the whole table from the global scope down.
func (st *SymbolTable) String() string {
	return st.global.String()
}
