// Package ast defines the closed set of node variants shared between the
// parser and the code generator. Nodes are immutable after construction;
// ownership flows strictly parent to child, and scoped names are stored
// as plain strings rather than back-pointers so that forward-declared
// interfaces never force a cycle into the tree (spec.md §9).
package ast

import "github.com/uysalibov/ibORB/internal/token"

// Definition is the marker interface implemented by every top-level or
// nested definition node (Module, Interface, Struct, Union, Enum,
// Typedef, Const, Exception). There is no open visitor hierarchy here —
// the generator switches on the concrete type, one function per variant,
// per the "closed set of node variants with pattern matching" design
// note in spec.md §9.
type Definition interface {
	Node
	isDefinition()
}

// Node is implemented by every AST node; it carries the source location
// used for diagnostics during generation.
type Node interface {
	Location() token.Location
}

type base struct {
	Loc token.Location
}

func (b base) Location() token.Location { return b.Loc }

// Module is a named scope containing nested definitions.
type Module struct {
	base
	Name        string
	Definitions []Definition
}

func (*Module) isDefinition() {}

// ParamDirection is the passing direction of an operation parameter.
type ParamDirection int

const (
	In ParamDirection = iota
	Out
	InOut
)

func (d ParamDirection) String() string {
	switch d {
	case Out:
		return "out"
	case InOut:
		return "inout"
	default:
		return "in"
	}
}

// InterfaceContent is implemented by the node kinds that can appear in
// an interface body: Operation, Attribute, and nested Struct and Enum
// definitions. Other nested definitions (Union, Typedef, Const,
// Exception) do not implement it and are not kept in an interface body.
type InterfaceContent interface {
	Node
	isInterfaceContent()
}

// Interface is a named set of operations and attributes, optionally
// forward-declared (Forward == true, Contents/Bases unused).
type Interface struct {
	base
	Name     string
	Bases    []ScopedName // base interface list, order preserved
	Contents []InterfaceContent
	Abstract bool
	Local    bool
	Forward  bool
}

func (*Interface) isDefinition() {}

// Member is a name+type pair shared by Struct/Exception members.
type Member struct {
	base
	Name string
	Type Type
}

// Struct is a named aggregate of ordered members.
type Struct struct {
	base
	Name    string
	Members []Member
}

func (*Struct) isDefinition() {}
func (*Struct) isInterfaceContent() {}

// Exception is a named aggregate of ordered members that maps to a
// standard-exception-deriving C++ class.
type Exception struct {
	base
	Name    string
	Members []Member
}

func (*Exception) isDefinition() {}

// CaseLabel is one label on a UnionCase: either a folded constant value
// or the "default" marker.
type CaseLabel struct {
	IsDefault bool
	Value     ConstValue
}

// UnionCase is one case arm: one or more labels sharing a member.
type UnionCase struct {
	base
	Labels []CaseLabel
	Type   Type
	Name   string
}

// Union is a named discriminated union.
type Union struct {
	base
	Name            string
	DiscriminatorTy Type
	Cases           []UnionCase
}

func (*Union) isDefinition() {}

// Enum is a named ordered set of enumerators.
type Enum struct {
	base
	Name        string
	Enumerators []string
}

func (*Enum) isDefinition() {}
func (*Enum) isInterfaceContent() {}

// Declarator is one typedef'd name, with optional fixed array dimensions
// applied outer-first (dims[0] is the outermost dimension).
type Declarator struct {
	Name string
	Dims []int
}

// Typedef introduces one or more new names for an existing type.
type Typedef struct {
	base
	Type        Type
	Declarators []Declarator
}

func (*Typedef) isDefinition() {}

// Const is a named, folded compile-time constant.
type Const struct {
	base
	Name  string
	Type  Type
	Value ConstValue
}

func (*Const) isDefinition() {}

// Parameter is one operation parameter.
type Parameter struct {
	base
	Direction ParamDirection
	Type      Type
	Name      string
}

// Operation is an interface member representing a callable method.
type Operation struct {
	base
	Name       string
	ReturnType Type
	Parameters []Parameter
	Raises     []ScopedName
	OneWay     bool
}

func (*Operation) isInterfaceContent() {}

// Attribute is an interface member representing a get/set(-or-get-only)
// value.
type Attribute struct {
	base
	Name     string
	Type     Type
	Readonly bool
}

func (*Attribute) isInterfaceContent() {}

// Type is implemented by every type-leaf node: BasicType, SequenceType,
// StringType, ScopedName, ArrayType.
type Type interface {
	Node
	isType()
}

// BasicKind enumerates the CORBA basic types.
type BasicKind int

const (
	KVoid BasicKind = iota
	KBoolean
	KChar
	KWChar
	KOctet
	KShort
	KUShort
	KLong
	KULong
	KLongLong
	KULongLong
	KFloat
	KDouble
	KLongDouble
	KAny
	KObject
)

// BasicType is a leaf type referring to one of the built-in CORBA basic
// types.
type BasicType struct {
	base
	Kind BasicKind
}

func (*BasicType) isType() {}

// SequenceType is a growable, optionally bounded sequence of Element.
// Bound == 0 means unbounded.
type SequenceType struct {
	base
	Element Type
	Bound   int
}

func (*SequenceType) isType() {}

// StringType is a narrow or wide string, optionally bounded (Bound == 0
// means unbounded).
type StringType struct {
	base
	Bound int
	Wide  bool
}

func (*StringType) isType() {}

// ScopedName is a possibly-absolute, possibly-qualified reference to a
// previously defined type or constant. Names are stored textually, not
// as AST back-pointers, so that forward declarations never force a
// cycle (spec.md §9).
type ScopedName struct {
	base
	Absolute bool
	Parts    []string
}

func (*ScopedName) isType() {}

// ArrayType is a type with one or more fixed dimensions, each >= 1.
type ArrayType struct {
	base
	Element Type
	Dims    []int
}

func (*ArrayType) isType() {}

// ConstValueKind tags the active alternative held by a ConstValue.
type ConstValueKind int

const (
	CVInt ConstValueKind = iota
	CVUint
	CVFloat
	CVString
	CVBool
)

// ConstValue is the tagged union of folded constant-expression results.
type ConstValue struct {
	Kind ConstValueKind
	I    int64
	U    uint64
	F    float64
	S    string
	B    bool
}

// TranslationUnit is the root of one compiled IDL file.
type TranslationUnit struct {
	Filename    string
	Definitions []Definition
}
