// Package generator renders a parsed translation unit as C++11 header
// text, following the mapping table in spec.md §4.5. Generation is one
// function per closed AST variant, not an open visitor hierarchy,
// mirroring the "closed set of node variants with pattern matching"
// design note in spec.md §9.
package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uysalibov/ibORB/internal/ast"
)

// Options controls optional output behavior.
type Options struct {
	// WithDoxygen emits a /** ... */ block above every generated
	// class/struct/enum, named after the definition it documents.
	WithDoxygen bool

	// NamespacePrefix, if non-empty, is folded into the include guard
	// ahead of the file's base name: IBORB_GENERATED_<PREFIX>_<BASE>_HPP.
	// Unused by the default CLI path, which emits the bare guard form.
	NamespacePrefix string
}

// Generator accumulates generated C++11 source text for one translation
// unit.
type Generator struct {
	opts   Options
	buf    strings.Builder
	indent int
}

// New returns a Generator configured with opts.
func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

func (g *Generator) indentStr() string { return strings.Repeat("    ", g.indent) }

func (g *Generator) line(format string, args ...interface{}) {
	fmt.Fprintf(&g.buf, "%s%s\n", g.indentStr(), fmt.Sprintf(format, args...))
}

func (g *Generator) blank() { g.buf.WriteByte('\n') }

func (g *Generator) enter() { g.indent++ }
func (g *Generator) leave() {
	if g.indent > 0 {
		g.indent--
	}
}

func (g *Generator) doc(name, what string) {
	if !g.opts.WithDoxygen {
		return
	}
	g.line("/** %s %s. */", what, name)
}

// Generate renders unit as a complete header, including the include
// guard and fixed include list from spec.md §4.5.
func Generate(unit *ast.TranslationUnit, opts Options) string {
	g := New(opts)
	guard := makeIncludeGuard(unit.Filename, opts.NamespacePrefix)

	g.line("#ifndef %s", guard)
	g.line("#define %s", guard)
	g.blank()
	for _, inc := range []string{"cstdint", "string", "vector", "array", "memory", "stdexcept"} {
		g.line("#include <%s>", inc)
	}
	g.blank()

	for _, def := range unit.Definitions {
		g.genDefinition(def)
	}

	g.line("#endif")
	return g.buf.String()
}

// makeIncludeGuard derives IBORB_GENERATED_<UPPER_BASENAME>_HPP, with an
// optional namespace prefix folded in ahead of the base name.
func makeIncludeGuard(filename, prefix string) string {
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	base = sanitizeForGuard(base)
	if prefix != "" {
		return fmt.Sprintf("IBORB_GENERATED_%s_%s_HPP", sanitizeForGuard(prefix), base)
	}
	return fmt.Sprintf("IBORB_GENERATED_%s_HPP", base)
}

func sanitizeForGuard(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Definitions
// ---------------------------------------------------------------------------

func (g *Generator) genDefinition(def ast.Definition) {
	switch d := def.(type) {
	case *ast.Module:
		g.genModule(d)
	case *ast.Interface:
		g.genInterface(d)
	case *ast.Struct:
		g.genStruct(d)
	case *ast.Union:
		g.genUnion(d)
	case *ast.Enum:
		g.genEnum(d)
	case *ast.Typedef:
		g.genTypedef(d)
	case *ast.Const:
		g.genConst(d)
	case *ast.Exception:
		g.genException(d)
	}
}

func (g *Generator) genModule(m *ast.Module) {
	g.line("namespace %s {", sanitizeIdentifier(m.Name))
	g.blank()
	g.enter()
	for _, def := range m.Definitions {
		g.genDefinition(def)
	}
	g.leave()
	g.line("} // namespace %s", sanitizeIdentifier(m.Name))
	g.blank()
}

func (g *Generator) genInterface(i *ast.Interface) {
	name := sanitizeIdentifier(i.Name)
	if i.Forward {
		g.line("class %s;", name)
		g.blank()
		return
	}

	g.doc(name, "Interface")
	if len(i.Bases) == 0 {
		g.line("class %s {", name)
	} else {
		var bases []string
		for _, b := range i.Bases {
			bases = append(bases, "public virtual "+renderScopedName(b.Parts, b.Absolute))
		}
		g.line("class %s : %s {", name, strings.Join(bases, ", "))
	}
	g.line("public:")
	g.enter()
	g.line("virtual ~%s() = default;", name)
	g.blank()
	for _, c := range i.Contents {
		g.genInterfaceContent(c)
	}
	g.leave()
	g.line("};")
	g.blank()
	g.line("using %sPtr = std::shared_ptr<%s>;", name, name)
	g.blank()
}

func (g *Generator) genInterfaceContent(c ast.InterfaceContent) {
	switch n := c.(type) {
	case *ast.Operation:
		g.genOperation(n)
	case *ast.Attribute:
		g.genAttribute(n)
	case *ast.Struct:
		g.genStruct(n)
	case *ast.Enum:
		g.genEnum(n)
	}
}

func (g *Generator) genOperation(op *ast.Operation) {
	var params []string
	for _, p := range op.Parameters {
		params = append(params, g.renderParam(p))
	}
	g.line("virtual %s %s(%s) = 0;", g.renderType(op.ReturnType), sanitizeIdentifier(op.Name), strings.Join(params, ", "))
}

func (g *Generator) renderParam(p ast.Parameter) string {
	typ := g.renderType(p.Type)
	switch p.Direction {
	case ast.Out, ast.InOut:
		return fmt.Sprintf("%s& %s", typ, sanitizeIdentifier(p.Name))
	default:
		if isSimpleBasic(p.Type) {
			return fmt.Sprintf("%s %s", typ, sanitizeIdentifier(p.Name))
		}
		return fmt.Sprintf("const %s& %s", typ, sanitizeIdentifier(p.Name))
	}
}

func isSimpleBasic(t ast.Type) bool {
	_, ok := t.(*ast.BasicType)
	return ok
}

func (g *Generator) genAttribute(a *ast.Attribute) {
	typ := g.renderType(a.Type)
	name := sanitizeIdentifier(a.Name)
	g.line("virtual %s %s() const = 0;", typ, name)
	if !a.Readonly {
		g.line("virtual void %s(%s %s) = 0;", name, typ, name+"_")
	}
}

func (g *Generator) genStruct(s *ast.Struct) {
	name := sanitizeIdentifier(s.Name)
	g.doc(name, "Struct")
	g.line("struct %s {", name)
	g.enter()
	for _, m := range s.Members {
		g.line("%s %s;", g.renderType(m.Type), sanitizeIdentifier(m.Name))
	}
	g.blank()
	g.genStructEquality(name, s.Members, true)
	g.genStructEquality(name, s.Members, false)
	g.leave()
	g.line("};")
	g.blank()
}

func (g *Generator) genStructEquality(name string, members []ast.Member, equals bool) {
	op := "=="
	if !equals {
		op = "!="
	}
	g.line("bool operator%s(const %s& other) const {", op, name)
	g.enter()
	if len(members) == 0 {
		if equals {
			g.line("return true;")
		} else {
			g.line("return false;")
		}
	} else {
		var parts []string
		for _, m := range members {
			n := sanitizeIdentifier(m.Name)
			parts = append(parts, fmt.Sprintf("%s == other.%s", n, n))
		}
		expr := strings.Join(parts, " && ")
		if equals {
			g.line("return %s;", expr)
		} else {
			g.line("return !(%s);", expr)
		}
	}
	g.leave()
	g.line("}")
}

func (g *Generator) genException(e *ast.Exception) {
	name := sanitizeIdentifier(e.Name)
	g.doc(name, "Exception")
	g.line("class %s : public std::exception {", name)
	g.line("public:")
	g.enter()
	for _, m := range e.Members {
		g.line("%s %s;", g.renderType(m.Type), sanitizeIdentifier(m.Name))
	}
	g.blank()

	if len(e.Members) > 0 {
		var params []string
		var inits []string
		for _, m := range e.Members {
			n := sanitizeIdentifier(m.Name)
			params = append(params, fmt.Sprintf("%s %s_", g.renderType(m.Type), n))
			inits = append(inits, fmt.Sprintf("%s(%s_)", n, n))
		}
		g.line("%s(%s) : %s {}", name, strings.Join(params, ", "), strings.Join(inits, ", "))
	}
	g.line("%s() = default;", name)
	g.blank()
	g.line("const char* what() const noexcept override { return \"%s\"; }", name)
	g.leave()
	g.line("};")
	g.blank()
}

func (g *Generator) genUnion(u *ast.Union) {
	name := sanitizeIdentifier(u.Name)
	discType := g.renderType(u.DiscriminatorTy)

	g.doc(name, "Union")
	g.line("class %s {", name)
	g.line("public:")
	g.enter()
	g.line("%s _d() const { return discriminator_; }", discType)
	g.line("void _d(%s v) { discriminator_ = v; }", discType)
	g.blank()
	for _, c := range u.Cases {
		n := sanitizeIdentifier(c.Name)
		typ := g.renderType(c.Type)
		g.line("%s %s() const { return %s_; }", typ, n, n)
		g.line("void %s(const %s& v) { %s_ = v; }", n, typ, n)
		g.blank()
	}
	g.leave()
	g.line("private:")
	g.enter()
	g.line("%s discriminator_{};", discType)
	for _, c := range u.Cases {
		n := sanitizeIdentifier(c.Name)
		g.line("%s %s_{};", g.renderType(c.Type), n)
	}
	g.leave()
	g.line("};")
	g.blank()
}

func (g *Generator) genEnum(e *ast.Enum) {
	name := sanitizeIdentifier(e.Name)
	g.doc(name, "Enum")
	var names []string
	for _, v := range e.Enumerators {
		names = append(names, sanitizeIdentifier(v))
	}
	g.line("enum class %s { %s };", name, strings.Join(names, ", "))
	g.blank()
}

func (g *Generator) genTypedef(t *ast.Typedef) {
	for _, d := range t.Declarators {
		underlying := g.renderType(t.Type)
		for i := len(d.Dims) - 1; i >= 0; i-- {
			underlying = fmt.Sprintf("std::array<%s, %d>", underlying, d.Dims[i])
		}
		g.line("using %s = %s;", sanitizeIdentifier(d.Name), underlying)
	}
	g.blank()
}

func (g *Generator) genConst(c *ast.Const) {
	g.line("constexpr %s %s = %s;", g.renderType(c.Type), sanitizeIdentifier(c.Name), constValueToString(c.Value, c.Type))
	g.blank()
}

// ---------------------------------------------------------------------------
// Type rendering
// ---------------------------------------------------------------------------

func (g *Generator) renderType(t ast.Type) string {
	switch ty := t.(type) {
	case *ast.BasicType:
		return basicTypeName(ty.Kind)
	case *ast.SequenceType:
		return fmt.Sprintf("std::vector<%s>", g.renderType(ty.Element))
	case *ast.StringType:
		if ty.Wide {
			return "std::wstring"
		}
		return "std::string"
	case *ast.ScopedName:
		return renderScopedName(ty.Parts, ty.Absolute)
	case *ast.ArrayType:
		elem := g.renderType(ty.Element)
		for i := len(ty.Dims) - 1; i >= 0; i-- {
			elem = fmt.Sprintf("std::array<%s, %d>", elem, ty.Dims[i])
		}
		return elem
	default:
		return "void"
	}
}

func basicTypeName(k ast.BasicKind) string {
	switch k {
	case ast.KVoid:
		return "void"
	case ast.KBoolean:
		return "bool"
	case ast.KChar:
		return "char"
	case ast.KWChar:
		return "wchar_t"
	case ast.KOctet:
		return "uint8_t"
	case ast.KShort:
		return "int16_t"
	case ast.KUShort:
		return "uint16_t"
	case ast.KLong:
		return "int32_t"
	case ast.KULong:
		return "uint32_t"
	case ast.KLongLong:
		return "int64_t"
	case ast.KULongLong:
		return "uint64_t"
	case ast.KFloat:
		return "float"
	case ast.KDouble:
		return "double"
	case ast.KLongDouble:
		return "long double"
	case ast.KAny:
		return "std::any"
	case ast.KObject:
		return "Object"
	default:
		return "void"
	}
}

// constValueToString renders a folded constant for use as a C++
// initializer; the result depends only on the value's own kind, not
// the declared type (a CVUint value gets the "ULL" suffix).
func constValueToString(v ast.ConstValue, _ ast.Type) string {
	switch v.Kind {
	case ast.CVInt:
		return strconv.FormatInt(v.I, 10)
	case ast.CVUint:
		return strconv.FormatUint(v.U, 10) + "ULL"
	case ast.CVFloat:
		return strconv.FormatFloat(v.F, 'g', 17, 64)
	case ast.CVString:
		return strconv.Quote(v.S)
	case ast.CVBool:
		if v.B {
			return "true"
		}
		return "false"
	default:
		return "0"
	}
}

// ---------------------------------------------------------------------------
// Identifier sanitization
// ---------------------------------------------------------------------------

var reservedWords = map[string]string{
	"class":     "class_",
	"struct":    "struct_",
	"union":     "union_",
	"enum":      "enum_",
	"namespace": "namespace_",
	"template":  "template_",
	"typename":  "typename_",
	"public":    "public_",
	"private":   "private_",
	"protected": "protected_",
	"virtual":   "virtual_",
	"operator":  "operator_",
	"new":       "new_",
	"delete":    "delete_",
	"this":      "this_",
	"friend":    "friend_",
	"explicit":  "explicit_",
	"export":    "export_",
	"using":     "using_",
	"typedef":   "typedef_",
	"const":     "const_",
	"static":    "static_",
	"volatile":  "volatile_",
	"mutable":   "mutable_",
	"inline":    "inline_",
	"return":    "return_",
	"if":        "if_",
	"else":      "else_",
	"for":       "for_",
	"while":     "while_",
	"do":        "do_",
	"switch":    "switch_",
	"case":      "case_",
	"default":   "default_",
	"break":     "break_",
	"continue":  "continue_",
	"goto":      "goto_",
	"sizeof":    "sizeof_",
	"auto":      "auto_",
	"register":  "register_",
	"signed":    "signed_",
	"unsigned":  "unsigned_",
	"void":      "void_",
	"bool":      "bool_",
	"char":      "char_",
	"int":       "int_",
	"float":     "float_",
	"double":    "double_",
	"long":      "long_",
	"short":     "short_",
	"true":      "true_",
	"false":     "false_",
	"nullptr":   "nullptr_",
	"catch":     "catch_",
	"try":       "try_",
	"throw":     "throw_",
	"and":       "and_",
	"or":        "or_",
	"not":       "not_",
	"xor":       "xor_",
}

// renderScopedName joins a scoped name's parts with "::", prepending a
// leading "::" when the name is absolute, so that qualification and
// absoluteness both survive into the generated C++ the way they were
// written in the IDL.
func renderScopedName(parts []string, absolute bool) string {
	joined := sanitizeIdentifier(strings.Join(parts, "::"))
	if absolute {
		return "::" + joined
	}
	return joined
}

// sanitizeIdentifier maps s to a safe C++ identifier, rewriting each
// reserved word it contains (scoped names keep their "::" separators).
func sanitizeIdentifier(s string) string {
	parts := strings.Split(s, "::")
	for i, p := range parts {
		if repl, ok := reservedWords[p]; ok {
			parts[i] = repl
		}
	}
	return strings.Join(parts, "::")
}
