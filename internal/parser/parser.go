// Package parser implements the recursive-descent consumer described in
// spec.md §4.4: it builds the AST, populates the symbol table as it
// goes, and recovers from syntax errors via panic-mode synchronization
// instead of aborting on the first bad token.
package parser

import (
	"fmt"
	"strings"

	"github.com/uysalibov/ibORB/internal/ast"
	"github.com/uysalibov/ibORB/internal/diag"
	"github.com/uysalibov/ibORB/internal/lexer"
	"github.com/uysalibov/ibORB/internal/symtable"
	"github.com/uysalibov/ibORB/internal/token"
)

// Parser consumes a Lexer's token stream and produces a TranslationUnit,
// populating a SymbolTable as a side effect.
type Parser struct {
	lex  *lexer.Lexer
	syms *symtable.SymbolTable

	cur, prev token.Token
	sourceLines []string

	diags     diag.Bag
	panicMode bool
}

// New returns a Parser ready to parse src. The lines of src are also kept
// to annotate diagnostics with the offending source line, mirroring the
// teacher's own fmtError helper.
func New(src, filename string) *Parser {
	p := &Parser{
		lex:         lexer.New(src, filename),
		syms:        symtable.New(),
		sourceLines: strings.Split(src, "\n"),
	}
	p.advance() // prime current token
	return p
}

// SymbolTable returns the table populated during parsing.
func (p *Parser) SymbolTable() *symtable.SymbolTable { return p.syms }

// Diagnostics returns every accumulated diagnostic, lexical and
// syntactic/semantic alike.
func (p *Parser) Diagnostics() *diag.Bag {
	p.diags.Add(p.lex.Diagnostics())
	return &p.diags
}

// Parse consumes the entire token stream and returns the resulting
// TranslationUnit.
func (p *Parser) Parse(filename string) *ast.TranslationUnit {
	unit := &ast.TranslationUnit{Filename: filename}

	for !p.check(token.EOF) {
		def := p.parseDefinition()
		if def != nil {
			unit.Definitions = append(unit.Definitions, def)
		} else {
			p.synchronize()
		}
	}
	return unit
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (p *Parser) advance() token.Token {
	p.prev = p.cur
	for {
		p.cur = p.lex.Next()
		if p.cur.Type == token.LINE_DIRECTIVE || p.cur.Type == token.PRAGMA {
			continue
		}
		break
	}
	return p.prev
}

func (p *Parser) check(tt token.Type) bool { return p.cur.Type == tt }

func (p *Parser) match(tt token.Type) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt token.Type, what string) bool {
	if p.check(tt) {
		p.advance()
		// Consuming a ';' or '}' is itself a recovery point identical to
		// what synchronize() looks for, so clear panic mode here too --
		// otherwise one swallowed error inside a construct that still
		// closes cleanly would suppress every later diagnostic.
		if tt == token.SEMICOLON || tt == token.RBRACE {
			p.panicMode = false
		}
		return true
	}
	p.errorAt(p.cur, "expected %s", what)
	return false
}

func (p *Parser) expectSemicolon() { p.expect(token.SEMICOLON, "';'") }

// ---------------------------------------------------------------------------
// Error handling
// ---------------------------------------------------------------------------

func (p *Parser) errorAt(tok token.Token, format string, args ...interface{}) {
	if p.panicMode {
		return // suppress cascading diagnostics
	}
	p.panicMode = true
	msg := fmt.Sprintf(format, args...)
	if tok.Type != token.EOF {
		lineIdx := tok.Loc.Line - 1
		if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
			msg = fmt.Sprintf("%s (got %q)\n  |> %s", msg, tok.Lexeme, strings.TrimSpace(p.sourceLines[lineIdx]))
		}
	} else {
		msg += " at end of file"
	}
	p.diags.Errorf(diag.Syntactic, tok.Loc, "%s", msg)
}

func (p *Parser) error(format string, args ...interface{}) {
	p.errorAt(p.cur, format, args...)
}

func (p *Parser) warning(format string, args ...interface{}) {
	p.diags.Warnf(diag.Semantic, p.cur.Loc, format, args...)
}

// synchronize implements panic-mode recovery exactly per spec.md §4.4:
// resume after a consumed ';', after a '}' optionally followed by ';',
// or at the next token that opens a new definition.
func (p *Parser) synchronize() {
	p.panicMode = false

	for !p.check(token.EOF) {
		if p.prev.Type == token.SEMICOLON {
			return
		}
		if p.prev.Type == token.RBRACE {
			if p.check(token.SEMICOLON) {
				p.advance()
			}
			return
		}
		if p.isDefinitionStart() {
			return
		}
		p.advance()
	}
}

func (p *Parser) isDefinitionStart() bool {
	switch p.cur.Type {
	case token.MODULE, token.INTERFACE, token.STRUCT, token.UNION, token.ENUM,
		token.TYPEDEF, token.CONST, token.EXCEPTION, token.ABSTRACT, token.LOCAL:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Definitions
// ---------------------------------------------------------------------------

func (p *Parser) parseDefinition() ast.Definition {
	isAbstract := p.match(token.ABSTRACT)
	isLocal := p.match(token.LOCAL)

	if p.check(token.MODULE) {
		if isAbstract || isLocal {
			p.error("'abstract' and 'local' cannot be applied to modules")
		}
		return p.parseModule()
	}
	if p.check(token.INTERFACE) {
		return p.parseInterface(isAbstract, isLocal)
	}
	if isAbstract || isLocal {
		p.error("'abstract' and 'local' can only be applied to interfaces")
	}

	switch p.cur.Type {
	case token.STRUCT:
		return p.parseStruct()
	case token.UNION:
		return p.parseUnion()
	case token.ENUM:
		return p.parseEnum()
	case token.TYPEDEF:
		return p.parseTypedef()
	case token.CONST:
		return p.parseConst()
	case token.EXCEPTION:
		return p.parseException()
	}

	p.error("expected definition (module, interface, struct, etc.)")
	return nil
}

func (p *Parser) parseModule() ast.Definition {
	loc := p.cur.Loc
	p.expect(token.MODULE, "'module'")

	if !p.check(token.IDENT) {
		p.error("expected module name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()

	p.syms.AddSymbol(name, symtable.KModule, nil)
	p.syms.EnterScope(name)

	node := &ast.Module{Name: name}
	node.Loc = loc

	p.expect(token.LBRACE, "'{' after module name")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		def := p.parseDefinition()
		if def != nil {
			node.Definitions = append(node.Definitions, def)
		} else {
			p.synchronize()
		}
	}
	p.expect(token.RBRACE, "'}' at end of module")
	p.expectSemicolon()

	p.syms.LeaveScope()
	return node
}

func (p *Parser) parseInheritanceSpec() []ast.ScopedName {
	var bases []ast.ScopedName
	p.expect(token.COLON, "':' for inheritance")
	for {
		loc := p.cur.Loc
		absolute := p.match(token.SCOPE)
		if !p.check(token.IDENT) {
			p.error("expected base interface name")
			break
		}
		var parts []string
		parts = append(parts, p.cur.Lexeme)
		p.advance()
		for p.match(token.SCOPE) {
			if !p.check(token.IDENT) {
				p.error("expected identifier after '::'")
				break
			}
			parts = append(parts, p.cur.Lexeme)
			p.advance()
		}
		sn := ast.ScopedName{Absolute: absolute, Parts: parts}
		sn.Loc = loc
		bases = append(bases, sn)
		if !p.match(token.COMMA) {
			break
		}
	}
	return bases
}

func (p *Parser) parseInterface(isAbstract, isLocal bool) ast.Definition {
	loc := p.cur.Loc
	p.expect(token.INTERFACE, "'interface'")

	if !p.check(token.IDENT) {
		p.error("expected interface name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()

	node := &ast.Interface{Name: name, Abstract: isAbstract, Local: isLocal}
	node.Loc = loc

	if p.check(token.SEMICOLON) {
		p.advance()
		node.Forward = true
		p.syms.AddSymbol(name, symtable.KInterface, node)
		return node
	}

	if p.check(token.COLON) {
		node.Bases = p.parseInheritanceSpec()
	}

	p.syms.AddSymbol(name, symtable.KInterface, node)
	p.syms.EnterScope(name)

	p.expect(token.LBRACE, "'{' after interface name")

	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		readonly := p.match(token.READONLY)
		oneway := p.match(token.ONEWAY)

		switch {
		case p.check(token.ATTRIBUTE):
			if oneway {
				p.error("'oneway' cannot be applied to attributes")
			}
			if attr := p.parseAttribute(readonly); attr != nil {
				node.Contents = append(node.Contents, attr)
			}
		case p.isDefinitionStart():
			if readonly || oneway {
				p.error("'readonly' and 'oneway' can only be applied to attributes and operations")
			}
			if def := p.parseDefinition(); def != nil {
				if ic, ok := def.(ast.InterfaceContent); ok {
					node.Contents = append(node.Contents, ic)
				}
			}
		default:
			if readonly {
				p.error("'readonly' can only be applied to attributes")
			}
			retType := p.parseTypeSpec()
			if retType == nil {
				p.synchronize()
				continue
			}
			if !p.check(token.IDENT) {
				p.error("expected operation name")
				p.synchronize()
				continue
			}
			opName := p.cur.Lexeme
			p.advance()
			if op := p.parseOperation(retType, opName, oneway); op != nil {
				node.Contents = append(node.Contents, op)
			}
		}
	}

	p.expect(token.RBRACE, "'}' at end of interface")
	p.expectSemicolon()

	p.syms.LeaveScope()
	return node
}

func (p *Parser) parseStruct() ast.Definition {
	loc := p.cur.Loc
	p.expect(token.STRUCT, "'struct'")

	if !p.check(token.IDENT) {
		p.error("expected struct name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()

	if p.check(token.SEMICOLON) {
		p.advance()
		node := &ast.Struct{Name: name}
		node.Loc = loc
		p.syms.AddSymbol(name, symtable.KStruct, node)
		return node
	}

	p.syms.AddSymbol(name, symtable.KStruct, nil)
	p.syms.EnterScope(name)

	node := &ast.Struct{Name: name}
	node.Loc = loc

	p.expect(token.LBRACE, "'{' after struct name")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if m := p.parseMember(); m != nil {
			node.Members = append(node.Members, *m)
		} else {
			p.synchronize()
		}
	}
	p.expect(token.RBRACE, "'}' at end of struct")
	p.expectSemicolon()

	p.syms.LeaveScope()
	return node
}

func (p *Parser) parseUnion() ast.Definition {
	loc := p.cur.Loc
	p.expect(token.UNION, "'union'")

	if !p.check(token.IDENT) {
		p.error("expected union name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()

	p.expect(token.SWITCH, "'switch' after union name")
	p.expect(token.LPAREN, "'(' after 'switch'")

	discType := p.parseTypeSpec()
	if discType == nil {
		p.error("expected discriminator type")
		return nil
	}
	p.expect(token.RPAREN, "')' after discriminator type")

	p.syms.AddSymbol(name, symtable.KUnion, nil)
	p.syms.EnterScope(name)

	node := &ast.Union{Name: name, DiscriminatorTy: discType}
	node.Loc = loc

	p.expect(token.LBRACE, "'{' after union switch")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if c := p.parseUnionCase(); c != nil {
			node.Cases = append(node.Cases, *c)
		} else {
			p.synchronize()
		}
	}
	p.expect(token.RBRACE, "'}' at end of union")
	p.expectSemicolon()

	p.syms.LeaveScope()
	return node
}

func (p *Parser) parseUnionCase() *ast.UnionCase {
	loc := p.cur.Loc
	var labels []ast.CaseLabel

	for p.check(token.CASE) || p.check(token.DEFAULT) {
		if p.match(token.DEFAULT) {
			labels = append(labels, ast.CaseLabel{IsDefault: true})
			p.expect(token.COLON, "':' after 'default'")
		} else {
			p.advance() // 'case'
			val := p.parseConstExpr()
			labels = append(labels, ast.CaseLabel{Value: val})
			p.expect(token.COLON, "':' after case value")
		}
	}
	if len(labels) == 0 {
		p.error("expected 'case' or 'default'")
		return nil
	}

	typ := p.parseTypeSpec()
	if typ == nil {
		p.error("expected type in union case")
		return nil
	}
	if !p.check(token.IDENT) {
		p.error("expected member name in union case")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()
	p.expectSemicolon()

	c := &ast.UnionCase{Labels: labels, Type: typ, Name: name}
	c.Loc = loc
	return c
}

func (p *Parser) parseEnum() ast.Definition {
	loc := p.cur.Loc
	p.expect(token.ENUM, "'enum'")

	if !p.check(token.IDENT) {
		p.error("expected enum name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()

	p.expect(token.LBRACE, "'{' after enum name")

	var values []string
	for {
		if !p.check(token.IDENT) {
			p.error("expected enumerator name")
			break
		}
		values = append(values, p.cur.Lexeme)
		p.advance()
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "'}' at end of enum")
	p.expectSemicolon()

	node := &ast.Enum{Name: name, Enumerators: values}
	node.Loc = loc
	p.syms.AddSymbol(name, symtable.KEnum, node)

	for i, v := range values {
		p.syms.AddEnumValue(v, i, node)
	}
	return node
}

func (p *Parser) parseTypedef() ast.Definition {
	loc := p.cur.Loc
	p.expect(token.TYPEDEF, "'typedef'")

	typ := p.parseTypeSpec()
	if typ == nil {
		p.error("expected type specification")
		return nil
	}

	decls, ok := p.parseDeclarators()
	if !ok || len(decls) == 0 {
		p.error("expected declarator")
		return nil
	}
	p.expectSemicolon()

	for _, d := range decls {
		p.syms.AddSymbol(d.Name, symtable.KTypedef, nil)
	}

	node := &ast.Typedef{Type: typ, Declarators: decls}
	node.Loc = loc
	return node
}

func (p *Parser) parseConst() ast.Definition {
	loc := p.cur.Loc
	p.expect(token.CONST, "'const'")

	typ := p.parseTypeSpec()
	if typ == nil {
		p.error("expected const type")
		return nil
	}
	if !p.check(token.IDENT) {
		p.error("expected const name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()

	p.expect(token.ASSIGN, "'=' after const name")
	value := p.parseConstExpr()
	p.expectSemicolon()

	node := &ast.Const{Name: name, Type: typ, Value: value}
	node.Loc = loc
	p.syms.AddSymbol(name, symtable.KConstant, node)
	return node
}

func (p *Parser) parseException() ast.Definition {
	loc := p.cur.Loc
	p.expect(token.EXCEPTION, "'exception'")

	if !p.check(token.IDENT) {
		p.error("expected exception name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()

	p.syms.AddSymbol(name, symtable.KException, nil)
	p.syms.EnterScope(name)

	node := &ast.Exception{Name: name}
	node.Loc = loc

	p.expect(token.LBRACE, "'{' after exception name")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if m := p.parseMember(); m != nil {
			node.Members = append(node.Members, *m)
		} else {
			p.synchronize()
		}
	}
	p.expect(token.RBRACE, "'}' at end of exception")
	p.expectSemicolon()

	p.syms.LeaveScope()
	return node
}

// ---------------------------------------------------------------------------
// Interface members
// ---------------------------------------------------------------------------

func (p *Parser) parseOperation(retType ast.Type, name string, oneway bool) *ast.Operation {
	loc := p.prev.Loc
	node := &ast.Operation{Name: name, ReturnType: retType, OneWay: oneway}
	node.Loc = loc

	p.expect(token.LPAREN, "'(' after operation name")
	if !p.check(token.RPAREN) {
		for {
			if param := p.parseParameter(); param != nil {
				node.Parameters = append(node.Parameters, *param)
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "')' after parameters")

	if p.check(token.RAISES) {
		node.Raises = p.parseRaisesExpr()
	}
	p.expectSemicolon()

	p.syms.AddSymbol(name, symtable.KOperation, node)
	return node
}

func (p *Parser) parseAttribute(readonly bool) *ast.Attribute {
	loc := p.cur.Loc
	p.expect(token.ATTRIBUTE, "'attribute'")

	typ := p.parseTypeSpec()
	if typ == nil {
		p.error("expected attribute type")
		return nil
	}
	if !p.check(token.IDENT) {
		p.error("expected attribute name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()
	p.expectSemicolon()

	node := &ast.Attribute{Name: name, Type: typ, Readonly: readonly}
	node.Loc = loc
	p.syms.AddSymbol(name, symtable.KAttribute, node)
	return node
}

func (p *Parser) parseParameter() *ast.Parameter {
	loc := p.cur.Loc
	dir := p.parseParamDirection()

	typ := p.parseTypeSpec()
	if typ == nil {
		p.error("expected parameter type")
		return nil
	}
	if !p.check(token.IDENT) {
		p.error("expected parameter name")
		return nil
	}
	name := p.cur.Lexeme
	p.advance()

	param := &ast.Parameter{Direction: dir, Type: typ, Name: name}
	param.Loc = loc
	return param
}

func (p *Parser) parseMember() *ast.Member {
	loc := p.cur.Loc
	typ := p.parseTypeSpec()
	if typ == nil {
		return nil
	}
	decls, ok := p.parseDeclarators()
	if !ok || len(decls) == 0 {
		p.error("expected member name")
		return nil
	}
	p.expectSemicolon()

	decl := decls[0]
	memberType := typ
	if len(decl.Dims) > 0 {
		arr := &ast.ArrayType{Element: typ, Dims: decl.Dims}
		arr.Loc = loc
		memberType = arr
	}
	m := &ast.Member{Name: decl.Name, Type: memberType}
	m.Loc = loc
	return m
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

func (p *Parser) parseTypeSpec() ast.Type {
	switch p.cur.Type {
	case token.SEQUENCE:
		return p.parseSequenceType()
	case token.STRING_KW:
		return p.parseStringType(false)
	case token.WSTRING:
		return p.parseStringType(true)
	default:
		return p.parseSimpleTypeSpec()
	}
}

func (p *Parser) isTypeKeyword(tt token.Type) bool {
	switch tt {
	case token.VOID, token.BOOLEAN, token.CHAR_KW, token.WCHAR, token.OCTET,
		token.SHORT, token.LONG, token.FLOAT_KW, token.DOUBLE, token.UNSIGNED,
		token.ANY, token.OBJECT, token.STRING_KW, token.WSTRING, token.SEQUENCE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseSimpleTypeSpec() ast.Type {
	if p.isTypeKeyword(p.cur.Type) {
		return p.parseBaseTypeSpec()
	}
	if p.check(token.IDENT) || p.check(token.SCOPE) {
		return p.parseScopedName()
	}
	p.error("expected type specification")
	return nil
}

func (p *Parser) parseBaseTypeSpec() ast.Type {
	loc := p.cur.Loc
	kind := p.parseBasicType()
	bt := &ast.BasicType{Kind: kind}
	bt.Loc = loc
	return bt
}

func (p *Parser) parseBasicType() ast.BasicKind {
	switch {
	case p.match(token.VOID):
		return ast.KVoid
	case p.match(token.BOOLEAN):
		return ast.KBoolean
	case p.match(token.CHAR_KW):
		return ast.KChar
	case p.match(token.WCHAR):
		return ast.KWChar
	case p.match(token.OCTET):
		return ast.KOctet
	case p.match(token.ANY):
		return ast.KAny
	case p.match(token.OBJECT):
		return ast.KObject
	case p.match(token.FLOAT_KW):
		return ast.KFloat
	case p.match(token.DOUBLE):
		return ast.KDouble
	}

	isUnsigned := p.match(token.UNSIGNED)
	switch {
	case p.match(token.SHORT):
		if isUnsigned {
			return ast.KUShort
		}
		return ast.KShort
	case p.match(token.LONG):
		if p.match(token.LONG) {
			if isUnsigned {
				return ast.KULongLong
			}
			return ast.KLongLong
		}
		if p.match(token.DOUBLE) {
			return ast.KLongDouble
		}
		if isUnsigned {
			return ast.KULong
		}
		return ast.KLong
	}

	if isUnsigned {
		p.error("expected 'short' or 'long' after 'unsigned'")
	}
	return ast.KVoid
}

func (p *Parser) parseSequenceType() ast.Type {
	loc := p.cur.Loc
	p.expect(token.SEQUENCE, "'sequence'")
	p.expect(token.LANGLE, "'<' after 'sequence'")

	elem := p.parseTypeSpec()
	if elem == nil {
		p.error("expected element type in sequence")
		return nil
	}

	bound := 0
	if p.match(token.COMMA) {
		bound = boundOf(p.parseConstExpr())
	}
	p.expect(token.RANGLE, "'>' at end of sequence type")

	st := &ast.SequenceType{Element: elem, Bound: bound}
	st.Loc = loc
	return st
}

func (p *Parser) parseStringType(wide bool) ast.Type {
	loc := p.cur.Loc
	p.advance() // 'string' / 'wstring'

	bound := 0
	if p.match(token.LANGLE) {
		bound = boundOf(p.parseConstExpr())
		p.expect(token.RANGLE, "'>' at end of string bound")
	}
	st := &ast.StringType{Bound: bound, Wide: wide}
	st.Loc = loc
	return st
}

func (p *Parser) parseScopedName() ast.Type {
	loc := p.cur.Loc
	absolute := p.match(token.SCOPE)

	if !p.check(token.IDENT) {
		p.error("expected identifier in scoped name")
		return nil
	}
	var parts []string
	for {
		if !p.check(token.IDENT) {
			p.error("expected identifier after '::'")
			break
		}
		parts = append(parts, p.cur.Lexeme)
		p.advance()
		if !p.match(token.SCOPE) {
			break
		}
	}
	sn := &ast.ScopedName{Absolute: absolute, Parts: parts}
	sn.Loc = loc
	return sn
}

func boundOf(v ast.ConstValue) int {
	switch v.Kind {
	case ast.CVInt:
		return int(v.I)
	case ast.CVUint:
		return int(v.U)
	default:
		return 0
	}
}

// ---------------------------------------------------------------------------
// Declarators
// ---------------------------------------------------------------------------

func (p *Parser) parseDeclarator() (ast.Declarator, bool) {
	var decl ast.Declarator
	if !p.check(token.IDENT) {
		p.error("expected identifier")
		return decl, false
	}
	decl.Name = p.cur.Lexeme
	p.advance()

	for p.match(token.LBRACKET) {
		size := boundOf(p.parseConstExpr())
		decl.Dims = append(decl.Dims, size)
		p.expect(token.RBRACKET, "']'")
	}
	return decl, true
}

// parseDeclarators parses a comma-separated declarator list. The bool
// result is false if any declarator failed to parse, so callers can
// treat the whole member/typedef as unparsed and synchronize instead
// of emitting a node with a blank name.
func (p *Parser) parseDeclarators() ([]ast.Declarator, bool) {
	first, ok := p.parseDeclarator()
	if !ok {
		return nil, false
	}
	decls := []ast.Declarator{first}
	for p.match(token.COMMA) {
		d, ok := p.parseDeclarator()
		if !ok {
			return decls, false
		}
		decls = append(decls, d)
	}
	return decls, true
}

// ---------------------------------------------------------------------------
// Constant-expression grammar (spec.md §4.4): precedence climbing over
// |, ^, &, <</>>, +/-, */ /%, unary +/-/~, primary.
// ---------------------------------------------------------------------------

func (p *Parser) parseConstExpr() ast.ConstValue { return p.parseOrExpr() }

func (p *Parser) parseOrExpr() ast.ConstValue {
	left := p.parseXorExpr()
	for p.match(token.PIPE) {
		right := p.parseXorExpr()
		if li, ok := asInt(left); ok {
			if ri, ok := asInt(right); ok {
				left = intVal(li | ri)
			}
		}
	}
	return left
}

func (p *Parser) parseXorExpr() ast.ConstValue {
	left := p.parseAndExpr()
	for p.match(token.CARET) {
		right := p.parseAndExpr()
		if li, ok := asInt(left); ok {
			if ri, ok := asInt(right); ok {
				left = intVal(li ^ ri)
			}
		}
	}
	return left
}

func (p *Parser) parseAndExpr() ast.ConstValue {
	left := p.parseShiftExpr()
	for p.match(token.AMP) {
		right := p.parseShiftExpr()
		if li, ok := asInt(left); ok {
			if ri, ok := asInt(right); ok {
				left = intVal(li & ri)
			}
		}
	}
	return left
}

func (p *Parser) parseShiftExpr() ast.ConstValue {
	left := p.parseAddExpr()
	for {
		switch {
		case p.match(token.SHL):
			right := p.parseAddExpr()
			if li, ok := asInt(left); ok {
				if ri, ok := asInt(right); ok {
					left = intVal(li << uint(ri))
				}
			}
		case p.match(token.SHR):
			right := p.parseAddExpr()
			if li, ok := asInt(left); ok {
				if ri, ok := asInt(right); ok {
					left = intVal(li >> uint(ri))
				}
			}
		default:
			return left
		}
	}
}

func (p *Parser) parseAddExpr() ast.ConstValue {
	left := p.parseMulExpr()
	for {
		switch {
		case p.match(token.PLUS):
			right := p.parseMulExpr()
			left = addNumeric(left, right, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
		case p.match(token.MINUS):
			right := p.parseMulExpr()
			left = addNumeric(left, right, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
		default:
			return left
		}
	}
}

func (p *Parser) parseMulExpr() ast.ConstValue {
	left := p.parseUnaryExpr()
	for {
		switch {
		case p.match(token.STAR):
			right := p.parseUnaryExpr()
			left = addNumeric(left, right, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
		case p.match(token.SLASH):
			right := p.parseUnaryExpr()
			left = divNumeric(left, right)
		case p.match(token.PERCENT):
			right := p.parseUnaryExpr()
			if li, ok := asInt(left); ok {
				if ri, ok := asInt(right); ok && ri != 0 {
					left = intVal(li % ri)
				}
			}
		default:
			return left
		}
	}
}

func (p *Parser) parseUnaryExpr() ast.ConstValue {
	switch {
	case p.match(token.MINUS):
		v := p.parseUnaryExpr()
		if i, ok := asInt(v); ok {
			return intVal(-i)
		}
		if v.Kind == ast.CVFloat {
			return ast.ConstValue{Kind: ast.CVFloat, F: -v.F}
		}
		return v
	case p.match(token.PLUS):
		return p.parseUnaryExpr()
	case p.match(token.TILDE):
		v := p.parseUnaryExpr()
		if i, ok := asInt(v); ok {
			return intVal(^i)
		}
		return v
	default:
		return p.parsePrimaryExpr()
	}
}

func (p *Parser) parsePrimaryExpr() ast.ConstValue {
	if p.match(token.LPAREN) {
		v := p.parseConstExpr()
		p.expect(token.RPAREN, "')'")
		return v
	}

	switch {
	case p.check(token.INT_LIT):
		v := intVal(p.cur.IntVal)
		p.advance()
		return v
	case p.check(token.FLOAT_LIT):
		v := ast.ConstValue{Kind: ast.CVFloat, F: p.cur.FloatVal}
		p.advance()
		return v
	case p.check(token.STRING_LIT):
		v := ast.ConstValue{Kind: ast.CVString, S: p.cur.StrVal}
		p.advance()
		return v
	case p.check(token.CHAR_LIT):
		v := intVal(p.cur.IntVal)
		p.advance()
		return v
	case p.match(token.TRUE_KW):
		return ast.ConstValue{Kind: ast.CVBool, B: true}
	case p.match(token.FALSE_KW):
		return ast.ConstValue{Kind: ast.CVBool, B: false}
	}

	if p.check(token.IDENT) || p.check(token.SCOPE) {
		absolute := p.match(token.SCOPE)
		var parts []string
		for p.check(token.IDENT) {
			parts = append(parts, p.cur.Lexeme)
			p.advance()
			if !p.match(token.SCOPE) {
				break
			}
		}
		if len(parts) == 0 {
			p.error("expected expression")
			return intVal(0)
		}
		if sym, ok := p.syms.LookupScoped(parts, absolute); ok {
			if sym.Kind == symtable.KConstant {
				if c, ok := sym.Node.(*ast.Const); ok {
					return c.Value
				}
			}
			if sym.Kind == symtable.KEnumValue {
				// Substitutes the enumerator's ordinal, per spec.md §9's
				// recommended fix over the naive zero substitution.
				return intVal(int64(sym.Ordnal))
			}
		}
		p.warning("unknown constant: %s", parts[len(parts)-1])
		return intVal(0)
	}

	p.error("expected expression")
	return intVal(0)
}

func intVal(i int64) ast.ConstValue { return ast.ConstValue{Kind: ast.CVInt, I: i} }

func asInt(v ast.ConstValue) (int64, bool) {
	switch v.Kind {
	case ast.CVInt:
		return v.I, true
	case ast.CVUint:
		return int64(v.U), true
	default:
		return 0, false
	}
}

func addNumeric(l, r ast.ConstValue, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) ast.ConstValue {
	if li, ok := asInt(l); ok {
		if ri, ok := asInt(r); ok {
			return intVal(intOp(li, ri))
		}
	}
	if l.Kind == ast.CVFloat && r.Kind == ast.CVFloat {
		return ast.ConstValue{Kind: ast.CVFloat, F: floatOp(l.F, r.F)}
	}
	return l
}

func divNumeric(l, r ast.ConstValue) ast.ConstValue {
	if li, ok := asInt(l); ok {
		if ri, ok := asInt(r); ok {
			if ri == 0 {
				return l // division by zero is silently suppressed (spec.md §4.4)
			}
			return intVal(li / ri)
		}
	}
	if l.Kind == ast.CVFloat && r.Kind == ast.CVFloat {
		return ast.ConstValue{Kind: ast.CVFloat, F: l.F / r.F}
	}
	return l
}

// ---------------------------------------------------------------------------
// Misc helpers
// ---------------------------------------------------------------------------

func (p *Parser) parseRaisesExpr() []ast.ScopedName {
	var names []ast.ScopedName
	p.expect(token.RAISES, "'raises'")
	p.expect(token.LPAREN, "'(' after 'raises'")

	if !p.check(token.RPAREN) {
		for {
			loc := p.cur.Loc
			absolute := p.match(token.SCOPE)
			if !p.check(token.IDENT) {
				p.error("expected exception name")
				break
			}
			var parts []string
			parts = append(parts, p.cur.Lexeme)
			p.advance()
			for p.match(token.SCOPE) {
				if !p.check(token.IDENT) {
					break
				}
				parts = append(parts, p.cur.Lexeme)
				p.advance()
			}
			sn := ast.ScopedName{Absolute: absolute, Parts: parts}
			sn.Loc = loc
			names = append(names, sn)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "')' after raises list")
	return names
}

func (p *Parser) parseParamDirection() ast.ParamDirection {
	switch {
	case p.match(token.IN):
		return ast.In
	case p.match(token.OUT):
		return ast.Out
	case p.match(token.INOUT):
		return ast.InOut
	default:
		return ast.In
	}
}
