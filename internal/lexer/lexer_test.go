package lexer

import (
	"testing"

	"github.com/uysalibov/ibORB/internal/token"
)

func TestLexBasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []token.Type
	}{
		{
			name:     "punctuation",
			input:    "{ } ( ) [ ] ; , : :: = + - * / % & | ^ ~ << >> < >",
			expected: []token.Type{token.LBRACE, token.RBRACE, token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET, token.SEMICOLON, token.COMMA, token.COLON, token.SCOPE, token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.AMP, token.PIPE, token.CARET, token.TILDE, token.SHL, token.SHR, token.LANGLE, token.RANGLE, token.EOF},
		},
		{
			name:     "keywords",
			input:    "module interface struct union enum typedef const exception",
			expected: []token.Type{token.MODULE, token.INTERFACE, token.STRUCT, token.UNION, token.ENUM, token.TYPEDEF, token.CONST, token.EXCEPTION, token.EOF},
		},
		{
			name:     "identifiers and basic types",
			input:    "Foo long unsigned short octet boolean",
			expected: []token.Type{token.IDENT, token.LONG, token.UNSIGNED, token.SHORT, token.OCTET, token.BOOLEAN, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx := New(tt.input, "test.idl")
			for i, want := range tt.expected {
				got := lx.Next()
				if got.Type != want {
					t.Fatalf("token %d: expected %s, got %s (%q)", i, want, got.Type, got.Lexeme)
				}
			}
		})
	}
}

func TestLexNumbers(t *testing.T) {
	lx := New("123 0x1A 0755 0 3.14 2.5e10 1.0f", "test.idl")

	tok := lx.Next()
	if tok.Type != token.INT_LIT || tok.IntVal != 123 {
		t.Fatalf("expected 123, got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.INT_LIT || tok.IntVal != 0x1A {
		t.Fatalf("expected 0x1A, got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.INT_LIT || tok.IntVal != 0755 {
		t.Fatalf("expected octal 0755 (493), got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.INT_LIT || tok.IntVal != 0 {
		t.Fatalf("expected 0, got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.FLOAT_LIT || tok.FloatVal != 3.14 {
		t.Fatalf("expected 3.14, got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.FLOAT_LIT || tok.FloatVal != 2.5e10 {
		t.Fatalf("expected 2.5e10, got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.FLOAT_LIT || tok.FloatVal != 1.0 {
		t.Fatalf("expected 1.0, got %+v", tok)
	}
}

func TestLexStringAndCharLiterals(t *testing.T) {
	lx := New(`"hello\nworld" 'a' L"wide" L'w'`, "test.idl")

	tok := lx.Next()
	if tok.Type != token.STRING_LIT || tok.StrVal != "hello\nworld" {
		t.Fatalf("expected decoded string, got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.CHAR_LIT || tok.IntVal != int64('a') {
		t.Fatalf("expected char 'a', got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.STRING_LIT || !tok.IsWide || tok.StrVal != "wide" {
		t.Fatalf("expected wide string, got %+v", tok)
	}
	tok = lx.Next()
	if tok.Type != token.CHAR_LIT || !tok.IsWide {
		t.Fatalf("expected wide char, got %+v", tok)
	}
}

func TestLexCommentsAreSkipped(t *testing.T) {
	lx := New("// line comment\nmodule /* block\ncomment */ M", "test.idl")
	tok := lx.Next()
	if tok.Type != token.MODULE {
		t.Fatalf("expected MODULE, got %s", tok.Type)
	}
	tok = lx.Next()
	if tok.Type != token.IDENT || tok.Lexeme != "M" {
		t.Fatalf("expected identifier M, got %+v", tok)
	}
}

func TestLexLineDirectiveUpdatesLocation(t *testing.T) {
	lx := New("#line 42 \"other.idl\"\nmodule M;", "test.idl")
	tok := lx.Next() // the directive itself, which the parser skips
	if tok.Type != token.LINE_DIRECTIVE {
		t.Fatalf("expected LINE_DIRECTIVE, got %s", tok.Type)
	}
	tok = lx.Next() // module
	if tok.Type != token.MODULE {
		t.Fatalf("expected MODULE after the directive, got %s", tok.Type)
	}
	if tok.Loc.Line != 42 || tok.Loc.Filename != "other.idl" {
		t.Fatalf("expected line 42 in other.idl, got %+v", tok.Loc)
	}
}

func TestLexUnterminatedStringProducesDiagnostic(t *testing.T) {
	lx := New(`"unterminated`, "test.idl")
	lx.Next()
	if !lx.Diagnostics().HasErrors() {
		t.Fatalf("expected a diagnostic for an unterminated string")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx := New("module M", "test.idl")
	if got := lx.Peek(0); got.Type != token.MODULE {
		t.Fatalf("expected to peek MODULE, got %s", got.Type)
	}
	if got := lx.Peek(1); got.Type != token.IDENT {
		t.Fatalf("expected to peek IDENT at offset 1, got %s", got.Type)
	}
	if got := lx.Next(); got.Type != token.MODULE {
		t.Fatalf("peek should not have consumed MODULE, got %s", got.Type)
	}
}
