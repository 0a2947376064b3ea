package generator

import (
	"strings"
	"testing"

	"github.com/uysalibov/ibORB/internal/parser"
)

func mustGenerate(t *testing.T, src string, opts Options) string {
	t.Helper()
	p := parser.New(src, "test.idl")
	unit := p.Parse("test.idl")
	if p.Diagnostics().HasErrors() {
		t.Fatalf("unexpected parse errors: %v", p.Diagnostics().All())
	}
	return Generate(unit, opts)
}

func TestGenerateModuleAndConst(t *testing.T) {
	out := mustGenerate(t, `module M { const long C = 1 + 2*3; };`, Options{})
	if !strings.Contains(out, "namespace M {") {
		t.Fatalf("expected a namespace block, got:\n%s", out)
	}
	if !strings.Contains(out, "constexpr int32_t C = 7;") {
		t.Fatalf("expected the folded constant 7, got:\n%s", out)
	}
}

func TestGenerateEnum(t *testing.T) {
	out := mustGenerate(t, `enum Color { Red, Green, Blue };`, Options{})
	if !strings.Contains(out, "enum class Color { Red, Green, Blue };") {
		t.Fatalf("unexpected enum output:\n%s", out)
	}
}

func TestGenerateForwardThenFullInterface(t *testing.T) {
	out := mustGenerate(t, `
		interface Account;
		interface Account {
			readonly attribute long balance;
			void deposit(in long amount);
		};
	`, Options{})
	if !strings.Contains(out, "class Account;") {
		t.Fatalf("expected a forward class declaration, got:\n%s", out)
	}
	if !strings.Contains(out, "virtual int32_t balance() const = 0;") {
		t.Fatalf("expected a balance getter, got:\n%s", out)
	}
	if strings.Contains(out, "virtual void balance(") {
		t.Fatalf("readonly attribute should not generate a setter, got:\n%s", out)
	}
	if !strings.Contains(out, "virtual void deposit(int32_t amount) = 0;") {
		t.Fatalf("expected deposit(in long) to pass by value, got:\n%s", out)
	}
	if !strings.Contains(out, "using AccountPtr = std::shared_ptr<Account>;") {
		t.Fatalf("expected an AccountPtr alias, got:\n%s", out)
	}
}

func TestGenerateInterfaceBaseKeepsQualificationAndAbsoluteness(t *testing.T) {
	out := mustGenerate(t, `
		module M {
			interface B {};
		};
		interface D : ::M::B {
			void op();
		};
	`, Options{})
	if !strings.Contains(out, "class D : public virtual ::M::B {") {
		t.Fatalf("expected the base to keep its absolute M:: qualification, got:\n%s", out)
	}
}

func TestGenerateStructEquality(t *testing.T) {
	out := mustGenerate(t, `
		struct Person {
			string name;
			sequence<long> scores;
		};
	`, Options{})
	if !strings.Contains(out, "struct Person {") {
		t.Fatalf("expected a struct definition, got:\n%s", out)
	}
	if !strings.Contains(out, "std::string name;") {
		t.Fatalf("expected a std::string member, got:\n%s", out)
	}
	if !strings.Contains(out, "std::vector<int32_t> scores;") {
		t.Fatalf("expected a std::vector<int32_t> member, got:\n%s", out)
	}
	if !strings.Contains(out, "bool operator==(const Person& other) const {") {
		t.Fatalf("expected operator==, got:\n%s", out)
	}
	if !strings.Contains(out, "bool operator!=(const Person& other) const {") {
		t.Fatalf("expected operator!=, got:\n%s", out)
	}
}

func TestGenerateTypedefFixedArray(t *testing.T) {
	out := mustGenerate(t, `typedef octet UUID[16];`, Options{})
	if !strings.Contains(out, "using UUID = std::array<uint8_t, 16>;") {
		t.Fatalf("unexpected typedef output:\n%s", out)
	}
}

func TestGenerateUnionAccessors(t *testing.T) {
	out := mustGenerate(t, `
		union Value switch (long) {
			case 1:
			case 2:
				long asLong;
			default:
				string asString;
		};
	`, Options{})
	if !strings.Contains(out, "class Value {") {
		t.Fatalf("expected a union class, got:\n%s", out)
	}
	if !strings.Contains(out, "int32_t _d() const { return discriminator_; }") {
		t.Fatalf("expected a discriminator getter, got:\n%s", out)
	}
	if !strings.Contains(out, "int32_t asLong() const { return asLong_; }") {
		t.Fatalf("expected an asLong getter, got:\n%s", out)
	}
}

func TestGenerateExceptionConstructorAndWhat(t *testing.T) {
	out := mustGenerate(t, `
		exception InsufficientFunds {
			long shortfall;
		};
	`, Options{})
	if !strings.Contains(out, "class InsufficientFunds : public std::exception {") {
		t.Fatalf("expected an exception class, got:\n%s", out)
	}
	if !strings.Contains(out, "InsufficientFunds(int32_t shortfall_) : shortfall(shortfall_) {}") {
		t.Fatalf("expected a parameterized constructor, got:\n%s", out)
	}
	if !strings.Contains(out, `return "InsufficientFunds";`) {
		t.Fatalf("expected what() to return the class name, got:\n%s", out)
	}
}

func TestGenerateReservedWordIdentifierIsSanitized(t *testing.T) {
	out := mustGenerate(t, `struct class { long int; };`, Options{})
	if !strings.Contains(out, "struct class_ {") {
		t.Fatalf("expected 'class' to be sanitized, got:\n%s", out)
	}
	if !strings.Contains(out, "int32_t int_;") {
		t.Fatalf("expected 'int' member to be sanitized, got:\n%s", out)
	}
}

func TestGenerateIncludeGuardAndIncludes(t *testing.T) {
	out := mustGenerate(t, `const long X = 1;`, Options{})
	if !strings.Contains(out, "#ifndef IBORB_GENERATED_TEST_HPP") {
		t.Fatalf("expected an include guard derived from the filename, got:\n%s", out)
	}
	for _, inc := range []string{"cstdint", "string", "vector", "array", "memory", "stdexcept"} {
		if !strings.Contains(out, "#include <"+inc+">") {
			t.Fatalf("expected #include <%s>, got:\n%s", inc, out)
		}
	}
}

func TestGenerateDoxygenOptIn(t *testing.T) {
	withDocs := mustGenerate(t, `struct Point { long x; };`, Options{WithDoxygen: true})
	if !strings.Contains(withDocs, "/** Struct Point. */") {
		t.Fatalf("expected a doc comment when WithDoxygen is set, got:\n%s", withDocs)
	}

	bare := mustGenerate(t, `struct Point { long x; };`, Options{})
	if strings.Contains(bare, "/**") {
		t.Fatalf("expected no doc comment by default, got:\n%s", bare)
	}
}
