package preprocess

import "testing"

func TestRunFallsBackWhenBinaryIsMissing(t *testing.T) {
	res := Run("module M {};", "m.idl", Options{Binary: "iborb-cpp-that-does-not-exist"})
	if res.Ran {
		t.Fatalf("expected Ran == false when the binary cannot be found")
	}
	if res.Text != "module M {};" {
		t.Fatalf("expected the fallback to return the source verbatim, got %q", res.Text)
	}
	if res.Err != nil {
		t.Fatalf("a missing binary is a supported fallback, not an error: %v", res.Err)
	}
}

func TestRunDefaultsBinaryToCpp(t *testing.T) {
	// An empty Binary option must default to "cpp" rather than failing
	// LookPath on an empty string; whether "cpp" is actually installed on
	// the machine running the test is irrelevant, both outcomes are valid
	// Results and neither should panic.
	res := Run("const long X = 1;", "x.idl", Options{})
	if !res.Ran {
		if res.Text != "const long X = 1;" {
			t.Fatalf("expected verbatim fallback text, got %q", res.Text)
		}
	}
}
