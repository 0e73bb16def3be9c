package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/andrewchambers/cfront/cpp"
)

func TestCatchAbort(t *testing.T) {
	run := func() (err error) {
		defer Catch(&err)
		Abort(Errorf(DuplicateSymbol, cpp.FilePos{File: "a.c", Line: 3, Col: 5}, "redefinition of %s", "x"))
		return nil
	}
	err := run()
	if !Is(err, DuplicateSymbol) {
		t.Fatalf("got %v, want a duplicate symbol error", err)
	}
	if Is(err, UnhandledOperator) {
		t.Fatal("kind confusion")
	}
	want := "duplicate symbol: redefinition of x at a.c:3:5"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestCatchRepanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected the foreign panic to propagate")
		}
	}()
	func() (err error) {
		defer Catch(&err)
		panic("boom")
	}()
}

func TestIsWrapped(t *testing.T) {
	err := fmt.Errorf("resolve: %w", Errorf(MissingRequiredChild, cpp.FilePos{}, "function has no name"))
	if !Is(err, MissingRequiredChild) {
		t.Fatal("expected the wrapped kind to be found")
	}
	if Is(errors.New("plain"), MissingRequiredChild) {
		t.Fatal("plain errors have no kind")
	}
	if strings.Contains(err.Error(), " at ") {
		t.Fatalf("no position expected in %q", err)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		StructuralViolation:  "structural violation",
		UnhandledOperator:    "unhandled operator",
		MissingRequiredChild: "missing required child",
		DuplicateSymbol:      "duplicate symbol",
		Kind(99):             "unknown error",
	} {
		if k.String() != want {
			t.Errorf("%d: got %q, want %q", k, k.String(), want)
		}
	}
}
