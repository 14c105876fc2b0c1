package ic3err

import (
	"errors"
	"testing"
)

func TestErrorMessageIncludesComponentOpAndKind(t *testing.T) {
	err := New("frames", "AddClause", KindInternal, "clause not canonical")
	want := "internal: frames.AddClause: clause not canonical"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrorMessageOmitsComponentWhenEmpty(t *testing.T) {
	err := New("", "Run", KindBudget, "max depth reached")
	want := "budget: Run: max depth reached"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("solver desync")
	wrapped := Wrap(cause, "satengine", "Solve", KindInternal)

	if wrapped.Unwrap() == nil {
		t.Fatalf("expected Unwrap to return a non-nil cause")
	}
	if !errors.Is(wrapped, cause) {
		t.Errorf("expected errors.Is to find the original cause through Unwrap")
	}
}

func TestIsKindMatchesWrappedErrorKind(t *testing.T) {
	err := New("bdd", "Implies", KindSelfCheck, "invariant check failed")
	if !IsKind(err, KindSelfCheck) {
		t.Errorf("expected IsKind to match the error's own Kind")
	}
	if IsKind(err, KindBudget) {
		t.Errorf("expected IsKind to reject a non-matching Kind")
	}
}

func TestIsKindFalseForNonIc3errError(t *testing.T) {
	if IsKind(errors.New("plain error"), KindInternal) {
		t.Errorf("expected IsKind to return false for an error that isn't *Error")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindTrivial:   "trivial",
		KindBudget:    "budget",
		KindInternal:  "internal",
		KindSelfCheck: "self-check",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
