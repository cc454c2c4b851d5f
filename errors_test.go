package cakes

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		InvalidInput:   "invalid input",
		Invariant:      "invariant violated",
		DomainMismatch: "domain mismatch",
		Kind(99):       "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestErrorUnwrapAndMessage(t *testing.T) {
	err := newError(InvalidInput, "Build", ErrEmptyItems)
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("errors.Is(err, ErrEmptyItems) = false, want true")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("Error() returned empty string")
	}

	noOp := &Error{Kind: Invariant, Err: ErrNegativeDistance}
	if got := noOp.Error(); got == "" {
		t.Fatalf("Error() with empty Op returned empty string")
	}
}
