package shared

import (
	"errors"
	"fmt"
	"testing"
)

var errSpecific = errors.New("specific rule")

func TestDomainErrorMatchesKindAndSentinel(t *testing.T) {
	err := WithSentinel(NewInvariantError("order", "max_total_weight", "too heavy"), errSpecific)
	wrapped := fmt.Errorf("place order: %w", err)

	if !errors.Is(wrapped, ErrInvariantViolation) {
		t.Error("should match kind sentinel")
	}
	if !errors.Is(wrapped, errSpecific) {
		t.Error("should match specific sentinel")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Error("should not match other kinds")
	}

	kind, ok := KindOf(wrapped)
	if !ok || kind != KindInvariant {
		t.Errorf("KindOf = %v, %v", kind, ok)
	}

	var de *DomainError
	if !errors.As(wrapped, &de) || de.Rule != "max_total_weight" || de.Entity != "order" {
		t.Errorf("unexpected DomainError %+v", de)
	}
}

func TestDomainErrorStack(t *testing.T) {
	err := NewNotFoundError("product", "p-1")
	var s Stacker
	if !errors.As(err, &s) {
		t.Fatal("DomainError should implement Stacker")
	}
	if len(s.Stack()) == 0 {
		t.Error("expected captured stack frames")
	}
	if err.Error() != "product not found: p-1" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	cases := map[Kind]error{
		KindValidation: NewValidationError("money", "amount", "x"),
		KindDuplicate:  NewDuplicateError("product", "location", "x"),
		KindConflict:   NewConcurrentModificationError("order", "o-1"),
	}
	for kind, err := range cases {
		if !IsKind(err, kind) {
			t.Errorf("%v should be %s", err, kind)
		}
	}
	if IsKind(errors.New("plain"), KindValidation) {
		t.Error("plain errors have no kind")
	}
}
