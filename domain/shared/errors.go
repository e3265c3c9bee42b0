/*
Package shared holds the domain kernel shared by every subdomain: value
objects, the aggregate contracts, specifications and the domain error type.

Domain errors are a closed set of kinds carried by a single DomainError
type. Upper layers dispatch on Kind (or on the kind sentinels with
errors.Is) instead of type-switching over a hierarchy of error types.

The stack is captured when the error is created and formatted only when
someone asks for it (logging at the API boundary).
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Kind classifies a domain error.
type Kind string

const (
	// KindValidation a value object or input failed its format/range check
	KindValidation Kind = "validation"
	// KindInvariant an aggregate operation would break a business rule
	KindInvariant Kind = "invariant"
	// KindDuplicate a member with the same identity already exists in the aggregate
	KindDuplicate Kind = "duplicate"
	// KindNotFound lookup found nothing
	KindNotFound Kind = "not_found"
	// KindConflict the stored version advanced since the aggregate was loaded
	KindConflict Kind = "conflict"
)

// Kind sentinels, one per Kind. DomainError unwraps to the sentinel of its kind.
var (
	ErrValidation             = errors.New("validation failed")
	ErrInvariantViolation     = errors.New("invariant violated")
	ErrDuplicateMember        = errors.New("duplicate member")
	ErrNotFound               = errors.New("not found")
	ErrConcurrentModification = errors.New("concurrent modification")
)

var kindSentinels = map[Kind]error{
	KindValidation: ErrValidation,
	KindInvariant:  ErrInvariantViolation,
	KindDuplicate:  ErrDuplicateMember,
	KindNotFound:   ErrNotFound,
	KindConflict:   ErrConcurrentModification,
}

// DomainError is the only error type raised by the domain layer.
type DomainError struct {
	Kind Kind

	// Entity the aggregate/value object that failed, e.g. "order", "money"
	Entity string

	// Field optional offending field
	Field string

	// Rule optional name of the violated rule, e.g. "max_total_weight"
	Rule string

	Message string

	// Err optional specific sentinel (e.g. order.ErrWeightLimitExceeded)
	Err error

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes both the specific sentinel (if any) and the kind sentinel,
// so errors.Is works against either.
func (e *DomainError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	return errs
}

// Stack formats the creation stack on demand.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// Stacker is implemented by errors that can report where they were created.
type Stacker interface {
	Stack() []string
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a DomainError of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// CaptureStack captures the current call stack.
// skip is usually 3: Callers, CaptureStack, the NewXxxError constructor.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders at most 10 non-runtime frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

// ============================================================================
// Constructors
// ============================================================================

// NewValidationError a value failed its format or range check.
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Kind:    KindValidation,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewInvariantError an aggregate rule would be broken.
func NewInvariantError(entity, rule, reason string) error {
	return &DomainError{
		Kind:    KindInvariant,
		Entity:  entity,
		Rule:    rule,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewDuplicateError a member with the same identity is already present.
func NewDuplicateError(entity, field, reason string) error {
	return &DomainError{
		Kind:    KindDuplicate,
		Entity:  entity,
		Field:   field,
		Rule:    "unique_" + field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewNotFoundError the aggregate identified by id does not exist.
func NewNotFoundError(entity, id string) error {
	msg := entity + " not found"
	if id != "" {
		msg += ": " + id
	}
	return &DomainError{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: msg,
		stack:   CaptureStack(3),
	}
}

// NewConcurrentModificationError the stored version advanced past the loaded one.
func NewConcurrentModificationError(entity, id string) error {
	return &DomainError{
		Kind:    KindConflict,
		Entity:  entity,
		Message: entity + " " + id + " was modified by another transaction, please retry",
		stack:   CaptureStack(3),
	}
}

// WithSentinel attaches a specific sentinel to a DomainError so callers can
// match it with errors.Is. Non-domain errors are returned unchanged.
func WithSentinel(err error, sentinel error) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.Err = sentinel
	}
	return err
}
