package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrNotFound           = errors.New("not found")
	ErrProfileNotFound    = fmt.Errorf("profile %w", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("assignment %w", ErrNotFound)
	ErrUnauthenticated    = errors.New("not signed in")
	ErrValidation         = errors.New("validation failed")
	ErrStore              = errors.New("store error")
	ErrSaveFailed         = errors.New("save failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account already exists for this email")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAccountLocked      = errors.New("too many failed sign-in attempts")
)

// ValidationError names the field that blocked a write.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StoreError is a transport or backend failure on one collection.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

// NewStoreError wraps err unless it is nil.
func NewStoreError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStore) true while still unwrapping to the cause.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// StepFailure is one failed leg of a multi-step operation.
type StepFailure struct {
	Step string
	Err  error
}

// PartialFailure reports legs of a multi-step operation that failed while others succeeded.
type PartialFailure struct {
	Op    string
	Steps []StepFailure
}

// Add records a failed step; nil errors are ignored.
func (p *PartialFailure) Add(step string, err error) {
	if err == nil {
		return
	}
	p.Steps = append(p.Steps, StepFailure{Step: step, Err: err})
}

// Empty reports whether no step failed.
func (p *PartialFailure) Empty() bool { return p == nil || len(p.Steps) == 0 }

// Messages returns one human-readable line per failed step.
func (p *PartialFailure) Messages() []string {
	if p.Empty() {
		return nil
	}
	out := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		out = append(out, s.Step+": "+s.Err.Error())
	}
	return out
}

func (p *PartialFailure) Error() string {
	return fmt.Sprintf("%s partially failed: %s", p.Op, strings.Join(p.Messages(), "; "))
}
