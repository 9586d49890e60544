package model

import (
	"errors"
	"fmt"
)

// Error kinds shared across layers. Match them with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrAuth        = errors.New("auth error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrAggregation = errors.New("aggregation error")
)

// Store signals consumed by the toggle service. They are translated before
// reaching callers.
var (
	ErrAlreadyReacted = errors.New("already reacted")
	ErrNoReaction     = errors.New("no reaction to remove")
)

// OpError tags an error with the operation that produced it.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil || errors.Is(e.Err, e.Kind):
		return e.Op + ": " + e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *OpError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}

// NewKind tags a bare kind with op.
func NewKind(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// Wrap tags err with op without changing its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// KindOf returns the taxonomy kind carried by err, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrAuth, ErrNotFound, ErrConflict, ErrAggregation} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
