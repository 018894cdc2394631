package gridbook

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedValueKind is returned when encode receives a value
	// whose runtime shape has no mapping rule.
	ErrUnsupportedValueKind = errors.New("gridbook: unsupported value kind")

	// ErrConflictingCellSpec is returned when a cell spec carries both a
	// value and a formula. It is surfaced before any mutation occurs.
	ErrConflictingCellSpec = errors.New("gridbook: cell spec has both value and formula")

	// ErrInvalidBorderSpec is returned when a border shorthand has an
	// unsupported arity. No style object is created.
	ErrInvalidBorderSpec = errors.New("gridbook: border shorthand must have 1, 2 or 4 edges")
)

// UnknownKeywordError reports a symbolic registry name with no mapping,
// e.g. an unrecognized color or border-style keyword.
type UnknownKeywordError struct {
	Registry string
	Keyword  string
}

func (e *UnknownKeywordError) Error() string {
	return fmt.Sprintf("gridbook: unknown %s keyword %q", e.Registry, e.Keyword)
}
