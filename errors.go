package aspen

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped in a *HierarchyError) by structural
// relinking operations. Test with errors.Is.
var (
	ErrNotPresent     = errors.New("entity not in hierarchy")
	ErrAlreadyPresent = errors.New("entity already in hierarchy")
	ErrNotSibling     = errors.New("entities do not share a parent")
	ErrSelfLink       = errors.New("entity cannot be linked to itself")
	ErrCycle          = errors.New("operation would create a cycle")
	ErrCorrupt        = errors.New("hierarchy invariant violated")
)

// HierarchyError describes a rejected structural mutation. No mutation is
// performed when one is returned.
type HierarchyError struct {
	// Op is the operation that failed (e.g. "SetNextSibling").
	Op string
	// Entity is the anchor operand.
	Entity Entity
	// Other is the second operand, or Null.
	Other Entity
	// Err is the underlying sentinel.
	Err error
}

func (e *HierarchyError) Error() string {
	if e.Other.IsNull() {
		return fmt.Sprintf("aspen: %s %v: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("aspen: %s %v, %v: %v", e.Op, e.Entity, e.Other, e.Err)
}

func (e *HierarchyError) Unwrap() error {
	return e.Err
}

func hierarchyErr(op string, e, other Entity, err error) error {
	return &HierarchyError{Op: op, Entity: e, Other: other, Err: err}
}
