package domain

import (
	"errors"
	"fmt"
)

// FailureKind is the closed set of outcomes the core surfaces to its callers.
// Boundary adapters switch on it exhaustively; there is no string-tag dispatch.
type FailureKind string

const (
	KindDuplicateKey            FailureKind = "duplicate_key"
	KindNotFound                FailureKind = "not_found"
	KindCircularDependency      FailureKind = "circular_dependency"
	KindSelfReference           FailureKind = "self_reference"
	KindInvalidProductType      FailureKind = "invalid_product_type"
	KindGraphWriteFailed        FailureKind = "graph_write_failed"
	KindInconsistentState       FailureKind = "inconsistent_state"
	KindStoreUnavailable        FailureKind = "store_unavailable"
	KindStructuralInconsistency FailureKind = "structural_inconsistency"
)

type DomainError struct {
	Kind  FailureKind
	Msg   string
	Cause error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is makes errors.Is match any DomainError of the same kind, so callers can
// compare against the exported sentinels below.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return e.Kind == de.Kind
	}
	return false
}

func NewError(kind FailureKind, msg string) *DomainError {
	return &DomainError{Kind: kind, Msg: msg}
}

func WrapError(kind FailureKind, msg string, cause error) *DomainError {
	return &DomainError{Kind: kind, Msg: msg, Cause: cause}
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (FailureKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

func IsKind(err error, kind FailureKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Sentinels for the usual errors.Is checks.
var (
	ErrDuplicateKey       = NewError(KindDuplicateKey, "code already in use by a non-deleted product")
	ErrNotFound           = NewError(KindNotFound, "record not found")
	ErrCircularDependency = NewError(KindCircularDependency, "association would make the parent a component of itself")
	ErrSelfReference      = NewError(KindSelfReference, "product cannot reference itself as a child")
	ErrInvalidProductType = NewError(KindInvalidProductType, "product type is not in the allowed set")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)
