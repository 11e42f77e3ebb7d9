package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborator clients
// return these (optionally wrapped) so services can translate them into coded
// domain errors without string matching.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: entity already exists (duplicate key, replayed write)
// - ErrUnavailable: collaborator unreachable or answered non-success
// - ErrTooLarge: payload exceeds a hard size limit
// - ErrCancelled: the caller abandoned the operation before it finished
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrTooLarge    = errors.New("too large")
	ErrCancelled   = errors.New("cancelled")
)
