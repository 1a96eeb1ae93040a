package domain

import "errors"

// Sentinel errors for store and request failure discrimination.
// Store drivers wrap these so handlers can map to envelopes without depending on driver error types.
var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidDocument  = errors.New("invalid document")
	ErrBadRequest       = errors.New("bad request")
)
