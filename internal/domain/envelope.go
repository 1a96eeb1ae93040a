package domain

import "errors"

// Outcome classifies an envelope for the transport layer.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeCreated
	OutcomeNotFound
	OutcomeInvalid
	OutcomeFailed
)

// Envelope is the uniform response shape of every resource operation.
type Envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	Outcome Outcome `json:"-"`
	Cause   error   `json:"-"`
}

// OK wraps a single value.
func OK(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message, Outcome: OutcomeOK}
}

// Created wraps a newly created value.
func Created(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message, Outcome: OutcomeCreated}
}

// List wraps a collection and reports its size. A nil slice is sent as [].
func List(items []Fields) Envelope {
	if items == nil {
		items = []Fields{}
	}
	n := len(items)
	return Envelope{Success: true, Count: &n, Data: items, Outcome: OutcomeOK}
}

// Done acknowledges an operation that returns no data.
func Done(message string) Envelope {
	return Envelope{Success: true, Message: message, Outcome: OutcomeOK}
}

// Failure maps err to a NotFound, Invalid or Failed envelope.
// notFound is used as the error text when err wraps ErrNotFound and failed otherwise;
// the error detail goes into Message for non-NotFound failures.
func Failure(err error, notFound, failed string) Envelope {
	switch {
	case errors.Is(err, ErrNotFound):
		return Envelope{Error: notFound, Outcome: OutcomeNotFound, Cause: err}
	case errors.Is(err, ErrBadRequest):
		return Envelope{Error: failed, Message: err.Error(), Outcome: OutcomeInvalid, Cause: err}
	default:
		return Envelope{Error: failed, Message: err.Error(), Outcome: OutcomeFailed, Cause: err}
	}
}
