// File path: internal/rag/errors.go
package rag

import (
	"errors"
	"fmt"
)

// Kind classifies an answering failure so transports can map it to a status
// without parsing messages.
type Kind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown Kind = iota
	// KindPrecondition means the repository is not in a state that can be
	// queried (never ingested, pending, or failed).
	KindPrecondition
	// KindNotFound means retrieval produced nothing to answer from.
	KindNotFound
	// KindConsistency means the vector index and the chunk store disagree
	// and a re-ingestion is needed.
	KindConsistency
	// KindUpstream means an external dependency (embeddings, index, LLM)
	// failed.
	KindUpstream
	// KindMalformed means the model produced output that does not satisfy
	// the feature's contract.
	KindMalformed
)

// Error is a classified answering failure.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// Preconditionf reports that the repository cannot be queried yet.
func Preconditionf(format string, args ...interface{}) *Error {
	return newError(KindPrecondition, fmt.Sprintf(format, args...), nil)
}

// NotFoundf reports that nothing relevant was retrieved.
func NotFoundf(format string, args ...interface{}) *Error {
	return newError(KindNotFound, fmt.Sprintf(format, args...), nil)
}

// Consistencyf reports index/store drift.
func Consistencyf(format string, args ...interface{}) *Error {
	return newError(KindConsistency, fmt.Sprintf(format, args...), nil)
}

// Upstream wraps a dependency failure.
func Upstream(msg string, err error) *Error {
	return newError(KindUpstream, msg, err)
}

// Malformed reports model output violating the feature contract.
func Malformed(msg string, err error) *Error {
	return newError(KindMalformed, msg, err)
}

// KindOf extracts the classification from err, or KindUnknown.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.kind
	}
	return KindUnknown
}
