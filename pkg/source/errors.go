package source

import (
	"fmt"

	"github.com/Kiiyya/lair/pkg/errors"
	"github.com/Kiiyya/lair/pkg/manifest"
)

// ErrorKind classifies why a fetch failed. Every kind is terminal for the
// dependency edge that triggered it.
type ErrorKind int

const (
	// NotFound means the URL or path does not point at anything.
	NotFound ErrorKind = iota
	// RefNotFound means the repository exists but the requested ref does not.
	RefNotFound
	// Transport means a network or I/O failure, possibly transient.
	Transport
)

// String returns the kind's name for diagnostics.
func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case RefNotFound:
		return "ref not found"
	case Transport:
		return "transport error"
	default:
		return "unknown"
	}
}

// Code maps the kind to a structured error code.
func (k ErrorKind) Code() errors.Code {
	switch k {
	case NotFound:
		return errors.ErrCodeFetchNotFound
	case RefNotFound:
		return errors.ErrCodeFetchRefNotFound
	default:
		return errors.ErrCodeFetchTransport
	}
}

// Error reports a failed fetch for one dependency.
type Error struct {
	Kind   ErrorKind
	Name   string          // package name of the dependency being fetched
	Source manifest.Source // the descriptor that failed
	Err    error           // underlying cause (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("fetch %s from %s: %s", e.Name, e.Source, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, name string, src manifest.Source, err error) *Error {
	return &Error{Kind: kind, Name: name, Source: src, Err: err}
}
