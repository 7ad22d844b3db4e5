// Package chem provides the in-memory chemical data model: atoms,
// residues, topologies, unit cells, frames and properties.
// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : errors.go
package chem

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the failure modes exposed across the chemfiles
// public API, independent of where in the pipeline they originated.
type ErrorKind int

const (
	// ErrFile covers OS-level I/O failures, missing files, bad modes,
	// and operations on a closed trajectory.
	ErrFile ErrorKind = iota
	// ErrFormat covers malformed payloads for the declared format.
	ErrFormat
	// ErrMemory covers allocation failures and memory-buffer overruns.
	ErrMemory
	// ErrSelection covers lexer, parser, or evaluator failures.
	ErrSelection
	// ErrConfiguration covers unreadable or invalid configuration files.
	ErrConfiguration
	// ErrProperty covers wrong-typed access to a Property.
	ErrProperty
	// ErrOutOfBounds covers indices past the end of a collection.
	ErrOutOfBounds
	// ErrGeneric covers anything else: invariant violations, unsupported
	// operations.
	ErrGeneric
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case ErrFile:
		return "FileError"
	case ErrFormat:
		return "FormatError"
	case ErrMemory:
		return "MemoryError"
	case ErrSelection:
		return "SelectionError"
	case ErrConfiguration:
		return "ConfigurationError"
	case ErrProperty:
		return "PropertyError"
	case ErrOutOfBounds:
		return "OutOfBounds"
	default:
		return "Error"
	}
}

// Error is the rich error type returned by every exported chemfiles
// function: it carries a Kind plus a human-readable message, and
// optionally wraps an underlying cause (with a stack attached via
// github.com/pkg/errors), reachable through Unwrap so errors.Is/As see
// it.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError builds an Error of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error of the given kind wrapping a lower-level
// cause, the way moshee-sound and grailbio-bio wrap I/O errors.
func WrapError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// KindOf extracts the ErrorKind from err, defaulting to ErrGeneric for
// errors that did not originate in this package.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrGeneric
}
