// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package liveload

import (
	"fmt"

	"github.com/pkg/errors"
)

// Reasons a load can fail. Every LoadError wraps exactly one of these.
var (
	ErrInvalidSource = errors.New("invalid source file path")
	ErrNotFound      = errors.New("file not found")
	ErrUnreadable    = errors.New("unable to read the file")
	ErrInvalidText   = errors.New("invalid utf8")
	ErrNotGenerated  = errors.New("call site was not generated")
)

// LoadError reports a failed load, naming the call site literal, the
// resolved path (when known) and the cause.
type LoadError struct {
	// load_str or load_bytes
	Op string

	Literal string

	// Empty when resolution itself failed
	Path string

	Err error

	// Underlying error from the file system, if any
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Err.Error()
	if e.Op != "" {
		msg += fmt.Sprintf(" in %v(%q)", e.Op, e.Literal)
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
