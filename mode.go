// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package liveload

import (
	"fmt"
	"strings"
)

// Mode selects when file content is captured.
type Mode int

const (
	// Embed captures content once, while generating, and compiles it into the binary
	Embed Mode = iota

	// Runtime re-reads the file from disk on every call
	Runtime
)

func (m Mode) String() string {
	switch m {
	case Embed:
		return "embed"
	case Runtime:
		return "runtime"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "embed" or "runtime" (case insensitive)
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "embed":
		return Embed, nil
	case "runtime":
		return Runtime, nil
	}
	return 0, fmt.Errorf("unknown load mode: %q", s)
}

// Kind is the content type produced by a call site.
type Kind int

const (
	KindText Kind = iota
	KindBytes
)

// Op is the name used for the entry point in diagnostics.
func (k Kind) Op() string {
	if k == KindBytes {
		return "load_bytes"
	}
	return "load_str"
}

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
