// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package liveload

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// Resolve turns a path literal written in source into an absolute path.
//
// Relative literals are joined onto the directory containing source, the
// same rule //go:embed uses, so the result never depends on the working
// directory. Absolute literals are returned cleaned. source must be absolute.
func Resolve(source string, literal string) (string, error) {
	if literal == "" {
		return "", errors.New("empty path literal")
	}

	if filepath.IsAbs(literal) {
		return filepath.Clean(literal), nil
	}

	if source == "" || !filepath.IsAbs(source) {
		return "", ErrInvalidSource
	}

	dir := filepath.Dir(source)
	if dir == source {
		// source names a root, it has no parent directory
		return "", ErrInvalidSource
	}

	return filepath.Join(dir, filepath.FromSlash(literal)), nil
}
