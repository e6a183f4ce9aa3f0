// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package liveload

import (
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ReadBytes opens path, reads it to completion and closes it.
//
// Nothing is cached; every call observes the file as it is on disk now.
func ReadBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classify(path, err)
	}
	defer f.Close()

	contents, err := io.ReadAll(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: ErrUnreadable, Cause: unwrapPath(err)}
	}
	return contents, nil
}

// ReadText is ReadBytes followed by a UTF-8 validity check.
func ReadText(path string) (string, error) {
	contents, err := ReadBytes(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(contents) {
		return "", &LoadError{Path: path, Err: ErrInvalidText}
	}
	return string(contents), nil
}

// LoadBytes resolves rel against the directory of the source file and reads it.
func LoadBytes(source string, rel string) ([]byte, error) {
	path, err := Resolve(source, rel)
	if err != nil {
		return nil, resolveError(KindBytes, rel, err)
	}
	contents, err := ReadBytes(path)
	if err != nil {
		return nil, annotate(err, KindBytes, rel, path)
	}
	return contents, nil
}

// LoadStr resolves rel against the directory of the source file and reads it as text.
func LoadStr(source string, rel string) (string, error) {
	path, err := Resolve(source, rel)
	if err != nil {
		return "", resolveError(KindText, rel, err)
	}
	contents, err := ReadText(path)
	if err != nil {
		return "", annotate(err, KindText, rel, path)
	}
	return contents, nil
}

func classify(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &LoadError{Path: path, Err: ErrNotFound, Cause: unwrapPath(err)}
	}
	return &LoadError{Path: path, Err: ErrUnreadable, Cause: unwrapPath(err)}
}

// The path is reported by LoadError itself, drop the copy held by *fs.PathError
func unwrapPath(err error) error {
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return perr.Err
	}
	return err
}

// Fill in the call site details of a LoadError produced by ReadBytes/ReadText
func annotate(err error, kind Kind, literal string, path string) error {
	var lerr *LoadError
	if errors.As(err, &lerr) {
		lerr.Op = kind.Op()
		lerr.Literal = literal
		lerr.Path = path
		return lerr
	}
	return &LoadError{Op: kind.Op(), Literal: literal, Path: path, Err: ErrUnreadable, Cause: err}
}

func resolveError(kind Kind, literal string, err error) error {
	if errors.Is(err, ErrInvalidSource) {
		return &LoadError{Op: kind.Op(), Literal: literal, Err: ErrInvalidSource}
	}
	return &LoadError{Op: kind.Op(), Literal: literal, Err: ErrInvalidSource, Cause: err}
}
