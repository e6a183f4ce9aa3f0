// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
package util

import (
	"bufio"
	"bytes"
	"regexp"

	"golang.org/x/tools/imports"
)

// Matches the conventional marker, see 'go help generate'
var generatedRx = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// Format gofmts src and fixes up its import block
func Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}

// IsGenerated reports whether src carries a "Code generated ... DO NOT EDIT."
// line before the package clause.
func IsGenerated(src []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 4096), len(src)+1)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if generatedRx.Match(line) {
			return true
		}
		if bytes.HasPrefix(line, []byte("package ")) {
			return false
		}
	}
	return false
}
