// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package scan

import (
	"go/ast"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Find the local import name for an import path
//
// Returns nil if the file does not import path (or only imports it for side effects)
func FindImportName(file *ast.File, ipath string) *string {
	for _, ipt := range file.Imports {
		imPath, err := strconv.Unquote(ipt.Path.Value)
		if err != nil || imPath != ipath {
			continue
		}

		var name string
		if ipt.Name != nil {
			name = ipt.Name.Name
			if name == "_" {
				continue
			}
		} else {
			name, _ = ImportPathToAssumedName(ipath)
		}
		return &name
	}

	return nil
}

// ImportPathToAssumedName returns the package name an unnamed import is
// most likely to bind, plus the major version suffix when there is one.
func ImportPathToAssumedName(importPath string) (string, string) {
	alt := ""
	base := path.Base(importPath)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			dir := path.Dir(importPath)
			if dir != "." {
				alt = base
				base = path.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	return base, alt
}

func notIdentifier(ch rune) bool {
	return !('a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' ||
		'0' <= ch && ch <= '9' ||
		ch == '_' ||
		ch >= utf8.RuneSelf && (unicode.IsLetter(ch) || unicode.IsDigit(ch)))
}
