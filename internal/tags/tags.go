// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

// Package tags decides which source files take part in a build
package tags

import (
	"bytes"
	"errors"
	"go/build/constraint"
	"strings"
)

var knownOS = map[string]bool{
	"aix":       true,
	"android":   true,
	"darwin":    true,
	"dragonfly": true,
	"freebsd":   true,
	"hurd":      true,
	"illumos":   true,
	"ios":       true,
	"js":        true,
	"linux":     true,
	"nacl":      true,
	"netbsd":    true,
	"openbsd":   true,
	"plan9":     true,
	"solaris":   true,
	"wasip1":    true,
	"windows":   true,
	"zos":       true,
}

var knownArch = map[string]bool{
	"386":         true,
	"amd64":       true,
	"amd64p32":    true,
	"arm":         true,
	"armbe":       true,
	"arm64":       true,
	"arm64be":     true,
	"loong64":     true,
	"mips":        true,
	"mipsle":      true,
	"mips64":      true,
	"mips64le":    true,
	"mips64p32":   true,
	"mips64p32le": true,
	"ppc":         true,
	"ppc64":       true,
	"ppc64le":     true,
	"riscv":       true,
	"riscv64":     true,
	"s390":        true,
	"s390x":       true,
	"sparc":       true,
	"sparc64":     true,
	"wasm":        true,
}

// Match reports whether a file with the given name and content is part of
// the build, where ok reports whether a single tag is satisfied.
//
// Files starting with '_' or '.' never build, the same as for the go command.
func Match(name string, src []byte, ok func(tag string) bool) (bool, error) {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false, nil
	}

	// An invalid line is reported, the go command would refuse the file too
	expr, err := FileConstraint(name, src)
	if err != nil {
		return false, err
	}
	if expr != nil {
		return expr.Eval(ok), nil
	}
	return true, nil
}

// FileConstraint returns the complete constraint of a file: its file name
// suffix and its header, joined with &&. Nil means the file always builds.
func FileConstraint(name string, src []byte) (constraint.Expr, error) {
	nametag := ParseFileName(name)

	expr, err := ParseFileHeader(src)
	if err != nil {
		return nil, err
	}

	switch {
	case nametag == nil:
		return expr, nil
	case expr == nil:
		return nametag, nil
	}
	return &constraint.AndExpr{X: nametag, Y: expr}, nil
}

// ParseFileName returns the implicit constraint carried by a _GOOS, _GOARCH
// or _GOOS_GOARCH file name suffix, or nil if there is none.
func ParseFileName(name string) constraint.Expr {
	name = strings.TrimSuffix(name, ".go")
	name = strings.TrimSuffix(name, "_test")

	// The part before the first '_' is never a tag, see go/build.goodOSArchFile
	i := strings.IndexByte(name, '_')
	if i < 0 {
		return nil
	}
	parts := strings.Split(name[i:], "_")

	n := len(parts)
	if n >= 2 && knownOS[parts[n-2]] && knownArch[parts[n-1]] {
		return &constraint.AndExpr{
			X: &constraint.TagExpr{Tag: parts[n-2]},
			Y: &constraint.TagExpr{Tag: parts[n-1]},
		}
	}
	if n >= 1 && (knownOS[parts[n-1]] || knownArch[parts[n-1]]) {
		return &constraint.TagExpr{Tag: parts[n-1]}
	}
	return nil
}

var (
	slashSlash = []byte("//")
	slashStar  = []byte("/*")
	starSlash  = []byte("*/")

	bSlashSlash = []byte(slashSlash)
	bSlashStar  = []byte(slashStar)
	bPlusBuild  = []byte("+build")

	goBuildComment = []byte("//go:build")

	errMultipleGoBuild = errors.New("multiple //go:build comments")
)

func isGoBuildComment(line []byte) bool {
	if !bytes.HasPrefix(line, goBuildComment) {
		return false
	}
	line = bytes.TrimSpace(line)
	rest := line[len(goBuildComment):]
	return len(rest) == 0 || len(bytes.TrimSpace(rest)) < len(rest)
}

// Only the leading comment block counts, and a +build line must be
// followed by a blank line before the package clause, see go/build.
func findPlusBuild(content []byte) constraint.Expr {
	var x, pending constraint.Expr
	and := func(x, y constraint.Expr) constraint.Expr {
		// Separate +build lines act as AND cases
		if x == nil {
			return y
		}
		return &constraint.AndExpr{X: x, Y: y}
	}

	p := content
	for len(p) > 0 {
		line := p
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line, p = line[:i], p[i+1:]
		} else {
			p = p[len(p):]
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if pending != nil {
				x = and(x, pending)
				pending = nil
			}
			continue
		}
		if !bytes.HasPrefix(line, bSlashSlash) {
			// Package clause, code or a /* comment: the header is over
			break
		}
		if !bytes.Contains(line, bPlusBuild) {
			continue
		}
		text := string(line)
		if !constraint.IsPlusBuild(text) {
			continue
		}
		if y, err := constraint.Parse(text); err == nil {
			pending = and(pending, y)
		}
	}
	return x
}

func ParseFileHeader(content []byte) (constraint.Expr, error) {
	tagLine, err := findGoBuild(content)
	if err != nil {
		return nil, err
	}

	if tagLine != nil {
		return constraint.Parse(string(tagLine))
	}

	// No go:build line, therefore by Go spec any +build lines are used
	return findPlusBuild(content), nil
}

func findGoBuild(content []byte) (goBuild []byte, err error) {
	p := content
	ended := false       // found non-blank, non-// line, so stopped accepting // +build lines
	inSlashStar := false // in /* */ comment

Lines:
	for len(p) > 0 {
		line := p
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line, p = line[:i], p[i+1:]
		} else {
			p = p[len(p):]
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 && !ended { // Blank line
			// Remember position of most recent blank line.
			// When we find the first non-blank, non-// line,
			// this "end" position marks the latest file position
			// where a // +build line can appear.
			// (It must appear _before_ a blank line before the non-blank, non-// line.
			// Yes, that's confusing, which is part of why we moved to //go:build lines.)
			// Note that ended==false here means that inSlashStar==false,
			// since seeing a /* would have set ended==true.
			continue Lines
		}
		if !bytes.HasPrefix(line, slashSlash) { // Not comment line
			ended = true
		}

		if !inSlashStar && isGoBuildComment(line) {
			if goBuild != nil {
				return nil, errMultipleGoBuild
			}
			goBuild = line
		}

	Comments:
		for len(line) > 0 {
			if inSlashStar {
				if i := bytes.Index(line, starSlash); i >= 0 {
					inSlashStar = false
					line = bytes.TrimSpace(line[i+len(starSlash):])
					continue Comments
				}
				continue Lines
			}
			if bytes.HasPrefix(line, bSlashSlash) {
				continue Lines
			}
			if bytes.HasPrefix(line, bSlashStar) {
				inSlashStar = true
				line = bytes.TrimSpace(line[len(bSlashStar):])
				continue Comments
			}
			// Found non-comment text.
			break Lines
		}
	}

	return goBuild, nil
}
