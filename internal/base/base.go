// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package base

import (
	"fmt"
	"go/build"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"github.com/zosopentools/liveload/internal/util"
)

// unixOS is the set of GOOS values matched by the "unix" build tag.
//
// The contents of this are based on $GOROOT/src/go/build/syslist.go
var unixOS = map[string]bool{
	"aix":       true,
	"android":   true,
	"darwin":    true,
	"dragonfly": true,
	"freebsd":   true,
	"hurd":      true,
	"illumos":   true,
	"ios":       true,
	"linux":     true,
	"netbsd":    true,
	"openbsd":   true,
	"solaris":   true,
	"zos":       true,
}

// GOOS values that also satisfy another GOOS tag, see go/build.matchTag
var goosAliases = map[string]string{
	"android": "linux",
	"illumos": "solaris",
	"ios":     "darwin",
}

var goVersionRx = regexp.MustCompile(`go1\.(\d+)(?:(?:\.|-).+)?$`)

// Context is the build configuration source files are selected against
// when looking for call sites.
type Context struct {
	GOOS   string
	GOARCH string

	// Every tag that is satisfied, including GOOS, GOARCH and release tags
	Tags map[string]bool
}

// Match reports whether tag is satisfied, suitable for constraint.Expr.Eval
func (ctx *Context) Match(tag string) bool {
	return ctx.Tags[tag]
}

// NewContext builds a context from the output of 'go env' plus any extra
// user build tags.
func NewContext(goenv map[string]string, extra []string) (*Context, error) {
	ctx := &Context{
		GOOS:   goenv["GOOS"],
		GOARCH: goenv["GOARCH"],
		Tags:   make(map[string]bool, 32),
	}
	if ctx.GOOS == "" || ctx.GOARCH == "" {
		return nil, errors.New("go env is missing GOOS or GOARCH")
	}

	// Set tags that Go figures out from the environment, such as GOARCH, CGO, and GOVERSION
	ctx.Tags[ctx.GOOS] = true
	ctx.Tags[ctx.GOARCH] = true
	ctx.Tags[build.Default.Compiler] = true
	if alias := goosAliases[ctx.GOOS]; alias != "" {
		ctx.Tags[alias] = true
	}
	if unixOS[ctx.GOOS] {
		ctx.Tags["unix"] = true
	}
	if goenv["CGO_ENABLED"] == "1" {
		ctx.Tags["cgo"] = true
	}

	match := goVersionRx.FindStringSubmatch(goenv["GOVERSION"])
	if match == nil {
		return nil, fmt.Errorf("unknown go version number: %v", goenv["GOVERSION"])
	}
	vnum, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, errors.Wrap(err, "go version minor number")
	}
	for vnum > 0 {
		ctx.Tags[fmt.Sprintf("go1.%v", vnum)] = true
		vnum -= 1
	}

	for _, tag := range extra {
		if tag != "" {
			ctx.Tags[tag] = true
		}
	}

	return ctx, nil
}

// DefaultContext uses the toolchain this binary was built with.
func DefaultContext(extra []string) *Context {
	ctx := &Context{
		GOOS:   build.Default.GOOS,
		GOARCH: build.Default.GOARCH,
		Tags:   make(map[string]bool, 32),
	}
	ctx.Tags[ctx.GOOS] = true
	ctx.Tags[ctx.GOARCH] = true
	ctx.Tags[build.Default.Compiler] = true
	if alias := goosAliases[ctx.GOOS]; alias != "" {
		ctx.Tags[alias] = true
	}
	if unixOS[ctx.GOOS] {
		ctx.Tags["unix"] = true
	}
	if build.Default.CgoEnabled {
		ctx.Tags["cgo"] = true
	}
	for _, tag := range build.Default.ReleaseTags {
		ctx.Tags[tag] = true
	}
	for _, tag := range extra {
		if tag != "" {
			ctx.Tags[tag] = true
		}
	}
	return ctx
}

// LoadContext inspects the Go environment with 'go env'.
func LoadContext(extra []string) (*Context, error) {
	goenv, err := util.GoEnv()
	if err != nil {
		return nil, errors.Wrap(err, "unable to inspect Go environment")
	}
	return NewContext(goenv, extra)
}
