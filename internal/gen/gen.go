// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

// Package gen emits the code shape of every call site of a package.
package gen

import (
	"bytes"
	"fmt"
	"go/build/constraint"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"github.com/zosopentools/liveload"
	"github.com/zosopentools/liveload/internal/scan"
	"github.com/zosopentools/liveload/internal/tags"
	"github.com/zosopentools/liveload/internal/util"
)

// Layout decides which files are written for a package
type Layout int

const (
	// One file embedding every call site
	LayoutEmbed Layout = iota

	// One file reading every call site at runtime
	LayoutRuntime

	// Both shapes, selected at build time by a build tag
	LayoutTagged
)

const (
	EmbedFile   = "liveload_embed_gen.go"
	RuntimeFile = "liveload_runtime_gen.go"

	DefaultOutput = "liveload_gen.go"
	DefaultTag    = "liveload_dev"
)

func (l Layout) String() string {
	switch l {
	case LayoutEmbed:
		return "embed"
	case LayoutRuntime:
		return "runtime"
	case LayoutTagged:
		return "tagged"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "embed":
		return LayoutEmbed, nil
	case "runtime":
		return LayoutRuntime, nil
	case "tagged", "":
		return LayoutTagged, nil
	}
	return 0, errors.Errorf("unknown mode %q: expected embed, runtime or tagged", s)
}

type Options struct {
	Layout Layout

	// Build tag selecting the runtime shape in LayoutTagged
	Tag string

	// File name for LayoutEmbed and LayoutRuntime
	Output string

	// Fail generation of the runtime shape if a file does not exist yet
	Check bool
}

func (opts Options) withDefaults() (Options, error) {
	if opts.Tag == "" {
		opts.Tag = DefaultTag
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if err := ValidTag(opts.Tag); err != nil {
		return opts, err
	}
	if filepath.Base(opts.Output) != opts.Output || !strings.HasSuffix(opts.Output, ".go") || strings.HasSuffix(opts.Output, "_test.go") {
		return opts, errors.Errorf("invalid output file name %q", opts.Output)
	}
	// Numbered and constrained names are derived from the output name
	if tags.ParseFileName(opts.Output) != nil || numberedRx.MatchString(opts.Output) {
		return opts, errors.Errorf("invalid output file name %q: must not end in a build tag or a number", opts.Output)
	}
	if opts.Layout == LayoutTagged && (opts.Output == EmbedFile || opts.Output == RuntimeFile) {
		return opts, errors.Errorf("output file name %q is reserved", opts.Output)
	}
	return opts, nil
}

var numberedRx = regexp.MustCompile(`_[0-9]+\.go$`)

// ValidTag checks tag is a single build tag
func ValidTag(tag string) error {
	expr, err := constraint.Parse("//go:build " + tag)
	if err != nil {
		return errors.Wrapf(err, "invalid build tag %q", tag)
	}
	if _, ok := expr.(*constraint.TagExpr); !ok {
		return errors.Errorf("invalid build tag %q: must be a single tag", tag)
	}
	return nil
}

// File is a generated source file
type File struct {
	Name string

	// Build constraint expression, empty for none
	Constraint string

	Mode liveload.Mode
	Src  []byte
}

// Sites sharing a generated file: same declaring constraint, and either all
// in _test.go files or none.
type group struct {
	test  bool
	expr  constraint.Expr
	n     int
	sites []scan.Site
}

func groupSites(sites []scan.Site) []*group {
	byKey := make(map[string]*group)
	var groups []*group
	for _, site := range sites {
		key := ""
		if site.Constraint != nil {
			key = site.Constraint.String()
		}
		key = strconv.FormatBool(site.Test) + " " + key

		g := byKey[key]
		if g == nil {
			g = &group{test: site.Test, expr: site.Constraint}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.sites = append(g.sites, site)
	}

	// Unconstrained first, then by expression, numbered per kind of file
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.test != b.test {
			return !a.test
		}
		if (a.expr == nil) != (b.expr == nil) {
			return a.expr == nil
		}
		return a.expr != nil && a.expr.String() < b.expr.String()
	})
	n := map[bool]int{}
	for _, g := range groups {
		if g.expr != nil {
			n[g.test]++
			g.n = n[g.test]
		}
	}
	return groups
}

// Name of the file holding a group: <stem>[_<n>][_test].go
func fileName(stem string, g *group) string {
	name := stem
	if g.n > 0 {
		name += "_" + strconv.Itoa(g.n)
	}
	if g.test {
		name += "_test"
	}
	return name + ".go"
}

// Join the declaring file constraint with the one selecting the shape
func join(file, shape constraint.Expr) constraint.Expr {
	switch {
	case file == nil:
		return shape
	case shape == nil:
		return file
	}
	return &constraint.AndExpr{X: file, Y: shape}
}

// Generate renders the files of pkg for the given layout. Each call site is
// expanded once per shape, both shapes use the site's resolved path.
//
// Sites declared in _test.go files, or in files with a build constraint, are
// written to files of their own carrying the same constraint, so every
// generated assignment builds exactly when its var exists.
//
// Content errors in the embed shape are reported per site as a scan.ErrorList.
// In the tagged layout the runtime files are still returned along with that
// error, as the runtime shape does not depend on the content.
func Generate(pkg *scan.Package, opts Options) ([]File, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if len(pkg.Sites) == 0 {
		return nil, nil
	}

	type shape struct {
		stem string
		expr constraint.Expr
		mode liveload.Mode
	}
	stem := strings.TrimSuffix(opts.Output, ".go")
	var shapes []shape
	switch opts.Layout {
	case LayoutEmbed:
		shapes = []shape{{stem, nil, liveload.Embed}}
	case LayoutRuntime:
		shapes = []shape{{stem, nil, liveload.Runtime}}
	case LayoutTagged:
		tag := &constraint.TagExpr{Tag: opts.Tag}
		shapes = []shape{
			{strings.TrimSuffix(EmbedFile, ".go"), &constraint.NotExpr{X: tag}, liveload.Embed},
			{strings.TrimSuffix(RuntimeFile, ".go"), tag, liveload.Runtime},
		}
	default:
		return nil, errors.Errorf("unknown layout %v", opts.Layout)
	}

	groups := groupSites(pkg.Sites)

	var files []File
	var embedErr error
	for _, s := range shapes {
		var shaped []File
		var errs scan.ErrorList
		for _, g := range groups {
			name := fileName(s.stem, g)

			cstr := ""
			if expr := join(g.expr, s.expr); expr != nil {
				cstr = expr.String()
			}

			src, err := render(pkg.Name, importName(pkg), g.sites, cstr, s.mode, opts.Check)
			if err != nil {
				var list scan.ErrorList
				if errors.As(err, &list) {
					errs = append(errs, list...)
					continue
				}
				return nil, err
			}

			src, err = util.Format(name, src)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to format %v", name)
			}

			shaped = append(shaped, File{
				Name:       name,
				Constraint: cstr,
				Mode:       s.mode,
				Src:        src,
			})
		}

		if len(errs) > 0 {
			errs.Sort()
			if s.mode == liveload.Embed && opts.Layout == LayoutTagged {
				embedErr = errs
				continue
			}
			return nil, errs
		}
		files = append(files, shaped...)
	}

	if embedErr != nil {
		return files, embedErr
	}
	return files, nil
}

var fileTmpl = template.Must(template.New("file").Parse(`// Code generated by liveload. DO NOT EDIT.

{{if .Constraint}}//go:build {{.Constraint}}

{{end}}package {{.Package}}

import {{.Import}} "{{.ImportPath}}"

func init() {
{{- range .Sites}}
	{{.Var}} = {{$.Import}}.{{.Call}}
{{- end}}
}
`))

type siteData struct {
	Var  string
	Call string
}

func render(name, iname string, sites []scan.Site, cstr string, mode liveload.Mode, check bool) ([]byte, error) {
	var errs scan.ErrorList
	data := make([]siteData, 0, len(sites))
	for _, site := range sites {
		call, err := expand(site, mode, check)
		if err != nil {
			errs.Add(site.Pos, "%v", err)
			continue
		}
		data = append(data, siteData{Var: site.Var, Call: call})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err := fileTmpl.Execute(&buf, struct {
		Constraint string
		Package    string
		Import     string
		ImportPath string
		Sites      []siteData
	}{cstr, name, iname, scan.ImportPath, data})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Expand a single call site into the constructor call assigned to its var
func expand(site scan.Site, mode liveload.Mode, check bool) (string, error) {
	literal := strconv.Quote(site.Literal)
	path := strconv.Quote(site.Path)

	if mode == liveload.Runtime {
		if check {
			if err := exists(site); err != nil {
				return "", err
			}
		}
		if site.Kind == liveload.KindBytes {
			return fmt.Sprintf("RuntimeBytes(%v, %v)", literal, path), nil
		}
		return fmt.Sprintf("RuntimeText(%v, %v)", literal, path), nil
	}

	// Embed: the content is captured now and never checked again
	if site.Kind == liveload.KindBytes {
		content, err := liveload.ReadBytes(site.Path)
		if err != nil {
			return "", describe(site, err)
		}
		return fmt.Sprintf("EmbedBytes(%v, %v, %v)", literal, path, strconv.Quote(string(content))), nil
	}

	content, err := liveload.ReadText(site.Path)
	if err != nil {
		return "", describe(site, err)
	}
	return fmt.Sprintf("EmbedText(%v, %v, %v)", literal, path, strconv.Quote(content)), nil
}

func exists(site scan.Site) error {
	info, err := os.Stat(site.Path)
	if err != nil {
		return describe(site, &liveload.LoadError{Path: site.Path, Err: liveload.ErrNotFound})
	}
	if info.IsDir() {
		return describe(site, &liveload.LoadError{Path: site.Path, Err: liveload.ErrUnreadable, Cause: errors.New("is a directory")})
	}
	return nil
}

// Name the call site in a read error
func describe(site scan.Site, err error) error {
	var lerr *liveload.LoadError
	if errors.As(err, &lerr) {
		lerr.Op = site.Kind.Op()
		lerr.Literal = site.Literal
		lerr.Path = site.Path
		return lerr
	}
	return err
}

// Pick a name for the liveload import that no package level identifier uses
func importName(pkg *scan.Package) string {
	base, _ := scan.ImportPathToAssumedName(scan.ImportPath)
	name := base
	for i := 1; pkg.Idents[name]; i++ {
		name = fmt.Sprintf("%v%d", base, i)
	}
	return name
}
