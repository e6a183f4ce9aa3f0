// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

// Package scan finds the load call sites of a package.
//
// A call site is a package level var carrying a //liveload:str or
// //liveload:bytes directive. Every site is validated and has its path
// resolved here, before any code is generated, so both generated shapes
// are built from the same ResolvedPath.
package scan

import (
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/zosopentools/liveload"
	"github.com/zosopentools/liveload/internal/tags"
	"github.com/zosopentools/liveload/internal/util"
)

// ImportPath of the runtime package generated code refers to
const ImportPath = "github.com/zosopentools/liveload"

const directivePrefix = "//liveload:"

// Site is one call site
type Site struct {
	Var  string
	Kind liveload.Kind

	// Path as written in the directive, unquoted
	Literal string

	// Absolute ResolvedPath
	Path string

	// Absolute path of the declaring file
	Source string

	// Position of the directive
	Pos token.Position

	// Declared in a _test.go file
	Test bool

	// Build constraint of the declaring file, nil if it always builds
	Constraint constraint.Expr
}

// Package is the set of call sites in one directory
type Package struct {
	Name string
	Dir  string

	// Scanned files, base names
	Files []string

	Sites []Site

	// Package level identifiers, used to pick a non clashing import name
	Idents map[string]bool
}

type Options struct {
	// Reports whether a build tag is satisfied
	Match func(tag string) bool

	// Include _test.go files of the package itself
	Tests bool
}

// Dir scans the Go files of a single directory.
//
// Problems with call sites are returned together as an ErrorList. Any other
// error (unreadable directory, syntax errors) is returned as is.
func Dir(dir string, opts Options) (*Package, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "unable to resolve package directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read package directory %v", dir)
	}

	match := opts.Match
	if match == nil {
		match = func(string) bool { return false }
	}

	pkg := &Package{
		Dir:    dir,
		Idents: make(map[string]bool),
	}
	fset := token.NewFileSet()

	type source struct {
		file *ast.File
		expr constraint.Expr
		test bool
	}

	var parsed []source
	var testFiles []source
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		isTest := strings.HasSuffix(name, "_test.go")
		if isTest && !opts.Tests {
			continue
		}

		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read %v", path)
		}

		// Generated files are outputs, never inputs
		if util.IsGenerated(src) {
			continue
		}

		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		expr, err := tags.FileConstraint(name, src)
		if err != nil {
			return nil, errors.Wrapf(err, "%v", path)
		}
		if expr != nil && !expr.Eval(match) {
			continue
		}

		file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
		if err != nil {
			return nil, err
		}

		if isTest {
			testFiles = append(testFiles, source{file, expr, true})
		} else {
			parsed = append(parsed, source{file, expr, false})
		}
	}

	for _, src := range parsed {
		file := src.file
		if pkg.Name == "" {
			pkg.Name = file.Name.Name
		} else if pkg.Name != file.Name.Name {
			return nil, errors.Errorf("found packages %v and %v in %v", pkg.Name, file.Name.Name, dir)
		}
	}

	var errs ErrorList
	for _, src := range testFiles {
		file := src.file
		if pkg.Name == "" {
			pkg.Name = file.Name.Name
		}
		if file.Name.Name != pkg.Name {
			// External test packages would need generated code of their own
			for _, cg := range file.Comments {
				for _, c := range cg.List {
					if strings.HasPrefix(c.Text, directivePrefix) {
						errs.Add(fset.Position(c.Slash), "//liveload directives are not supported in external test package %v", file.Name.Name)
					}
				}
			}
			continue
		}
		parsed = append(parsed, src)
	}

	for _, src := range parsed {
		file := src.file
		pkg.Files = append(pkg.Files, filepath.Base(fset.Position(file.Package).Filename))
		for name := range file.Scope.Objects {
			pkg.Idents[name] = true
		}
		for _, site := range scanFile(fset, file, &errs) {
			site.Test = src.test
			site.Constraint = src.expr
			pkg.Sites = append(pkg.Sites, site)
		}
	}

	sort.Strings(pkg.Files)
	sort.SliceStable(pkg.Sites, func(i, j int) bool {
		a, b := pkg.Sites[i].Pos, pkg.Sites[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Offset < b.Offset
	})

	if err := errs.Err(); err != nil {
		return pkg, err
	}
	return pkg, nil
}

type directive struct {
	comment *ast.Comment
	kind    liveload.Kind
	literal string
}

// Find and validate every directive of a file
func scanFile(fset *token.FileSet, file *ast.File, errs *ErrorList) []Site {
	source := fset.Position(file.Package).Filename
	used := make(map[*ast.Comment]bool)

	iname := FindImportName(file, ImportPath)

	var sites []Site
	attach := func(doc *ast.CommentGroup, spec *ast.ValueSpec) {
		var found []directive
		for _, c := range directives(doc) {
			used[c] = true
			d, err := parseDirective(c)
			if err != nil {
				errs.Add(fset.Position(c.Slash), "%v", err)
				continue
			}
			found = append(found, d)
		}
		if len(found) == 0 {
			return
		}

		pos := fset.Position(found[0].comment.Slash)
		if len(found) > 1 {
			errs.Add(fset.Position(found[1].comment.Slash), "multiple //liveload directives for one var")
			return
		}
		d := found[0]

		if iname == nil {
			errs.Add(pos, "//liveload directive used without importing %q", ImportPath)
			return
		}
		if err := checkSpec(spec, d.kind, *iname); err != nil {
			errs.Add(pos, "%v", err)
			return
		}

		path, err := liveload.Resolve(source, d.literal)
		if err != nil {
			errs.Add(pos, "unable to resolve %q: %v", d.literal, err)
			return
		}

		sites = append(sites, Site{
			Var:     spec.Names[0].Name,
			Kind:    d.kind,
			Literal: d.literal,
			Path:    path,
			Source:  source,
			Pos:     pos,
		})
	}

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR {
			continue
		}

		if gd.Lparen == token.NoPos {
			// var x T: the doc comment belongs to the declaration
			if spec, ok := gd.Specs[0].(*ast.ValueSpec); ok {
				attach(gd.Doc, spec)
			}
			continue
		}

		// var ( ... ): directives must sit on the spec itself
		for _, s := range gd.Specs {
			if spec, ok := s.(*ast.ValueSpec); ok {
				attach(spec.Doc, spec)
			}
		}
	}

	for _, cg := range file.Comments {
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, directivePrefix) && !used[c] {
				errs.Add(fset.Position(c.Slash), "misplaced //liveload directive: must precede a package level var declaration")
			}
		}
	}

	return sites
}

func directives(doc *ast.CommentGroup) []*ast.Comment {
	if doc == nil {
		return nil
	}
	var out []*ast.Comment
	for _, c := range doc.List {
		if strings.HasPrefix(c.Text, directivePrefix) {
			out = append(out, c)
		}
	}
	return out
}

func parseDirective(c *ast.Comment) (directive, error) {
	text := strings.TrimPrefix(c.Text, directivePrefix)
	name, args := text, ""
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		name, args = text[:i], text[i+1:]
	}

	d := directive{comment: c}
	switch name {
	case "str":
		d.kind = liveload.KindText
	case "bytes":
		d.kind = liveload.KindBytes
	default:
		return d, errors.Errorf("unknown directive %v%v", directivePrefix, name)
	}

	literal, err := ParseLiteral(args)
	if err != nil {
		return d, errors.Wrapf(err, "%v%v", directivePrefix, name)
	}
	d.literal = literal
	return d, nil
}

// ParseLiteral reads the single path argument of a directive. The path is
// either a bare word or a Go string literal.
func ParseLiteral(args string) (string, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", errors.New("missing path")
	}

	var literal string
	if args[0] == '"' || args[0] == '`' {
		quoted, err := strconv.QuotedPrefix(args)
		if err != nil {
			return "", errors.Errorf("malformed quoted path %v", args)
		}
		if strings.TrimSpace(args[len(quoted):]) != "" {
			return "", errors.New("expected a single path literal")
		}
		literal, _ = strconv.Unquote(quoted)
	} else {
		if strings.ContainsAny(args, " \t") {
			return "", errors.New("expected a single path literal")
		}
		if strings.Contains(args, "$") {
			return "", errors.Errorf("path must be a literal, found expansion in %v", args)
		}
		if strings.ContainsAny(args, "*?[") {
			return "", errors.Errorf("path must name a single file, found pattern %v", args)
		}
		literal = args
	}

	if literal == "" {
		return "", errors.New("empty path")
	}
	return literal, nil
}

// Validate the declaration a directive is attached to
func checkSpec(spec *ast.ValueSpec, kind liveload.Kind, iname string) error {
	if len(spec.Names) != 1 {
		return errors.New("//liveload directive must apply to a single var")
	}
	if spec.Names[0].Name == "_" {
		return errors.New("//liveload directive cannot apply to the blank identifier")
	}
	if len(spec.Values) > 0 {
		return errors.Errorf("var %v with //liveload directive must not have an initializer", spec.Names[0].Name)
	}

	want := "Text"
	if kind == liveload.KindBytes {
		want = "Bytes"
	}

	var got string
	switch typ := spec.Type.(type) {
	case *ast.SelectorExpr:
		if x, ok := typ.X.(*ast.Ident); ok && x.Name == iname {
			got = typ.Sel.Name
		}
	case *ast.Ident:
		if iname == "." {
			got = typ.Name
		}
	}

	if got != want {
		return errors.Errorf("var %v with //liveload:%v directive must have type %v.%v", spec.Names[0].Name, verb(kind), iname, want)
	}
	return nil
}

func verb(kind liveload.Kind) string {
	if kind == liveload.KindBytes {
		return "bytes"
	}
	return "str"
}
