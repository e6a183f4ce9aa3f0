// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.

package tags

import (
	"testing"
)

func linuxAmd64(tag string) bool {
	switch tag {
	case "linux", "amd64", "unix", "gc", "go1.18":
		return true
	}
	return false
}

// // // // // // // //
// FILE NAME CASES //
// // // // // // // //

func TestFileNameNoTag(t *testing.T) {
	for _, name := range []string{"main.go", "load_str.go", "greeting_test.go", "linux.go", "x_test.go"} {
		if expr := ParseFileName(name); expr != nil {
			t.Errorf("%v: expected no constraint, got %v", name, expr)
		}
	}
}

func TestFileNameGoos(t *testing.T) {
	expr := ParseFileName("assets_windows.go")
	if expr == nil {
		t.Fatal("assets_windows.go: expected a constraint")
	}
	if expr.String() != "windows" {
		t.Errorf("assets_windows.go: expected windows, got %v", expr)
	}
	if expr.Eval(linuxAmd64) {
		t.Errorf("assets_windows.go should not build on linux")
	}
}

func TestFileNameGoosGoarch(t *testing.T) {
	expr := ParseFileName("assets_linux_arm64_test.go")
	if expr == nil {
		t.Fatal("assets_linux_arm64_test.go: expected a constraint")
	}
	if expr.String() != "linux && arm64" {
		t.Errorf("expected linux && arm64, got %v", expr)
	}
	if expr.Eval(linuxAmd64) {
		t.Errorf("assets_linux_arm64_test.go should not build on amd64")
	}

	expr = ParseFileName("assets_linux_amd64.go")
	if expr == nil || !expr.Eval(linuxAmd64) {
		t.Errorf("assets_linux_amd64.go should build on linux/amd64")
	}
}

// // // // // // // // //
// FILE HEADER CASES  //
// // // // // // // // //

func TestHeaderGoBuild(t *testing.T) {
	src := []byte("// Copyright\n\n//go:build linux && !liveload_dev\n\npackage x\n")
	expr, err := ParseFileHeader(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr == nil || expr.String() != "linux && !liveload_dev" {
		t.Fatalf("unexpected expression: %v", expr)
	}
}

func TestHeaderPlusBuild(t *testing.T) {
	src := []byte("// +build linux darwin\n// +build amd64\n\npackage x\n")
	expr, err := ParseFileHeader(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr == nil {
		t.Fatal("expected +build lines to produce an expression")
	}
	if !expr.Eval(linuxAmd64) {
		t.Errorf("%v should hold on linux/amd64", expr)
	}
}

func TestHeaderAfterPackage(t *testing.T) {
	// Constraints past the package clause are ordinary comments
	src := []byte("package x\n\n//go:build ignore\n")
	expr, err := ParseFileHeader(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr != nil {
		t.Errorf("expected no expression, got %v", expr)
	}
}

func TestHeaderPlusBuildInBody(t *testing.T) {
	// Only the leading comments can hold +build lines
	for _, src := range []string{
		"package x\n\n// +build ignore\n",
		"package x\n\nfunc f() {\n\t// +build ignore\n}\n",
		"// +build ignore\npackage x\n",
		"/* header */\n\n// +build ignore\n\npackage x\n",
	} {
		expr, err := ParseFileHeader([]byte(src))
		if err != nil {
			t.Errorf("%q: unexpected error: %v", src, err)
			continue
		}
		if expr != nil {
			t.Errorf("%q: expected no expression, got %v", src, expr)
		}
	}

	build, err := Match("body.go", []byte("package x\n\n// +build ignore\nvar x int\n"), linuxAmd64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !build {
		t.Error("a +build comment after the package clause should not exclude the file")
	}
}

func TestHeaderMultipleGoBuild(t *testing.T) {
	src := []byte("//go:build linux\n//go:build amd64\n\npackage x\n")
	if _, err := ParseFileHeader(src); err == nil {
		t.Error("expected an error for multiple //go:build lines")
	}
}

// // // // // // //
// MATCH CASES  //
// // // // // // //

func TestMatch(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		build bool
	}{
		{"plain.go", "package x\n", true},
		{"_hidden.go", "package x\n", false},
		{".hidden.go", "package x\n", false},
		{"plain_windows.go", "package x\n", false},
		{"plain_linux.go", "package x\n", true},
		{"dev.go", "//go:build liveload_dev\n\npackage x\n", false},
		{"prod.go", "//go:build !liveload_dev\n\npackage x\n", true},
		{"both_linux.go", "//go:build !unix\n\npackage x\n", false},
	}

	for _, c := range cases {
		build, err := Match(c.name, []byte(c.src), linuxAmd64)
		if err != nil {
			t.Errorf("%v: unexpected error: %v", c.name, err)
			continue
		}
		if build != c.build {
			t.Errorf("%v: expected build=%v, got %v", c.name, c.build, build)
		}
	}
}

func TestFileConstraint(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"plain.go", "package x\n", ""},
		{"plain_linux.go", "package x\n", "linux"},
		{"dev.go", "//go:build liveload_dev\n\npackage x\n", "liveload_dev"},
		{"dev_linux_amd64.go", "//go:build a || b\n\npackage x\n", "linux && amd64 && (a || b)"},
		{"old_windows.go", "// +build cgo\n\npackage x\n", "windows && cgo"},
	}

	for _, c := range cases {
		expr, err := FileConstraint(c.name, []byte(c.src))
		if err != nil {
			t.Errorf("%v: unexpected error: %v", c.name, err)
			continue
		}
		got := ""
		if expr != nil {
			got = expr.String()
		}
		if got != c.want {
			t.Errorf("%v: expected %q, got %q", c.name, c.want, got)
		}
	}
}
