// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

/*
Package liveload gives a program two interchangeable ways to get the
contents of a file: compiled into the binary, or re-read from disk on every
call so edits show up without rebuilding.

A call site is a var declared with a directive, similar to //go:embed:

	//go:generate go run github.com/zosopentools/liveload/cmd/liveload

	//liveload:str greeting.txt
	var greeting liveload.Text

	//liveload:bytes assets/logo.png
	var logo liveload.Bytes

Running go generate expands every call site of the package. Paths are
resolved against the directory of the file that declares the var, in both
modes. By default two files are written: one embedding the content, built
unless the liveload_dev tag is set, and one reading it at runtime, built
with -tags liveload_dev.

Call sites declared in _test.go files, or in files with a build constraint,
get generated files of their own under the same constraint, numbered like
liveload_embed_gen_1.go, or named liveload_embed_gen_test.go for tests.

In Embed mode a file that cannot be read fails generation, as does
invalid UTF-8 behind a Text. In Runtime mode the same problems are
returned by Load. With the default layout the runtime file is still
written when only the embedded content failed, so a file that does not
exist yet can be worked on with -tags liveload_dev.
*/
package liveload
