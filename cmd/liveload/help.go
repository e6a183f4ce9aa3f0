// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.
package main

var helpText = `
The liveload command expands the //liveload:str and //liveload:bytes call
sites of Go packages, so their files are either compiled into the binary
or re-read from disk on every load.

Typically run through go generate, from a file of the package:

	//go:generate go run github.com/zosopentools/liveload/cmd/liveload

Paths written in a directive are resolved against the directory of the
file declaring the var, never against the working directory.

Usage:
	liveload [flags] [packages]

With no packages, the package in the current directory is expanded.

Call sites in _test.go files (with -tests) and in files with a build
constraint are written to separate files carrying the same constraint.

If a file cannot be embedded, generation fails. In the tagged layout the
runtime file is written anyway, so the package builds with -tags <tag>
until the file exists.

Options:
-help
	Display this message
-mode <embed|runtime|tagged>
	embed: compile file contents into the binary
	runtime: read files from disk on every load
	tagged: write both, runtime is selected with -tags <tag> (default)
-tag
	Build tag selecting the runtime file in the tagged layout (default liveload_dev)
-tags
	Comma separated list of build tags used to select source files
-o
	Output file name for the embed and runtime layouts (default liveload_gen.go)
-config
	Path to a YAML config, liveload.yaml is used when present
-check
	Fail generation of the runtime shape if a file does not exist
-tests
	Also expand call sites in _test.go files
-n
	Don't write anything, report what would change
-j
	Number of packages expanded concurrently
-json
	Print a JSON report of the run to stdout
-v
	Verbose output
-version
	Display version information

Every option can also be set in the config file, or with the matching
LIVELOAD_<OPTION> environment variable. Flags take precedence.
`
