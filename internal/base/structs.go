// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package base

// Report is printed with -json after a run
type Report struct {
	Mode     string
	Packages []Package

	Errors string `json:",omitempty"`
}

type Package struct {
	Name  string
	Dir   string
	Files []File `json:",omitempty"`
	Sites []Site `json:",omitempty"`
	Error string `json:",omitempty"`
}

// File is a generated file
type File struct {
	Name       string
	Constraint string `json:",omitempty"`
	Written    bool
}

type Site struct {
	Var     string
	Kind    string
	Literal string
	Path    string
	Source  string
	Line    int

	// Declared in a _test.go file
	Test bool `json:",omitempty"`

	// Build constraint of the declaring file
	Constraint string `json:",omitempty"`
}
