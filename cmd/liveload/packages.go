// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
)

// Turn the command line arguments into package directories.
//
// Plain directories are used as is, so a package whose generated files are
// missing or broken can still be expanded. Anything else is handed to the
// go command as a package pattern.
func packageDirs(args []string, buildTags []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var dirs []string
	var patterns []string
	for _, arg := range args {
		if !strings.Contains(arg, "...") {
			if info, err := os.Stat(arg); err == nil && info.IsDir() {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return nil, errors.Wrapf(err, "unable to resolve %v", arg)
				}
				dirs = append(dirs, abs)
				continue
			}
		}
		patterns = append(patterns, arg)
	}

	if len(patterns) > 0 {
		found, err := listDirs(patterns, buildTags)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, found...)
	}

	seen := make(map[string]bool, len(dirs))
	unique := dirs[:0]
	for _, dir := range dirs {
		if !seen[dir] {
			seen[dir] = true
			unique = append(unique, dir)
		}
	}
	return unique, nil
}

func listDirs(patterns []string, buildTags []string) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
	}
	if len(buildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(buildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list packages")
	}
	if len(pkgs) == 0 {
		return nil, errors.Errorf("no packages matching %v", strings.Join(patterns, " "))
	}

	var dirs []string
	for _, pkg := range pkgs {
		files := append(append([]string{}, pkg.GoFiles...), pkg.IgnoredFiles...)
		if len(files) == 0 {
			if len(pkg.Errors) > 0 {
				return nil, errors.Errorf("%v: %v", pkg.PkgPath, pkg.Errors[0])
			}
			continue
		}
		dirs = append(dirs, filepath.Dir(files[0]))
	}
	return dirs, nil
}
