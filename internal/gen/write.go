// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package gen

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/zosopentools/liveload/internal/util"
)

// IsOutput reports whether name is a file a run with opts may own in a
// package directory, whatever the layout: the embed, runtime or output file,
// their numbered variants and their _test.go variants.
func IsOutput(name string, opts Options) bool {
	output := opts.Output
	if output == "" {
		output = DefaultOutput
	}
	for _, file := range []string{output, EmbedFile, RuntimeFile} {
		rx := `^` + regexp.QuoteMeta(strings.TrimSuffix(file, ".go")) + `(_[0-9]+)?(_test)?\.go$`
		if regexp.MustCompile(rx).MatchString(name) {
			return true
		}
	}
	return false
}

// Write stores files in dir and removes generated files of a previous run
// that files no longer contains.
//
// Files that exist but were not generated are never overwritten or removed.
// Returns the names of the files that changed on disk.
func Write(dir string, files []File, opts Options, dryRun bool) ([]string, error) {
	changed, err := Update(dir, files, dryRun)
	if err != nil {
		return changed, err
	}
	removed, err := Prune(dir, files, opts, dryRun)
	return append(changed, removed...), err
}

// Update stores files in dir, leaving unchanged files alone.
func Update(dir string, files []File, dryRun bool) ([]string, error) {
	var changed []string
	for _, f := range files {
		path := filepath.Join(dir, f.Name)

		old, err := os.ReadFile(path)
		switch {
		case err == nil:
			if !util.IsGenerated(old) {
				return changed, errors.Errorf("refusing to overwrite %v: not a generated file", path)
			}
			if bytes.Equal(old, f.Src) {
				continue
			}
		case !errors.Is(err, os.ErrNotExist):
			return changed, errors.Wrapf(err, "unable to read %v", path)
		}

		changed = append(changed, f.Name)
		if dryRun {
			continue
		}
		if err := writeFile(path, f.Src); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// Prune removes generated outputs in dir that are not part of files.
func Prune(dir string, files []File, opts Options, dryRun bool) ([]string, error) {
	keep := make(map[string]bool, len(files))
	for _, f := range files {
		keep[f.Name] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %v", dir)
	}

	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || keep[name] || !IsOutput(name, opts) {
			continue
		}
		path := filepath.Join(dir, name)
		old, err := os.ReadFile(path)
		if err != nil {
			return removed, errors.Wrapf(err, "unable to read %v", path)
		}
		if !util.IsGenerated(old) {
			continue
		}

		removed = append(removed, name)
		if dryRun {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, errors.Wrapf(err, "unable to remove stale %v", path)
		}
	}
	return removed, nil
}

// Write through a temporary file so a failed run never leaves half a file
func writeFile(path string, src []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".liveload-*.tmp")
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(src); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "unable to write %v", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "unable to write %v", path)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrapf(err, "unable to write %v", path)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "unable to write %v", path)
}
