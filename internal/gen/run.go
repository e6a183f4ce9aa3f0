// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package gen

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zosopentools/liveload/internal/base"
	"github.com/zosopentools/liveload/internal/scan"
)

// Runner generates the call sites of several packages
type Runner struct {
	Scan scan.Options
	Gen  Options

	// Report what would change without touching the file system
	DryRun bool

	// Packages processed concurrently
	Jobs int

	Logger zerolog.Logger
}

// FailedError is returned by Run when at least one package could not be
// generated. The diagnostics are in the report.
type FailedError struct {
	Failed int
	Total  int
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("generation failed for %v of %v package(s)", e.Failed, e.Total)
}

// Run scans and generates every directory. A package with bad call sites or
// unreadable embedded files does not stop the others, but Run then returns
// a *FailedError. Write failures abort the run.
func (r *Runner) Run(ctx context.Context, dirs []string) (base.Report, error) {
	report := base.Report{
		Mode:     r.Gen.Layout.String(),
		Packages: make([]base.Package, len(dirs)),
	}

	if _, err := r.Gen.withDefaults(); err != nil {
		return report, err
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := r.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pkg, err := r.one(dir)
			report.Packages[i] = pkg
			return err
		})
	}

	if err := g.Wait(); err != nil {
		report.Errors = err.Error()
		return report, err
	}

	failed := 0
	for _, pkg := range report.Packages {
		if pkg.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		err := &FailedError{Failed: failed, Total: len(dirs)}
		report.Errors = err.Error()
		return report, err
	}
	return report, nil
}

// Generate a single package. Only write failures are returned, everything
// else is recorded on the package.
func (r *Runner) one(dir string) (base.Package, error) {
	out := base.Package{Dir: dir}
	log := r.Logger.With().Str("dir", dir).Logger()

	pkg, err := scan.Dir(dir, r.Scan)
	if pkg != nil {
		out.Name = pkg.Name
		out.Dir = pkg.Dir
		for _, site := range pkg.Sites {
			out.Sites = append(out.Sites, base.Site{
				Var:     site.Var,
				Kind:    site.Kind.String(),
				Literal: site.Literal,
				Path:    site.Path,
				Source:  site.Source,
				Line:    site.Pos.Line,
				Test:    site.Test,

				Constraint: constraintString(site),
			})
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("invalid call sites")
		out.Error = err.Error()
		return out, nil
	}

	log.Debug().Str("package", pkg.Name).Int("sites", len(pkg.Sites)).Msg("scanned")

	files, err := Generate(pkg, r.Gen)
	if err != nil {
		log.Error().Err(err).Msg("unable to generate")
		out.Error = err.Error()
		if len(files) == 0 {
			return out, nil
		}
	}

	var changed []string
	var werr error
	if err != nil {
		// Only part of the layout could be generated: write it, but leave
		// the files of the failed shape as they are
		changed, werr = Update(pkg.Dir, files, r.DryRun)
	} else {
		changed, werr = Write(pkg.Dir, files, r.Gen, r.DryRun)
	}
	if werr != nil {
		return out, errors.Wrapf(werr, "package %v", pkg.Name)
	}

	written := make(map[string]bool, len(changed))
	for _, name := range changed {
		written[name] = true
	}
	for _, f := range files {
		out.Files = append(out.Files, base.File{
			Name:       f.Name,
			Constraint: f.Constraint,
			Written:    written[f.Name] && !r.DryRun,
		})
	}

	for _, name := range changed {
		log.Info().Str("file", name).Bool("dry_run", r.DryRun).Msg("updated")
	}
	return out, nil
}

func constraintString(site scan.Site) string {
	if site.Constraint == nil {
		return ""
	}
	return site.Constraint.String()
}
