// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/zosopentools/liveload/internal/base"
	"github.com/zosopentools/liveload/internal/gen"
	"github.com/zosopentools/liveload/internal/scan"
)

const shaLen = 7

var (
	// Version contains the application version number. It's set via ldflags
	// when building. (-ldflags="-X 'main.Version=${LIVELOAD_VERSION}'")
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	// (-ldflags="-X 'main.CommitSHA=$(git rev-parse HEAD)'")
	CommitSHA = ""
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, envconfig.OsLookuper())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookuper envconfig.Lookuper) int {
	// Parse cmd line flags
	flags := flag.NewFlagSet("liveload", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: liveload [flags] [packages]; see 'liveload -help'")
	}

	helpFlag := flags.Bool("help", false, "Print help text")
	modeFlag := flags.String("mode", "", "Layout of the generated code: embed, runtime or tagged")
	tagFlag := flags.String("tag", "", "Build tag selecting the runtime file in the tagged layout")
	tagsFlag := flags.String("tags", "", "List of build tags")
	outputFlag := flags.String("o", "", "Output file name for the embed and runtime layouts")
	configFlag := flags.String("config", "", "Path to a YAML config")
	checkFlag := flags.Bool("check", false, "Check that files exist when generating the runtime shape")
	testsFlag := flags.Bool("tests", false, "Also expand call sites in _test.go files")
	dryRunFlag := flags.Bool("n", false, "Enable dry mode, report changes but don't write them")
	jobsFlag := flags.Int("j", 0, "Number of packages expanded concurrently")
	jsonFlag := flags.Bool("json", false, "Print a JSON report")
	verboseFlag := flags.Bool("v", false, "Enable verbose output")
	versionFlag := flags.Bool("version", false, "Display version information")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stdout, helpText)
			return exitOK
		}
		return exitUsage
	}

	// If --help is passed
	if *helpFlag {
		fmt.Fprintln(stdout, helpText)
		return exitOK
	}

	if *versionFlag {
		fmt.Fprintln(stdout, version())
		return exitOK
	}

	logger := newLogger(stderr, *verboseFlag)

	cfg, err := base.LoadConfig(*configFlag, lookuper)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return exitUsage
	}

	// Flags win over the config file and the environment, but only when given
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *modeFlag
		case "tag":
			cfg.Tag = *tagFlag
		case "tags":
			cfg.Tags = splitTags(*tagsFlag)
		case "o":
			cfg.Output = *outputFlag
		case "check":
			cfg.Check = *checkFlag
		case "tests":
			cfg.Tests = *testsFlag
		case "j":
			cfg.Jobs = *jobsFlag
		}
	})

	layout, err := gen.ParseLayout(cfg.Mode)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return exitUsage
	}

	bctx, err := base.LoadContext(cfg.Tags)
	if err != nil {
		logger.Debug().Err(err).Msg("using the build context liveload was built with")
		bctx = base.DefaultContext(cfg.Tags)
	}
	logger.Debug().
		Str("goos", bctx.GOOS).
		Str("goarch", bctx.GOARCH).
		Str("mode", layout.String()).
		Msg("build context")

	dirs, err := packageDirs(flags.Args(), cfg.Tags)
	if err != nil {
		logger.Error().Err(err).Msg("unable to find packages")
		return exitFailed
	}

	runner := &gen.Runner{
		Scan: scan.Options{
			Match: bctx.Match,
			Tests: cfg.Tests,
		},
		Gen: gen.Options{
			Layout: layout,
			Tag:    cfg.Tag,
			Output: cfg.Output,
			Check:  cfg.Check,
		},
		DryRun: *dryRunFlag,
		Jobs:   cfg.Jobs,
		Logger: logger,
	}

	report, err := runner.Run(ctx, dirs)

	if *jsonFlag {
		out, merr := json.MarshalIndent(report, "", "\t")
		if merr != nil {
			logger.Error().Err(merr).Msg("unable to encode report")
			return exitFailed
		}
		fmt.Fprintln(stdout, string(out))
	}

	if err != nil {
		var failed *gen.FailedError
		if errors.As(err, &failed) {
			logger.Error().Int("failed", failed.Failed).Int("total", failed.Total).Msg("generation failed")
		} else {
			logger.Error().Err(err).Msg("generation aborted")
		}
		return exitFailed
	}
	return exitOK
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      !isTerminal(w),
		PartsExclude: []string{zerolog.TimestampFieldName},
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func splitTags(list string) []string {
	var tags []string
	for _, tag := range strings.Split(list, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func version() string {
	v := Version
	if v == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			v = info.Main.Version
		} else {
			v = "unknown (built from source)"
		}
	}

	if len(CommitSHA) >= shaLen {
		v += " (" + CommitSHA[:shaLen] + ")"
	}
	return v
}
