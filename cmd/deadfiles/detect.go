package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/panbanda/deadfiles/internal/output"
	"github.com/panbanda/deadfiles/internal/progress"
	"github.com/panbanda/deadfiles/internal/service/analysis"
	"github.com/panbanda/deadfiles/pkg/analyzer/deadfile"
	"github.com/panbanda/deadfiles/pkg/config"
	"github.com/panbanda/deadfiles/pkg/scanner"
	"github.com/panbanda/deadfiles/pkg/watch"
	"github.com/urfave/cli/v2"
)

// errDeadFilesFound fails a --check run. The report has already been
// printed, so main only sets the exit status.
var errDeadFilesFound = errors.New("dead files found")

// detectRun holds everything one invocation of the root command needs.
type detectRun struct {
	svc     *analysis.Service
	opts    analysis.DetectOptions
	format  output.Format
	outPath string
	colored bool
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

func runDetectCmd(c *cli.Context) error {
	run, err := newDetectRun(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := run.detect(ctx)
	if err != nil {
		return err
	}

	if c.Bool("watch") {
		return run.watch(ctx, report.Root, c.Duration("debounce"))
	}
	if c.Bool("check") && len(report.DeadFiles) > 0 {
		return errDeadFilesFound
	}
	return nil
}

// loadConfig loads --config, or searches --root (or the working directory).
func loadConfig(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	} else if root := c.String("root"); root != "" {
		opts = append(opts, config.WithSearchDir(root))
	}
	return config.LoadConfig(opts...)
}

func newDetectRun(c *cli.Context) (*detectRun, error) {
	loaded, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	format := cfg.Output.Format
	if f := c.String("format"); f != "" {
		if !slices.Contains(config.Formats, f) && f != "md" {
			return nil, fmt.Errorf("unknown format %q", f)
		}
		format = f
	}

	return &detectRun{
		svc: analysis.New(analysis.WithConfig(cfg)),
		opts: analysis.DetectOptions{
			Root:      c.String("root"),
			Entry:     append(c.StringSlice("entry"), c.Args().Slice()...),
			Include:   patternFlag(c, "include"),
			Ignore:    patternFlag(c, "ignore"),
			Gitignore: c.Bool("gitignore"),
			NoCache:   c.Bool("no-cache"),
		},
		format:  output.ParseFormat(format),
		outPath: c.String("output"),
		colored: cfg.Output.Color && !c.Bool("no-color"),
		verbose: c.Bool("verbose") || cfg.Output.Verbose,
		stdout:  c.App.Writer,
		stderr:  c.App.ErrWriter,
	}, nil
}

// patternFlag returns nil when the flag was not given, so configured
// patterns apply.
func patternFlag(c *cli.Context, name string) []string {
	if !c.IsSet(name) {
		return nil
	}
	return c.StringSlice(name)
}

// detect runs one detection and renders the report.
func (r *detectRun) detect(ctx context.Context) (*deadfile.Report, error) {
	start := time.Now()

	opts := r.opts
	var tracker *progress.Tracker
	switch {
	case r.verbose:
		opts.OnTraverseFile = func(path string) {
			fmt.Fprintln(r.stderr, path)
		}
	case isTerminal(r.stderr):
		tracker = progress.NewSpinnerTo(r.stderr, "Following imports...")
		opts.OnTraverseFile = tracker.Observe
	}

	report, err := r.svc.FindDeadFiles(ctx, opts)
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.FinishSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	if err := r.render(report); err != nil {
		return nil, err
	}

	if r.verbose {
		summary := report.Summary()
		color.New(color.FgCyan).Fprintf(r.stderr, "Traversed %d files, found %d dead files in %s\n",
			summary.Dependencies, summary.DeadFiles, time.Since(start).Round(time.Millisecond))
	}
	return report, nil
}

func (r *detectRun) render(report *deadfile.Report) error {
	formatter := output.NewWriterFormatter(r.format, r.stdout, r.colored)
	if r.outPath != "" {
		var err error
		formatter, err = output.NewFormatter(r.format, r.outPath, false)
		if err != nil {
			return err
		}
	}
	defer formatter.Close()

	return formatter.Output(output.NewDeadFileReport(report))
}

// watch re-runs detection whenever a source file under root changes.
func (r *detectRun) watch(ctx context.Context, root string, debounce time.Duration) error {
	ignore := scanner.NewMatcher(root, r.svc.Ignore(r.opts))
	watcher, err := watch.NewWatcher(root, ignore, debounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	watcher.SetOutput(r.stderr)
	watcher.SetCallback(func([]string) {
		if _, err := r.detect(ctx); err != nil {
			color.New(color.FgRed).Fprintf(r.stderr, "Error: %v\n", err)
		}
	})

	err = watcher.Start(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(r.stderr, "\nStopping watch...")
		return nil
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
