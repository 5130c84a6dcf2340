package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if !errors.Is(err, errDeadFilesFound) {
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "deadfiles",
		Usage:     "Find JavaScript and TypeScript files no entry point imports",
		Version:   version,
		ArgsUsage: "[entry...]",
		Metadata:  make(map[string]interface{}),
		// Glob patterns contain commas inside braces.
		DisableSliceFlagSeparator: true,
		Description: `deadfiles follows static imports from the given entry points and
reports every included file that is never reached.

Entries may be given as arguments or with --entry. Files matching
--include form the candidate set; --ignore prunes both the traversal
and the candidates.

Supports: JavaScript, JSX, TypeScript, TSX (CommonJS and ES modules)`,
		Flags:  detectFlags(),
		Action: runDetectCmd,
		Before: startProfile,
		After:  stopProfile,
		Commands: []*cli.Command{
			initCmd(),
			configCmd(),
			cacheCmd(),
			mcpCmd(),
		},
	}
}

func detectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "entry",
			Aliases: []string{"e"},
			Usage:   "Entry point file, relative to --root (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:    "include",
			Aliases: []string{"i"},
			Usage:   "Glob pattern of candidate files (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "ignore",
			Usage: "Glob pattern excluded from traversal and candidates (repeatable)",
		},
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Directory patterns, entries and bare imports resolve from",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (TOML, YAML, or JSON)",
			EnvVars: []string{"DEADFILES_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, markdown, toon",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Disable caching",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
		&cli.BoolFlag{
			Name:  "gitignore",
			Usage: "Exclude files matched by .gitignore from the candidates",
		},
		&cli.BoolFlag{
			Name:    "watch",
			Aliases: []string{"w"},
			Usage:   "Re-run when source files change",
		},
		&cli.DurationFlag{
			Name:  "debounce",
			Usage: "Quiet period before re-running in watch mode",
		},
		&cli.BoolFlag{
			Name:  "check",
			Usage: "Exit with status 1 when dead files are found",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Print each traversed file and timing",
		},
		&cli.StringFlag{
			Name:  "pprof",
			Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
		},
	}
}

func startProfile(c *cli.Context) error {
	pprofPrefix := c.String("pprof")
	if pprofPrefix == "" {
		return nil
	}
	cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		cpuFile.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	c.App.Metadata["pprofCPU"] = cpuFile
	return nil
}

func stopProfile(c *cli.Context) error {
	pprofPrefix := c.String("pprof")
	if pprofPrefix == "" {
		return nil
	}

	pprof.StopCPUProfile()
	if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
		cpuFile.Close()
		color.New(color.FgGreen).Fprintf(os.Stderr, "CPU profile written to %s.cpu.pprof\n", pprofPrefix)
	}

	memFile, err := os.Create(pprofPrefix + ".mem.pprof")
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer memFile.Close()

	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "Memory profile written to %s.mem.pprof\n", pprofPrefix)
	return nil
}
