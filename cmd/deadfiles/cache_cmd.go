package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/deadfiles/internal/cache"
	"github.com/panbanda/deadfiles/internal/service/analysis"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Project root directory",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file",
		},
	}
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the analysis cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count and size",
				Flags:  flags,
				Action: runCacheStatsCmd,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached analysis results",
				Flags:  flags,
				Action: runCacheClearCmd,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, error) {
	loaded, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	svc := analysis.New(analysis.WithConfig(loaded.Config))
	dir := svc.CacheDir(svc.Root(analysis.DetectOptions{Root: c.String("root")}))
	if dir == "" {
		return nil, fmt.Errorf("no cache directory configured")
	}
	return cache.New(dir, loaded.Config.Cache.TTL, true)
}

func runCacheStatsCmd(c *cli.Context) error {
	ch, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := ch.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Entries: %d\nSize:    %d bytes\n", stats.Entries, stats.TotalSize)
	return nil
}

func runCacheClearCmd(c *cli.Context) error {
	ch, err := openCache(c)
	if err != nil {
		return err
	}
	if err := ch.Clear(); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(c.App.Writer, "Cache cleared")
	return nil
}
