// Command furbake bakes fur masks and direction maps for every target of a
// project file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"fur-mask-baker/internal/batch"
	"fur-mask-baker/internal/config"
	"fur-mask-baker/internal/export"
	"fur-mask-baker/internal/logger"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags.Project)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
		os.Exit(1)
	}
	// CLI flags override project file
	cfg.Resolve(*flags)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Fur mask baker → %s\n", format)
	fmt.Printf("Targets: %d, Workers: %d, Size: %d\n", len(cfg.Targets), cfg.Workers, cfg.Bake.TextureSize)
	fmt.Printf("Output: %s\n", cfg.Output.Dir)
	fmt.Println("------------------------------------------------------------")

	res := newResources()
	targets := make([]batch.Target, len(cfg.Targets))
	for i, t := range cfg.Targets {
		targets[i] = res.target(cfg, t)
	}

	start := time.Now()
	results := batch.Run(ctx, batch.Config{
		Workers: cfg.Workers,
		Sink:    export.FileSink{Dir: cfg.Output.Dir, Format: format},
		Logger:  logger.Named("batch"),
	}, targets)
	elapsed := time.Since(start)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	textures := 0
	for _, r := range results {
		if r.Success {
			textures += len(r.Textures)
			fmt.Printf("  %-24s %d textures in %.1fs\n", r.Target, len(r.Textures), r.Elapsed.Seconds())
		}
	}
	failed := batch.Failed(results)
	fmt.Printf("Baked: %d/%d targets, %d textures\n", len(results)-len(failed), len(results), textures)

	if cfg.Output.Manifest != "" {
		if err := export.WriteManifest(cfg.Output.Manifest, batch.ManifestEntries(results)); err != nil {
			logger.Error("manifest write failed", zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("Manifest: %s\n", cfg.Output.Manifest)
	}

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, r := range failed {
			fmt.Printf("  %s: %s\n", r.Target, r.Error)
		}
		logger.Sync()
		os.Exit(1)
	}

	stats := res.locator.Cache().Stats()
	logger.Debug("island cache",
		zap.Int("entries", stats.Entries),
		zap.Int("bytes", stats.Bytes),
		zap.Int("hits", stats.Hits),
		zap.Int("misses", stats.Misses),
		zap.Int("evictions", stats.Evictions))
}
