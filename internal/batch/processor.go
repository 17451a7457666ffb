// Package batch bakes many targets on a worker pool and hands the textures
// to an export sink.
package batch

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"fur-mask-baker/internal/bake"
	"fur-mask-baker/internal/export"
	"fur-mask-baker/internal/texture"
)

// ProgressInterval is how often Run logs overall progress.
const ProgressInterval = 2 * time.Second

// Target is one named bake. Build runs on a worker, so mesh loading and
// collider construction happen in parallel.
type Target struct {
	Name  string
	Build func() (bake.Params, error)
}

// Config holds the shared resources of a batch run.
type Config struct {
	Workers int
	Sink    export.Sink
	Logger  *zap.Logger
}

// Texture is one emitted material texture.
type Texture struct {
	Material string
	Path     string
	Size     int
	Coverage texture.Coverage
}

// Result holds the outcome of one target.
type Result struct {
	Target   string
	Kind     bake.Kind
	Success  bool
	Error    string
	Textures []Texture
	Elapsed  time.Duration
}

// Run bakes every target. Results are in target order. Cancelling ctx
// cancels in-flight bakes at their next batch boundary and fails the
// targets not yet started.
func Run(ctx context.Context, cfg Config, targets []Target) []Result {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	total := len(targets)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("batch progress",
						zap.Int64("done", p),
						zap.Int("total", total),
						zap.Float64("targets_per_sec", rate))
				}
			}
		}
	}()

	seen := make(map[string]bool, total)
	queue := make([]int, 0, total)
	for i, t := range targets {
		if seen[t.Name] {
			results[i] = Result{Target: t.Name, Error: "duplicate target name"}
			processed.Add(1)
			continue
		}
		seen[t.Name] = true
		queue = append(queue, i)
	}

	// Worker pool
	work := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = processTarget(ctx, cfg.Sink, log, targets[idx])
				processed.Add(1)
			}
		}()
	}

	for _, i := range queue {
		work <- i
	}
	close(work)

	wg.Wait()
	close(done)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	log.Info("batch finished",
		zap.Int("targets", total),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func processTarget(ctx context.Context, sink export.Sink, log *zap.Logger, t Target) (res Result) {
	start := time.Now()
	res = Result{Target: t.Name}
	defer func() {
		res.Elapsed = time.Since(start)
		if !res.Success {
			log.Warn("target failed", zap.String("target", t.Name), zap.String("error", res.Error))
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}
	if t.Build == nil {
		res.Error = "target has no builder"
		return res
	}
	p, err := buildParams(t)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Kind = p.Kind
	if p.Target == "" {
		p.Target = t.Name
	}
	if p.Logger == nil {
		p.Logger = log
	}
	user := p.Progress
	p.Progress = func(title, msg string, frac float64) bool {
		if user != nil && user(title, msg, frac) {
			return true
		}
		return ctx.Err() != nil
	}

	job, err := bake.NewJob(p)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	buffers, err := bake.Run(job)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	materials := make([]string, 0, len(buffers))
	for m := range buffers {
		materials = append(materials, m)
	}
	sort.Strings(materials)
	for _, m := range materials {
		buf := buffers[m]
		tex := Texture{Material: m, Size: buf.Size, Coverage: texture.MeasureCoverage(buf)}
		if sink != nil {
			path, err := sink.Emit(t.Name, m, buf.ToNRGBA())
			if err != nil {
				res.Error = errors.Wrapf(err, "material %q", m).Error()
				return res
			}
			tex.Path = path
		}
		res.Textures = append(res.Textures, tex)
	}
	res.Success = true
	return res
}

// buildParams runs the target builder, turning a panic into an error so one
// bad target cannot take down the pool.
func buildParams(t Target) (p bake.Params, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("batch: building %q panicked: %v", t.Name, r)
		}
	}()
	p, err = t.Build()
	return p, errors.Wrapf(err, "batch: build %q", t.Name)
}

// ManifestEntries lists every emitted texture of the successful results.
func ManifestEntries(results []Result) []export.ManifestEntry {
	var out []export.ManifestEntry
	for _, r := range results {
		if !r.Success {
			continue
		}
		for _, tex := range r.Textures {
			out = append(out, export.ManifestEntry{
				Target:     r.Target,
				Material:   tex.Material,
				Kind:       r.Kind.String(),
				Image:      tex.Path,
				Size:       tex.Size,
				Coverage:   tex.Coverage.Fraction,
				Components: tex.Coverage.Components,
			})
		}
	}
	return out
}

// Failed returns the results that did not succeed.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}
