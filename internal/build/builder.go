// Package build compiles many source files concurrently and keeps their
// C output up to date in watch mode.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/basicc-lang/basicc/internal/cli"
	"github.com/basicc-lang/basicc/internal/codegen"
	"github.com/basicc-lang/basicc/internal/vfs"
)

// OutputExt is appended to the input name, minus its extension.
const OutputExt = ".c"

// Result captures the outcome for one input file.
type Result struct {
	Input  string
	Output string // path of the written C file
	Source []byte // input contents, for rendering diagnostics
	Err    error
	Cached bool
	Took   time.Duration
}

// Stats holds simple execution statistics.
type Stats struct {
	Total       int64
	Succeeded   int64
	Failed      int64
	Cached      int64
	MaxParallel int64
}

// Builder compiles files through the pipeline. The zero value is not
// usable; FS must be set.
type Builder struct {
	FS      vfs.FileSystem
	Workers int    // <=0 => NumCPU
	OutDir  string // empty => next to each input
	Cache   Cache  // optional
	Logger  *cli.Logger

	// Debounce delays watch rebuilds so bursts of events coalesce.
	Debounce time.Duration
}

func (b *Builder) logger() *cli.Logger {
	if b.Logger == nil {
		return cli.NewLogger(io.Discard, false, false)
	}
	return b.Logger
}

// OutputPath returns where the C file for input is written.
func (b *Builder) OutputPath(input string) string {
	name := strings.TrimSuffix(input, filepath.Ext(input)) + OutputExt
	if b.OutDir == "" {
		return name
	}
	return filepath.Join(b.OutDir, filepath.Base(name))
}

func (b *Builder) checkOutputs(inputs []string) error {
	owner := make(map[string]string, len(inputs))
	for _, in := range inputs {
		out := filepath.Clean(b.OutputPath(in))
		if out == filepath.Clean(in) {
			return fmt.Errorf("%s: output would overwrite the input", in)
		}
		if prev, ok := owner[out]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, in, out)
		}
		owner[out] = in
	}
	return nil
}

// Build compiles every input with at most Workers files in flight.
// Per-file failures are reported in the results, which follow input
// order; the returned error is reserved for invalid arguments and
// cancellation.
func (b *Builder) Build(ctx context.Context, inputs []string) ([]Result, Stats, error) {
	if b.FS == nil {
		return nil, Stats{}, errors.New("build: nil file system")
	}
	if err := b.checkOutputs(inputs); err != nil {
		return nil, Stats{}, err
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(inputs))
	var (
		stats   Stats
		running int64
		mu      sync.Mutex
	)
	stats.Total = int64(len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Input: input, Output: b.OutputPath(input), Err: err}
				return err
			}

			n := atomic.AddInt64(&running, 1)
			defer atomic.AddInt64(&running, -1)

			res := b.compileFile(input)
			results[i] = res

			mu.Lock()
			defer mu.Unlock()
			if n > stats.MaxParallel {
				stats.MaxParallel = n
			}
			switch {
			case res.Err != nil:
				stats.Failed++
			case res.Cached:
				stats.Cached++
				stats.Succeeded++
			default:
				stats.Succeeded++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, stats, err
	}
	return results, stats, nil
}

func (b *Builder) compileFile(input string) (res Result) {
	log := b.logger()
	start := time.Now()
	res = Result{Input: input, Output: b.OutputPath(input)}
	defer func() { res.Took = time.Since(start) }()

	src, err := vfs.ReadFile(b.FS, input)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", input, err)
		return res
	}
	res.Source = src

	key := KeyFor(src)
	var code string
	if b.Cache != nil {
		code, res.Cached = b.Cache.Get(key)
	}

	if res.Cached {
		log.Debug("%s: cache hit %s", input, key[:12])
	} else {
		opts := []codegen.Option{codegen.WithFilename(input)}
		if log.DebugMode {
			opts = append(opts, codegen.WithTracer(log))
		}
		out, err := codegen.Compile(string(src), opts...)
		if err != nil {
			res.Err = err
			return res
		}
		code = out.Output
	}

	if dir := filepath.Dir(res.Output); dir != "." {
		if err := b.FS.MkdirAll(dir, 0o755); err != nil {
			res.Err = err
			return res
		}
	}
	if err := vfs.WriteFile(b.FS, res.Output, []byte(code)); err != nil {
		res.Err = err
		return res
	}
	if b.Cache != nil && !res.Cached {
		b.Cache.Put(key, code)
	}

	log.Info("%s -> %s (%s)", input, res.Output, time.Since(start).Round(time.Microsecond))
	return res
}
