package build

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/basicc-lang/basicc/internal/vfs"
)

const defaultDebounce = 100 * time.Millisecond

// Watch builds inputs once, then rebuilds whichever of them w reports as
// written or created, until ctx is done or w is closed. Every result is
// passed to report. Watch returns nil on cancellation.
func (b *Builder) Watch(ctx context.Context, w vfs.Watcher, inputs []string, report func(Result)) error {
	log := b.logger()

	if err := b.checkOutputs(inputs); err != nil {
		return err
	}
	watched := make(map[string]string, len(inputs))
	for _, in := range inputs {
		watched[filepath.Clean(in)] = in
	}
	if err := vfs.WatchFiles(w, inputs); err != nil {
		return err
	}

	if err := b.rebuild(ctx, inputs, report); err != nil {
		return stopErr(ctx, err)
	}

	delay := b.Debounce
	if delay <= 0 {
		delay = defaultDebounce
	}
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]struct{})
	errs := w.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			in, ok := watched[filepath.Clean(ev.Path)]
			if !ok || !ev.Op.Has(vfs.OpWrite|vfs.OpCreate) {
				continue
			}
			log.Debug("%s: %s", ev.Op, in)
			pending[in] = struct{}{}
			timer.Reset(delay)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn("watch: %v", err)

		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for in := range pending {
				batch = append(batch, in)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})
			if err := b.rebuild(ctx, batch, report); err != nil {
				return stopErr(ctx, err)
			}
		}
	}
}

// stopErr hides err when it only reflects cancellation of ctx.
func stopErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (b *Builder) rebuild(ctx context.Context, inputs []string, report func(Result)) error {
	results, stats, err := b.Build(ctx, inputs)
	if err != nil {
		return err
	}
	for _, r := range results {
		report(r)
	}
	b.logger().Info("built %d file(s): %d ok, %d failed, %d cached", stats.Total, stats.Succeeded, stats.Failed, stats.Cached)
	return nil
}
