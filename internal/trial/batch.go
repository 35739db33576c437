package trial

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/etmsim/internal/config"
)

// RunBatch executes every configuration concurrently and returns the
// results in input order. The first failing trial cancels the rest.
func RunBatch(ctx context.Context, cfgs []*config.Config, log *zap.Logger) ([]*Result, error) {
	results := make([]*Result, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, cfg := range cfgs {
		i, cfg := i, cfg // per-iteration copies; required under go <1.22 loop semantics
		g.Go(func() error {
			res, err := NewRunner(cfg, log).Run(ctx)
			if err != nil {
				return errors.Wrapf(err, "trial %q", cfg.Name)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
