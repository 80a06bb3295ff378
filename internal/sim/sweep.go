package sim

import (
	"context"
	"log/slog"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Sweep runs one independent simulation per configuration, at most limit
// at a time (limit <= 0 means no limit). Results come back in the order of
// cfgs. The first failure cancels the runs that have not finished.
func Sweep(ctx context.Context, cfgs []*config.Config, limit int, log *slog.Logger) ([]*Result, error) {
	results := make([]*Result, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			s := New(cfg.Clone(), log)
			for _, m := range metrics.Standard() {
				s.AddMetric(m)
			}
			res, err := s.Run(ctx)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
