package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// forEach runs fn for every template concurrently. Siblings are not
// cancelled when one fails; how failures are reported depends on the
// engine's failure mode.
func (e *Engine) forEach(ctx context.Context, templates []string, fn func(template string) error) error {
	var (
		g     errgroup.Group
		multi MultiError
	)
	g.SetLimit(e.concurrency)

	for _, template := range templates {
		template := template
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			err := fn(template)
			if err == nil {
				return nil
			}

			switch e.failMode {
			case FailFast:
				return err
			case BestEffort:
				e.logger.Warn().Err(err).Str("template", template).Msg("template failed")
			default:
				multi.Add(template, "generation failed", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if multi.HasErrors() {
		sort.Slice(multi.Errors, func(i, j int) bool {
			return multi.Errors[i].Path < multi.Errors[j].Path
		})
		return &multi
	}
	return nil
}
