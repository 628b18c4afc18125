package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	tmerrors "github.com/matzehuels/topomap/pkg/errors"
	"github.com/matzehuels/topomap/pkg/pipeline"
	"github.com/matzehuels/topomap/pkg/watch"
)

// watchCommand creates the watch command, which renders once and then
// again every time the discovery log changes.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags    renderFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <sink>",
		Short: "Re-render the map whenever the discovery log changes",
		Long: `Watch renders the topology map once, then keeps watching the discovery
log and renders again after every change. Bursts of writes are collapsed
into a single render once the file has been quiet for the debounce period.

A failed run is reported and watching continues. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args)
			if err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), opts, flags.noCache, debounce)
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period after the last change before rendering")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, opts pipeline.Options, noCache bool, debounce time.Duration) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.Logger = c.Logger

	render := func(ctx context.Context) error {
		p := newProgress(c.Logger)
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			return err
		}
		p.done("Rendered topology map",
			"nodes", res.Stats.TreeNodes,
			"links", res.Stats.AdjacencyEdges,
			"path", res.Paths[len(res.Paths)-1])
		return nil
	}

	w, err := watch.New(opts.Input, render, watch.Options{Debounce: debounce, Logger: c.Logger})
	if err != nil {
		return tmerrors.Wrap(tmerrors.ErrCodeIO, err, "watch %s", opts.Input)
	}
	defer w.Close()

	if err := render(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.Logger.Error("initial run failed", "err", tmerrors.UserMessage(err))
	}

	printInfo(c.Out, "Watching %s", w.Path())
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
