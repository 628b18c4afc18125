package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	tmerrors "github.com/matzehuels/topomap/pkg/errors"
	"github.com/matzehuels/topomap/pkg/layout"
	"github.com/matzehuels/topomap/pkg/observability"
	"github.com/matzehuels/topomap/pkg/pipeline"
)

// renderFlags holds the flags shared by the root and watch commands.
// Values start at the pipeline defaults so --help shows them.
type renderFlags struct {
	config    string
	input     string
	outputDir string
	mode      string
	spacing   float64
	step      float64
	rssiScale float64
	fallback  bool
	strict    bool
	width     int
	height    int
	noCache   bool
}

// register adds the render flags to cmd.
func (f *renderFlags) register(cmd *cobra.Command) {
	d := pipeline.DefaultOptions()
	fs := cmd.Flags()
	fs.StringVar(&f.config, "config", "", "config file (.toml, .yaml); defaults to the user config dir")
	fs.StringVarP(&f.input, "input", "i", d.Input, "discovery log (CSV)")
	fs.StringVarP(&f.outputDir, "output-dir", "o", d.OutputDir, "directory for the rendered figures")
	fs.StringVar(&f.mode, "mode", d.Mode, "tree row step: fixed, rssi")
	fs.Float64Var(&f.spacing, "spacing", d.Spacing, "horizontal distance between siblings")
	fs.Float64Var(&f.step, "step", d.Step, "vertical distance per tree level (fixed mode)")
	fs.Float64Var(&f.rssiScale, "rssi-scale", d.RSSIScale, "vertical distance per dBm of link RSSI (rssi mode)")
	fs.BoolVar(&f.fallback, "fallback", d.Fallback,
		"fill missing parents from the newest row per address; these extra edges can move nodes in the tree, use --fallback=false for a PARENT-role-only tree")
	fs.BoolVar(&f.strict, "strict", d.Strict, "fail on the first malformed row instead of skipping it")
	fs.IntVar(&f.width, "width", d.Width, "figure width in pixels")
	fs.IntVar(&f.height, "height", d.Height, "figure height in pixels")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the rendered panel cache")

	_ = cmd.RegisterFlagCompletionFunc("mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(layout.ModeFixed), string(layout.ModeRSSI)}, cobra.ShellCompDirectiveNoFileComp
	})
}

// options builds pipeline options from the sink argument, the config file
// and the flags. Explicit flags override the file, which overrides defaults.
func (f *renderFlags) options(cmd *cobra.Command, args []string) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()

	sink, err := parseSink(args[0])
	if err != nil {
		return opts, err
	}
	opts.Sink = sink

	path := f.config
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		cfg, err := loadConfig(path)
		if err != nil {
			return opts, err
		}
		cfg.apply(&opts)
		if cfg.NoCache != nil && !cmd.Flags().Changed("no-cache") {
			f.noCache = *cfg.NoCache
		}
		loggerFromContext(cmd.Context()).Debug("loaded config", "path", path)
	}

	fs := cmd.Flags()
	if fs.Changed("input") {
		opts.Input = f.input
	}
	if fs.Changed("output-dir") {
		opts.OutputDir = f.outputDir
	}
	if fs.Changed("mode") {
		opts.Mode = f.mode
	}
	if fs.Changed("spacing") {
		opts.Spacing = f.spacing
	}
	if fs.Changed("step") {
		opts.Step = f.step
	}
	if fs.Changed("rssi-scale") {
		opts.RSSIScale = f.rssiScale
	}
	if fs.Changed("fallback") {
		opts.Fallback = f.fallback
	}
	if fs.Changed("strict") {
		opts.Strict = f.strict
	}
	if fs.Changed("width") {
		opts.Width = f.width
	}
	if fs.Changed("height") {
		opts.Height = f.height
	}

	if _, err := layout.ParseMode(opts.Mode); err != nil {
		return opts, tmerrors.Wrap(tmerrors.ErrCodeInvalidInput, err, "--mode")
	}
	return opts, opts.Validate()
}

// parseSink parses the sink address argument.
func parseSink(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, tmerrors.Wrap(tmerrors.ErrCodeParse, err, "sink %q is not an integer address", arg)
	}
	if n <= 0 {
		return 0, tmerrors.New(tmerrors.ErrCodeInvalidInput, "sink must be a positive address, got %d", n)
	}
	return n, nil
}

// runOnce renders the map a single time behind a spinner and prints a summary.
func (c *CLI) runOnce(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = c.Logger
	c.Logger.Debug("options", "opts", opts.String())

	spinner := newSpinnerWithContext(ctx, "Loading "+opts.Input)
	prev := observability.Pipeline()
	observability.SetPipelineHooks(stageSpinner{PipelineHooks: prev, spinner: spinner})
	defer observability.SetPipelineHooks(prev)

	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		// main reports the error; the spinner line is just cleared.
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess(c.Out, fmt.Sprintf("Topology map for sink %d", opts.Sink))

	printSummary(c.Out, res)
	return nil
}

// stageSpinner forwards pipeline events and shows the running stage.
type stageSpinner struct {
	observability.PipelineHooks
	spinner *Spinner
}

func (s stageSpinner) OnStageStart(ctx context.Context, stage observability.Stage) {
	s.spinner.Update(stageMessage(stage))
	s.PipelineHooks.OnStageStart(ctx, stage)
}

func stageMessage(stage observability.Stage) string {
	switch stage {
	case observability.StageLoad:
		return "Loading discovery log"
	case observability.StageReduce:
		return "Selecting latest observations"
	case observability.StageAssemble:
		return "Assembling graphs"
	case observability.StageLayout:
		return "Laying out nodes"
	case observability.StageRender:
		return "Rendering panels"
	case observability.StageWrite:
		return "Writing figures"
	default:
		return string(stage)
	}
}
