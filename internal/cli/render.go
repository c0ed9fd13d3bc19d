package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/cache"
	"github.com/kintreehq/kintree/pkg/config"
	"github.com/kintreehq/kintree/pkg/errors"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/render"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // output format: "svg" or "dot"
	detailed bool   // include generation numbers in node labels
}

// newRenderCmd creates the render command, which lays out the tree held in
// the configured store and writes it as an SVG (or Graphviz DOT) file.
func newRenderCmd(configPath *string) *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the family tree to SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatSVG && opts.format != formatDOT {
				return errors.New(errors.ErrCodeValidation, "unknown format %q (expected svg or dot)", opts.format)
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default tree.svg / tree.dot)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include generation numbers in labels")

	return cmd
}

func runRender(ctx context.Context, cfg config.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	st, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background()) //nolint:errcheck

	c := openCache(ctx, cfg.Cache, logger)
	defer c.Close() //nolint:errcheck

	fam := family.NewService(st, logger)
	engine := layout.NewEngine(cfg.Layout, logger)

	p := newProgress(logger)
	graph, err := fam.Tree(ctx)
	if err != nil {
		return err
	}
	p.done("loaded tree")

	p = newProgress(logger)
	l, err := engine.Layout(graph)
	if err != nil {
		return err
	}
	p.done("computed layout")

	out := opts.output
	if out == "" {
		out = "tree." + opts.format
	}

	dot := render.ToDOT(l, render.Options{Detailed: opts.detailed})
	if opts.format == formatDOT {
		if err := os.WriteFile(out, []byte(dot), 0o644); err != nil {
			return err
		}
		printSuccess("wrote DOT graph")
		printFile(out)
		printStats(len(graph.Persons), len(graph.Couples), false)
		return nil
	}

	p = newProgress(logger)
	svg, cached, err := renderSVGCached(ctx, c, cfg.Cache.TTLSecs, graph, opts.detailed, dot)
	if err != nil {
		return err
	}
	p.done("rendered SVG")

	if err := os.WriteFile(out, svg, 0o644); err != nil {
		return err
	}
	printSuccess("wrote family tree")
	printFile(out)
	printStats(len(graph.Persons), len(graph.Couples), cached)
	printNextStep("serve the tree", "kintree serve")
	return nil
}

// renderSVGCached renders the DOT graph through Graphviz, keyed in the cache
// on the graph content so unchanged trees skip the Graphviz pass.
func renderSVGCached(ctx context.Context, c cache.Cache, ttlSecs int, graph *family.Graph, detailed bool, dot string) ([]byte, bool, error) {
	raw, err := json.Marshal(graph)
	if err != nil {
		return nil, false, err
	}
	key := cache.Key("kintree:render", cache.Hash(raw), fmt.Sprintf("detailed=%t", detailed))

	if svg, ok, err := c.Get(ctx, key); err == nil && ok {
		return svg, true, nil
	}

	svg, err := render.RenderSVG(dot)
	if err != nil {
		return nil, false, err
	}
	ttl := time.Duration(ttlSecs) * time.Second
	if err := c.Set(ctx, key, svg, ttl); err != nil {
		loggerFromContext(ctx).Warn("cache write failed", "err", err)
	}
	return svg, false, nil
}
