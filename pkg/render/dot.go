// Package render turns a positioned family layout into Graphviz DOT and
// SVG. The layout's own coordinates drive positioning; Graphviz only draws.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/kintreehq/kintree/pkg/layout"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes rank numbers in node labels.
	Detailed bool
}

// ToDOT converts a positioned layout to Graphviz DOT. Person cards become
// boxes, couple units small filled circles. Positions are pinned from the
// layout (in points, y flipped to Graphviz's upward axis), so the rendered
// diagram matches the interactive one.
func ToDOT(l *layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := nodeAttrs(n, opts)
		// Graphviz pos pins want points with y growing upward.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.1f,%.1f!\"", n.X, l.Height-n.Y))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n layout.PositionedNode, opts Options) []string {
	if n.Kind == "couple" {
		return []string{
			`label=""`,
			"shape=circle",
			`style=filled`,
			`fillcolor=grey60`,
			fmt.Sprintf("width=%.2f", n.W/72),
		}
	}

	label := n.Label
	if label == "" {
		label = n.ID
	}
	if opts.Detailed {
		label += fmt.Sprintf("\ngeneration %d", n.Rank)
	}
	return []string{
		fmt.Sprintf("label=%q", label),
		"shape=box",
		`style="rounded,filled"`,
		"fillcolor=white",
		fmt.Sprintf("width=%.2f", n.W/72),
		fmt.Sprintf("height=%.2f", n.H/72),
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz. The neato engine is
// used so the pinned positions from [ToDOT] are honored.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the outer svg tag so the diagram scales cleanly
// in browsers regardless of Graphviz's default point sizing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
