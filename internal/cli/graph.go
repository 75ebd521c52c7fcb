package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	lairerrors "github.com/Kiiyya/lair/pkg/errors"
	"github.com/Kiiyya/lair/pkg/render"
)

type graphOpts struct {
	dir      string
	format   string
	output   string
	detailed bool
	noCache  bool
}

// graphCommand creates the graph command, which renders the resolved
// dependency graph as DOT, SVG, or PNG.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: render.FormatDOT}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the dependency graph",
		Long: `Resolve the package's dependency graph and render it.

DOT output goes to stdout unless --output is given; SVG and PNG default
to deps.svg / deps.png in the current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !render.ValidFormats[opts.format] {
				return lairerrors.New(lairerrors.ErrCodeUnsupported,
					"invalid format %q (must be one of: dot, svg, png)", opts.format)
			}

			runner := c.newRunner(opts.noCache)
			defer runner.Close()

			spin := startSpinner(cmd.Context(), "Resolving dependencies...")
			g, err := runner.Resolve(cmd.Context(), c.pipelineOptions(opts.dir))
			spin.stop()
			if err != nil {
				return err
			}

			d := g.DAG()
			dot := render.ToDOT(d, render.Options{Detailed: opts.detailed})

			var data []byte
			switch opts.format {
			case render.FormatSVG:
				data, err = render.SVG(cmd.Context(), dot)
			case render.FormatPNG:
				data, err = render.PNG(cmd.Context(), dot)
			default:
				data = []byte(dot)
			}
			if err != nil {
				return err
			}

			out := opts.output
			if out == "" {
				if opts.format == render.FormatDOT {
					fmt.Print(string(data))
					return nil
				}
				out = "deps." + opts.format
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			printSuccess("Rendered dependency graph")
			printFile(out)
			printDetail("%d packages · %d edges", d.NodeCount(), d.EdgeCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "package directory (default: current directory)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, or png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include version and revision in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the revision cache")

	return cmd
}
