package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// planCommand creates the plan command, which resolves the dependency
// graph and prints the ordered build steps without compiling anything.
func (c *CLI) planCommand() *cobra.Command {
	var dir string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the ordered build plan without compiling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := c.newRunner(noCache)
			defer runner.Close()

			spin := startSpinner(cmd.Context(), "Resolving dependencies...")
			p, g, err := runner.Plan(cmd.Context(), c.pipelineOptions(dir))
			spin.stop()
			if err != nil {
				return err
			}

			moduleCount := 0
			fmt.Println(StyleTitle.Render("Build plan for " + g.Root().Name()))
			for i, step := range p.Steps {
				moduleCount += len(step.Modules)
				line := fmt.Sprintf("%2d. %s", i+1, StyleHighlight.Render(step.Package.Name()))
				line += StyleDim.Render(pluralModules(len(step.Modules)))
				if len(step.DependsOn) > 0 {
					names := make([]string, len(step.DependsOn))
					for j, d := range step.DependsOn {
						names[j] = p.Steps[d].Package.Name()
					}
					line += StyleDim.Render(" " + iconArrow + " " + strings.Join(names, ", "))
				}
				fmt.Println(line)
			}
			printStats(g.Len(), moduleCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "C", "", "package directory (default: current directory)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the revision cache")

	return cmd
}
