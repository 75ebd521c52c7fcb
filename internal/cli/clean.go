package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cleanCommand creates the clean command, which removes the build
// directory (dependency checkouts and compiled artifacts). A missing
// build directory is not an error.
func (c *CLI) cleanCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the build directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := dir
			if root == "" {
				root = "."
			}
			buildDir := filepath.Join(root, "build")

			if _, err := os.Stat(buildDir); os.IsNotExist(err) {
				printInfo("Nothing to clean")
				return nil
			}
			if err := os.RemoveAll(buildDir); err != nil {
				return err
			}

			printSuccess("Removed build directory")
			printDetail("Directory: %s", buildDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "C", "", "package directory (default: current directory)")

	return cmd
}
