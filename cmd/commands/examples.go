package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pluqqy/crux-terminal/internal/cli"
	"github.com/pluqqy/crux-terminal/pkg/examples"
	"github.com/pluqqy/crux-terminal/pkg/files"
)

// NewExamplesCommand creates the examples command
func NewExamplesCommand() *cobra.Command {
	var listOnly bool
	var force bool

	cmd := &cobra.Command{
		Use:   "examples [category]",
		Short: "Add example operation scripts to your project",
		Long: `Add example pipeline operation scripts to .crux/scripts.

Categories:
  basics  - Single component pipelines (default)
  etl     - Multi step chains with remapped fields
  all     - Install every category

The scripts use plain component names such as "loader" and "filter". Edit
them to match the components your daemon has loaded, then run them with
'crux pipeline apply'.`,
		Example: `  # Add the basic examples
  crux examples

  # List the ETL examples without installing
  crux examples etl --list

  # Overwrite previously installed examples
  crux examples all --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := "basics"
			if listOnly {
				category = "all"
			}
			if len(args) > 0 {
				category = args[0]
			}
			if !examples.ValidCategory(category) {
				return fmt.Errorf("invalid category '%s'. Valid categories: %s",
					category, strings.Join(examples.Categories, ", "))
			}

			if listOnly {
				listExamples(cmd, category)
				return nil
			}

			if _, err := os.Stat(files.CruxDir); os.IsNotExist(err) {
				return fmt.Errorf("no %s directory found. Run 'crux init' first", files.CruxDir)
			}
			return installExamples(cmd, category, force)
		},
	}

	cmd.Flags().BoolVarP(&listOnly, "list", "l", false, "List available examples without installing")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing example files")

	return cmd
}

func listExamples(cmd *cobra.Command, category string) {
	w := cmd.OutOrStdout()
	for _, set := range examples.GetExamples(category) {
		fmt.Fprintf(w, "[%s] %s\n", set.Category, set.Name)
		fmt.Fprintf(w, "   %s\n", set.Description)
		for _, ex := range set.Scripts {
			fmt.Fprintf(w, "   • %s (%s, %d operations)\n", ex.Filename, ex.Description, len(ex.Script.Operations))
		}
		fmt.Fprintln(w)
	}
}

func installExamples(cmd *cobra.Command, category string, force bool) error {
	installed, skipped := 0, 0

	for _, set := range examples.GetExamples(category) {
		for _, ex := range set.Scripts {
			ok, err := examples.InstallScript(ex, force)
			if err != nil {
				if !force && strings.Contains(err.Error(), "already exists") {
					skipped++
					cli.PrintWarning("Skipped %s (already exists, use --force to overwrite)", ex.Filename)
					continue
				}
				return fmt.Errorf("failed to install %s: %w", ex.Filename, err)
			}
			if ok {
				installed++
			}
		}
	}

	cli.PrintSuccess(cmd.OutOrStdout(), "Installed %d example script(s) into %s", installed, files.ScriptPath(""))
	if skipped > 0 {
		cli.PrintInfo(cmd.OutOrStdout(), "%d already present", skipped)
	}
	return nil
}
