package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pluqqy/crux-terminal/internal/cli"
	"github.com/pluqqy/crux-terminal/pkg/files"
	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/pipeline"
)

// ApplyResult is the output structure of pipeline apply
type ApplyResult struct {
	Pipeline models.Pipeline `json:"pipeline" yaml:"pipeline"`
	Audit    *pipeline.Audit `json:"audit,omitempty" yaml:"audit,omitempty"`
	Chain    []string        `json:"chain,omitempty" yaml:"chain,omitempty"`
}

var (
	applyFrom   string
	applyChain  bool
	applyAudit  bool
	applySaveTo string
	saveTo      string
)

// NewPipelineCommand creates the pipeline command
func NewPipelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Build pipelines from operation scripts",
		Long: `Build a pipeline without the TUI by running an operation script.

A script is a YAML file with a list of operations applied in order:

  operations:
    - op: add_dependency
      name: filter
    - op: add_step
      name: filter
    - op: set_parameter
      index: 0
      key: threshold
      value: "0.7"

Step operations address a step by index. Leaving out the index of an
insert_step appends the step; for every other op it means step 0.

Scripts are looked up as given, then in .crux/scripts.

Examples:
  # Apply a script and print the resulting pipeline
  crux pipeline apply build.yaml

  # Start from an existing pipeline document and print JSON
  crux pipeline apply build.yaml --from pipeline.json -o json

  # Also report undeclared or unused dependencies and the chain order
  crux pipeline apply build.yaml --audit --chain`,
	}

	cmd.AddCommand(newPipelineApplyCommand())
	cmd.AddCommand(newPipelineSaveCommand())
	return cmd
}

func newPipelineApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <script>",
		Short: "Apply an operation script",
		Args:  cobra.ExactArgs(1),
		RunE:  runPipelineApply,
	}

	cmd.Flags().StringVar(&applyFrom, "from", "", "Pipeline document (JSON) to start from")
	cmd.Flags().BoolVar(&applyChain, "chain", false, "Print the dependency and step chain in order")
	cmd.Flags().BoolVar(&applyAudit, "audit", false, "Report undeclared and unused dependencies")
	cmd.Flags().StringVar(&applySaveTo, "save-to", "", "Write the saved pipeline document to this file")
	return cmd
}

func runPipelineApply(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	script, err := files.ReadScript(args[0])
	if err != nil {
		return err
	}

	ctx, s, err := openSession()
	if err != nil {
		return err
	}
	defer ctx.Close()

	// Steps can only be added for loaded components
	if _, err := s.GetComponents(cmd.Context()); err != nil {
		return fmt.Errorf("failed to list components: %w", err)
	}

	store := s.Pipeline()
	if applyFrom != "" {
		data, err := os.ReadFile(applyFrom)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", applyFrom, err)
		}
		if err := store.Load(data); err != nil {
			return err
		}
	}

	ctx.Logger.Info("applying script", "script", args[0], "operations", len(script.Operations))
	if err := store.Apply(*script); err != nil {
		return err
	}

	result := ApplyResult{Pipeline: store.Snapshot()}
	if applyAudit {
		audit := store.Audit()
		result.Audit = &audit
	}
	if applyChain {
		g, err := store.ChainGraph()
		if err != nil {
			return err
		}
		order, err := pipeline.ChainOrder(g)
		if err != nil {
			return fmt.Errorf("failed to order chain: %w", err)
		}
		result.Chain = order
	}

	if applySaveTo != "" {
		// Keep stdout a clean document when it carries json or yaml
		status := cmd.OutOrStdout()
		if format == "json" || format == "yaml" {
			status = cmd.ErrOrStderr()
		}
		if err := savePipeline(cmd, status, store, applySaveTo); err != nil {
			return err
		}
	}

	if format == "json" || format == "yaml" {
		return cli.OutputResults(cmd.OutOrStdout(), format, result)
	}

	w := cmd.OutOrStdout()
	cli.WritePipelineText(w, result.Pipeline)
	if result.Audit != nil {
		fmt.Fprintln(w, "\nAudit:")
		if result.Audit.Clean() {
			fmt.Fprintln(w, "  clean")
		}
		for _, name := range result.Audit.Undeclared {
			fmt.Fprintf(w, "  undeclared: %s\n", name)
		}
		for _, name := range result.Audit.Unused {
			fmt.Fprintf(w, "  unused: %s\n", name)
		}
	}
	if result.Chain != nil {
		fmt.Fprintln(w, "\nChain:")
		for _, v := range result.Chain {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}
	return nil
}

func newPipelineSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Print or write the saved pipeline document",
		Long: `Print the saved form of an empty pipeline, or write it to a file.

The saved format is not settled yet, so the document is a placeholder.`,
		Args: cobra.NoArgs,
		RunE: runPipelineSave,
	}

	cmd.Flags().StringVar(&saveTo, "save-to", "", "Write to this file instead of stdout")
	return cmd
}

func runPipelineSave(cmd *cobra.Command, args []string) error {
	store := pipeline.NewStore()
	if saveTo != "" {
		return savePipeline(cmd, cmd.OutOrStdout(), store, saveTo)
	}

	data, err := store.Save()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// savePipeline writes the saved pipeline to path and reports on status
func savePipeline(cmd *cobra.Command, status io.Writer, store *pipeline.Store, path string) error {
	if _, err := os.Stat(path); err == nil {
		ok, err := cli.Confirm(cmd.InOrStdin(), status, fmt.Sprintf("%s exists. Overwrite?", path), false)
		if err != nil {
			return err
		}
		if !ok {
			cli.PrintInfo(status, "Kept %s", path)
			return nil
		}
	}

	data, err := store.Save()
	if err != nil {
		return err
	}
	if err := files.WriteFile(path, data); err != nil {
		return err
	}
	cli.PrintSuccess(status, "Saved pipeline to %s", path)
	return nil
}
