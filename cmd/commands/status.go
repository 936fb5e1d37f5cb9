package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluqqy/crux-terminal/internal/cli"
)

// StatusResult is the output structure of status
type StatusResult struct {
	API        string   `json:"api" yaml:"api"`
	Daemon     string   `json:"daemon" yaml:"daemon"`
	Components int      `json:"components" yaml:"components"`
	Names      []string `json:"names" yaml:"names"`
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the connected daemon and loaded components",
		Long: `Fetch the connected daemon and the loaded components in one go.

Examples:
  crux status
  crux status -o yaml`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	ctx, s, err := openSession()
	if err != nil {
		return err
	}
	defer ctx.Close()

	if err := s.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reach %s: %w", ctx.Settings.API.URL, err)
	}

	result := StatusResult{
		API:        ctx.Settings.API.URL,
		Daemon:     s.DaemonAddress(),
		Components: s.Registry().Len(),
		Names:      s.Names(),
	}

	if format == "json" || format == "yaml" {
		return cli.OutputResults(cmd.OutOrStdout(), format, result)
	}

	w := cmd.OutOrStdout()
	daemon := result.Daemon
	if daemon == "" {
		daemon = "(not connected)"
	}
	fmt.Fprintf(w, "API:        %s\n", result.API)
	fmt.Fprintf(w, "Daemon:     %s\n", daemon)
	fmt.Fprintf(w, "Components: %d\n", result.Components)
	for _, name := range result.Names {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}
