package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pluqqy/crux-terminal/internal/cli"
	"github.com/pluqqy/crux-terminal/pkg/session"
)

// openSession builds the command context and a session against the
// configured API. Callers must Close the returned context.
func openSession() (*cli.CommandContext, *session.Session, error) {
	ctx, err := cli.NewCommandContext(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	s, err := ctx.NewSession()
	if err != nil {
		ctx.Close()
		return nil, nil, err
	}
	return ctx, s, nil
}

// outputFormat reads and validates the inherited --output flag
func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	if err := cli.ValidateOutputFormat(format); err != nil {
		return "", err
	}
	return format, nil
}
