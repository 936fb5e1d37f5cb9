package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluqqy/crux-terminal/internal/cli"
)

// NewDaemonCommand creates the daemon command
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Connect to or inspect the crux daemon",
		Long: `Manage the connection between the API server and the crux daemon.

Examples:
  # Connect to the daemon configured in .crux/settings.yaml
  crux daemon connect

  # Connect to a specific daemon
  crux daemon connect tcp://10.0.0.5:30020

  # Show the connected daemon
  crux daemon get`,
	}

	cmd.AddCommand(newDaemonConnectCommand())
	cmd.AddCommand(newDaemonGetCommand())
	return cmd
}

func newDaemonConnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect [address]",
		Short: "Connect the API server to a daemon",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDaemonConnect,
	}
}

func runDaemonConnect(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession()
	if err != nil {
		return err
	}
	defer ctx.Close()

	addr := ctx.Settings.Daemon.Address
	if len(args) == 1 {
		addr = args[0]
	}

	if err := s.ConnectDaemon(cmd.Context(), addr); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	cli.PrintSuccess(cmd.OutOrStdout(), "Connected to daemon %s", addr)
	return nil
}

func newDaemonGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the address of the connected daemon",
		Args:  cobra.NoArgs,
		RunE:  runDaemonGet,
	}
}

// DaemonResult is the output structure of daemon get
type DaemonResult struct {
	Address   string `json:"address" yaml:"address"`
	Connected bool   `json:"connected" yaml:"connected"`
}

func runDaemonGet(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	ctx, s, err := openSession()
	if err != nil {
		return err
	}
	defer ctx.Close()

	addr, err := s.GetDaemon(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get daemon: %w", err)
	}

	result := DaemonResult{Address: addr, Connected: addr != ""}
	if format == "json" || format == "yaml" {
		return cli.OutputResults(cmd.OutOrStdout(), format, result)
	}

	if !result.Connected {
		fmt.Fprintln(cmd.OutOrStdout(), "No daemon connected")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), addr)
	return nil
}
