package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/pluqqy/crux-terminal/internal/cli"
	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/search"
)

// ComponentItem is one row of components list
type ComponentItem struct {
	Address     string `json:"address" yaml:"address"`
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ComponentListResult is the output structure of components list
type ComponentListResult struct {
	Items []ComponentItem `json:"items" yaml:"items"`
	Count int             `json:"count" yaml:"count"`
}

var (
	sendMessage string
	listFilter  string
)

// NewComponentsCommand creates the components command
func NewComponentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "components",
		Aliases: []string{"component", "comp"},
		Short:   "List, inspect, load and message daemon components",
		Long: `Work with the components loaded in the connected daemon.

Examples:
  # List loaded components
  crux components list
  crux components list -o json

  # Show one component's inputs, outputs and parameters
  crux components get tcp://localhost:30021

  # Load a component from a path known to the daemon
  crux components load components/filter

  # Send a message (it must have a "name")
  crux components send tcp://localhost:30021 --message '{"name": "ping"}'`,
	}

	cmd.AddCommand(newComponentsListCommand())
	cmd.AddCommand(newComponentsGetCommand())
	cmd.AddCommand(newComponentsLoadCommand())
	cmd.AddCommand(newComponentsSendCommand())
	return cmd
}

func newComponentsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded components",
		Long: `List loaded components, optionally filtered by a query.

Query fields: name, author, content (substring match) and version, input,
output, param (exact match). Conditions combine with AND, OR and NOT; bare
words search names and descriptions.

Examples:
  crux components list --filter 'author:crux NOT name:dumper'
  crux components list --filter 'input:rows OR output:rows'`,
		Args: cobra.NoArgs,
		RunE: runComponentsList,
	}

	cmd.Flags().StringVar(&listFilter, "filter", "", "Only list components matching this query")
	return cmd
}

func runComponentsList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	ctx, s, err := openSession()
	if err != nil {
		return err
	}
	defer ctx.Close()

	if _, err := s.GetComponents(cmd.Context()); err != nil {
		return fmt.Errorf("failed to list components: %w", err)
	}

	reg := s.Registry()
	addrs, err := search.Filter(reg.Components(), listFilter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	result := ComponentListResult{Items: []ComponentItem{}}
	for _, addr := range addrs {
		desc, _ := reg.Lookup(addr)
		result.Items = append(result.Items, ComponentItem{
			Address:     addr,
			Name:        desc.Name,
			Version:     desc.Version,
			Author:      desc.Author,
			Description: desc.Description,
		})
	}
	result.Count = len(result.Items)

	if format == "json" || format == "yaml" {
		return cli.OutputResults(cmd.OutOrStdout(), format, result)
	}

	if result.Count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No components loaded")
		return nil
	}

	table := cli.NewTableFormatter(cmd.OutOrStdout())
	table.Header("ADDRESS", "NAME", "VERSION", "AUTHOR", "DESCRIPTION")
	for _, item := range result.Items {
		table.Row(item.Address, item.Name, item.Version, item.Author, cli.TruncateString(item.Description, 40))
	}
	table.Flush()
	return nil
}

func newComponentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <address>",
		Short: "Show a component descriptor",
		Args:  cobra.ExactArgs(1),
		RunE:  runComponentsGet,
	}
}

func runComponentsGet(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	ctx, s, err := openSession()
	if err != nil {
		return err
	}
	defer ctx.Close()

	desc, err := s.GetComponent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get component %s: %w", args[0], err)
	}

	if format == "json" || format == "yaml" {
		return cli.OutputResults(cmd.OutOrStdout(), format, desc)
	}

	writeDescriptor(cmd, desc)
	return nil
}

func writeDescriptor(cmd *cobra.Command, desc models.Descriptor) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", desc.Name, desc.Version)
	if desc.Author != "" {
		fmt.Fprintf(w, "Author: %s\n", desc.Author)
	}
	if desc.Description != "" {
		fmt.Fprintf(w, "%s\n", desc.Description)
	}

	writeFields := func(title string, fields map[string]models.Field) {
		fmt.Fprintf(w, "\n%s:\n", title)
		if len(fields) == 0 {
			fmt.Fprintln(w, "  (none)")
			return
		}
		for _, name := range sortedKeys(fields) {
			fmt.Fprintf(w, "  %s (%s)\n", name, fields[name].Type)
		}
	}
	writeFields("Inputs", desc.Inputs)
	writeFields("Outputs", desc.Outputs)

	fmt.Fprintln(w, "\nParameters:")
	if len(desc.Parameters) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, key := range sortedKeys(desc.Parameters) {
		param := desc.Parameters[key]
		line := fmt.Sprintf("  %s (%s)", key, param.Type)
		if param.HasDefault() {
			line += " default " + cli.FormatValue(param.Default)
		}
		if len(param.Options) > 0 {
			line += " [" + strings.Join(param.Options, ", ") + "]"
		}
		fmt.Fprintln(w, line)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newComponentsLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <path>",
		Short: "Load a component into the daemon",
		Args:  cobra.ExactArgs(1),
		RunE:  runComponentsLoad,
	}
}

func runComponentsLoad(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession()
	if err != nil {
		return err
	}
	defer ctx.Close()

	addr, err := s.LoadComponent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load component %s: %w", args[0], err)
	}

	if cli.Quiet() {
		fmt.Fprintln(cmd.OutOrStdout(), addr)
		return nil
	}
	cli.PrintSuccess(cmd.OutOrStdout(), "Loaded %s at %s", args[0], addr)
	return nil
}

func newComponentsSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <address>",
		Short: "Send a message to a component",
		Long: `Send a JSON message to a component and print its response.

The message must be an object with a "name" field. Comments and trailing
commas are allowed.`,
		Args: cobra.ExactArgs(1),
		RunE: runComponentsSend,
	}

	cmd.Flags().StringVarP(&sendMessage, "message", "m", "", "Message as a JSON object (required)")
	cmd.MarkFlagRequired("message")
	return cmd
}

func runComponentsSend(cmd *cobra.Command, args []string) error {
	var message map[string]any
	if err := json.Unmarshal(jsonc.ToJSON([]byte(sendMessage)), &message); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	if message == nil {
		return fmt.Errorf("invalid message: expected a JSON object")
	}

	ctx, s, err := openSession()
	if err != nil {
		return err
	}
	defer ctx.Close()

	resp, err := s.SendToComponent(cmd.Context(), args[0], message)
	if err != nil {
		return fmt.Errorf("failed to send to %s: %w", args[0], err)
	}

	format, _ := cmd.Flags().GetString("output")
	if format == "" || format == "text" {
		format = "json"
	}
	return cli.OutputResults(cmd.OutOrStdout(), format, resp)
}
