package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pluqqy/crux-terminal/cmd/commands"
	"github.com/pluqqy/crux-terminal/internal/cli"
	"github.com/pluqqy/crux-terminal/pkg/files"
	"github.com/pluqqy/crux-terminal/pkg/tui"
)

// Version is set during build with -ldflags
var version = "dev"

// Global flags
var (
	quietFlag       bool
	noColorFlag     bool
	skipConfirmFlag bool
	apiFlag         string
	outputFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "crux",
	Short: "Terminal dashboard for the crux component daemon",
	Long: `crux talks to the crux dashboard API: it connects the API server to a
daemon, loads and inspects components, and builds pipelines out of them.

Run without arguments to start the interactive TUI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.SetGlobalFlags(quietFlag, noColorFlag, skipConfirmFlag)
		cli.SetAPIOverride(apiFlag)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.NewCommandContext(nil)
		if err != nil {
			return err
		}
		defer ctx.Close()

		s, err := ctx.NewSession()
		if err != nil {
			return err
		}

		app := tui.NewApp(s, ctx.Settings)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("failed to start the terminal user interface: %w", err)
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a crux project",
	Long:  `Creates the .crux folder with default settings in the current directory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine current directory: %w", err)
		}

		cli.PrintInfo(cmd.OutOrStdout(), "Initializing crux project in %s...", cwd)
		if err := files.InitProjectStructure(); err != nil {
			return fmt.Errorf("failed to initialize project structure: %w", err)
		}

		cli.PrintSuccess(cmd.OutOrStdout(), "Created %s", files.CruxDir)
		cli.PrintInfo(cmd.OutOrStdout(), "Edit %s to point crux at your API server.", files.SettingsPath())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of crux",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "crux version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&skipConfirmFlag, "yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "API base URL (overrides settings)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(commands.NewDaemonCommand())
	rootCmd.AddCommand(commands.NewComponentsCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewPipelineCommand())
	rootCmd.AddCommand(commands.NewExamplesCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		cli.PrintError("%v", err)
		os.Exit(1)
	}
}
