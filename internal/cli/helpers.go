package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Global flags, set from the root command before any subcommand runs
var (
	quiet       bool
	noColor     bool
	skipConfirm bool
	apiURL      string
)

// SetGlobalFlags sets the global flag values from the cmd package
func SetGlobalFlags(q, nc, sc bool) {
	quiet = q
	noColor = nc
	skipConfirm = sc
}

// SetAPIOverride makes every command talk to url instead of the configured API
func SetAPIOverride(url string) {
	apiURL = url
}

// Quiet reports whether quiet mode is enabled
func Quiet() bool {
	return quiet
}

// Confirm asks a yes/no question on out and reads the answer from in. With
// -y in effect it answers yes without asking.
func Confirm(in io.Reader, out io.Writer, prompt string, defaultYes bool) (bool, error) {
	if skipConfirm {
		return true, nil
	}

	choices := "[y/N]"
	if defaultYes {
		choices = "[Y/n]"
	}
	fmt.Fprintf(out, "%s %s: ", prompt, choices)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// PrintSuccess reports a completed action on w unless quiet mode is enabled
func PrintSuccess(w io.Writer, format string, args ...any) {
	if !quiet {
		printStatus(w, "✓", "OK", format, args...)
	}
}

// PrintInfo writes an informational line on w unless quiet mode is enabled
func PrintInfo(w io.Writer, format string, args ...any) {
	if !quiet {
		printStatus(w, "ℹ", "INFO", format, args...)
	}
}

// PrintWarning writes a warning to stderr, even in quiet mode
func PrintWarning(format string, args ...any) {
	printStatus(os.Stderr, "⚠", "WARNING", format, args...)
}

// PrintError writes an error to stderr, even in quiet mode
func PrintError(format string, args ...any) {
	printStatus(os.Stderr, "✗", "ERROR", format, args...)
}

// printStatus prefixes the message with symbol, or with label when colors
// and symbols are turned off.
func printStatus(w io.Writer, symbol, label, format string, args ...any) {
	prefix := symbol
	if noColor {
		prefix = label + ":"
	}
	fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
