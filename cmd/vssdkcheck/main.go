// Command vssdkcheck analyzes Visual Studio extension sources.
//
// Exit status is 0 when no diagnostic reaches the failure threshold, 1 when
// one does and 2 when the run itself failed.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mpyw/vssdkanalyzers"
	"github.com/mpyw/vssdkanalyzers/internal/config"
)

// errFindings signals diagnostics at or above the failure threshold.
var errFindings = errors.New("diagnostics reported")

var rootCmd = &cobra.Command{
	Use:           "vssdkcheck",
	Short:         "Checks Visual Studio extensions for SDK usage problems",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.Version = vssdkanalyzers.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)

	rootCmd.PersistentFlags().String("config", "", "configuration file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (CONSOLE|JSON)")

	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errFindings):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "vssdkcheck:", err)
		os.Exit(2)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves a color mode for f. NO_COLOR disables auto mode.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case config.ColorOn:
		return true
	case config.ColorOff:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	return isTerminal(f)
}
