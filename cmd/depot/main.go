package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/depot/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┬┐┌─┐┌─┐┌─┐┌┬┐
   ││├┤ ├─┘│ │ │
  ─┴┘└─┘┴  └─┘ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "depot",
		Short: "Reactive store engine tooling",
		Long: `depot runs and inspects reactive stores declared in YAML.

Features include:

  • Stores declared with state, getters and actions
  • Snapshot persistence (file, SQLite, S3)
  • Live inspector with a websocket event stream
  • Prometheus metrics and OpenTelemetry traces`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to depot.json or its directory (default: nearest depot.json)")

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(&configPath),
		snapshotCmd(&configPath),
		validateCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the depot ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
