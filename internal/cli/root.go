package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the kintree CLI and returns an error if any command fails.
//
// The root command wires the subcommands (serve, render, browse), configures
// logging based on the --verbose flag, and attaches the logger to the
// command context where loggerFromContext finds it.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "kintree",
		Short:        "Kintree models and visualizes family trees",
		Long:         `Kintree is a family-tree toolkit: a graph of persons and couples with a generational layout engine, served over a REST API, rendered to SVG, or browsed in the terminal.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("kintree %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newRenderCmd(&configPath))
	root.AddCommand(newBrowseCmd(&configPath))
	root.AddCommand(newExportCmd(&configPath))
	root.AddCommand(newImportCmd(&configPath))

	return root.ExecuteContext(ctx)
}
