// Package cli implements the tempo command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/phanxgames/tempo"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Config  string
}

// NewRootCommand creates the root command for the tempo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "tempo",
		Short:         "tempo - tweens and timelines",
		Long:          "Run tempo scenario scripts and inspect the built-in eases.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			cmd.SetContext(withLogger(cmd.Context(), tempo.NewLogger(cmd.ErrOrStderr(), level)))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "engine config file (.yaml or .toml)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewEasesCommand())
	cmd.AddCommand(NewEaseCommand())

	return cmd
}
