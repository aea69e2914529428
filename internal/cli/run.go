package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/tempo"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a scenario script",
		Long: `Run a YAML or JSON scenario script against a fresh engine.

The script builds a timeline, advances the clock frame by frame and prints
property samples to stdout. Expectation failures make the command fail.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runScript(cmd *cobra.Command, opts *RootOptions, path string) error {
	logger := loggerFromContext(cmd.Context())

	cfg := tempo.DefaultConfig()
	if opts.Config != "" {
		loaded, err := tempo.LoadConfig(opts.Config)
		if err != nil {
			return err
		}
		cfg = loaded
		if !opts.Verbose {
			if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
				logger.SetLevel(lvl)
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	script, err := tempo.LoadScript(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("script loaded", "name", script.Name, "steps", len(script.Steps), "dt", script.DT)

	start := time.Now()
	eng := tempo.New(tempo.WithConfig(cfg), tempo.WithLogger(logger))
	if err := script.Run(eng, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("script done", "name", script.Name, "frames", eng.Ticker().Frame(), "elapsed", time.Since(start))
	return nil
}
