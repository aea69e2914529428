package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/tempo"
)

// NewEasesCommand creates the eases command.
func NewEasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eases",
		Short: "List the built-in ease names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := tempo.NewEaseRegistry(loggerFromContext(cmd.Context()))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(reg.Names(), "\n"))
			return err
		},
	}
}

// EaseOptions holds flags for the ease command.
type EaseOptions struct {
	Samples int
	Plot    bool
}

// NewEaseCommand creates the ease command.
func NewEaseCommand() *cobra.Command {
	opts := &EaseOptions{}

	cmd := &cobra.Command{
		Use:   "ease <name>",
		Short: "Sample an ease curve",
		Long: `Sample an ease curve at evenly spaced points in [0,1].

Names include parametric forms such as "steps(4)",
"cubicBezier(0.25,0.1,0.25,1)" and "spring(6,0.5)".`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEase(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.Samples, "samples", "n", 10, "number of intervals to sample")
	cmd.Flags().BoolVar(&opts.Plot, "plot", false, "draw a bar for each sample")

	return cmd
}

const plotWidth = 40

func runEase(cmd *cobra.Command, opts *EaseOptions, name string) error {
	if opts.Samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", opts.Samples)
	}
	reg := tempo.NewEaseRegistry(loggerFromContext(cmd.Context()))
	fn, ok := reg.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown ease %q", name)
	}

	w := cmd.OutOrStdout()
	for i := 0; i <= opts.Samples; i++ {
		p := float64(i) / float64(opts.Samples)
		v := fn(p)
		line := fmt.Sprintf("%.2f\t%.4f", p, v)
		if opts.Plot {
			n := int(v*plotWidth + 0.5)
			line += "\t" + strings.Repeat("#", max(0, n))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
