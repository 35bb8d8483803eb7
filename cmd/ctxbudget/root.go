package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/ctxbudget/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ctxbudget",
		Short: "Fit prioritized prompt sections into a token budget",
		Long: "ctxbudget assembles labeled, prioritized prompt sections into one context,\n" +
			"trimming the least important sections first when the total exceeds the ceiling.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newEstimateCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newWatchCmd(opts))

	return rootCmd
}

func (o *rootOptions) loadConfig() (*config.File, error) {
	return config.Load(o.configPath)
}

// readInput reads the named file, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func stringVars(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
