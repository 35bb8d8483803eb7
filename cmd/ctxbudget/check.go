package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errApproachingLimit makes the process exit 1 without an error message.
var errApproachingLimit = errors.New("approaching context limit")

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "check [file|-]",
		Short: "Exit 1 if the input is approaching the token ceiling",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.loadConfig()
			if err != nil {
				return err
			}
			alloc, err := f.NewAllocator(opts.logger)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = alloc.Config().ApproachingThreshold
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			ceiling := alloc.Config().Ceiling
			if alloc.ApproachingLimit(text, threshold) {
				fmt.Fprintf(cmd.OutOrStdout(), "approaching limit (threshold %.2f of %d tokens)\n", threshold, ceiling)
				return errApproachingLimit
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "within budget (threshold %.2f of %d tokens)\n", threshold, ceiling)
			return err
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "fraction of the ceiling to test against (default from config)")

	return cmd
}
