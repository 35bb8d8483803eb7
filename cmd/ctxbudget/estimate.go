package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEstimateCmd(opts *rootOptions) *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "estimate [file|-]",
		Short: "Print the token count of a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("encoding") {
				f.Encoding = encoding
			}
			counter, err := f.Counter()
			if err != nil {
				return err
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), counter.Count(text))
			return err
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", "", "tiktoken encoding for an exact count (empty uses the estimate)")

	return cmd
}
