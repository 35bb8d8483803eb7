package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/ctxbudget/manifest"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var (
		manifestPath string
		ceiling      int
		report       bool
		vars         map[string]string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble a manifest into a budgeted context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ceiling") {
				f.Ceiling = ceiling
				if err := f.Validate(); err != nil {
					return err
				}
			}
			alloc, err := f.NewAllocator(opts.logger)
			if err != nil {
				return err
			}

			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}
			sections, err := m.BudgetSections(nil, stringVars(vars))
			if err != nil {
				return err
			}

			res, err := alloc.Allocate(sections)
			if err != nil {
				return err
			}

			if report {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text())
			return err
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "prompt manifest (yaml, json or toml)")
	cmd.Flags().IntVar(&ceiling, "ceiling", 0, "override the configured token ceiling")
	cmd.Flags().BoolVar(&report, "report", false, "print a JSON report of every section instead of the text")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "template variable override (key=value, repeatable)")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
