package main

import (
	"github.com/spf13/cobra"

	"nginxlog/internal/format"
	"nginxlog/internal/parser"
)

func newLayoutCmd(a *app) *cobra.Command {
	var (
		formatFlag string
		noHeader   bool
	)

	cmd := &cobra.Command{
		Use:   "layout [log_format]",
		Short: "Show how an nginx log_format maps to parsed fields",
		Long: `Show the positional fields of an nginx log_format string, or of the
configured layout when no argument is given. Variables the parser does not
know, and literal text, are listed as ignored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout := a.parser.Layout()
			if len(args) == 1 {
				var err error
				layout, err = parser.ResolveLayout(args[0])
				if err != nil {
					return err
				}
			}
			return format.WriteLayout(cmd.OutOrStdout(), layout, !noHeader, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", format.Table, "output format: table, plain, json or yaml")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row")

	return cmd
}
