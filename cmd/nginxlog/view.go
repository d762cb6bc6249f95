package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"nginxlog/internal/view"
)

func newViewCmd(a *app) *cobra.Command {
	var (
		onlyFailures bool
		maxLines     int
		wrap         int
		forceColor   bool
		forceNoColor bool
	)

	cmd := &cobra.Command{
		Use:   "view <path|->",
		Short: "Render a log with one colored line per entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}

			out := cmd.OutOrStdout()
			outFile, _ := out.(*os.File)
			return view.Run(view.Options{
				Path:         args[0],
				Parser:       a.parser,
				Stdin:        cmd.InOrStdin(),
				Wrap:         wrap,
				MaxLines:     maxLines,
				OnlyFailures: onlyFailures,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor,
				Out:          out,
				OutFile:      outFile,
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&onlyFailures, "only-failures", false, "show malformed lines only")
	flags.IntVar(&maxLines, "max", 0, "show only the last N lines (0 means all)")
	flags.IntVar(&wrap, "wrap", 0, "truncate lines at this width (default: terminal width)")
	flags.BoolVar(&forceColor, "color", false, "force colored output")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable colored output")

	return cmd
}
