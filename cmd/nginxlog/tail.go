package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nginxlog/internal/follow"
	"nginxlog/internal/model"
	"nginxlog/internal/view"
)

func newTailCmd(a *app) *cobra.Command {
	var (
		fromStart    bool
		onlyFailures bool
		poll         time.Duration
		wrap         int
		forceColor   bool
		forceNoColor bool
	)

	cmd := &cobra.Command{
		Use:   "tail <path>",
		Short: "Follow a growing log and render lines as they are appended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}

			out := cmd.OutOrStdout()
			outFile, _ := out.(*os.File)
			r := view.NewRenderer(view.Options{
				Wrap:         wrap,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor,
				Out:          out,
				OutFile:      outFile,
			})

			opts := follow.Options{
				FromStart:    fromStart,
				PollInterval: poll,
				Logger:       a.log,
			}
			return follow.Outcomes(cmd.Context(), args[0], a.parser, opts, func(o model.Outcome) error {
				if onlyFailures && o.OK() {
					return nil
				}
				return r.Write(out, o)
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&fromStart, "from-start", false, "render the existing content before following")
	flags.BoolVar(&onlyFailures, "only-failures", false, "show malformed lines only")
	flags.DurationVar(&poll, "poll", time.Second, "how often to check the file when no change event arrives")
	flags.IntVar(&wrap, "wrap", 0, "truncate lines at this width (default: terminal width)")
	flags.BoolVar(&forceColor, "color", false, "force colored output")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable colored output")

	return cmd
}
