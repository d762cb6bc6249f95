package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"nginxlog/internal/driver"
	"nginxlog/internal/format"
	"nginxlog/internal/store"
)

// Where failed lines go for row formats.
const (
	failuresInline = "inline"
	failuresStderr = "stderr"
	failuresNone   = "none"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		failuresFlag string
		noHeader     bool
		recursive    bool
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "parse <path|dir|glob|->...",
		Short: "Parse access logs into structured records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatMode := strings.ToLower(a.cfg.Format)
			if !slices.Contains(format.Formats(), formatMode) {
				return fmt.Errorf("unsupported format: %s", a.cfg.Format)
			}
			switch failuresFlag {
			case failuresInline, failuresStderr, failuresNone:
			default:
				return fmt.Errorf("invalid --failures value %q (want inline, stderr or none)", failuresFlag)
			}

			found, err := discover(a, args, store.DiscoverOptions{Recursive: recursive, Limit: limit})
			if err != nil {
				return err
			}

			results, readErr := driver.ParseFiles(cmd.Context(), found.Paths, a.driverOptions(cmd))
			a.logResults(results)
			readErr = multierr.Append(found.Err(), readErr)

			out := cmd.OutOrStdout()
			for idx, res := range results {
				if formatMode == format.Batch {
					if err := format.WriteBatch(out, format.NewBatch(res.Source, res.Outcomes)); err != nil {
						return err
					}
					continue
				}

				outcomes := res.Outcomes
				if failuresFlag != failuresInline {
					outcomes = res.Records()
				}
				if failuresFlag == failuresStderr {
					if err := format.WriteFailures(cmd.ErrOrStderr(), res.Source, res.Failures()); err != nil {
						return err
					}
				}
				includeHeader := !noHeader && (idx == 0 || formatMode == format.Table)
				if err := format.WriteOutcomes(out, outcomes, includeHeader, formatMode); err != nil {
					return err
				}
			}
			return readErr
		},
	}

	flags := cmd.Flags()
	flags.String("format", format.Batch, "output format: "+strings.Join(format.Formats(), ", "))
	flags.StringVar(&failuresFlag, "failures", failuresInline, "where failed lines go for row formats: inline, stderr or none")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for table and plain output")
	flags.BoolVar(&recursive, "recursive", false, "descend into subdirectories of directory arguments")
	flags.IntVar(&limit, "limit", 0, "maximum number of files to parse (0 for all)")

	return cmd
}

// discover expands args into log paths, logging globs and directories that
// matched nothing. Paths that could not be opened stay in the result's Err so
// the remaining inputs are still parsed.
func discover(a *app, args []string, opts store.DiscoverOptions) (store.DiscoverResult, error) {
	res, err := store.DiscoverLogs(args, opts)
	for _, warn := range res.Warnings {
		a.log.Warn("skipping input", zap.Error(warn))
	}
	return res, err
}
