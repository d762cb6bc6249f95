package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"nginxlog/internal/driver"
	"nginxlog/internal/format"
	"nginxlog/internal/store"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		formatFlag      string
		noHeader        bool
		recursive       bool
		failOnMalformed bool
		limit           int
	)

	cmd := &cobra.Command{
		Use:   "check <path|dir|glob|->...",
		Short: "Count parsed and malformed lines per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := discover(a, args, store.DiscoverOptions{Recursive: recursive, Limit: limit})
			if err != nil {
				return err
			}

			results, readErr := driver.ParseFiles(cmd.Context(), found.Paths, a.driverOptions(cmd))
			a.logResults(results)
			readErr = multierr.Append(found.Err(), readErr)

			summaries := make([]driver.Summary, 0, len(results))
			for _, res := range results {
				summaries = append(summaries, res.Summary())
			}

			formatMode := strings.ToLower(formatFlag)
			out := cmd.OutOrStdout()
			if err := format.WriteSummaries(out, summaries, !noHeader, formatMode); err != nil {
				return err
			}

			total := format.Total(summaries)
			if formatMode == format.Table || formatMode == format.Plain {
				if _, err := fmt.Fprintln(out, total.String()); err != nil {
					return err
				}
			}

			if failOnMalformed && total.Failed > 0 {
				readErr = multierr.Append(readErr, fmt.Errorf("%w: %s", errMalformed, total))
			}
			return readErr
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", format.Table, "output format: table, plain, json, jsonl or yaml")
	flags.BoolVar(&noHeader, "no-header", false, "omit header rows")
	flags.BoolVar(&recursive, "recursive", false, "descend into subdirectories of directory arguments")
	flags.IntVar(&limit, "limit", 0, "maximum number of files to check (0 for all)")
	flags.BoolVar(&failOnMalformed, "fail-on-malformed", false, "exit with an error when any line is malformed")

	return cmd
}
