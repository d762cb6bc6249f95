// Package main provides the nginxlog CLI for parsing and checking nginx
// access logs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nginxlog/internal/config"
	"nginxlog/internal/driver"
	"nginxlog/internal/logging"
	"nginxlog/internal/parser"
)

var version = "dev"

// errMalformed reports malformed lines when the caller asked to fail on them.
var errMalformed = errors.New("malformed lines found")

// app carries the settings resolved before a subcommand runs.
type app struct {
	cfgFile string
	cfg     config.Config
	log     *zap.Logger
	parser  *parser.Parser
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nginxlog: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "nginxlog",
		Short:         "Parse and validate nginx access logs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	def := config.Default()
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.nginxlog.yaml or ./.nginxlog.yaml)")
	flags.String("log-level", def.LogLevel, "diagnostic log level: debug, info, warn, error")
	flags.String("layout", def.Layout, "built-in layout name (combined, common) or an nginx log_format string")
	flags.Bool("strict-request", def.StrictRequest, "reject lines whose request was logged as \"-\"")
	flags.Int("workers", def.Workers, "parse files with this many goroutines (1 streams line by line)")

	cmd.AddCommand(newParseCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newViewCmd(a))
	cmd.AddCommand(newTailCmd(a))
	cmd.AddCommand(newLayoutCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	layout, err := parser.ResolveLayout(cfg.Layout)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.parser = parser.New(parser.WithLayout(layout), parser.WithStrictRequest(cfg.StrictRequest))

	if cfg.File != "" {
		log.Debug("loaded config", zap.String("file", cfg.File))
	}
	log.Debug("effective settings",
		zap.Int("workers", cfg.Workers),
		zap.String("layout", layout.Name),
		zap.Int("fields", layout.Len()),
		zap.Bool("strict_request", cfg.StrictRequest),
	)
	return nil
}

func (a *app) driverOptions(cmd *cobra.Command) driver.Options {
	return driver.Options{
		Parser:  a.parser,
		Workers: a.cfg.Workers,
		Stdin:   cmd.InOrStdin(),
	}
}

// logResults reports per-source counts and, at debug level, every failure.
func (a *app) logResults(results []*driver.Result) {
	for _, res := range results {
		s := res.Summary()
		a.log.Info("parsed source",
			zap.String("source", s.Source),
			zap.Int("total", s.Total),
			zap.Int("failed", s.Failed),
		)
		if !a.log.Core().Enabled(zap.DebugLevel) {
			continue
		}
		for _, f := range res.Failures() {
			a.log.Debug("malformed line",
				zap.String("source", s.Source),
				zap.Int("line", f.Line),
				zap.String("reason", string(f.Reason)),
				zap.String("detail", f.Detail),
			)
		}
	}
}
