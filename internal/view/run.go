// Package view renders parse outcomes for a terminal, one colored line per
// log line.
package view

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"nginxlog/internal/driver"
	"nginxlog/internal/model"
	"nginxlog/internal/parser"
)

// Options defines the configurable parameters for rendering a view.
type Options struct {
	Path   string
	Parser *parser.Parser
	Stdin  io.Reader
	// Wrap overrides the terminal width when positive.
	Wrap int
	// MaxLines shows only the last MaxLines matching outcomes when positive.
	MaxLines     int
	OnlyFailures bool
	ForceColor   bool
	ForceNoColor bool
	Out          io.Writer
	OutFile      *os.File
}

// Run renders the log at opts.Path followed by a summary line.
func Run(opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	p := opts.Parser
	if p == nil {
		p = parser.New()
	}

	rc, err := driver.Open(opts.Path, opts.Stdin)
	if err != nil {
		return err
	}
	defer rc.Close() //nolint:errcheck

	r := NewRenderer(opts)
	var (
		total, failed int
		ring          = newOutcomeRing(opts.MaxLines)
	)

	err = driver.Iterate(rc, p, func(o model.Outcome) error {
		total++
		if !o.OK() {
			failed++
		}
		if opts.OnlyFailures && o.OK() {
			return nil
		}
		if opts.MaxLines > 0 {
			ring.push(o)
			return nil
		}
		return r.Write(opts.Out, o)
	})
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.Path, err)
	}

	for _, o := range ring.slice() {
		if err := r.Write(opts.Out, o); err != nil {
			return err
		}
	}

	summary := driver.Summary{Source: opts.Path, Total: total, Parsed: total - failed, Failed: failed}
	_, err = fmt.Fprintln(opts.Out, colorize(r.Color, ansiDim, summary.String()))
	return err
}

type outcomeRing struct {
	data   []model.Outcome
	start  int
	length int
}

func newOutcomeRing(capacity int) *outcomeRing {
	if capacity <= 0 {
		return &outcomeRing{}
	}
	return &outcomeRing{data: make([]model.Outcome, capacity)}
}

func (r *outcomeRing) push(o model.Outcome) {
	if len(r.data) == 0 {
		return
	}
	idx := (r.start + r.length) % len(r.data)
	r.data[idx] = o
	if r.length < len(r.data) {
		r.length++
		return
	}
	r.start = (r.start + 1) % len(r.data)
}

func (r *outcomeRing) slice() []model.Outcome {
	if r.length == 0 {
		return nil
	}
	result := make([]model.Outcome, r.length)
	for i := 0; i < r.length; i++ {
		result[i] = r.data[(r.start+i)%len(r.data)]
	}
	return result
}

func determineWidth(out *os.File, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
