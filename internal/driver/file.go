package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/multierr"

	"nginxlog/internal/model"
	"nginxlog/internal/parser"
)

// StdinPath names standard input in a list of paths.
const StdinPath = "-"

// Options controls file parsing.
type Options struct {
	// Parser defaults to parser.New().
	Parser *parser.Parser
	// Workers above 1 reads the whole file and parses it in parallel.
	Workers int
	// Stdin is read for StdinPath.
	Stdin io.Reader
}

func (o Options) parser() *parser.Parser {
	if o.Parser != nil {
		return o.Parser
	}
	return parser.New()
}

// Result holds every outcome of one source, in line order.
type Result struct {
	Source   string
	Outcomes []model.Outcome
}

// Records returns the successful outcomes.
func (r *Result) Records() []model.Outcome {
	var out []model.Outcome
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Failures returns the rejected lines.
func (r *Result) Failures() []model.ParseFailure {
	var out []model.ParseFailure
	for _, o := range r.Outcomes {
		if o.Failure != nil {
			out = append(out, *o.Failure)
		}
	}
	return out
}

// Summary counts the outcomes.
func (r *Result) Summary() Summary {
	return Summarize(r.Source, r.Outcomes)
}

// Open opens path for reading. Files ending in .gz are decompressed and
// StdinPath reads from stdin.
func Open(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == StdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.NopCloser(stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, fmt.Errorf("open gzip log %s: %w", path, err)
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	return multierr.Append(g.Reader.Close(), g.file.Close())
}

// ParseFile parses every line of path. Failing to open or read the file is
// the only error; malformed lines are reported in the result.
func ParseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	rc, err := Open(path, opts.Stdin)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	p := opts.parser()
	res := &Result{Source: path}

	if opts.Workers > 1 {
		lines, err := ReadLines(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		res.Outcomes, err = ParseParallel(ctx, p, lines, opts.Workers)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	err = Iterate(rc, p, func(o model.Outcome) error {
		if o.Line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		res.Outcomes = append(res.Outcomes, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return res, nil
}

// ParseFiles parses each path independently. Results of readable files are
// returned alongside the combined errors of the unreadable ones.
func ParseFiles(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	var (
		results []*Result
		errs    error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, multierr.Append(errs, err)
		}
		res, err := ParseFile(ctx, path, opts)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errs
}
