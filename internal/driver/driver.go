// Package driver feeds lines to the parser and collects one outcome per
// line, in input order.
package driver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"

	"nginxlog/internal/model"
	"nginxlog/internal/parser"
)

// ErrStop can be returned by an Iterate callback to end iteration early
// without reporting an error.
var ErrStop = errors.New("stop iteration")

// MaxLineSize is the longest line the stream driver accepts.
const MaxLineSize = 8 * 1024 * 1024

// ParseAll parses lines sequentially. outcomes[i] belongs to lines[i].
func ParseAll(p *parser.Parser, lines []string) []model.Outcome {
	outcomes := make([]model.Outcome, len(lines))
	for i, line := range lines {
		outcomes[i] = p.Parse(i+1, line)
	}
	return outcomes
}

// Iterate reads r line by line and calls fn with the outcome of each line.
// Malformed lines are passed to fn as failures; only read errors and errors
// returned by fn end the iteration with an error.
func Iterate(r io.Reader, p *parser.Parser, fn func(model.Outcome) error) error {
	scanner := newScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		if err := fn(p.Parse(n, scanner.Text())); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan log: %w", err)
	}
	return nil
}

// Outcomes is the range-over-func form of Iterate. A read error is yielded
// once, with a zero outcome, as the final element.
func Outcomes(r io.Reader, p *parser.Parser) iter.Seq2[model.Outcome, error] {
	return func(yield func(model.Outcome, error) bool) {
		err := Iterate(r, p, func(o model.Outcome) error {
			if !yield(o, nil) {
				return ErrStop
			}
			return nil
		})
		if err != nil {
			yield(model.Outcome{}, err)
		}
	}
}

// ReadLines reads every line of r into memory.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := newScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}
	return lines, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxLineSize)
	return scanner
}
