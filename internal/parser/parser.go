// Package parser turns nginx access-log lines into records.
//
// Parsing runs in three steps: Tokenize splits the line into positional
// fields, Convert checks and types each field against the Layout, and the
// converted values are assembled into a model.LogRecord. A Parser holds no
// mutable state and may be shared between goroutines.
package parser

import (
	"nginxlog/internal/model"
)

// maxStackFields bounds the layouts whose values fit in a stack buffer.
const maxStackFields = 16

// Parser parses lines of one layout.
type Parser struct {
	layout        Layout
	strictRequest bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLayout selects the field layout. The default is Combined.
func WithLayout(l Layout) Option {
	return func(p *Parser) {
		p.layout = l
	}
}

// WithStrictRequest rejects lines whose request was logged as "-" instead
// of accepting them with an unknown method, path and protocol.
func WithStrictRequest(strict bool) Option {
	return func(p *Parser) {
		p.strictRequest = strict
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{layout: Combined}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Layout returns the layout the parser expects.
func (p *Parser) Layout() Layout {
	return p.layout
}

// ParseLine parses one line. The returned error is a *TokenizeError or a
// *FieldError; no partially filled record is ever returned with it.
func (p *Parser) ParseLine(line string) (model.LogRecord, error) {
	tokens, err := Tokenize(line, p.layout.Len())
	if err != nil {
		return model.LogRecord{}, err
	}

	var buf [maxStackFields]Value
	values := buf[:0]
	for i, tok := range tokens {
		if err := p.layout.checkDelim(i, tok); err != nil {
			return model.LogRecord{}, err
		}
		v, err := convert(tok, p.layout.Fields[i], p.strictRequest)
		if err != nil {
			return model.LogRecord{}, err
		}
		values = append(values, v)
	}
	return assemble(values), nil
}

// Parse parses line n (1-based) into an outcome. It never fails: rejected
// lines become failure outcomes carrying the raw text and reason.
func (p *Parser) Parse(n int, line string) model.Outcome {
	rec, err := p.ParseLine(line)
	if err != nil {
		reason, ok := ReasonOf(err)
		if !ok {
			reason = model.ReasonFieldCountMismatch
		}
		return model.Failed(n, line, reason, err.Error())
	}
	return model.Success(n, rec)
}
