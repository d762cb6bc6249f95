// Package model provides the record and outcome types shared by the parser,
// the driver and the output adapters.
package model

import (
	"time"
)

// LogRecord is one fully validated access-log line.
type LogRecord struct {
	RemoteAddr string    `json:"remote_addr" yaml:"remote_addr"`
	Ident      Text      `json:"ident" yaml:"ident"`
	RemoteUser Text      `json:"remote_user" yaml:"remote_user"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Method     Method    `json:"method" yaml:"method"`
	Path       string    `json:"path" yaml:"path"`
	Protocol   string    `json:"protocol" yaml:"protocol"`
	Status     int       `json:"status" yaml:"status"`
	BodyBytes  int64     `json:"body_bytes" yaml:"body_bytes"`
	Referer    Text      `json:"referer" yaml:"referer"`
	UserAgent  Text      `json:"user_agent" yaml:"user_agent"`

	// Only filled by layouts that log $host or $request_time.
	Host        Text          `json:"host,omitzero" yaml:"host,omitempty"`
	RequestTime time.Duration `json:"request_time,omitempty" yaml:"request_time,omitempty"`
}

// EmptyRequest reports whether the request line was logged as "-" and the
// method, path and protocol are therefore unknown.
func (r LogRecord) EmptyRequest() bool {
	return r.Method == MethodUnknown && r.Path == "" && r.Protocol == ""
}

// ParseFailure describes a line that could not be turned into a record.
type ParseFailure struct {
	Line   int    `json:"line" yaml:"line"`
	Reason Reason `json:"reason" yaml:"reason"`
	Detail string `json:"detail" yaml:"detail"`
	Raw    string `json:"raw" yaml:"raw"`
}

func (f ParseFailure) Error() string {
	return string(f.Reason) + ": " + f.Detail
}

// Outcome is the result for a single input line. Exactly one of Record and
// Failure is set.
type Outcome struct {
	Line    int           `json:"line" yaml:"line"`
	Record  *LogRecord    `json:"record,omitempty" yaml:"record,omitempty"`
	Failure *ParseFailure `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// OK reports whether the line produced a record.
func (o Outcome) OK() bool {
	return o.Record != nil
}

// Success wraps a record as the outcome of line n.
func Success(n int, rec LogRecord) Outcome {
	return Outcome{Line: n, Record: &rec}
}

// Failed wraps a failure as the outcome of line n.
func Failed(n int, raw string, reason Reason, detail string) Outcome {
	return Outcome{Line: n, Failure: &ParseFailure{
		Line:   n,
		Reason: reason,
		Detail: detail,
		Raw:    raw,
	}}
}
