package format

import (
	"io"

	"nginxlog/internal/model"
)

// BatchRecord is a record together with the line it came from.
type BatchRecord struct {
	Line            int `json:"line" yaml:"line"`
	model.LogRecord `yaml:",inline"`
}

// BatchResult is the boundary shape of one parsed source: every record and
// every failure, with the counts a caller needs to judge the input.
type BatchResult struct {
	Source   string               `json:"source" yaml:"source"`
	Total    int                  `json:"total" yaml:"total"`
	Failed   int                  `json:"failed" yaml:"failed"`
	Records  []BatchRecord        `json:"records" yaml:"records"`
	Failures []model.ParseFailure `json:"failures" yaml:"failures"`
}

// NewBatch splits outcomes into records and failures. Records and Failures
// are never nil.
func NewBatch(source string, outcomes []model.Outcome) BatchResult {
	b := BatchResult{
		Source:   source,
		Total:    len(outcomes),
		Records:  []BatchRecord{},
		Failures: []model.ParseFailure{},
	}
	for _, o := range outcomes {
		if o.OK() {
			b.Records = append(b.Records, BatchRecord{Line: o.Line, LogRecord: *o.Record})
			continue
		}
		b.Failures = append(b.Failures, *o.Failure)
	}
	b.Failed = len(b.Failures)
	return b
}

// WriteBatch writes b as one indented JSON object.
func WriteBatch(w io.Writer, b BatchResult) error {
	return writeJSON(w, b)
}
