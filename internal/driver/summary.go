package driver

import (
	"fmt"

	"nginxlog/internal/model"
)

// Summary counts the outcomes of one source.
type Summary struct {
	Source   string               `json:"source" yaml:"source"`
	Total    int                  `json:"total" yaml:"total"`
	Parsed   int                  `json:"parsed" yaml:"parsed"`
	Failed   int                  `json:"failed" yaml:"failed"`
	ByReason map[model.Reason]int `json:"by_reason,omitempty" yaml:"by_reason,omitempty"`
}

// Summarize counts outcomes by result and failure reason.
func Summarize(source string, outcomes []model.Outcome) Summary {
	s := Summary{Source: source, Total: len(outcomes)}
	for _, o := range outcomes {
		if o.OK() {
			s.Parsed++
			continue
		}
		s.Failed++
		if s.ByReason == nil {
			s.ByReason = make(map[model.Reason]int)
		}
		s.ByReason[o.Failure.Reason]++
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d lines malformed out of %d total", s.Failed, s.Total)
}
