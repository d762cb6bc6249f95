package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"nginxlog/internal/driver"
	"nginxlog/internal/model"
)

// WriteSummaries writes per-source counts to w. The table format adds a
// totals footer and a breakdown of failures by reason.
func WriteSummaries(w io.Writer, summaries []driver.Summary, includeHeader bool, format string) error {
	switch strings.ToLower(format) {
	case "", Table:
		return writeSummariesTable(w, summaries, includeHeader)
	case Plain:
		return writeSummariesPlain(w, summaries, includeHeader)
	case JSON, Batch:
		return writeJSON(w, nonNil(summaries))
	case JSONL:
		enc := json.NewEncoder(w)
		for _, s := range summaries {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	case YAML:
		return writeYAML(w, nonNil(summaries))
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Total adds up summaries under the source name "total".
func Total(summaries []driver.Summary) driver.Summary {
	total := driver.Summary{Source: "total"}
	for _, s := range summaries {
		total.Total += s.Total
		total.Parsed += s.Parsed
		total.Failed += s.Failed
		for reason, n := range s.ByReason {
			if total.ByReason == nil {
				total.ByReason = make(map[model.Reason]int)
			}
			total.ByReason[reason] += n
		}
	}
	return total
}

func writeSummariesPlain(w io.Writer, summaries []driver.Summary, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "source\ttotal\tparsed\tfailed\treasons"); err != nil {
			return err
		}
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", s.Source, s.Total, s.Parsed, s.Failed, reasonList(s.ByReason)); err != nil {
			return err
		}
	}
	return nil
}

func reasonList(byReason map[model.Reason]int) string {
	var parts []string
	for _, reason := range model.Reasons() {
		if n := byReason[reason]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, n))
		}
	}
	if len(parts) == 0 {
		return model.AbsentToken
	}
	return strings.Join(parts, ",")
}

func writeSummariesTable(w io.Writer, summaries []driver.Summary, includeHeader bool) error {
	tw := newTable(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 60},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})
	if includeHeader {
		tw.AppendHeader(table.Row{"Source", "Lines", "Parsed", "Failed"})
	}
	for _, s := range summaries {
		tw.AppendRow(table.Row{s.Source, s.Total, s.Parsed, s.Failed})
	}
	if len(summaries) == 0 {
		tw.AppendRow(table.Row{"(no sources)", 0, 0, 0})
	}

	total := Total(summaries)
	if len(summaries) > 1 {
		tw.AppendFooter(table.Row{"Total", total.Total, total.Parsed, total.Failed})
	}
	_ = tw.Render()

	if total.Failed == 0 {
		return nil
	}

	rw := newTable(w)
	rw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})
	if includeHeader {
		rw.AppendHeader(table.Row{"Reason", "Lines"})
	}
	for _, reason := range model.Reasons() {
		if n := total.ByReason[reason]; n > 0 {
			rw.AppendRow(table.Row{reason, n})
		}
	}
	_ = rw.Render()
	return nil
}
