// Package format serializes parse outcomes, batches and summaries.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"nginxlog/internal/model"
)

// Output formats.
const (
	Batch = "batch"
	Table = "table"
	Plain = "plain"
	JSON  = "json"
	JSONL = "jsonl"
	YAML  = "yaml"
)

// Formats lists the formats accepted by WriteOutcomes, batch first.
func Formats() []string {
	return []string{Batch, JSON, JSONL, YAML, Table, Plain}
}

// TimeLayout is how timestamps are shown in table and plain output.
const TimeLayout = time.RFC3339

// WriteOutcomes writes one row per outcome to w in the requested format.
// Failed lines are rendered as error rows in table and plain output.
func WriteOutcomes(w io.Writer, outcomes []model.Outcome, includeHeader bool, format string) error {
	switch strings.ToLower(format) {
	case Table:
		return writeOutcomesTable(w, outcomes, includeHeader)
	case Plain:
		return writeOutcomesPlain(w, outcomes, includeHeader)
	case JSON:
		return writeJSON(w, nonNil(outcomes))
	case JSONL:
		return writeOutcomesJSONL(w, outcomes)
	case YAML:
		return writeYAML(w, nonNil(outcomes))
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteFailures writes one "source:line: reason: detail" line per failure.
func WriteFailures(w io.Writer, source string, failures []model.ParseFailure) error {
	for _, f := range failures {
		if _, err := fmt.Fprintf(w, "%s:%d: %s: %s\n", source, f.Line, f.Reason, f.Detail); err != nil {
			return err
		}
	}
	return nil
}

var plainHeader = strings.Join([]string{
	"line", "remote_addr", "remote_user", "timestamp", "method", "path",
	"protocol", "status", "body_bytes", "referer", "user_agent",
}, "\t")

func writeOutcomesPlain(w io.Writer, outcomes []model.Outcome, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, plainHeader); err != nil {
			return err
		}
	}

	for _, o := range outcomes {
		var line string
		if o.OK() {
			r := o.Record
			line = strings.Join([]string{
				strconv.Itoa(o.Line),
				r.RemoteAddr,
				r.RemoteUser.String(),
				r.Timestamp.Format(TimeLayout),
				orDash(string(r.Method)),
				orDash(r.Path),
				orDash(r.Protocol),
				strconv.Itoa(r.Status),
				strconv.FormatInt(r.BodyBytes, 10),
				escapeControl(r.Referer.String()),
				escapeControl(r.UserAgent.String()),
			}, "\t")
		} else {
			f := o.Failure
			line = fmt.Sprintf("%d\tERROR\t%s\t%s\t%s", o.Line, f.Reason, escapeControl(f.Detail), escapeControl(f.Raw))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeOutcomesJSONL(w io.Writer, outcomes []model.Outcome) error {
	enc := json.NewEncoder(w)
	for _, o := range outcomes {
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return nil
}

func writeOutcomesTable(w io.Writer, outcomes []model.Outcome, includeHeader bool) error {
	tw := newTable(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 60},
		{Number: 6, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 8, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 40},
		{Number: 9, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 40},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Line", "Remote Addr", "User", "Time", "Request", "Status", "Bytes", "Referer", "User Agent"})
	}

	for _, o := range outcomes {
		if !o.OK() {
			f := o.Failure
			tw.AppendRow(table.Row{o.Line, "-", "-", "-", fmt.Sprintf("%s: %s", f.Reason, f.Detail), "ERR", "-", "-", "-"})
			continue
		}
		r := o.Record
		tw.AppendRow(table.Row{
			o.Line,
			r.RemoteAddr,
			r.RemoteUser.String(),
			r.Timestamp.Format(TimeLayout),
			RequestLine(*r),
			r.Status,
			r.BodyBytes,
			escapeControl(r.Referer.String()),
			escapeControl(r.UserAgent.String()),
		})
	}

	if len(outcomes) == 0 {
		tw.AppendRow(table.Row{"-", "(no lines)", "-", "-", "-", "-", "-", "-", "-"})
	}

	_ = tw.Render()
	return nil
}

// RequestLine rebuilds the request line of r, or "-" when it was empty.
func RequestLine(r model.LogRecord) string {
	if r.EmptyRequest() {
		return model.AbsentToken
	}
	return strings.TrimSpace(string(r.Method) + " " + r.Path + " " + r.Protocol)
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	return tw
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func orDash(s string) string {
	if s == "" {
		return model.AbsentToken
	}
	return s
}

func escapeControl(s string) string {
	return strings.NewReplacer("\t", `\t`, "\n", `\n`, "\r", `\r`).Replace(s)
}
