package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"nginxlog/internal/parser"
)

type layoutDoc struct {
	Name   string   `json:"name" yaml:"name"`
	Fields []string `json:"fields" yaml:"fields"`
}

// WriteLayout lists the positional fields of l.
func WriteLayout(w io.Writer, l parser.Layout, includeHeader bool, format string) error {
	doc := layoutDoc{Name: l.Name, Fields: make([]string, len(l.Fields))}
	for i, k := range l.Fields {
		doc.Fields[i] = k.String()
	}

	switch strings.ToLower(format) {
	case "", Table:
		tw := newTable(w)
		tw.SetTitle(fmt.Sprintf("%s (%d fields)", l.Name, l.Len()))
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		})
		if includeHeader {
			tw.AppendHeader(table.Row{"Position", "Field"})
		}
		for i, name := range doc.Fields {
			tw.AppendRow(table.Row{i + 1, name})
		}
		_ = tw.Render()
		return nil
	case Plain:
		if includeHeader {
			if _, err := fmt.Fprintln(w, "position\tfield"); err != nil {
				return err
			}
		}
		for i, name := range doc.Fields {
			if _, err := fmt.Fprintf(w, "%d\t%s\n", i+1, name); err != nil {
				return err
			}
		}
		return nil
	case JSON, JSONL, Batch:
		return writeJSON(w, doc)
	case YAML:
		return writeYAML(w, doc)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
