package format

import (
	"bytes"
	"strings"
	"testing"

	"nginxlog/internal/driver"
	"nginxlog/internal/model"
)

func sampleSummaries() []driver.Summary {
	return []driver.Summary{
		driver.Summarize("access.log", sampleOutcomes()),
		{Source: "mixed.log", Total: 6, Parsed: 3, Failed: 3, ByReason: map[model.Reason]int{
			model.ReasonInvalidStatusCode:     1,
			model.ReasonBadTimestamp:          1,
			model.ReasonUnterminatedDelimiter: 1,
		}},
	}
}

func TestWriteSummariesPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummaries(&buf, sampleSummaries(), true, "plain"); err != nil {
		t.Fatalf("WriteSummaries plain returned error: %v", err)
	}

	expected := strings.Join([]string{
		"source\ttotal\tparsed\tfailed\treasons",
		"access.log\t3\t2\t1\tFieldCountMismatch=1",
		"mixed.log\t6\t3\t3\tUnterminatedDelimiter=1,BadTimestamp=1,InvalidStatusCode=1",
	}, "\n") + "\n"
	if got := buf.String(); got != expected {
		t.Fatalf("plain output mismatch:\nexpected: %q\nactual:   %q", expected, got)
	}
}

func TestWriteSummariesTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummaries(&buf, sampleSummaries(), true, "table"); err != nil {
		t.Fatalf("WriteSummaries table returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"SOURCE", "PARSED", "TOTAL", "mixed.log", "REASON", "InvalidStatusCode"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummariesTableNoFailures(t *testing.T) {
	var buf bytes.Buffer
	clean := []driver.Summary{{Source: "clean.log", Total: 4, Parsed: 4}}
	if err := WriteSummaries(&buf, clean, true, "table"); err != nil {
		t.Fatalf("WriteSummaries returned error: %v", err)
	}
	if strings.Contains(buf.String(), "REASON") {
		t.Fatalf("reason table should be skipped without failures:\n%s", buf.String())
	}
}

func TestWriteSummariesJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummaries(&buf, sampleSummaries(), false, "jsonl"); err != nil {
		t.Fatalf("WriteSummaries jsonl returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], `"by_reason":{`) || !strings.Contains(lines[1], `"BadTimestamp":1`) {
		t.Fatalf("second jsonl line unexpected: %s", lines[1])
	}
}

func TestTotal(t *testing.T) {
	total := Total(sampleSummaries())
	if total.Total != 9 || total.Parsed != 5 || total.Failed != 4 {
		t.Fatalf("unexpected totals: %+v", total)
	}
	if total.ByReason[model.ReasonFieldCountMismatch] != 1 || len(total.ByReason) != 4 {
		t.Fatalf("unexpected reasons: %v", total.ByReason)
	}
	if got := total.String(); got != "4 lines malformed out of 9 total" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestWriteSummariesInvalidFormat(t *testing.T) {
	if err := WriteSummaries(&bytes.Buffer{}, nil, true, "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
