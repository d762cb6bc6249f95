package view

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nginxlog/internal/model"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "logs", name)
}

func TestRunPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Run(Options{Path: fixture("access.log"), Out: &buf, ForceNoColor: true}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 3 outcome lines and a summary, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "#0001 ") || !strings.Contains(lines[0], " 200 GET ") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "#0002 ✗ FieldCountMismatch") {
		t.Fatalf("unexpected failure line: %q", lines[1])
	}
	if lines[3] != "1 lines malformed out of 3 total" {
		t.Fatalf("unexpected summary: %q", lines[3])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("no color expected:\n%s", buf.String())
	}
}

func TestRunOnlyFailuresWithMax(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Path: fixture("mixed.log"), Out: &buf, OnlyFailures: true, MaxLines: 2, ForceNoColor: true}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 2 failures and a summary, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "#0004 ✗ BadTimestamp") || !strings.HasPrefix(lines[1], "#0006 ✗ UnterminatedDelimiter") {
		t.Fatalf("expected the last two failures, got:\n%s", buf.String())
	}
	if lines[2] != "3 lines malformed out of 6 total" {
		t.Fatalf("summary should count every line: %q", lines[2])
	}
}

func TestRunForceColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Run(Options{Path: fixture("access.log"), Out: &buf, ForceColor: true}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(buf.String(), ansiSuccess+"200"+ansiReset) {
		t.Fatalf("expected colored status:\n%q", buf.String())
	}
	if !strings.Contains(buf.String(), ansiFailure) {
		t.Fatalf("expected colored failure:\n%q", buf.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	if err := Run(Options{Path: filepath.Join(t.TempDir(), "missing.log"), Out: &bytes.Buffer{}}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRunStdin(t *testing.T) {
	var buf bytes.Buffer
	in := strings.NewReader("garbage\n")
	if err := Run(Options{Path: "-", Stdin: in, Out: &buf, ForceNoColor: true}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "garbage") {
		t.Fatalf("expected raw line in output:\n%s", buf.String())
	}
}

func TestRendererTruncates(t *testing.T) {
	rec := model.LogRecord{
		RemoteAddr: "127.0.0.1",
		Timestamp:  time.Date(2023, 10, 10, 13, 55, 36, 0, time.UTC),
		Method:     model.MethodGet,
		Path:       "/" + strings.Repeat("界", 40),
		Protocol:   "HTTP/1.1",
		Status:     404,
		UserAgent:  model.Present("curl/8.0"),
	}
	o := model.Success(7, rec)

	for _, color := range []bool{false, true} {
		line := Renderer{Width: 40, Color: color}.Line(o)
		if w := visibleWidth(line); w > 40 {
			t.Fatalf("color=%v: line wider than 40 columns (%d): %q", color, w, line)
		}
		if !strings.Contains(line, "…") {
			t.Fatalf("color=%v: expected ellipsis: %q", color, line)
		}
	}
}

func TestRendererAbsentAndControl(t *testing.T) {
	o := model.Success(1, model.LogRecord{
		RemoteAddr: "10.0.0.1",
		Status:     302,
		UserAgent:  model.Present("evil\x1b[2Jagent"),
	})
	line := Renderer{}.Line(o)
	if !strings.Contains(line, ` - "evil?[2Jagent"`) {
		t.Fatalf("expected absent referer and sanitized agent: %q", line)
	}
	if !strings.Contains(line, " 302 - 0B ") {
		t.Fatalf("expected empty request rendering: %q", line)
	}
}

func TestStatusColor(t *testing.T) {
	cases := map[int]string{200: ansiSuccess, 301: ansiRedirect, 404: ansiClient, 503: ansiServer}
	for status, want := range cases {
		if got := statusColor(status); got != want {
			t.Fatalf("statusColor(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestOutcomeRing(t *testing.T) {
	ring := newOutcomeRing(2)
	for i := 1; i <= 5; i++ {
		ring.push(model.Outcome{Line: i})
	}
	got := ring.slice()
	if len(got) != 2 || got[0].Line != 4 || got[1].Line != 5 {
		t.Fatalf("unexpected ring contents: %+v", got)
	}
	if newOutcomeRing(0).slice() != nil {
		t.Fatalf("zero-capacity ring should stay empty")
	}
}

func TestResolveColorChoiceNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if resolveColorChoice(Options{Out: &bytes.Buffer{}}) {
		t.Fatalf("NO_COLOR should disable color")
	}
	if !resolveColorChoice(Options{Out: &bytes.Buffer{}, ForceColor: true}) {
		t.Fatalf("ForceColor should win")
	}
}

func TestDetermineWidth(t *testing.T) {
	if got := determineWidth(nil, 55); got != 55 {
		t.Fatalf("explicit wrap should win, got %d", got)
	}
	t.Setenv("COLUMNS", "120")
	if got := determineWidth(nil, 0); got != 120 {
		t.Fatalf("expected COLUMNS width, got %d", got)
	}
}

func TestRendererUnknownMethod(t *testing.T) {
	o := model.Success(1, model.LogRecord{RemoteAddr: "10.0.0.1", Method: "BREW", Path: "/pot", Protocol: "HTCPCP/1.0", Status: 418})
	line := Renderer{Color: true}.Line(o)
	if !strings.Contains(line, ansiClient+"BREW /pot HTCPCP/1.0"+ansiReset) {
		t.Fatalf("unknown method should be highlighted: %q", line)
	}
}
