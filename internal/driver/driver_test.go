package driver

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"

	"nginxlog/internal/model"
	"nginxlog/internal/parser"
)

const (
	goodLine  = `127.0.0.1 - alice [10/Oct/2023:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 612 "http://ref.example" "curl/8.0"`
	otherLine = `192.168.1.20 - - [10/Oct/2023:13:55:37 -0700] "POST /api/login HTTP/1.1" 302 - "-" "Mozilla/5.0"`
	badLine   = "bad line no quotes here"
)

func TestParseAllScenarioE(t *testing.T) {
	lines := []string{goodLine, badLine, otherLine}

	outcomes := ParseAll(parser.New(), lines)
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].OK() || outcomes[1].OK() || !outcomes[2].OK() {
		t.Fatalf("unexpected success pattern: %v %v %v", outcomes[0].OK(), outcomes[1].OK(), outcomes[2].OK())
	}
	if outcomes[1].Failure.Reason != model.ReasonFieldCountMismatch {
		t.Fatalf("unexpected reason: %s", outcomes[1].Failure.Reason)
	}
	for i, o := range outcomes {
		if o.Line != i+1 {
			t.Fatalf("outcome %d carries line %d", i, o.Line)
		}
	}
	if outcomes[2].Record.Method != model.MethodPost {
		t.Fatalf("outcome order not preserved: %+v", outcomes[2].Record)
	}
}

func TestParseAllEmpty(t *testing.T) {
	if got := ParseAll(parser.New(), nil); len(got) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(got))
	}
}

func TestIterateStream(t *testing.T) {
	input := strings.Join([]string{goodLine, badLine, otherLine, ""}, "\r\n")

	var got []model.Outcome
	err := Iterate(strings.NewReader(input), parser.New(), func(o model.Outcome) error {
		got = append(got, o)
		return nil
	})
	if err != nil {
		t.Fatalf("Iterate returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got))
	}
	want := ParseAll(parser.New(), []string{goodLine, badLine, otherLine})
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(model.Text{})); diff != "" {
		t.Fatalf("stream and slice drivers disagree (-want +got):\n%s", diff)
	}
}

func TestIterateStopsEarly(t *testing.T) {
	input := strings.Repeat(goodLine+"\n", 10)

	count := 0
	err := Iterate(strings.NewReader(input), parser.New(), func(model.Outcome) error {
		count++
		if count == 4 {
			return ErrStop
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ErrStop should not surface: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 callbacks, got %d", count)
	}
}

func TestIterateCallbackError(t *testing.T) {
	boom := errors.New("boom")
	err := Iterate(strings.NewReader(goodLine+"\n"), parser.New(), func(model.Outcome) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestIterateReadErrorIsFatal(t *testing.T) {
	boom := errors.New("disk gone")
	r := io.MultiReader(strings.NewReader(goodLine+"\n"), iotest.ErrReader(boom))

	err := Iterate(r, parser.New(), func(model.Outcome) error { return nil })
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestOutcomesSeq(t *testing.T) {
	input := strings.Join([]string{goodLine, badLine, otherLine}, "\n")

	var lines []int
	for o, err := range Outcomes(strings.NewReader(input), parser.New()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines = append(lines, o.Line)
		if len(lines) == 2 {
			break
		}
	}
	if fmt.Sprint(lines) != "[1 2]" {
		t.Fatalf("unexpected prefix: %v", lines)
	}
}

func TestOutcomesSeqYieldsReadError(t *testing.T) {
	boom := errors.New("disk gone")
	var last error
	for _, err := range Outcomes(iotest.ErrReader(boom), parser.New()) {
		last = err
	}
	if !errors.Is(last, boom) {
		t.Fatalf("expected read error as last element, got %v", last)
	}
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("a\nb\r\n\nc"))
	if err != nil {
		t.Fatalf("ReadLines returned error: %v", err)
	}
	if fmt.Sprintf("%q", lines) != `["a" "b" "" "c"]` {
		t.Fatalf("unexpected lines: %q", lines)
	}
}
