package model

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTextOf(t *testing.T) {
	if !TextOf("-").IsAbsent() {
		t.Fatalf(`"-" should be absent`)
	}
	if v, ok := TextOf("alice").Value(); !ok || v != "alice" {
		t.Fatalf("unexpected value: %q %v", v, ok)
	}
	if v, ok := TextOf("").Value(); !ok || v != "" {
		t.Fatalf("empty token should be present and empty, got %q %v", v, ok)
	}
	if got := Absent.String(); got != "-" {
		t.Fatalf("absent should render as -, got %q", got)
	}
}

func TestTextJSON(t *testing.T) {
	type doc struct {
		User Text `json:"user"`
		Host Text `json:"host,omitzero"`
	}

	data, err := json.Marshal(doc{User: Absent})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"user":null}` {
		t.Fatalf("unexpected JSON: %s", data)
	}

	data, err = json.Marshal(doc{User: Present("-x"), Host: Present("example.com")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"user":"-x","host":"example.com"}` {
		t.Fatalf("unexpected JSON: %s", data)
	}

	var back doc
	if err := json.Unmarshal([]byte(`{"user":null,"host":"h"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.User.IsAbsent() || back.Host != Present("h") {
		t.Fatalf("unexpected decode: %+v", back)
	}
}

func TestTextYAML(t *testing.T) {
	data, err := yaml.Marshal(map[string]Text{"referer": Absent, "agent": Present("curl")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "referer: null") || !strings.Contains(out, "agent: curl") {
		t.Fatalf("unexpected YAML:\n%s", out)
	}
}

func TestMethodKnown(t *testing.T) {
	if !MethodPatch.Known() || Method("BREW").Known() || MethodUnknown.Known() {
		t.Fatalf("unexpected Known results")
	}
}

func TestOutcome(t *testing.T) {
	ok := Success(1, LogRecord{RemoteAddr: "127.0.0.1"})
	if !ok.OK() || ok.Failure != nil || ok.Line != 1 {
		t.Fatalf("unexpected success outcome: %+v", ok)
	}
	bad := Failed(2, "raw", ReasonBadTimestamp, "bad time")
	if bad.OK() || bad.Record != nil || bad.Failure.Line != 2 {
		t.Fatalf("unexpected failed outcome: %+v", bad)
	}
	if got := bad.Failure.Error(); got != "BadTimestamp: bad time" {
		t.Fatalf("unexpected error text: %q", got)
	}
}

func TestEmptyRequest(t *testing.T) {
	if !(LogRecord{}).EmptyRequest() {
		t.Fatalf("zero record has an empty request")
	}
	if (LogRecord{Method: MethodGet, Path: "/", Protocol: "HTTP/1.1"}).EmptyRequest() {
		t.Fatalf("full request reported as empty")
	}
}

func TestReasonsStable(t *testing.T) {
	reasons := Reasons()
	if len(reasons) != 8 || reasons[0] != ReasonFieldCountMismatch || reasons[7] != ReasonInvalidRequestTime {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}
