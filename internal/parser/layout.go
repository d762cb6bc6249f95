package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldKind is the meaning of one positional field in a log line.
type FieldKind int

const (
	FieldIgnored FieldKind = iota
	FieldRemoteAddr
	FieldIdent
	FieldRemoteUser
	FieldTimeLocal
	FieldTimeISO8601
	FieldRequest
	FieldStatus
	FieldBodyBytes
	FieldReferer
	FieldUserAgent
	FieldHost
	FieldRequestTime
)

var fieldNames = map[FieldKind]string{
	FieldIgnored:     "ignored",
	FieldRemoteAddr:  "remote_addr",
	FieldIdent:       "ident",
	FieldRemoteUser:  "remote_user",
	FieldTimeLocal:   "time_local",
	FieldTimeISO8601: "time_iso8601",
	FieldRequest:     "request",
	FieldStatus:      "status",
	FieldBodyBytes:   "body_bytes_sent",
	FieldReferer:     "http_referer",
	FieldUserAgent:   "http_user_agent",
	FieldHost:        "host",
	FieldRequestTime: "request_time",
}

func (k FieldKind) String() string {
	if name, ok := fieldNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// variables maps nginx log_format variables to field kinds.
var variables = map[string]FieldKind{
	"remote_addr":     FieldRemoteAddr,
	"remote_user":     FieldRemoteUser,
	"time_local":      FieldTimeLocal,
	"time_iso8601":    FieldTimeISO8601,
	"request":         FieldRequest,
	"status":          FieldStatus,
	"body_bytes_sent": FieldBodyBytes,
	"bytes_sent":      FieldBodyBytes,
	"http_referer":    FieldReferer,
	"http_user_agent": FieldUserAgent,
	"host":            FieldHost,
	"request_time":    FieldRequestTime,
}

// Layout is the ordered list of field kinds making up one log line.
type Layout struct {
	Name   string
	Fields []FieldKind
	// Delims holds the delimiter wrapping each field: '"', '[' or 0 for a
	// bare token. A nil Delims accepts any delimiter.
	Delims []byte
}

// Len returns the number of positional fields.
func (l Layout) Len() int {
	return len(l.Fields)
}

// checkDelim rejects tok when it is wrapped differently from field i.
func (l Layout) checkDelim(i int, tok Token) error {
	if l.Delims == nil || l.Delims[i] == tok.Delim {
		return nil
	}
	kind := l.Fields[i]
	return fieldErr(delimReason(kind), kind, tok.Text,
		fmt.Errorf("want %s field, found %s", delimName(l.Delims[i]), delimName(tok.Delim)))
}

func delimName(d byte) string {
	switch d {
	case '"':
		return "quoted"
	case '[':
		return "bracketed"
	default:
		return "bare"
	}
}

// Combined is nginx's default "combined" log_format:
//
//	$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent "$http_referer" "$http_user_agent"
var Combined = Layout{
	Name: "combined",
	Fields: []FieldKind{
		FieldRemoteAddr,
		FieldIdent,
		FieldRemoteUser,
		FieldTimeLocal,
		FieldRequest,
		FieldStatus,
		FieldBodyBytes,
		FieldReferer,
		FieldUserAgent,
	},
	Delims: []byte{0, 0, 0, '[', '"', 0, 0, '"', '"'},
}

// Common is the NCSA common log format, combined without referer and agent.
var Common = Layout{
	Name: "common",
	Fields: []FieldKind{
		FieldRemoteAddr,
		FieldIdent,
		FieldRemoteUser,
		FieldTimeLocal,
		FieldRequest,
		FieldStatus,
		FieldBodyBytes,
	},
	Delims: []byte{0, 0, 0, '[', '"', 0, 0},
}

var namedLayouts = map[string]Layout{
	"combined": Combined,
	"common":   Common,
	"main":     Combined,
}

// LayoutNames lists the built-in layout names.
func LayoutNames() []string {
	names := make([]string, 0, len(namedLayouts))
	for name := range namedLayouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownLayout is returned by ResolveLayout for names that are neither
// built in nor a log_format string.
var ErrUnknownLayout = errors.New("unknown layout")

// ResolveLayout returns the built-in layout called spec, or parses spec as
// an nginx log_format string when it references variables. An empty spec
// selects Combined.
func ResolveLayout(spec string) (Layout, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Combined, nil
	}
	if l, ok := namedLayouts[strings.ToLower(spec)]; ok {
		return l, nil
	}
	if strings.Contains(spec, "$") {
		return ParseLayout(spec)
	}
	return Layout{}, fmt.Errorf("%w: %s (built in: %s)", ErrUnknownLayout, spec, strings.Join(LayoutNames(), ", "))
}

// ParseLayout builds a layout from an nginx log_format string such as
//
//	$remote_addr - $remote_user [$time_local] "$request" $status
//
// Literal tokens and unsupported variables become ignored fields. Each field
// keeps the quote or bracket wrapping it in the format.
func ParseLayout(format string) (Layout, error) {
	tokens, err := Tokenize(format, -1)
	if err != nil {
		return Layout{}, fmt.Errorf("parse log_format: %w", err)
	}
	if len(tokens) == 0 {
		return Layout{}, errors.New("parse log_format: empty format")
	}

	layout := Layout{
		Name:   "custom",
		Fields: make([]FieldKind, 0, len(tokens)),
		Delims: make([]byte, 0, len(tokens)),
	}
	known := 0
	for idx, tok := range tokens {
		kind, err := tokenKind(tok.Text)
		if err != nil {
			return Layout{}, fmt.Errorf("parse log_format field %d: %w", idx+1, err)
		}
		if idx == 1 && kind == FieldIgnored && tok.Text == "-" && layout.Fields[0] == FieldRemoteAddr {
			kind = FieldIdent
		}
		if kind != FieldIgnored {
			known++
		}
		layout.Fields = append(layout.Fields, kind)
		layout.Delims = append(layout.Delims, tok.Delim)
	}
	if known == 0 {
		return Layout{}, errors.New("parse log_format: no supported variables")
	}
	return layout, nil
}

func tokenKind(text string) (FieldKind, error) {
	if !strings.HasPrefix(text, "$") {
		if strings.Contains(text, "$") {
			return FieldIgnored, fmt.Errorf("unsupported token %q", text)
		}
		return FieldIgnored, nil
	}
	name := strings.TrimPrefix(text, "$")
	if strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") {
		name = name[1 : len(name)-1]
	}
	if strings.ContainsAny(name, "${}") {
		return FieldIgnored, fmt.Errorf("unsupported token %q", text)
	}
	return variables[name], nil
}
