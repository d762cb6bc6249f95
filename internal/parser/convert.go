package parser

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"nginxlog/internal/model"
)

// TimeLocalLayout is the time layout of nginx's $time_local.
const TimeLocalLayout = "02/Jan/2006:15:04:05 -0700"

const (
	minStatus = 100
	maxStatus = 599
)

var (
	errEmpty       = errors.New("empty value")
	errOutOfRange  = errors.New("out of range [100, 599]")
	errNotNumeric  = errors.New("not a non-negative integer")
	errTokenCount  = errors.New("want METHOD PATH PROTOCOL")
	errEmptyStrict = errors.New("empty request line")
	errNoAddr      = errors.New("address logged as absent")
	errMonthCase   = errors.New("month name must be capitalized like Jan")
)

// Request is the method, target and protocol of a request line.
type Request struct {
	Method   model.Method
	Path     string
	Protocol string
}

// Value is a converted field. Only the member matching Kind is meaningful.
type Value struct {
	Kind     FieldKind
	Str      string
	Text     model.Text
	Time     time.Time
	Int      int64
	Duration time.Duration
	Request  Request
}

// Convert turns a token into the typed value for kind, accepting an empty
// request line.
func Convert(tok Token, kind FieldKind) (Value, error) {
	return convert(tok, kind, false)
}

func convert(tok Token, kind FieldKind, strictRequest bool) (Value, error) {
	v := Value{Kind: kind}
	s := tok.Text

	switch kind {
	case FieldIgnored:
	case FieldRemoteAddr:
		if s == "" {
			return v, fieldErr(model.ReasonMissingRemoteAddr, kind, s, errEmpty)
		}
		if s == model.AbsentToken {
			return v, fieldErr(model.ReasonMissingRemoteAddr, kind, s, errNoAddr)
		}
		v.Str = s
	case FieldIdent, FieldRemoteUser, FieldReferer, FieldUserAgent, FieldHost:
		v.Text = model.TextOf(s)
	case FieldTimeLocal:
		ts, err := time.Parse(TimeLocalLayout, s)
		if err != nil {
			return v, fieldErr(model.ReasonBadTimestamp, kind, s, err)
		}
		// time.Parse matches month names case-insensitively.
		if s[3:6] != ts.Month().String()[:3] {
			return v, fieldErr(model.ReasonBadTimestamp, kind, s, errMonthCase)
		}
		v.Time = ts
	case FieldTimeISO8601:
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return v, fieldErr(model.ReasonBadTimestamp, kind, s, err)
		}
		v.Time = ts
	case FieldRequest:
		req, err := parseRequest(s, strictRequest)
		if err != nil {
			return v, fieldErr(model.ReasonMalformedRequestLine, kind, s, err)
		}
		v.Request = req
	case FieldStatus:
		n, ok := parseUint(s)
		if !ok {
			return v, fieldErr(model.ReasonInvalidStatusCode, kind, s, errNotNumeric)
		}
		if n < minStatus || n > maxStatus {
			return v, fieldErr(model.ReasonInvalidStatusCode, kind, s, errOutOfRange)
		}
		v.Int = n
	case FieldBodyBytes:
		if s == model.AbsentToken {
			break
		}
		n, ok := parseUint(s)
		if !ok {
			return v, fieldErr(model.ReasonInvalidByteCount, kind, s, errNotNumeric)
		}
		v.Int = n
	case FieldRequestTime:
		if s == model.AbsentToken {
			break
		}
		d, err := parseSeconds(s)
		if err != nil {
			return v, fieldErr(model.ReasonInvalidRequestTime, kind, s, err)
		}
		v.Duration = d
	}
	return v, nil
}

// delimReason is the failure reason for a field wrapped in the wrong
// delimiter. Free-text fields have no reason of their own, so a misplaced one
// counts against the line's field layout.
func delimReason(kind FieldKind) model.Reason {
	switch kind {
	case FieldRemoteAddr:
		return model.ReasonMissingRemoteAddr
	case FieldTimeLocal, FieldTimeISO8601:
		return model.ReasonBadTimestamp
	case FieldRequest:
		return model.ReasonMalformedRequestLine
	case FieldStatus:
		return model.ReasonInvalidStatusCode
	case FieldBodyBytes:
		return model.ReasonInvalidByteCount
	case FieldRequestTime:
		return model.ReasonInvalidRequestTime
	default:
		return model.ReasonFieldCountMismatch
	}
}

// parseRequest splits "METHOD PATH PROTOCOL". A request logged as "-" (or
// only dashes) yields an empty Request unless strict is set.
func parseRequest(s string, strict bool) (Request, error) {
	parts := strings.Fields(s)
	if emptyRequest(parts) {
		if strict {
			return Request{}, errEmptyStrict
		}
		return Request{}, nil
	}
	if len(parts) != 3 {
		return Request{}, errTokenCount
	}
	return Request{
		Method:   model.Method(parts[0]),
		Path:     parts[1],
		Protocol: parts[2],
	}, nil
}

func emptyRequest(parts []string) bool {
	for _, p := range parts {
		if p != model.AbsentToken {
			return false
		}
	}
	return true
}

// parseUint accepts only ASCII digits, so signs and spaces are rejected.
func parseUint(s string) (int64, bool) {
	if s == "" || len(s) > 18 {
		return 0, false
	}
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	return n, true
}

func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a non-negative number of seconds")
	}
	return time.Duration(math.Round(f * float64(time.Second))), nil
}

func fieldErr(reason model.Reason, kind FieldKind, value string, err error) *FieldError {
	return &FieldError{Reason: reason, Kind: kind, Value: value, Err: err}
}
