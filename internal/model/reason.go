package model

// Reason tags why a line was rejected.
type Reason string

const (
	ReasonFieldCountMismatch    Reason = "FieldCountMismatch"
	ReasonUnterminatedDelimiter Reason = "UnterminatedDelimiter"
	ReasonBadTimestamp          Reason = "BadTimestamp"
	ReasonMalformedRequestLine  Reason = "MalformedRequestLine"
	ReasonInvalidStatusCode     Reason = "InvalidStatusCode"
	ReasonInvalidByteCount      Reason = "InvalidByteCount"
	ReasonMissingRemoteAddr     Reason = "MissingRemoteAddr"
	ReasonInvalidRequestTime    Reason = "InvalidRequestTime"
)

// Reasons lists every failure reason in a stable order for reports.
func Reasons() []Reason {
	return []Reason{
		ReasonFieldCountMismatch,
		ReasonUnterminatedDelimiter,
		ReasonBadTimestamp,
		ReasonMalformedRequestLine,
		ReasonInvalidStatusCode,
		ReasonInvalidByteCount,
		ReasonMissingRemoteAddr,
		ReasonInvalidRequestTime,
	}
}
