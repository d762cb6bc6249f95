package parser

import (
	"errors"
	"fmt"

	"nginxlog/internal/model"
)

// TokenizeError is returned when a line cannot be split into the fields of
// the layout.
type TokenizeError struct {
	Reason model.Reason
	// Count and Want are set for field count mismatches.
	Count int
	Want  int
	// Delim and Offset locate an unterminated quote or bracket.
	Delim  byte
	Offset int
}

func (e *TokenizeError) Error() string {
	if e.Reason == model.ReasonUnterminatedDelimiter {
		return fmt.Sprintf("unterminated %q opened at offset %d", e.Delim, e.Offset)
	}
	return fmt.Sprintf("found %d fields, want %d", e.Count, e.Want)
}

// FieldError is returned when a token does not convert to its field kind.
type FieldError struct {
	Reason model.Reason
	Kind   FieldKind
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q", e.Kind, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason carried by a tokenize or field error.
func ReasonOf(err error) (model.Reason, bool) {
	var te *TokenizeError
	if errors.As(err, &te) {
		return te.Reason, true
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Reason, true
	}
	return "", false
}
