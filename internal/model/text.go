package model

import (
	"encoding/json"
)

// AbsentToken is what nginx writes for a variable that has no value.
const AbsentToken = "-"

// Text is a free-text token that may be absent. The zero value is absent.
type Text struct {
	value   string
	present bool
}

// Absent is the "no value" marker.
var Absent = Text{}

// Present returns a Text holding s, even if s is empty.
func Present(s string) Text {
	return Text{value: s, present: true}
}

// TextOf converts a raw log token: "-" becomes Absent, anything else is kept.
func TextOf(token string) Text {
	if token == AbsentToken {
		return Absent
	}
	return Present(token)
}

// Value returns the text and whether it is present.
func (t Text) Value() (string, bool) {
	return t.value, t.present
}

// IsAbsent reports whether t carries no value.
func (t Text) IsAbsent() bool {
	return !t.present
}

// IsZero lets encoding/json omitzero drop absent values.
func (t Text) IsZero() bool {
	return !t.present
}

// String renders absent values as "-" for display.
func (t Text) String() string {
	if !t.present {
		return AbsentToken
	}
	return t.value
}

// MarshalJSON encodes absent values as null.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.present {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// UnmarshalJSON accepts null or a string.
func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Absent
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = Present(s)
	return nil
}

// MarshalYAML encodes absent values as null.
func (t Text) MarshalYAML() (any, error) {
	if !t.present {
		return nil, nil
	}
	return t.value, nil
}
