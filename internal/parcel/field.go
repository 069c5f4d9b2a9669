package parcel

import (
	"bytes"
	"encoding/json"
)

// UnknownToken is the wire form of an explicit "I don't know" answer.
const UnknownToken = "unknown"

// State distinguishes a field nobody filled from one explicitly answered as unknown.
type State uint8

const (
	// StateMissing means no data: the provider failed or the question was not asked.
	StateMissing State = iota
	// StateUnknown means the value was explicitly declared unknown.
	StateUnknown
	// StateKnown means the field carries a value.
	StateKnown
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateKnown:
		return "known"
	default:
		return "missing"
	}
}

// Field is a tri-state optional value. The zero value is Missing.
type Field[T comparable] struct {
	state State
	value T
}

// Known returns a field holding v.
func Known[T comparable](v T) Field[T] {
	return Field[T]{state: StateKnown, value: v}
}

// Unknown returns a field explicitly declared unknown.
func Unknown[T comparable]() Field[T] {
	return Field[T]{state: StateUnknown}
}

// FromPtr returns Known(*v), or Missing when v is nil.
func FromPtr[T comparable](v *T) Field[T] {
	if v == nil {
		return Field[T]{}
	}
	return Known(*v)
}

func (f Field[T]) State() State    { return f.state }
func (f Field[T]) IsKnown() bool   { return f.state == StateKnown }
func (f Field[T]) IsUnknown() bool { return f.state == StateUnknown }
func (f Field[T]) IsMissing() bool { return f.state == StateMissing }

// Get returns the value and whether the field is known.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == StateKnown
}

// Ptr returns a pointer to a copy of the value, or nil unless known.
func (f Field[T]) Ptr() *T {
	if f.state != StateKnown {
		return nil
	}
	v := f.value
	return &v
}

// MarshalJSON encodes Missing as null and Unknown as "unknown".
func (f Field[T]) MarshalJSON() ([]byte, error) {
	switch f.state {
	case StateKnown:
		return json.Marshal(f.value)
	case StateUnknown:
		return json.Marshal(UnknownToken)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = Field[T]{}
		return nil
	}
	if bytes.Equal(trimmed, []byte(`"`+UnknownToken+`"`)) {
		*f = Unknown[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*f = Known(v)
	return nil
}
