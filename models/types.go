// Package models defines domain structs, list filters and request payloads.
//
// Request structs validate themselves and return pkg.ValidationErrors so the
// handler layer answers 422 with per-field messages.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Optional distinguishes an absent JSON key from an explicit null.
// Set is true when the key was present; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present, null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// JSONMap is a free-form object stored as JSON text.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src any) error {
	raw, err := textOf(src)
	if err != nil {
		return err
	}
	if raw == "" || raw == "null" {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal([]byte(raw), m)
}

// StringList is a list of strings stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	raw, err := textOf(src)
	if err != nil {
		return err
	}
	if raw == "" || raw == "null" {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal([]byte(raw), (*[]string)(l))
}

func textOf(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported JSON column type %T", src)
	}
}

// Labeled is one point of an ordered chart series.
type Labeled struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Counted is a named count, e.g. orders per status.
type Counted struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}
