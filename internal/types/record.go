// Package types provides type definitions for structured data used throughout the legislative-tracker system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one normalized vote: an ordered mapping from field name to an
// optional string value. Field presence varies between records, so callers
// go through the accessors instead of assuming a fixed set of fields.
//
// The zero value is an empty record ready to use.
type Record struct {
	keys   []string
	values map[string]*string
}

// NewRecord returns an empty record with room for n fields.
func NewRecord(n int) Record {
	return Record{
		keys:   make([]string, 0, n),
		values: make(map[string]*string, n),
	}
}

// Set stores value under field. An existing field keeps its original
// position and takes the new value.
func (r *Record) Set(field string, value *string) {
	if r.values == nil {
		r.values = make(map[string]*string)
	}
	if _, exists := r.values[field]; !exists {
		r.keys = append(r.keys, field)
	}
	r.values[field] = value
}

// SetString stores a non-null value under field.
func (r *Record) SetString(field, value string) {
	r.Set(field, &value)
}

// Get returns the value of field. ok is false when the field is missing or null.
func (r Record) Get(field string) (value string, ok bool) {
	v := r.values[field]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Value returns the raw value of field, nil when missing or null.
func (r Record) Value(field string) *string {
	return r.values[field]
}

// Has reports whether field is present, even with a null value.
func (r Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Keys returns the field names in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the record as a JSON object preserving field order.
// Characters such as '&' stay literal only when the caller's encoder has
// SetEscapeHTML(false); json.Marshal escapes them again.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONValue(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		v := r.values[k]
		if v == nil {
			buf.WriteString("null")
			continue
		}
		if err := writeJSONValue(&buf, *v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSONValue encodes s without HTML escaping. An outer encoder with
// HTML escaping enabled still rewrites '&', '<' and '>'.
func writeJSONValue(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// UnmarshalJSON decodes a JSON object keeping the order fields appear in.
// Values must be strings or null; numbers and booleans are kept as their
// literal text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected JSON object, got %v", tok)
	}

	*r = NewRecord(8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected field name, got %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case nil:
			r.Set(key, nil)
		case string:
			r.SetString(key, v)
		case json.Number:
			r.SetString(key, v.String())
		case bool:
			r.SetString(key, fmt.Sprintf("%t", v))
		default:
			return fmt.Errorf("record: field %q has unsupported value %v", key, tok)
		}
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
