// Package jsonval provides the shared JSON document representation used by
// the generation and mutation engines. Objects preserve key insertion order
// so that identically configured and seeded runs serialize to identical
// bytes; Go maps would randomize key order between runs.
package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/elliotchance/orderedmap/v2"
)

// Object is a JSON object whose keys keep their insertion order. Documents
// decoded from input keep the order of the source text, and documents built
// by the engines keep schema declaration order.
type Object struct {
	m *orderedmap.OrderedMap[string, interface{}]
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{m: orderedmap.NewOrderedMap[string, interface{}]()}
}

// Set stores value under key, appending the key if it is new and keeping its
// original position if it already exists.
func (o *Object) Set(key string, value interface{}) {
	o.m.Set(key, value)
}

// Get returns the value stored under key and whether the key exists.
func (o *Object) Get(key string) (interface{}, bool) {
	return o.m.Get(key)
}

// Has reports whether key exists.
func (o *Object) Has(key string) bool {
	_, ok := o.m.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	return o.m.Delete(key)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return o.m.Keys()
}

// Clone returns a shallow copy: keys and order are copied, values are shared
// with the receiver. Values are treated as immutable throughout the engines,
// so sharing is safe.
func (o *Object) Clone() *Object {
	return &Object{m: o.m.Copy()}
}

// MarshalJSON serializes the object with keys in insertion order. HTML
// characters are not escaped so injection payloads reach the output verbatim.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	first := true
	for el := o.m.Front(); el != nil; el = el.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := enc.Encode(el.Key); err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", el.Key, err)
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')
		if err := enc.Encode(el.Value); err != nil {
			return nil, fmt.Errorf("marshal value of %q: %w", el.Key, err)
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToPlain converts a value tree to plain Go types, replacing every *Object
// with a map[string]interface{}. Key order is lost, which makes the result
// suitable for order-insensitive comparison.
func ToPlain(v interface{}) interface{} {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]interface{}, t.Len())
		for el := t.m.Front(); el != nil; el = el.Next() {
			m[el.Key] = ToPlain(el.Value)
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = ToPlain(e)
		}
		return out
	default:
		return v
	}
}

// Marshal serializes any value tree to JSON without HTML escaping.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	b := buf.Bytes()
	return b[:len(b)-1], nil // drop the trailing newline Encode appends
}
