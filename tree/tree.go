// Package tree defines the canonical, serializable value shape that the
// scrub package produces and the format package consumes: a JSON-like tree
// of Objects, Arrays, and scalars, modeled on the dict/list shape that
// mo-sql-parsing renders for parsed SQL.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Null is the sentinel used in place of Go's nil wherever the canonical
// shape calls for an explicit null (e.g. SELECT * has no FROM).
type Null struct{}

// MarshalJSON renders Null as the JSON null literal.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Literal wraps a string or numeric SQL literal so that it round-trips
// distinctly from a bare identifier: {"literal": "abc"} versus "abc".
type Literal struct {
	Value any
}

// MarshalJSON renders a Literal as {"literal": value}.
func (l Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"literal": l.Value})
}

// Object is an ordered string-keyed map: a thin wrapper around
// github.com/wk8/go-ordered-map/v2's generic OrderedMap, specialized to
// string keys and `any` values. Go's map type does not preserve
// insertion order, but the canonical shape's clause ordering (select,
// from, where, groupby, ...) must survive a round trip, so Object keeps
// its pairs in the library's ordered map instead of a plain map. JSON
// marshalling and unmarshalling stay hand-rolled below rather than
// delegated to the library's own codec, so that decoding preserves
// json.Number instead of collapsing every numeric literal to float64.
type Object struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, any]()}
}

// Set inserts or updates a key, preserving the position of an existing
// key and appending new keys at the end.
func (o *Object) Set(key string, value any) *Object {
	if o.m == nil {
		o.m = orderedmap.New[string, any]()
	}
	o.m.Set(key, value)
	return o
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (any, bool) {
	if o == nil || o.m == nil {
		return nil, false
	}
	return o.m.Get(key)
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if o == nil || o.m == nil {
		return
	}
	o.m.Delete(key)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil || o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil || o.m == nil {
		return nil
	}
	keys := make([]string, 0, o.m.Len())
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Only returns true, and the sole value, when the object holds exactly
// one key. Used by the formatter and scrubber to detect the "unwrap a
// singleton clause" shape that the canonical tree favors.
func (o *Object) Only() (string, any, bool) {
	if o.Len() != 1 {
		return "", nil, false
	}
	p := o.m.Oldest()
	return p.Key, p.Value, true
}

// MarshalJSON renders the object as a JSON object, preserving key order
// (Go's encoding/json does not reorder map-like types it can't see as a
// map, so this emits a raw object literal by hand).
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	if o != nil && o.m != nil {
		for p := o.m.Oldest(); p != nil; p = p.Next() {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			key, err := json.Marshal(p.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := json.Marshal(p.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON populates the object from a JSON object, using
// json.Decoder's token stream so that key order is preserved.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tree: expected object, got %v", tok)
	}

	*o = Object{m: orderedmap.New[string, any]()}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("tree: expected string key, got %v", keyTok)
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		o.Set(key, normalizeDecoded(val))
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return err
	}
	return nil
}

// normalizeDecoded walks a value freshly produced by encoding/json and
// recursively promotes nested JSON objects into *Object so that a value
// decoded from JSON has the same shape as one built by the scrubber.
func normalizeDecoded(v any) any {
	switch t := v.(type) {
	case map[string]any:
		obj := NewObject()
		for k, val := range t {
			obj.Set(k, normalizeDecoded(val))
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeDecoded(val)
		}
		return out
	default:
		return v
	}
}

// Array is a plain ordered list in the canonical shape; it is just a
// []any alias so call sites can build it with a slice literal.
type Array = []any

// Equal reports whether a and b represent the same canonical value.
// Objects are compared key by key without regard to key order; callers
// that need to compare key order should compare Keys() directly. At the
// value level, Equal recurses structurally.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.Keys() {
			aval, _ := av.Get(k)
			bval, ok := bv.Get(k)
			if !ok || !Equal(aval, bval) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Literal:
		bv, ok := b.(Literal)
		if !ok {
			return false
		}
		if aseq, isSeq := av.Value.([]any); isSeq {
			bseq, ok := bv.Value.([]any)
			return ok && Equal(aseq, bseq)
		}
		return av.Value == bv.Value
	case Null:
		_, ok := b.(Null)
		return ok
	default:
		return a == b
	}
}
