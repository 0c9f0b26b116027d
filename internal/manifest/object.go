package manifest

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	ordered "github.com/virtuald/go-ordered-json"
	"gopkg.in/yaml.v3"
)

// Object is a JSON object that remembers the order its keys were inserted in.
// Manifests are order-sensitive in places (the export map is walked in
// document order), so decoding never goes through map[string]any.
//
// Values are one of: string, ordered.Number, bool, nil, []any, *Object.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores value under key. New keys are appended; existing keys keep their position.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// SortKeys orders the keys lexically. Nested objects are left alone.
func (o *Object) SortKeys() {
	sort.Strings(o.keys)
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]any, len(o.values)),
	}
	copy(out.keys, o.keys)
	for k, v := range o.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the object with its keys in order. HTML characters are
// left unescaped so version ranges such as ">=18 <20" keep their text.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	return encodeJSON(o.ordered(), "")
}

// UnmarshalJSON decodes a single JSON object, preserving key order at every
// level. Data after the object is an error.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := ordered.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.UseOrderedObject()

	var v any
	if err := dec.Decode(&v); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after top-level object")
	}

	obj, ok := fromOrdered(v).(*Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*o = *obj
	return nil
}

// encodeJSON encodes v without HTML escaping. A non-empty indent produces
// indented output with a trailing newline; otherwise the output is compact.
func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := ordered.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if indent == "" {
		return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
	}
	return buf.Bytes(), nil
}

// ordered converts the object into the encoder's ordered form.
func (o *Object) ordered() ordered.OrderedObject {
	out := make(ordered.OrderedObject, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, ordered.Member{Key: k, Value: toOrdered(o.values[k])})
	}
	return out
}

func toOrdered(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		return t.ordered()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toOrdered(item)
		}
		return out
	default:
		return v
	}
}

func fromOrdered(v any) any {
	switch t := v.(type) {
	case ordered.OrderedObject:
		obj := NewObject()
		for _, m := range t {
			obj.Set(m.Key, fromOrdered(m.Value))
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = fromOrdered(item)
		}
		return out
	default:
		return v
	}
}

// MarshalYAML renders the object as an ordered YAML mapping.
func (o *Object) MarshalYAML() (any, error) {
	return toYAMLNode(o)
}

// ToAny converts the object into plain map[string]any form. Key order is lost;
// used where a library wants generic JSON values (JSONPath, CUE).
func (o *Object) ToAny() map[string]any {
	return toAny(o).(map[string]any)
}

func toAny(v any) any {
	switch t := v.(type) {
	case *Object:
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = toAny(t.values[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toAny(item)
		}
		return out
	case ordered.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}

func toYAMLNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.keys {
			val, err := toYAMLNode(t.values[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				val,
			)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			val, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, val)
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(toAny(t)); err != nil {
			return nil, err
		}
		return node, nil
	}
}
