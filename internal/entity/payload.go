package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vk/palacegrid/internal/opt"
)

// Field is a single key/value pair of a record payload.
type Field struct {
	Key   string
	Value any
}

// Payload is an ordered list of fields. It marshals to a JSON object whose
// keys appear in slice order, which is the declaration order of the builder
// that produced it.
type Payload []Field

// Get returns the value stored under key.
func (p Payload) Get(key string) (any, bool) {
	for _, f := range p {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (p Payload) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys returns the keys in emission order.
func (p Payload) Keys() []string {
	keys := make([]string, len(p))
	for i, f := range p {
		keys[i] = f.Key
	}
	return keys
}

// Without returns a copy of p with the given keys removed.
func (p Payload) Without(keys ...string) Payload {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	out := make(Payload, 0, len(p))
	for _, f := range p {
		if _, ok := drop[f.Key]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p Payload) put(key string, value any) Payload {
	return append(p, Field{Key: key, Value: value})
}

// putOpt appends key only when o is set.
func putOpt[T any](p Payload, key string, o opt.Opt[T]) Payload {
	if v, ok := o.Get(); ok {
		return p.put(key, v)
	}
	return p
}

// attrs keeps a nil attribute list from encoding as null.
func attrs(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
