package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// entries is a string-keyed map that remembers insertion order.
// It encodes to and decodes from a JSON object, keeping key order.
type entries[V any] struct {
	keys   []string
	values map[string]V
}

func (e *entries[V]) get(key string) (V, bool) {
	v, ok := e.values[key]
	return v, ok
}

func (e *entries[V]) has(key string) bool {
	_, ok := e.values[key]
	return ok
}

// set inserts or updates key. Updating keeps the original position.
func (e *entries[V]) set(key string, v V) {
	if e.values == nil {
		e.values = make(map[string]V)
	}
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = v
}

func (e *entries[V]) remove(key string) bool {
	if _, ok := e.values[key]; !ok {
		return false
	}
	delete(e.values, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i:i], e.keys[i+1:]...)
			break
		}
	}
	return true
}

func (e *entries[V]) len() int {
	return len(e.keys)
}

func (e *entries[V]) names() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

func (e *entries[V]) clone() entries[V] {
	c := entries[V]{
		keys:   e.names(),
		values: make(map[string]V, len(e.values)),
	}
	for k, v := range e.values {
		c.values[k] = v
	}
	return c
}

func (e entries[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSON(k)
		if err != nil {
			return nil, err
		}
		val, err := encodeJSON(e.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *entries[V]) UnmarshalJSON(data []byte) error {
	*e = entries[V]{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		e.set(key, v)
	}

	_, err = dec.Token()
	return err
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
