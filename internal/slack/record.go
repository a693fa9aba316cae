// internal/slack/record.go
package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// member binds one known JSON property to a struct field.
type member struct {
	name   string
	value  func() (interface{}, bool)
	decode func(raw json.RawMessage) error
}

func stringMember(name string, p **string) member {
	return member{
		name:   name,
		value:  func() (interface{}, bool) { return *p, *p != nil },
		decode: func(raw json.RawMessage) error { return json.Unmarshal(raw, p) },
	}
}

func int64Member(name string, p **int64) member {
	return member{
		name:   name,
		value:  func() (interface{}, bool) { return *p, *p != nil },
		decode: func(raw json.RawMessage) error { return json.Unmarshal(raw, p) },
	}
}

func boolMember(name string, p **bool) member {
	return member{
		name:   name,
		value:  func() (interface{}, bool) { return *p, *p != nil },
		decode: func(raw json.RawMessage) error { return json.Unmarshal(raw, p) },
	}
}

func fieldsMember(name string, p *[]Field) member {
	return member{
		name:   name,
		value:  func() (interface{}, bool) { return *p, *p != nil },
		decode: func(raw json.RawMessage) error { return json.Unmarshal(raw, p) },
	}
}

func attachmentsMember(name string, p *[]Attachment) member {
	return member{
		name:   name,
		value:  func() (interface{}, bool) { return *p, *p != nil },
		decode: func(raw json.RawMessage) error { return json.Unmarshal(raw, p) },
	}
}

// encodeObject writes the set known members in declaration order followed by
// the additional properties in insertion order. An additional property that
// shadows a known member name is skipped.
func encodeObject(members []member, extra *Properties) ([]byte, error) {
	var buf bytes.Buffer
	written := 0

	write := func(name string, v interface{}) error {
		val, err := marshalValue(v)
		if err != nil {
			return fmt.Errorf("slack: encode %q: %w", name, err)
		}
		key, _ := marshalValue(name)
		if written > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		written++
		return nil
	}

	known := make(map[string]struct{}, len(members))
	buf.WriteByte('{')
	for _, m := range members {
		known[m.name] = struct{}{}
		v, ok := m.value()
		if !ok {
			continue
		}
		if err := write(m.name, v); err != nil {
			return nil, err
		}
	}
	for _, name := range extra.keys {
		if _, shadowed := known[name]; shadowed {
			continue
		}
		if err := write(name, extra.values[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// decodeObject walks the members of a JSON object in encounter order. Known
// names are decoded into their fields, everything else lands in extra.
func decodeObject(data []byte, members []member, extra *Properties) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("slack: decode object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("slack: expected JSON object, got %v", tok)
	}

	index := make(map[string]member, len(members))
	for _, m := range members {
		index[m.name] = m
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("slack: decode object: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("slack: unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("slack: decode %q: %w", name, err)
		}

		if m, known := index[name]; known {
			if err := m.decode(raw); err != nil {
				return fmt.Errorf("slack: decode %q: %w", name, err)
			}
			continue
		}
		extra.Set(name, raw)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("slack: decode object: %w", err)
	}
	return nil
}

// marshalValue encodes v without HTML escaping so that links keep their '&'.
// A valid json.RawMessage is returned as is.
func marshalValue(v interface{}) ([]byte, error) {
	if raw, ok := v.(json.RawMessage); ok && json.Valid(raw) {
		return raw, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// StringValue dereferences p, returning "" when it is nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
