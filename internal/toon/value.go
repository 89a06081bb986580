package toon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Member is a single key/value pair inside an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON-style mapping that remembers insertion order. Member
// order is significant: it drives key order on encode and column order for
// tabular arrays. Keys are unique; Set replaces in place.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key, or appends a new member if the key is
// absent. It returns the updated object.
func (o Object) Set(key string, value any) Object {
	for i, m := range o {
		if m.Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, Member{Key: key, Value: value})
}

// Keys returns the keys in insertion order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// MarshalJSON writes the object as a JSON object with members in insertion
// order.
func (o Object) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	if err := writeJSONValue(&b, o); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeJSONValue(b *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case Object:
		b.WriteByte('{')
		for i, m := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, m.Key)
			b.WriteByte(':')
			if err := writeJSONValue(b, m.Value); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case []any:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSONValue(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	case string:
		writeJSONString(b, val)
		return nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(raw)
		return nil
	}
}

// writeJSONString quotes s as a JSON string without the HTML escaping
// encoding/json applies, so URLs with & stay readable.
func writeJSONString(b *bytes.Buffer, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// UnmarshalJSON reads a JSON object, preserving the order keys appear in
// the input.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	obj, ok := v.(Object)
	if !ok {
		return fmt.Errorf("cannot unmarshal %T into Object", v)
	}
	*o = obj
	return nil
}

// ParseJSON decodes arbitrary JSON into the codec's value model: Object for
// JSON objects (insertion order preserved), []any for arrays, float64 for
// numbers, plus string, bool and nil. Trailing content after the top-level
// value is an error.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected content after JSON value")
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of JSON input")
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj = obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return f, nil
	default:
		// string, bool or nil
		return tok, nil
	}
}

// normalize converts arbitrary Go values into the codec's value model.
// Objects pass through untouched, maps get sorted keys so equal inputs
// encode identically, structs go through their JSON form so field order is
// kept, and all integer kinds widen to float64.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool, float64, string:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, &EncodeError{Msg: fmt.Sprintf("invalid number %q", val.String())}
		}
		return f, nil
	case Object:
		out := make(Object, 0, len(val))
		for _, m := range val {
			nv, err := normalize(m.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, Member{Key: m.Key, Value: nv})
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			nv, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Object, 0, len(val))
		for _, k := range keys {
			nv, err := normalize(val[k])
			if err != nil {
				return nil, err
			}
			out = append(out, Member{Key: k, Value: nv})
		}
		return out, nil
	default:
		return normalizeReflect(v)
	}
}

// normalizeReflect handles structs, typed slices and typed maps by taking
// their JSON form, which keeps struct field order and honors json tags.
func normalizeReflect(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &EncodeError{Msg: fmt.Sprintf("unsupported value %T: %v", v, err)}
	}
	parsed, err := ParseJSON(raw)
	if err != nil {
		return nil, &EncodeError{Msg: fmt.Sprintf("unsupported value %T: %v", v, err)}
	}
	return parsed, nil
}
