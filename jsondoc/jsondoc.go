// Package jsondoc decodes and encodes arbitrary JSON documents without
// disturbing them: object member order and the literal text of numbers
// survive a decode/encode round trip, so a document whose values were not
// touched re-encodes to the same bytes every time.
//
// Decoded values use these Go types:
//
//	object  -> *Object (members in document order)
//	array   -> []any
//	string  -> string
//	number  -> json.Number
//	boolean -> bool
//	null    -> nil
//
// Output layout matches two-space indented JSON with ": " after keys, one
// member or element per line, "{}" and "[]" for empty containers, and
// strings written without ASCII or HTML escaping.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Object model
// ---------------------------------------------------------------------------

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object that remembers the order of its members.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.members) }

// Members returns the members in document order. The slice must not be
// modified; use Set to change values.
func (o *Object) Members() []Member { return o.members }

// Keys returns the member keys in document order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if idx, ok := o.index[key]; ok {
		return o.members[idx].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.index[key]
	return ok
}

// Set stores value under key. An existing key keeps its position;
// a new key is appended.
func (o *Object) Set(key string, value any) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if idx, ok := o.index[key]; ok {
		o.members[idx].Value = value
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// ParseFile reads and decodes the JSON document at path.
func ParseFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

// Parse decodes a single JSON document.
func Parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string, json.Number, bool, nil:
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected token %v (%T)", tok, tok)
	}
}

func decodeObject(dec *json.Decoder) (*Object, error) {
	obj := NewObject()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		obj.Set(key, v)
	}
	// Closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", len(arr), err)
		}
		arr = append(arr, v)
	}
	// Closing ']'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

const indentUnit = "  "

// Marshal encodes v as indented JSON terminated by a newline.
func Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	if err := encodeValue(&b, v, 0); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// WriteFile encodes v and writes it to path, creating parent directories.
func WriteFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func encodeValue(b *bytes.Buffer, v any, depth int) error {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case string:
		return writeString(b, x)
	case json.Number:
		b.WriteString(x.String())
	case *Object:
		return encodeObject(b, x, depth)
	case []any:
		return encodeArray(b, x, depth)
	case []string:
		arr := make([]any, len(x))
		for i, s := range x {
			arr[i] = s
		}
		return encodeArray(b, arr, depth)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return err
		}
		b.Write(data)
	}
	return nil
}

func encodeObject(b *bytes.Buffer, o *Object, depth int) error {
	if o == nil {
		b.WriteString("null")
		return nil
	}
	if o.Len() == 0 {
		b.WriteString("{}")
		return nil
	}
	b.WriteString("{\n")
	for i, m := range o.members {
		writeIndent(b, depth+1)
		if err := writeString(b, m.Key); err != nil {
			return err
		}
		b.WriteString(": ")
		if err := encodeValue(b, m.Value, depth+1); err != nil {
			return fmt.Errorf("%q: %w", m.Key, err)
		}
		if i < len(o.members)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	writeIndent(b, depth)
	b.WriteByte('}')
	return nil
}

func encodeArray(b *bytes.Buffer, arr []any, depth int) error {
	if len(arr) == 0 {
		b.WriteString("[]")
		return nil
	}
	b.WriteString("[\n")
	for i, v := range arr {
		writeIndent(b, depth+1)
		if err := encodeValue(b, v, depth+1); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if i < len(arr)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	writeIndent(b, depth)
	b.WriteByte(']')
	return nil
}

func writeIndent(b *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indentUnit)
	}
}

// writeString writes s as a JSON string literal. Non-ASCII text, including
// U+2028 and U+2029, and the characters <, > and & are written as-is.
func writeString(b *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	lit := bytes.TrimSuffix(tmp.Bytes(), []byte("\n"))
	if !strings.ContainsAny(s, "\u2028\u2029") {
		b.Write(lit)
		return nil
	}
	unescapeLineSeparators(b, lit)
	return nil
}

// unescapeLineSeparators copies an encoded string literal, turning the
// \u2028 and \u2029 escapes added by encoding/json back into the runes.
func unescapeLineSeparators(b *bytes.Buffer, lit []byte) {
	for i := 0; i < len(lit); i++ {
		if lit[i] != '\\' || i+1 >= len(lit) {
			b.WriteByte(lit[i])
			continue
		}
		if lit[i+1] == 'u' && i+6 <= len(lit) {
			switch string(lit[i+2 : i+6]) {
			case "2028":
				b.WriteRune('\u2028')
				i += 5
				continue
			case "2029":
				b.WriteRune('\u2029')
				i += 5
				continue
			}
		}
		// keep the escape pair together so an escaped backslash is not
		// mistaken for the start of another escape
		b.Write(lit[i : i+2])
		i++
	}
}
