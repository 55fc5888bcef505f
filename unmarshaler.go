package jdelta

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshalers returns a JSON unmarshaler decoding into *Value that:
//   - Keeps object keys in document order
//   - Maps null to an Unknown value
//   - Detects directive objects of the form {"$<name>": <payload>[, ...ignored...]}
//     whose name resolves in r and replaces them with the directive's result.
//     Objects with an unregistered "$" key decode as plain objects.
//
// r may be nil, in which case no directives are interpreted.
//
//	var v jdelta.Value
//	err := json.Unmarshal(data, &v, json.WithUnmarshalers(jdelta.Unmarshalers(r)))
func Unmarshalers(r *Registry) *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *Value) error {
		val, err := decodeValue(dec, r)
		if err != nil {
			return err
		}
		*v = val
		return nil
	})
}

// DecodeJSON decodes a single JSON document into a Value. See Unmarshalers.
func DecodeJSON(data []byte, r *Registry) (Value, error) {
	return DecodeJSONFrom(bytes.NewReader(data), r)
}

// DecodeJSONFrom decodes a single JSON document read from rd into a Value.
func DecodeJSONFrom(rd io.Reader, r *Registry) (Value, error) {
	var v Value
	if err := json.UnmarshalRead(rd, &v, json.WithUnmarshalers(Unmarshalers(r))); err != nil {
		return Value{}, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

func decodeValue(dec *jsontext.Decoder, r *Registry) (Value, error) {
	switch dec.PeekKind() {
	case '{':
		return decodeObject(dec, r)
	case '[':
		return decodeArray(dec, r)
	}
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, fmt.Errorf("read value: %w", err)
	}
	switch tok.Kind() {
	case 'n':
		return Unknown("null"), nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return Number(tok.Float()), nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

// decodeObject decodes a JSON object into an object Value, or into the result
// of a directive when the first key names one registered in r.
func decodeObject(dec *jsontext.Decoder, r *Registry) (Value, error) {
	if _, err := dec.ReadToken(); err != nil { // '{'
		return Value{}, fmt.Errorf("read object open: %w", err)
	}
	var fields []Field
	for i := 0; dec.PeekKind() != '}'; i++ {
		tok, err := dec.ReadToken()
		if err != nil {
			return Value{}, fmt.Errorf("read object key: %w", err)
		}
		key := tok.String()
		if i == 0 && r != nil && strings.HasPrefix(key, "$") && r.resolves(key[1:]) {
			return decodeDirective(dec, r, key)
		}
		val, err := decodeValue(dec, r)
		if err != nil {
			return Value{}, fmt.Errorf("read object value for key %q: %w", key, err)
		}
		fields = append(fields, Field{Key: key, Value: val})
	}
	if _, err := dec.ReadToken(); err != nil { // '}'
		return Value{}, fmt.Errorf("read object close: %w", err)
	}
	return Object(fields...), nil
}

func decodeDirective(dec *jsontext.Decoder, r *Registry, key string) (Value, error) {
	val, err := r.Value(key[1:], dec)
	if err != nil {
		return Value{}, fmt.Errorf("directive %q call: %w", key, err)
	}
	// skip remaining fields so the decoder is left after the object
	for dec.PeekKind() != '}' {
		if err := dec.SkipValue(); err != nil {
			return Value{}, fmt.Errorf("directive %q skip extra field: %w", key, err)
		}
	}
	if _, err := dec.ReadToken(); err != nil {
		return Value{}, fmt.Errorf("directive %q read object close: %w", key, err)
	}
	return val, nil
}

func decodeArray(dec *jsontext.Decoder, r *Registry) (Value, error) {
	if _, err := dec.ReadToken(); err != nil { // '['
		return Value{}, fmt.Errorf("read array open: %w", err)
	}
	elems := make([]Value, 0)
	for dec.PeekKind() != ']' {
		elem, err := decodeValue(dec, r)
		if err != nil {
			return Value{}, fmt.Errorf("read array element %d: %w", len(elems), err)
		}
		elems = append(elems, elem)
	}
	if _, err := dec.ReadToken(); err != nil { // ']'
		return Value{}, fmt.Errorf("read array close: %w", err)
	}
	return Array(elems...), nil
}
