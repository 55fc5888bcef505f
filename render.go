package jdelta

import (
	"bytes"
	"encoding/base64"
	"math"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"
)

// Render returns the canonical string form of v.
//
// Scalars render as their plain text (numbers in shortest round-trip form,
// binary as standard base64). Containers render as compact JSON in insertion
// order; nested binary values use the {"$binary": "<base64>"} directive form
// and non-finite numbers use {"$num": "NaN"}, so the output decodes back into
// an equal Value with Unmarshalers. Unknown values render as null.
func Render(v Value) string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeNumber:
		return formatNumber(v.num)
	case TypeString:
		return v.str
	case TypeBinary:
		return base64.StdEncoding.EncodeToString(v.bin)
	case TypeUnknown, typeNone:
		return "null"
	}
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsontext.AllowInvalidUTF8(true))
	if err := encodeValue(enc, v); err != nil {
		// only reachable through encoder invariants; keep the node renderable
		return "<" + err.Error() + ">"
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func encodeValue(enc *jsontext.Encoder, v Value) error {
	switch v.typ {
	case TypeBool:
		return enc.WriteToken(jsontext.Bool(v.b))
	case TypeNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return writeDirective(enc, NumberDirectiveName, formatNumber(v.num))
		}
		return enc.WriteToken(jsontext.Float(v.num))
	case TypeString:
		return enc.WriteToken(jsontext.String(v.str))
	case TypeBinary:
		return writeDirective(enc, BinaryDirectiveName, base64.StdEncoding.EncodeToString(v.bin))
	case TypeArray:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, e := range v.elems {
			if err := encodeValue(enc, e); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	case TypeObject:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, f := range v.fields {
			if err := enc.WriteToken(jsontext.String(f.Key)); err != nil {
				return err
			}
			if err := encodeValue(enc, f.Value); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	}
	return enc.WriteToken(jsontext.Null)
}

func writeDirective(enc *jsontext.Encoder, name, payload string) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	if err := enc.WriteToken(jsontext.String("$" + name)); err != nil {
		return err
	}
	if err := enc.WriteToken(jsontext.String(payload)); err != nil {
		return err
	}
	return enc.WriteToken(jsontext.EndObject)
}
