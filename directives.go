package jdelta

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	json "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Names of the directives Render emits for values JSON cannot express.
const (
	BinaryDirectiveName = "binary"
	NumberDirectiveName = "num"
)

var (
	// BinaryDirective decodes binary assets of either form:
	//
	//	{"$binary": "aGVsbG8="}                               // standard base64
	//	{"$binary": {"data": "68656c6c6f", "encoding": "hex"}} // base64 (default) or hex
	BinaryDirective = NewDirective(BinaryDirectiveName, decodeBinary)

	// NumberDirective decodes numbers JSON cannot represent:
	//
	//	{"$num": "NaN"}
	//	{"$num": "-Inf"}
	//
	// Any string accepted by strconv.ParseFloat is allowed.
	NumberDirective = NewDirective(NumberDirectiveName, decodeNumber)

	// TimeDirective decodes {"$std.time": "2006-01-02T15:04:05Z07:00"} or
	// {"$std.time": {"value": "2023-10-05", "layout": "2006-01-02"}} into a
	// timestamp, compared as its RFC 3339 string.
	TimeDirective = NewTimeDirective("std.time")

	// DurationDirective decodes {"$std.duration": "1h30m"}, compared as a
	// number of seconds.
	DurationDirective = NewDurationDirective("std.duration")
)

// Builtins returns every directive defined by this package.
func Builtins() Registration {
	return Group(BinaryDirective, NumberDirective, TimeDirective, DurationDirective)
}

// NewTimeDirective returns a Registration parsing a timestamp under a custom
// directive name.
func NewTimeDirective(name string) Registration {
	return NewDirective(name, decodeTime)
}

// NewDurationDirective returns a Registration parsing a Go duration string
// under a custom directive name.
func NewDurationDirective(name string) Registration {
	return NewDirective(name, decodeDuration)
}

func decodeBinary(dec *jsontext.Decoder) ([]byte, error) {
	data, encoding := "", "base64"
	if dec.PeekKind() == '{' {
		var aux struct {
			Data     string `json:"data"`
			Encoding string `json:"encoding"`
		}
		if err := json.UnmarshalDecode(dec, &aux); err != nil {
			return nil, err
		}
		data = aux.Data
		if aux.Encoding != "" {
			encoding = aux.Encoding
		}
	} else if err := json.UnmarshalDecode(dec, &data); err != nil {
		return nil, err
	}
	switch encoding {
	case "base64":
		return base64.StdEncoding.DecodeString(data)
	case "hex":
		return hex.DecodeString(data)
	}
	return nil, fmt.Errorf("unsupported binary encoding %q", encoding)
}

func decodeNumber(dec *jsontext.Decoder) (float64, error) {
	if dec.PeekKind() == '0' {
		var f float64
		err := json.UnmarshalDecode(dec, &f)
		return f, err
	}
	var s string
	if err := json.UnmarshalDecode(dec, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func decodeTime(dec *jsontext.Decoder) (time.Time, error) {
	if dec.PeekKind() == '{' {
		var aux struct {
			Value  string `json:"value"`
			Layout string `json:"layout"`
		}
		if err := json.UnmarshalDecode(dec, &aux); err != nil {
			return time.Time{}, err
		}
		layout := aux.Layout
		if layout == "" {
			layout = time.RFC3339
		}
		return time.Parse(layout, aux.Value)
	}

	var value string
	if err := json.UnmarshalDecode(dec, &value); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

func decodeDuration(dec *jsontext.Decoder) (time.Duration, error) {
	var s string
	if err := json.UnmarshalDecode(dec, &s); err != nil {
		return 0, err
	}
	return time.ParseDuration(s)
}
