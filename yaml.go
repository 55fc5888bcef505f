package jdelta

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes a single YAML document into a Value.
//
// Mapping keys keep document order. Scalars follow their resolved YAML tags:
// !!bool, !!int and !!float become bool and number values (including .nan
// and .inf), !!str becomes a string, !!binary becomes a binary value and
// !!null becomes Unknown. Timestamps keep their source text. Aliases are
// expanded; an expansion far larger than the document fails with
// ErrResourceExceeded. An empty document decodes to Unknown.
func DecodeYAML(data []byte) (Value, error) {
	return DecodeYAMLFrom(bytes.NewReader(data))
}

// DecodeYAMLFrom decodes a single YAML document read from rd into a Value.
func DecodeYAMLFrom(rd io.Reader) (Value, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(rd).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Unknown("null"), nil
		}
		return Value{}, fmt.Errorf("decode yaml: %w", err)
	}
	c := yamlConverter{budget: max(minYAMLAliasBudget, yamlAliasFactor*countYAMLNodes(&doc))}
	return c.convert(&doc, 0)
}

const (
	// maxYAMLAliasDepth bounds alias nesting so that self-referencing
	// documents cannot recurse forever.
	maxYAMLAliasDepth = 64

	// Values produced by alias expansion may not exceed yamlAliasFactor times
	// the number of nodes in the document, or minYAMLAliasBudget, whichever
	// is larger.
	yamlAliasFactor    = 10
	minYAMLAliasBudget = 10_000
)

// countYAMLNodes counts the nodes of a document without following aliases.
func countYAMLNodes(n *yaml.Node) int {
	count := 1
	for _, c := range n.Content {
		count += countYAMLNodes(c)
	}
	return count
}

type yamlConverter struct {
	budget   int
	expanded int
}

func (c *yamlConverter) convert(n *yaml.Node, aliases int) (Value, error) {
	if aliases > 0 {
		c.expanded++
		if c.expanded > c.budget {
			return Value{}, fmt.Errorf("%w: yaml alias expansion exceeds %d values", ErrResourceExceeded, c.budget)
		}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Unknown("null"), nil
		}
		return c.convert(n.Content[0], aliases)
	case yaml.AliasNode:
		if aliases >= maxYAMLAliasDepth {
			return Value{}, fmt.Errorf("line %d: alias nesting exceeds %d", n.Line, maxYAMLAliasDepth)
		}
		return c.convert(n.Alias, aliases+1)
	case yaml.SequenceNode:
		elems := make([]Value, len(n.Content))
		for i, cn := range n.Content {
			v, err := c.convert(cn, aliases)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return Array(elems...), nil
	case yaml.MappingNode:
		fields := make([]Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			if k.Tag == "!!merge" {
				return Value{}, fmt.Errorf("line %d: merge keys are not supported", k.Line)
			}
			v, err := c.convert(vn, aliases)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k.Value, err)
			}
			fields = append(fields, Field{Key: k.Value, Value: v})
		}
		return Object(fields...), nil
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	}
	return Unknown(fmt.Sprintf("yaml node kind %d", n.Kind)), nil
}

func fromYAMLScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Unknown("null"), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Number(float64(i)), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Number(float64(u)), nil
	case "!!float":
		return fromYAMLFloat(n)
	case "!!binary":
		p, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return Value{}, fmt.Errorf("line %d: binary: %w", n.Line, err)
		}
		return Binary(p), nil
	case "!!str", "!!timestamp":
		return String(n.Value), nil
	}
	return Unknown("yaml tag " + n.ShortTag()), nil
}

func fromYAMLFloat(n *yaml.Node) (Value, error) {
	switch strings.ToLower(n.Value) {
	case ".nan":
		return Number(math.NaN()), nil
	case ".inf", "+.inf":
		return Number(math.Inf(1)), nil
	case "-.inf":
		return Number(math.Inf(-1)), nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64)
	if err != nil {
		return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return Number(f), nil
}
