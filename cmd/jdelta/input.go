package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calumari/jdelta"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func isInput(path string) bool {
	return isYAML(path) || strings.EqualFold(filepath.Ext(path), ".json")
}

// loadValue decodes a result file. YAML is chosen by extension; anything
// else is read as JSON with the built-in directives.
func loadValue(path string, reg *jdelta.Registry) (jdelta.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return jdelta.Value{}, fmt.Errorf("reading input: %w", err)
	}
	defer f.Close()

	var v jdelta.Value
	if isYAML(path) {
		v, err = jdelta.DecodeYAMLFrom(f)
	} else {
		v, err = jdelta.DecodeJSONFrom(f, reg)
	}
	if err != nil {
		return jdelta.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func builtinRegistry() (*jdelta.Registry, error) {
	reg, err := jdelta.NewRegistry(jdelta.Builtins())
	if err != nil {
		return nil, fmt.Errorf("registering directives: %w", err)
	}
	return reg, nil
}
