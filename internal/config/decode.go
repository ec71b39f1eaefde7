package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// decodeConfig turns raw file content into a Config. YAML input is
// round-tripped through JSON so both formats share one strict decoder and
// unknown keys are rejected uniformly.
func decodeConfig(path string, data []byte) (*Config, error) {
	name := filepath.Base(path)

	jb := data
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("config %s: %w", name, err)
		}
		b, err := json.Marshal(stringifyKeys(doc))
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", name, err)
		}
		jb = b
	}

	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	// A second document (concatenated JSON, stray text) is a broken file,
	// not something to silently ignore.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("config %s: trailing data after document", name)
		}
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return &cfg, nil
}

// stringifyKeys rewrites every map key to a string so the YAML document can
// pass through encoding/json.
func stringifyKeys(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = stringifyKeys(child)
		}
		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = stringifyKeys(child)
		}
		return out
	case []any:
		for i, child := range node {
			node[i] = stringifyKeys(child)
		}
		return node
	default:
		return v
	}
}
