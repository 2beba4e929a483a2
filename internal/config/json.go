package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type unmarshalFunc func(data []byte, v any) error

// LoadFromJSON decodes and validates a JSON config.
func LoadFromJSON(data []byte) (*Config, error) {
	return load(data, json.Unmarshal)
}

// LoadFromYAML decodes and validates a YAML config.
func LoadFromYAML(data []byte) (*Config, error) {
	return load(data, yaml.Unmarshal)
}

// LoadFile reads and validates a JSON or YAML config file. The format follows
// the extension.
func LoadFile(path string) (*Config, error) {
	data, unmarshal, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := load(data, unmarshal)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func load(data []byte, unmarshal unmarshalFunc) (*Config, error) {
	var cfg Config
	if err := unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// decodeFile reads a config file without validating it, so command-line
// values can still be layered on top.
func decodeFile(path string) (*Config, error) {
	data, unmarshal, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

func readFile(path string) ([]byte, unmarshalFunc, error) {
	var unmarshal unmarshalFunc
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		unmarshal = json.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, nil, fmt.Errorf("unsupported config file extension %q, expected .json, .yaml or .yml", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, unmarshal, nil
}
