package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/postcut/internal/machine"
)

// ParseError reports a configuration or job file that could not be decoded.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s file %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// formatOf maps a file extension to its configuration format.
func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "", fmt.Errorf("unsupported machine file extension %q", filepath.Ext(path))
}

// decodeDocument decodes data into a generic map.
func decodeDocument(format string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, &raw)
	case "yaml":
		err = yaml.Unmarshal(data, &raw)
	case "toml":
		_, err = toml.Decode(string(data), &raw)
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// LoadMachine reads a machine configuration in JSON, YAML or TOML, chosen by
// file extension. Legacy field names are migrated and fields the file
// leaves out take the defaults of its post processor preset.
func LoadMachine(path string) (machine.Machine, error) {
	format, err := formatOf(path)
	if err != nil {
		return machine.Machine{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return machine.Machine{}, fmt.Errorf("failed to read machine file: %w", err)
	}
	raw, err := decodeDocument(format, data)
	if err != nil {
		return machine.Machine{}, &ParseError{Path: path, Format: format, Err: err}
	}
	m, err := machine.Decode(raw)
	if err != nil {
		return machine.Machine{}, &ParseError{Path: path, Format: format, Err: err}
	}
	if m.Name == "" {
		base := filepath.Base(path)
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return m, nil
}

// SaveMachine writes m in the format given by the file extension. It creates
// any missing parent directories.
func SaveMachine(path string, m machine.Machine) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	m.Version = machine.SchemaVersion

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(m, "", "  ")
	default:
		var doc map[string]any
		doc, err = toDocument(m)
		if err != nil {
			break
		}
		if format == "yaml" {
			data, err = yaml.Marshal(doc)
		} else {
			var buf bytes.Buffer
			err = toml.NewEncoder(&buf).Encode(doc)
			data = buf.Bytes()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to encode machine %q: %w", m.Name, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create machine directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write machine file: %w", err)
	}
	return nil
}

// toDocument converts m to a generic map keyed by the canonical field names.
// Null values are dropped since TOML cannot express them.
func toDocument(m machine.Machine) (map[string]any, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	dropNulls(doc)
	return doc, nil
}

func dropNulls(doc map[string]any) {
	for k, v := range doc {
		switch v := v.(type) {
		case nil:
			delete(doc, k)
		case map[string]any:
			dropNulls(v)
		}
	}
}
