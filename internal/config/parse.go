package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseSettings parses YAML data into a Settings struct.
// It returns an error if the YAML is malformed, contains unknown fields,
// or has type mismatches. Missing fields become zero values.
// Empty input returns a zero-value Settings.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := strictUnmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &s, nil
}

// strictUnmarshal unmarshals YAML data into v, rejecting unknown fields.
// Empty input is treated as valid, leaving v at its zero value.
func strictUnmarshal(data []byte, v any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode YAML: %w", err)
	}
	return nil
}

// MarshalSettings marshals Settings to YAML.
func MarshalSettings(s *Settings) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return data, nil
}
