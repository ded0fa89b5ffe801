package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingSecret is returned when a secret has neither a value nor a fallback.
	ErrMissingSecret = errors.New("missing secret")
	// ErrFallbackOnRealNetwork is returned when a development fallback would be used on a real-value network.
	ErrFallbackOnRealNetwork = errors.New("refusing fallback secret on real-value network")
)

// Secrets resolves named secrets from the environment first, then from a YAML file.
type Secrets struct {
	values map[string]string
	lookup func(string) (string, bool)
}

// LoadSecrets reads a flat key/value YAML file. A missing file yields an empty store.
func LoadSecrets(path string) (*Secrets, error) {
	s := &Secrets{values: map[string]string{}, lookup: os.LookupEnv}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read secrets: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse secrets: %w", err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// NewSecrets builds a store from values without consulting the environment.
func NewSecrets(values map[string]string) *Secrets {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Secrets{values: copied, lookup: func(string) (string, bool) { return "", false }}
}

// Lookup returns the secret for key, preferring the environment.
func (s *Secrets) Lookup(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	if s.lookup != nil {
		if value, ok := s.lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	value, ok := s.values[key]
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// Resolve returns the secret for key or fallback. Fallbacks are rejected when realValue is set.
func (s *Secrets) Resolve(key, fallback string, realValue bool) (string, error) {
	if value, ok := s.Lookup(key); ok {
		return value, nil
	}
	if fallback == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingSecret, key)
	}
	if realValue {
		return "", fmt.Errorf("%w: %s", ErrFallbackOnRealNetwork, key)
	}
	return fallback, nil
}
