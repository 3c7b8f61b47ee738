// Package prefs provides the preference store read by the engine.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/voicenotify/internal/domain"
)

// Compile-time interface check.
var _ domain.Preferences = (*Store)(nil)

// Store is an in-memory preference map, optionally loaded from a YAML file.
// Values that cannot be coerced to the requested type read as the default.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates a store seeded with the given values.
func New(values map[string]any) *Store {
	s := &Store{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Load reads a YAML mapping of key to scalar on top of Defaults. A missing
// file yields the defaults alone.
func Load(path string) (*Store, error) {
	s := New(Defaults())
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	var file map[string]any
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing preferences %s: %w", path, err)
	}
	for k, v := range file {
		s.values[k] = v
	}
	return s, nil
}

// Save writes the current values to path as YAML.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	data, err := yaml.Marshal(s.values)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// Set stores a value.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes a key so reads fall back to their defaults.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

func (s *Store) get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value as text. Numbers and booleans are formatted.
func (s *Store) String(key, def string) string {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int returns the value as an integer. Fractions are truncated; text is
// parsed after trimming.
func (s *Store) Int(key string, def int) int {
	f, ok := s.number(key)
	if !ok {
		return def
	}
	return int(f)
}

// Float returns the value as a float.
func (s *Store) Float(key string, def float64) float64 {
	f, ok := s.number(key)
	if !ok {
		return def
	}
	return f
}

func (s *Store) number(key string) (float64, bool) {
	v, ok := s.get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Bool returns the value as a boolean. Text accepts strconv.ParseBool forms.
func (s *Store) Bool(key string, def bool) bool {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}
