package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Source is a read-only key-value configuration source. A missing key and a
// key holding only whitespace are both reported as absent.
type Source interface {
	Lookup(key string) (string, bool)
	Section(name string) (Source, bool)
}

// MapSource serves values decoded from a secrets file. Nested tables are sections.
type MapSource map[string]any

func (m MapSource) Lookup(key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}

	var val string
	switch v := raw.(type) {
	case string:
		val = v
	case bool, int, int64, float64:
		val = fmt.Sprint(v)
	default:
		return "", false
	}

	val = strings.TrimSpace(val)
	return val, val != ""
}

func (m MapSource) Section(name string) (Source, bool) {
	table, ok := m[name].(map[string]any)
	if !ok || len(table) == 0 {
		return nil, false
	}
	return MapSource(table), true
}

// EnvSource reads flat keys from the process environment. It has no sections.
type EnvSource struct{}

func (EnvSource) Lookup(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}

func (EnvSource) Section(string) (Source, bool) {
	return nil, false
}

// Layered consults its sources in order; the first one holding a key or a
// section wins.
type Layered []Source

func (l Layered) Lookup(key string) (string, bool) {
	for _, src := range l {
		if val, ok := src.Lookup(key); ok {
			return val, true
		}
	}
	return "", false
}

func (l Layered) Section(name string) (Source, bool) {
	for _, src := range l {
		if section, ok := src.Section(name); ok {
			return section, true
		}
	}
	return nil, false
}

// LoadSecrets reads the TOML secrets file at path and layers it over the
// environment. A missing file leaves only the environment.
func LoadSecrets(path string) (Source, error) {
	if path == "" {
		return Layered{EnvSource{}}, nil
	}

	values := map[string]any{}
	if _, err := toml.DecodeFile(path, &values); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Layered{EnvSource{}}, nil
		}
		return nil, fmt.Errorf("parse secrets file %s: %w", path, err)
	}

	return Layered{MapSource(values), EnvSource{}}, nil
}
