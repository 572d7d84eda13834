package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yangl1996/seenset/hasher"
)

// Config describes a benchmark session. It is read from YAML; flags given on
// the command line override the file.
type Config struct {
	Runs       int        `yaml:"runs"`
	Hasher     string     `yaml:"hasher"`
	Key        string     `yaml:"key"` // hex, hasher.KeySize bytes
	Strategies []string   `yaml:"strategies"`
	Sample     int        `yaml:"sample"` // time every Sample-th operation
	Seed       int64      `yaml:"seed"`
	Scenarios  []Scenario `yaml:"scenarios"`
}

// Scenario describes one stream of values.
type Scenario struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Count  int    `yaml:"count"`
	Depth  int    `yaml:"depth"`
	Fanout int    `yaml:"fanout"`

	// Revisits, when positive, repeats every value a number of times drawn
	// from a robust soliton distribution over [1, Revisits].
	Revisits uint64 `yaml:"revisits"`
}

const (
	kindLongStrings = "long-strings"
	kindTree        = "tree"
)

var hasherNames = []string{"random", "siphash", "xxhash", "blake2b"}

var strategyNames = []string{"seenset", "map-clone", "map-ref"}

// DefaultConfig reproduces the classic comparison: 1000 long strings
// against maps that clone or borrow them.
func DefaultConfig() Config {
	return Config{
		Runs:       10,
		Hasher:     "random",
		Key:        "000102030405060708090a0b0c0d0e0f",
		Strategies: append([]string(nil), strategyNames...),
		Sample:     16,
		Seed:       1,
		Scenarios: []Scenario{
			{Name: "long-strings", Kind: kindLongStrings, Count: 1000},
		},
	}
}

// ConfigError reports a config field with an unusable value.
type ConfigError struct {
	Field   string
	Problem string
}

func (e ConfigError) Error() string {
	return "config: " + e.Field + ": " + e.Problem
}

// LoadConfig reads the YAML file at path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Validate checks every field and returns the first problem as a
// ConfigError.
func (c Config) Validate() error {
	if c.Runs < 1 {
		return ConfigError{"runs", "must be at least 1"}
	}
	if !contains(hasherNames, c.Hasher) {
		return ConfigError{"hasher", fmt.Sprintf("unknown hasher %q", c.Hasher)}
	}
	if _, err := c.HasherKey(); err != nil {
		return err
	}
	if len(c.Strategies) == 0 {
		return ConfigError{"strategies", "no strategy given"}
	}
	for _, s := range c.Strategies {
		if !contains(strategyNames, s) {
			return ConfigError{"strategies", fmt.Sprintf("unknown strategy %q", s)}
		}
	}
	if c.Sample < 1 {
		return ConfigError{"sample", "must be at least 1"}
	}
	if len(c.Scenarios) == 0 {
		return ConfigError{"scenarios", "no scenario given"}
	}
	for i, s := range c.Scenarios {
		field := fmt.Sprintf("scenarios[%d]", i)
		switch s.Kind {
		case kindLongStrings:
			if s.Count < 1 {
				return ConfigError{field + ".count", "must be at least 1"}
			}
		case kindTree:
			if s.Depth < 0 || s.Fanout < 1 {
				return ConfigError{field, "tree needs depth >= 0 and fanout >= 1"}
			}
		default:
			return ConfigError{field + ".kind", fmt.Sprintf("unknown kind %q", s.Kind)}
		}
	}
	return nil
}

// HasherKey decodes Key.
func (c Config) HasherKey() ([hasher.KeySize]byte, error) {
	var key [hasher.KeySize]byte
	b, err := hex.DecodeString(c.Key)
	if err != nil {
		return key, ConfigError{"key", err.Error()}
	}
	if len(b) != hasher.KeySize {
		return key, ConfigError{"key", fmt.Sprintf("need %d bytes, got %d", hasher.KeySize, len(b))}
	}
	copy(key[:], b)
	return key, nil
}
