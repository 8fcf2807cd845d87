package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
)

// Load reads path (.work/config.toml), merging any values present over
// Default() — non-zero fields in the file override the default, matching
// tarsy's mergo.WithOverride layering of queue settings.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	data = ExpandEnv(data)

	var fromFile Config
	if err := toml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := mergo.Merge(cfg, &fromFile, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge config %s: %w", path, err)
	}
	return cfg, nil
}

// Save serializes cfg as TOML. The caller (store package) is responsible
// for the atomic-rename write.
func Save(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
