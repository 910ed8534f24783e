package main

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the file-backed configuration loaded from ~/.skillet/config.yaml
// or ./config.yaml, overridable with SKILLET_* environment variables.
type Config struct {
	Skills SkillsConfig `mapstructure:"skills"`
	Cache  CacheConfig  `mapstructure:"cache"`

	// Profiles are named configuration overlays selected with --profile,
	// e.g. a "ci" profile that disables the cache.
	Profiles map[string]map[string]any `mapstructure:"profiles"`
}

// SkillsConfig controls discovery behavior.
type SkillsConfig struct {
	// Allowed restricts discovery to matching skill names. Supports glob
	// patterns, e.g. "deploy-*" or "acme/*". Empty means all skills.
	Allowed []string `mapstructure:"allowed"`
}

// CacheConfig controls the lint result cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{Enabled: true},
	}
}

// loadConfig decodes the viper configuration into a Config, then applies
// the selected profile overlay if one is set.
func loadConfig() (*Config, error) {
	config := defaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	profile := viper.GetString("profile")
	if profile == "" {
		return config, nil
	}

	overlay, exists := config.Profiles[profile]
	if !exists {
		return nil, errors.Errorf("profile %q not found in configuration", profile)
	}
	if err := applyProfile(config, overlay); err != nil {
		return nil, errors.Wrapf(err, "failed to apply profile %q", profile)
	}

	return config, nil
}

// applyProfile merges a profile overlay into the config without zeroing
// fields the overlay does not mention.
func applyProfile(config *Config, overlay map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(overlay)
}
