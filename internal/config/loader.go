package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment knobs.
const (
	envPrefix     = "RALLY_"
	envConfigFile = "RALLY_CONFIG"
	listSeparator = ","
)

// listKeys are flat keys whose env values are comma separated lists.
var listKeys = map[string]bool{ //nolint:gochecknoglobals // static lookup
	"record_years":    true,
	"default_players": true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if RALLY_CONFIG is set
//  3. env (prefix RALLY_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RALLY_RANK_FLOOR -> rank_floor. Underscores are kept so keys stay flat
	// and match the koanf tags; list keys are split on commas.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" {
			return "", nil
		}
		if listKeys[key] {
			parts := strings.Split(value, listSeparator)
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return key, out
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// Lists replace the defaults instead of merging element-wise.
	for key := range listKeys {
		if !k.Exists(key) {
			continue
		}
		switch key {
		case "record_years":
			cfg.RecordYears = nil
		case "default_players":
			cfg.DefaultPlayers = nil
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}
