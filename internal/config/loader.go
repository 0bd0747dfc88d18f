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

// EnvConfigPath names the variable holding the optional YAML file path.
const EnvConfigPath = "FLICK_CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if FLICK_CONFIG is set
//  3. env (prefix FLICK_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, os.Getenv(EnvConfigPath))
}

// LoadFrom is Load with an explicit file path; an empty path skips the file.
func LoadFrom(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FLICK_QUEUE_SIZE -> queue_size; underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider("FLICK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "flick_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch reloads the configuration whenever the file at path changes and
// passes the result to fn. A reload that fails validation is reported as an
// error and the previous configuration stays in effect for the caller.
// Watching stops when ctx is done.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	if path == "" {
		return fmt.Errorf("%w: no config file to watch", ErrLoadConfig)
	}
	f := file.Provider(path)
	err := f.Watch(func(_ interface{}, err error) {
		if err != nil {
			fn(nil, fmt.Errorf("%w: watch %s: %w", ErrLoadConfig, path, err))
			return
		}
		fn(LoadFrom(ctx, path))
	})
	if err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrLoadConfig, path, err)
	}

	go func() {
		<-ctx.Done()
		_ = f.Unwatch()
	}()
	return nil
}
